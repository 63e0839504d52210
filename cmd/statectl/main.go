// Command statectl inspects, migrates and queries persisted state documents.
package main

import (
	"os"

	"github.com/goliatone/go-statereg/internal/cli"
)

var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
