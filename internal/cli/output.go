package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	statereg "github.com/goliatone/go-statereg"
)

// writeDocument prints a group document, keeping its key order in both
// formats.
func writeDocument(w io.Writer, format string, document []byte) error {
	if format != "yaml" {
		_, err := fmt.Fprintf(w, "%s\n", document)
		return err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(document, &node); err != nil {
		return fmt.Errorf("converting document: %w", err)
	}
	blockStyle(&node)
	return encodeYAML(w, &node)
}

// writeValue prints an arbitrary value. Map keys come out sorted.
func writeValue(w io.Writer, format, indent string, value any) error {
	if format == "yaml" {
		return encodeYAML(w, value)
	}
	out, err := json.MarshalIndent(value, "", indent)
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", out)
	return err
}

func encodeYAML(w io.Writer, value any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(value); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return enc.Close()
}

// blockStyle drops the flow and quoting styles a JSON source leaves on the
// node tree. The encoder re-quotes strings that would not round-trip.
func blockStyle(node *yaml.Node) {
	node.Style = 0
	for _, child := range node.Content {
		blockStyle(child)
	}
}

func writeReport(w io.Writer, report statereg.LoadReport) {
	writeList(w, "applied", report.Applied)
	writeList(w, "missing", report.Missing)
	writeList(w, "unknown", report.Unknown)
	if len(report.Failed) == 0 {
		return
	}
	names := make([]string, 0, len(report.Failed))
	for name := range report.Failed {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "failed: %v\n", report.Failed[name])
	}
}

func writeList(w io.Writer, label string, names []string) {
	if len(names) == 0 {
		return
	}
	fmt.Fprintf(w, "%s: %s\n", label, strings.Join(names, ", "))
}

func summary(report statereg.LoadReport) string {
	return fmt.Sprintf("applied %d, missing %d, failed %d, unknown %d",
		len(report.Applied), len(report.Missing), len(report.Failed), len(report.Unknown))
}
