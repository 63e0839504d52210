package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-statereg/pkg/persist"
)

func newWatchCommand(a *app) *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Reload a state document whenever it changes",
		Long: `Load a state document, then reload it into the same registry each time the
file is saved and print a one-line summary. Runs until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			out := cmd.OutOrStdout()
			m := a.manager()

			reload := func() {
				_, report, err := a.load(m, path)
				if err != nil {
					fmt.Fprintf(out, "%s: %v\n", path, err)
					return
				}
				fmt.Fprintf(out, "%s: %s\n", path, summary(report))
			}

			w, err := persist.NewWatcher(persist.WatcherConfig{
				Path:     path,
				Debounce: debounce,
				Logger:   a.log,
			})
			if err != nil {
				return err
			}
			changes, err := w.Start()
			if err != nil {
				return err
			}
			defer w.Stop()

			reload()
			for {
				select {
				case <-cmd.Context().Done():
					return nil
				case <-changes:
					reload()
				}
			}
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", persist.DefaultDebounce, "wait this long after the last write before reloading")
	return cmd
}
