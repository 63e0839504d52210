package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newInspectCommand(a *app) *cobra.Command {
	var (
		report bool
		strict bool
		fields bool
	)
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Load a state document and print it as the registry sees it",
		Long: `Load a state document into the selected group and print the group as it
would be saved: missing states appear with their defaults, legacy shapes are
migrated and unknown keys are dropped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := a.manager()
			_, loaded, err := a.load(m, args[0])
			if err != nil {
				return err
			}
			if report {
				writeReport(cmd.ErrOrStderr(), loaded)
			}

			if fields {
				descriptors, err := m.Describe(a.group())
				if err != nil {
					return err
				}
				for _, d := range descriptors {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", d.Path, d.Type)
				}
			} else if err := writeDocument(cmd.OutOrStdout(), a.cfg.Format, m.SerializeGroup(a.group())); err != nil {
				return err
			}

			if strict && (!loaded.OK() || len(loaded.Unknown) > 0) {
				return errors.New(summary(loaded))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&report, "report", false, "print which states were applied, missing, failed or unknown to stderr")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when a state is rejected or the document has unknown keys")
	cmd.Flags().BoolVar(&fields, "fields", false, "print field paths and JSON types instead of the document")
	return cmd
}
