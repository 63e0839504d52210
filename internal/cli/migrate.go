package cli

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-statereg/pkg/persist"
)

func newMigrateCommand(a *app) *cobra.Command {
	var (
		output  string
		inPlace bool
	)
	cmd := &cobra.Command{
		Use:   "migrate <file>",
		Short: "Rewrite a state document in the current format",
		Long: `Load a state document and write it back as the registry serializes it.
Legacy byte arrays and enum ordinals are rewritten, missing states are filled
with defaults. Top-level keys no registered state claims are kept unless
keep_unknown is false.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if inPlace && output != "" {
				return fmt.Errorf("--in-place and --output are mutually exclusive")
			}

			m := a.manager()
			original, report, err := a.load(m, args[0])
			if err != nil {
				return err
			}
			if !report.OK() {
				writeReport(cmd.ErrOrStderr(), report)
				return fmt.Errorf("%s: %s", args[0], summary(report))
			}

			migrated, err := migrateDocument(m.SerializeGroup(a.group()), original, report.Unknown, a.cfg.KeepUnknown, a.cfg.Indent)
			if err != nil {
				return err
			}

			target := output
			if inPlace {
				target = args[0]
			}
			if target == "" {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\n", migrated)
				return err
			}
			if err := persist.WriteFile(target, append(migrated, '\n')); err != nil {
				return err
			}
			a.log.Info("document migrated",
				zap.String("path", target),
				zap.String("summary", summary(report)),
			)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the migrated document to this file")
	cmd.Flags().BoolVarP(&inPlace, "in-place", "i", false, "replace the input file")
	cmd.Flags().Bool("keep-unknown", true, "keep top-level keys no registered state claims")
	_ = a.v.BindPFlag("keep_unknown", cmd.Flags().Lookup("keep-unknown"))
	return cmd
}

// migrateDocument adds the unknown top-level keys of the original document
// to the serialized group.
func migrateDocument(serialized, original []byte, unknown []string, keepUnknown bool, indent string) ([]byte, error) {
	if !keepUnknown || len(unknown) == 0 {
		return serialized, nil
	}
	var current, source map[string]json.RawMessage
	if err := json.Unmarshal(serialized, &current); err != nil {
		return nil, fmt.Errorf("reading serialized group: %w", err)
	}
	if err := json.Unmarshal(original, &source); err != nil {
		return nil, fmt.Errorf("reading original document: %w", err)
	}
	extra := make(map[string]json.RawMessage, len(unknown))
	for _, key := range unknown {
		extra[key] = source[key]
	}
	maps.Copy(current, extra)

	out, err := json.MarshalIndent(current, "", indent)
	if err != nil {
		return nil, fmt.Errorf("encoding migrated document: %w", err)
	}
	return out, nil
}
