package cli

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-statereg/schema/openapi"
)

func newSchemaCommand(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of a group document",
		Long: `Print the JSON schema of the selected group's document, derived from the
default value of every registered state. With --all, print an OpenAPI
document carrying the schemas of every group.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m := a.manager()
			var (
				doc map[string]any
				err error
			)
			if all {
				doc, err = m.SchemaDocument(openapi.WithInfo(openapi.Info{
					Title:       "statectl",
					Version:     version,
					Description: "Editor application and project state documents.",
				}))
			} else {
				doc, err = m.Schema(a.group())
			}
			if err != nil {
				return err
			}
			return writeValue(cmd.OutOrStdout(), a.cfg.Format, a.cfg.Indent, doc)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "print an OpenAPI document covering every group")
	return cmd
}
