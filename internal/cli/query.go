package cli

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-statereg/query"
)

func newQueryCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <file> <expression>",
		Short: "Evaluate an expression against a state document",
		Long: `Load a state document and evaluate an expression against the group. Every
registered state is a top-level variable, for example
Preferences.framerateLimit > 60.`,
		Example: `  statectl query app.json 'Preferences.vsync == 1'
  statectl query --engine cel app.json 'WebsocketApi.port == "8080"'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := a.manager()
			if _, _, err := a.load(m, args[0]); err != nil {
				return err
			}
			result, err := m.Evaluate(a.group(), args[1], query.WithEngine(a.cfg.Engine))
			if err != nil {
				return err
			}
			return writeValue(cmd.OutOrStdout(), a.cfg.Format, a.cfg.Indent, result)
		},
	}
	cmd.Flags().StringP("engine", "e", Defaults().Engine, "expression engine: expr, cel or js")
	_ = a.v.BindPFlag("engine", cmd.Flags().Lookup("engine"))
	return cmd
}
