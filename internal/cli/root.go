// Package cli implements the statectl command line tool.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	statereg "github.com/goliatone/go-statereg"
	"github.com/goliatone/go-statereg/states"
)

var version = "dev"

// SetVersion sets the version string reported by --version.
func SetVersion(v string) {
	version = v
}

type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     Config
	log     *zap.Logger
}

// NewRootCommand builds the statectl command tree.
func NewRootCommand() *cobra.Command {
	a := &app{v: newViper(), log: zap.NewNop()}
	defaults := Defaults()

	root := &cobra.Command{
		Use:           "statectl",
		Short:         "Inspect and migrate editor state documents",
		Long:          `statectl reads the JSON documents the editor persists for its application and project state, validates them against the registered state types, and rewrites legacy shapes.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default: ./"+DefaultConfigFile+")")
	flags.StringP("group", "g", defaults.Group, "state group: app, project or an index")
	flags.StringP("format", "f", defaults.Format, "output format: json or yaml")
	flags.String("log-level", defaults.LogLevel, "log level: debug, info, warn or error")
	_ = a.v.BindPFlag("group", flags.Lookup("group"))
	_ = a.v.BindPFlag("format", flags.Lookup("format"))
	_ = a.v.BindPFlag("log_level", flags.Lookup("log-level"))

	root.AddCommand(
		newInspectCommand(a),
		newMigrateCommand(a),
		newSchemaCommand(a),
		newQueryCommand(a),
		newWatchCommand(a),
	)
	return root
}

// Execute runs statectl until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "statectl:", err)
		return err
	}
	return nil
}

func (a *app) init(logOut io.Writer) error {
	cfg, err := loadConfig(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	a.log = zap.New(zapcore.NewCore(encoder, zapcore.AddSync(logOut), level))
	return nil
}

func (a *app) group() statereg.Group {
	// Validated in init.
	g, _ := parseGroup(a.cfg.Group)
	return g
}

// manager returns a Manager with the whole catalog registered.
func (a *app) manager() *statereg.Manager {
	m := statereg.New(
		statereg.WithLogger(a.log),
		statereg.WithIndent(a.cfg.Indent),
	)
	states.RegisterAll(m)
	return m
}

// load applies the document at path to the configured group.
func (a *app) load(m *statereg.Manager, path string) ([]byte, statereg.LoadReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, statereg.LoadReport{}, fmt.Errorf("reading %s: %w", path, err)
	}
	report, err := m.DeserializeGroupReport(a.group(), data)
	if err != nil {
		return nil, statereg.LoadReport{}, fmt.Errorf("%s: %w", path, err)
	}
	return data, report, nil
}
