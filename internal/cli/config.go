package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	statereg "github.com/goliatone/go-statereg"
)

// DefaultConfigFile is read from the working directory when --config is not
// given.
const DefaultConfigFile = "statectl.yaml"

// Config holds statectl settings. Values come from flags, STATECTL_*
// environment variables and the config file, in that order of precedence.
type Config struct {
	Group       string `mapstructure:"group"`
	Format      string `mapstructure:"format"`
	Engine      string `mapstructure:"engine"`
	Indent      string `mapstructure:"indent"`
	LogLevel    string `mapstructure:"log_level"`
	KeepUnknown bool   `mapstructure:"keep_unknown"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Group:       "app",
		Format:      "json",
		Engine:      "expr",
		Indent:      "  ",
		LogLevel:    "warn",
		KeepUnknown: true,
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	defaults := Defaults()
	v.SetDefault("group", defaults.Group)
	v.SetDefault("format", defaults.Format)
	v.SetDefault("engine", defaults.Engine)
	v.SetDefault("indent", defaults.Indent)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("keep_unknown", defaults.KeepUnknown)

	v.SetEnvPrefix("STATECTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

func loadConfig(v *viper.Viper, cfgFile string) (Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else if _, err := os.Stat(DefaultConfigFile); err == nil {
		v.SetConfigFile(DefaultConfigFile)
	}

	if cfgFile != "" || v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, validateConfig(cfg)
}

func validateConfig(cfg Config) error {
	if _, err := parseGroup(cfg.Group); err != nil {
		return err
	}
	switch cfg.Format {
	case "json", "yaml":
	default:
		return fmt.Errorf("unsupported format %q (want json or yaml)", cfg.Format)
	}
	return nil
}

func parseGroup(name string) (statereg.Group, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "app":
		return statereg.GroupApp, nil
	case "project":
		return statereg.GroupProject, nil
	}
	n, err := strconv.ParseUint(name, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("unknown group %q (want app, project or an index)", name)
	}
	return statereg.Group(n), nil
}
