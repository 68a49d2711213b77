// Package config resolves CLI settings from defaults, an optional config
// file, JSQL_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/vegasq/jsql/output"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "JSQL"

// Keys shared between flags, environment and config files.
const (
	KeyFormat    = "format"
	KeyLimit     = "limit"
	KeyLogLevel  = "log_level"
	KeyLogFormat = "log_format"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds the resolved CLI settings.
type Config struct {
	Format    string `mapstructure:"format"`
	Limit     int    `mapstructure:"limit"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyFormat, "jsonl")
	v.SetDefault(KeyLimit, 0)
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFormat, "text")
}

// Load resolves configuration into a Config.
//
// Precedence, lowest first: defaults, config file, environment, flags
// already bound to v. When path is empty a ".jsql" file is looked up in the
// working directory and then the home directory; a missing file is not an
// error.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName(".jsql")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
			v.AddConfigPath(filepath.Join(home, ".config", "jsql"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that every setting holds an accepted value.
func (c *Config) Validate() error {
	if _, ok := output.Canonical(c.Format); !ok {
		return fmt.Errorf("%w: format %q (want one of %s)", ErrInvalid, c.Format, strings.Join(output.Names, ", "))
	}
	if c.Limit < 0 {
		return fmt.Errorf("%w: limit must be non-negative, got %d", ErrInvalid, c.Limit)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log level %q", ErrInvalid, c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalid, c.LogFormat)
	}
	return nil
}
