// Package config loads appgate configuration from file and environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config is the full appgate configuration.
type Config struct {
	Permissions PermissionsConfig `mapstructure:"permissions"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	StatePath   string            `mapstructure:"state_path"`
}

// PermissionsConfig controls permission polling.
type PermissionsConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// LoggingConfig controls the zerolog output.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Dir returns the appgate config directory, honoring XDG_CONFIG_HOME.
func Dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "appgate"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "appgate"), nil
}

func setDefaults(v *viper.Viper, dir string) {
	v.SetDefault("permissions.poll_interval", time.Second)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("state_path", filepath.Join(dir, "state.yaml"))
}

// Load reads configuration. An explicit path must exist; otherwise
// appgate.yaml is looked up in the config directory and the working
// directory, and a missing file means defaults. APPGATE_* environment
// variables override file values.
func Load(path string) (*Config, error) {
	v, _, err := newViper(path)
	if err != nil {
		return nil, err
	}
	return decode(v)
}

// Watch reloads the config file on every change and passes each valid
// result to fn. Invalid edits are logged and skipped. It does nothing when
// no config file exists.
func Watch(path string, log zerolog.Logger, fn func(*Config)) error {
	v, found, err := newViper(path)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		log.Debug().Str("op", e.Op.String()).Str("file", e.Name).Msg("config change detected")
		cfg, err := decode(v)
		if err != nil {
			log.Warn().Err(err).Msg("failed to reload config")
			return
		}
		fn(cfg)
	})
	v.WatchConfig()
	return nil
}

func newViper(path string) (*viper.Viper, bool, error) {
	dir, err := Dir()
	if err != nil {
		return nil, false, fmt.Errorf("failed to determine config directory: %w", err)
	}

	v := viper.New()
	setDefaults(v, dir)

	v.SetEnvPrefix("APPGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("logging.level", "APPGATE_LOG_LEVEL"); err != nil {
		return nil, false, fmt.Errorf("failed to bind APPGATE_LOG_LEVEL: %w", err)
	}
	if err := v.BindEnv("logging.format", "APPGATE_LOG_FORMAT"); err != nil {
		return nil, false, fmt.Errorf("failed to bind APPGATE_LOG_FORMAT: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, false, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		return v, true, nil
	}

	v.SetConfigName("appgate")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, false, fmt.Errorf("failed to read config: %w", err)
		}
		return v, false, nil
	}
	return v, true, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.Permissions.PollInterval < 10*time.Millisecond {
		errs = append(errs, fmt.Errorf("permissions.poll_interval must be at least 10ms, got %s", c.Permissions.PollInterval))
	}
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "disabled", "off":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q is not one of trace, debug, info, warn, error, disabled", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q must be console or json", c.Logging.Format))
	}
	if c.StatePath == "" {
		errs = append(errs, errors.New("state_path must not be empty"))
	}
	return errors.Join(errs...)
}
