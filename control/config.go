// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Executor settings with defaults, file loading and AFFINE_* environment overrides.

package control

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/momentics/hioload-affine/api"
)

// EnvPrefix is prepended to every environment override, e.g. AFFINE_CPU.
const EnvPrefix = "AFFINE"

// Settings holds the per-executor parameters that are fixed for its lifetime.
type Settings struct {
	Name            string        `mapstructure:"name"`             // Executor name for logs, metrics and probes
	CPU             int           `mapstructure:"cpu"`              // Logical CPU to pin the worker to, -1 to leave unpinned
	Exclusive       string        `mapstructure:"exclusive"`        // Domain key; at most one live executor per key
	LogLevel        string        `mapstructure:"log_level"`        // debug, info, warn, error
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"` // Bound on waiting for the worker at Close, 0 waits forever
	EnableMetrics   bool          `mapstructure:"enable_metrics"`
	EnableDebug     bool          `mapstructure:"enable_debug"`
}

// DefaultSettings returns default configuration values.
func DefaultSettings() Settings {
	return Settings{
		Name:            "affine",
		CPU:             -1,
		LogLevel:        "warn",
		ShutdownTimeout: 30 * time.Second,
		EnableMetrics:   true,
		EnableDebug:     true,
	}
}

// LoadSettings reads settings from path (TOML, YAML or JSON by extension) on top
// of the defaults; environment variables override both. An empty path loads
// defaults and environment only.
func LoadSettings(path string) (Settings, error) {
	v := viper.New()

	defaults := DefaultSettings()
	v.SetDefault("name", defaults.Name)
	v.SetDefault("cpu", defaults.CPU)
	v.SetDefault("exclusive", defaults.Exclusive)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("shutdown_timeout", defaults.ShutdownTimeout)
	v.SetDefault("enable_metrics", defaults.EnableMetrics)
	v.SetDefault("enable_debug", defaults.EnableDebug)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("read settings %s: %w", path, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate reports every invalid field at once.
func (s Settings) Validate() error {
	var errs []error
	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if s.CPU < -1 {
		errs = append(errs, fmt.Errorf("cpu must be -1 or a CPU index, got %d", s.CPU))
	}
	if s.ShutdownTimeout < 0 {
		errs = append(errs, fmt.Errorf("shutdown_timeout must not be negative, got %s", s.ShutdownTimeout))
	}
	if _, err := log.ParseLevel(s.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", api.ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Level returns the parsed log level, falling back to warn.
func (s Settings) Level() log.Level {
	lvl, err := log.ParseLevel(s.LogLevel)
	if err != nil {
		return log.WarnLevel
	}
	return lvl
}
