package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/causeboard/internal/aggregate"
	"github.com/KaramelBytes/causeboard/internal/logging"
	"github.com/KaramelBytes/causeboard/internal/mortality"
)

// Global configuration structure.
type Global struct {
	DataPath      string `mapstructure:"data_path" yaml:"data_path"`
	DefaultState  string `mapstructure:"default_state" yaml:"default_state"`
	ExcludeCause  string `mapstructure:"exclude_cause" yaml:"exclude_cause"`
	ExcludeTotals bool   `mapstructure:"exclude_totals" yaml:"exclude_totals"`
	DefaultSort   string `mapstructure:"default_sort" yaml:"default_sort"`

	// Cleaning
	FillStrategy string `mapstructure:"fill_strategy" yaml:"fill_strategy"`
	FillScope    string `mapstructure:"fill_scope" yaml:"fill_scope"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// Charts, in pixels at 96 dpi
	ChartWidth  int `mapstructure:"chart_width" yaml:"chart_width"`
	ChartHeight int `mapstructure:"chart_height" yaml:"chart_height"`

	// Dashboard server
	ListenAddr         string `mapstructure:"listen_addr" yaml:"listen_addr"`
	ReadTimeoutSec     int    `mapstructure:"read_timeout_sec" yaml:"read_timeout_sec"`
	WriteTimeoutSec    int    `mapstructure:"write_timeout_sec" yaml:"write_timeout_sec"`
	ShutdownTimeoutSec int    `mapstructure:"shutdown_timeout_sec" yaml:"shutdown_timeout_sec"`
}

// Dir returns the directory holding config.yaml (~/.causeboard).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".causeboard"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.causeboard/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Command flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("CAUSEBOARD")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data_path", filepath.Join("data", "leadingCauseDeathUSA.csv"))
	v.SetDefault("default_state", mortality.NationalState)
	v.SetDefault("exclude_cause", "all")
	v.SetDefault("exclude_totals", false)
	v.SetDefault("default_sort", "")
	v.SetDefault("fill_strategy", "forward")
	v.SetDefault("fill_scope", string(mortality.ScopeState))
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("chart_width", 1152)
	v.SetDefault("chart_height", 576)
	// Server defaults
	v.SetDefault("listen_addr", ":8050")
	v.SetDefault("read_timeout_sec", 15)
	v.SetDefault("write_timeout_sec", 30)
	v.SetDefault("shutdown_timeout_sec", 10)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Fill builds the configured missing-rate strategy.
func (c *Global) Fill() (mortality.FillStrategy, error) {
	return mortality.ParseFillStrategy(c.FillStrategy, c.FillScope)
}

// LoadOptions returns dataset options derived from the configuration.
func (c *Global) LoadOptions() (mortality.Options, error) {
	opt := mortality.DefaultOptions()
	fill, err := c.Fill()
	if err != nil {
		return opt, err
	}
	opt.Fill = fill
	return opt, nil
}

// Logging returns the logger configuration.
func (c *Global) Logging() logging.Config {
	return logging.Config{Level: c.LogLevel, Format: c.LogFormat}
}

// Validate checks all configuration fields for correctness.
// It returns an error if any field is invalid, or nil if all fields are valid.
func (c *Global) Validate() error {
	var errs []error

	if strings.TrimSpace(c.DataPath) == "" {
		errs = append(errs, errors.New("data_path is required"))
	}
	if _, err := c.Fill(); err != nil {
		errs = append(errs, err)
	}
	if _, err := aggregate.ParseSortOrder(c.DefaultSort); err != nil {
		errs = append(errs, err)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log_format: %s (use text|json)", c.LogFormat))
	}
	if c.ChartWidth < 100 || c.ChartWidth > 10000 {
		errs = append(errs, fmt.Errorf("invalid chart_width %d (must be 100..10000)", c.ChartWidth))
	}
	if c.ChartHeight < 100 || c.ChartHeight > 10000 {
		errs = append(errs, fmt.Errorf("invalid chart_height %d (must be 100..10000)", c.ChartHeight))
	}
	if strings.TrimSpace(c.ListenAddr) == "" {
		errs = append(errs, errors.New("listen_addr is required"))
	}
	if c.ReadTimeoutSec <= 0 || c.ReadTimeoutSec > 300 {
		errs = append(errs, fmt.Errorf("invalid read_timeout_sec %d (must be 1..300)", c.ReadTimeoutSec))
	}
	if c.WriteTimeoutSec <= 0 || c.WriteTimeoutSec > 300 {
		errs = append(errs, fmt.Errorf("invalid write_timeout_sec %d (must be 1..300)", c.WriteTimeoutSec))
	}
	if c.ShutdownTimeoutSec <= 0 || c.ShutdownTimeoutSec > 300 {
		errs = append(errs, fmt.Errorf("invalid shutdown_timeout_sec %d (must be 1..300)", c.ShutdownTimeoutSec))
	}
	return errors.Join(errs...)
}
