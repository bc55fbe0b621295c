// Package config provides configuration management for the backtester.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"sensex-strangle/internal/errors"
	"sensex-strangle/internal/logging"
	"sensex-strangle/internal/marketdata"
	"sensex-strangle/internal/models"
	"sensex-strangle/internal/trading"
	"sensex-strangle/pkg/utils"
)

// EnvPrefix prefixes every environment override, e.g. STRANGLE_BACKTEST_WORKERS.
const EnvPrefix = "STRANGLE"

// Config holds all application configuration.
type Config struct {
	Data     DataConfig     `mapstructure:"data"`
	Backtest BacktestConfig `mapstructure:"backtest"`
	Strategy StrategyConfig `mapstructure:"strategy"`
	Store    StoreConfig    `mapstructure:"store"`
	Log      LogConfig      `mapstructure:"log"`

	// Path is the config file that was read, empty when defaults were used.
	Path string `mapstructure:"-"`
}

// DataConfig locates input and output files.
type DataConfig struct {
	SpotDir        string `mapstructure:"spot_dir"`
	OptionsDir     string `mapstructure:"options_dir"`
	SpotPattern    string `mapstructure:"spot_pattern"`    // {date} is replaced by DDMMYYYY
	OptionsPattern string `mapstructure:"options_pattern"` // {date} is replaced by DDMMYYYY
	Output         string `mapstructure:"output"`
}

// BacktestConfig holds the date range and run options.
type BacktestConfig struct {
	StartDate    string `mapstructure:"start_date"` // DDMMYYYY or YYYY-MM-DD
	EndDate      string `mapstructure:"end_date"`
	Workers      int    `mapstructure:"workers"`
	SkipWeekends bool   `mapstructure:"skip_weekends"`
}

// StrategyConfig holds the strangle rules.
type StrategyConfig struct {
	EntryTime           string  `mapstructure:"entry_time"`
	StrikeStep          int     `mapstructure:"strike_step"`
	StrikeOffset        int     `mapstructure:"strike_offset"`
	StopLossMultiplier  float64 `mapstructure:"stop_loss_multiplier"`
	ReentrySLFactor     float64 `mapstructure:"reentry_sl_factor"`
	TargetPremiumFactor float64 `mapstructure:"target_premium_factor"`
}

// StoreConfig holds run persistence settings.
type StoreConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/sensex-strangle"
	}
	return filepath.Join(home, ".config", "sensex-strangle")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. A missing
// config.toml is replaced by a commented template and defaults are used.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	if err := loadDotEnv(configDir); err != nil {
		return nil, err
	}

	v := newViper(configDir)

	cfg := &Config{}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
		if err := createTemplateConfig(configDir, "config"); err != nil {
			return nil, err
		}
	} else {
		cfg.Path = v.ConfigFileUsed()
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.expandPaths(configDir)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration rooted at configDir.
func Default(configDir string) *Config {
	cfg := &Config{}
	// Defaults always decode.
	_ = newViper(configDir).Unmarshal(cfg)
	cfg.expandPaths(configDir)
	return cfg
}

func newViper(configDir string) *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	p := trading.DefaultStrategyParams()

	v.SetDefault("data.spot_dir", "data/spot")
	v.SetDefault("data.options_dir", "data/options")
	v.SetDefault("data.spot_pattern", "SENSEX_"+marketdata.DatePlaceholder+".csv")
	v.SetDefault("data.options_pattern", "SENSEX_OPTIONS_"+marketdata.DatePlaceholder+".csv")
	v.SetDefault("data.output", "strangle_orders.csv")

	v.SetDefault("backtest.start_date", "")
	v.SetDefault("backtest.end_date", "")
	v.SetDefault("backtest.workers", 1)
	v.SetDefault("backtest.skip_weekends", false)

	v.SetDefault("strategy.entry_time", p.EntryTime.String())
	v.SetDefault("strategy.strike_step", p.StrikeStep)
	v.SetDefault("strategy.strike_offset", p.StrikeOffset)
	v.SetDefault("strategy.stop_loss_multiplier", p.StopLossMultiplier)
	v.SetDefault("strategy.reentry_sl_factor", p.ReentrySLFactor)
	v.SetDefault("strategy.target_premium_factor", p.TargetPremiumFactor)

	v.SetDefault("store.enabled", false)
	v.SetDefault("store.path", "runs.db")

	lc := logging.DefaultLogConfig()
	v.SetDefault("log.level", lc.Level)
	v.SetDefault("log.file", lc.File)
	v.SetDefault("log.file_path", "logs/backtest.log")
	v.SetDefault("log.max_size_mb", lc.MaxSize)
	v.SetDefault("log.max_backups", lc.MaxBackups)
	v.SetDefault("log.max_age_days", lc.MaxAge)
}

// loadDotEnv loads .env from the working directory and the config directory.
// Variables already set in the environment win.
func loadDotEnv(configDir string) error {
	for _, path := range []string{".env", filepath.Join(configDir, ".env")} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s file: %w", path, err)
		}
	}
	return nil
}

// expandPaths makes relative store and log paths live under the config dir.
func (c *Config) expandPaths(configDir string) {
	if c.Store.Path != "" && !filepath.IsAbs(c.Store.Path) {
		c.Store.Path = filepath.Join(configDir, c.Store.Path)
	}
	if c.Log.FilePath != "" && !filepath.IsAbs(c.Log.FilePath) {
		c.Log.FilePath = filepath.Join(configDir, c.Log.FilePath)
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Data.SpotPattern == "" || !strings.Contains(c.Data.SpotPattern, marketdata.DatePlaceholder) {
		return errors.NewValidationError("data.spot_pattern", c.Data.SpotPattern, "must contain "+marketdata.DatePlaceholder)
	}
	if c.Data.OptionsPattern == "" || !strings.Contains(c.Data.OptionsPattern, marketdata.DatePlaceholder) {
		return errors.NewValidationError("data.options_pattern", c.Data.OptionsPattern, "must contain "+marketdata.DatePlaceholder)
	}

	if c.Backtest.Workers < 0 {
		return errors.NewValidationError("backtest.workers", c.Backtest.Workers, "must not be negative")
	}
	dates := []struct{ field, value string }{
		{"backtest.start_date", c.Backtest.StartDate},
		{"backtest.end_date", c.Backtest.EndDate},
	}
	for _, d := range dates {
		if d.value == "" {
			continue
		}
		if _, err := utils.ParseDate(d.value); err != nil {
			return errors.NewValidationError(d.field, d.value, "must be DDMMYYYY or YYYY-MM-DD")
		}
	}

	params, err := c.StrategyParams()
	if err != nil {
		return err
	}
	if err := params.Validate(); err != nil {
		return err
	}

	if c.Store.Enabled && c.Store.Path == "" {
		return errors.NewValidationError("store.path", "", "required when the store is enabled")
	}

	return nil
}

// StrategyParams converts the [strategy] section.
func (c *Config) StrategyParams() (trading.StrategyParams, error) {
	entry, err := models.ParseClock(c.Strategy.EntryTime)
	if err != nil {
		return trading.StrategyParams{}, errors.NewValidationError("strategy.entry_time", c.Strategy.EntryTime, "must be HH:MM:SS")
	}
	return trading.StrategyParams{
		EntryTime:           entry,
		StrikeStep:          c.Strategy.StrikeStep,
		StrikeOffset:        c.Strategy.StrikeOffset,
		StopLossMultiplier:  c.Strategy.StopLossMultiplier,
		ReentrySLFactor:     c.Strategy.ReentrySLFactor,
		TargetPremiumFactor: c.Strategy.TargetPremiumFactor,
	}, nil
}

// LoaderConfig converts the [data] section.
func (c *Config) LoaderConfig() marketdata.LoaderConfig {
	return marketdata.LoaderConfig{
		SpotDir:        c.Data.SpotDir,
		OptionsDir:     c.Data.OptionsDir,
		SpotPattern:    c.Data.SpotPattern,
		OptionsPattern: c.Data.OptionsPattern,
	}
}

// LogConfig converts the [log] section for the logging package.
func (c *Config) LogConfig() logging.LogConfig {
	return logging.LogConfig{
		Level:      c.Log.Level,
		Console:    true,
		File:       c.Log.File,
		FilePath:   c.Log.FilePath,
		MaxSize:    c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		MaxAge:     c.Log.MaxAgeDays,
	}
}

// ToBacktestConfig builds the driver config. Empty start or end dates
// fall back to the [backtest] section.
func (c *Config) ToBacktestConfig(start, end string) (trading.BacktestConfig, error) {
	if start == "" {
		start = c.Backtest.StartDate
	}
	if end == "" {
		end = c.Backtest.EndDate
	}
	if start == "" || end == "" {
		return trading.BacktestConfig{}, errors.NewValidationError("backtest", start+".."+end, "start and end dates are required")
	}

	startDate, err := utils.ParseDate(start)
	if err != nil {
		return trading.BacktestConfig{}, errors.NewValidationError("start_date", start, "must be DDMMYYYY or YYYY-MM-DD")
	}
	endDate, err := utils.ParseDate(end)
	if err != nil {
		return trading.BacktestConfig{}, errors.NewValidationError("end_date", end, "must be DDMMYYYY or YYYY-MM-DD")
	}

	params, err := c.StrategyParams()
	if err != nil {
		return trading.BacktestConfig{}, err
	}

	return trading.BacktestConfig{
		StartDate:    startDate,
		EndDate:      endDate,
		SkipWeekends: c.Backtest.SkipWeekends,
		Workers:      c.Backtest.Workers,
		Params:       params,
	}, nil
}
