package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# SENSEX Strangle Backtester Configuration
# Every key can be overridden with STRANGLE_<SECTION>_<KEY>, e.g. STRANGLE_BACKTEST_WORKERS=4.

[data]
# Directory holding one spot tick file per day
spot_dir = "data/spot"
# Directory holding one options tick file per day
options_dir = "data/options"
# File name patterns, {date} is replaced by the DDMMYYYY day key
spot_pattern = "SENSEX_{date}.csv"
options_pattern = "SENSEX_OPTIONS_{date}.csv"
# Order log written at the end of a backtest
output = "strangle_orders.csv"

[backtest]
# Inclusive date range, DDMMYYYY or YYYY-MM-DD (flags take precedence)
start_date = ""
end_date = ""
# Days simulated in parallel
workers = 1
# Skip Saturdays and Sundays before loading files
skip_weekends = false

[strategy]
# Time both legs are sold, HH:MM:SS
entry_time = "09:16:59"
# Spot is rounded to a multiple of strike_step
strike_step = 100
# Call strike = rounded + offset, put strike = rounded - offset
strike_offset = 100
# Stop fires when call + put >= multiplier x entry premium
stop_loss_multiplier = 1.10
# Re-entry stop as a fraction of the re-entry price
reentry_sl_factor = 0.85
# Share of the stopped leg's entry price added to the re-entry target
target_premium_factor = 0.10

[store]
# Persist every backtest run to SQLite
enabled = false
# Relative paths live under the config directory
path = "runs.db"

[log]
# Log level: debug, info, warn, error
level = "info"
# Also write a rotating log file
file = false
file_path = "logs/backtest.log"
max_size_mb = 50
max_backups = 5
max_age_days = 30
`

// createTemplateConfig writes the commented template if no config exists.
func createTemplateConfig(configDir, name string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, name+".toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}

// TemplatePath returns where the config file lives in configDir.
func TemplatePath(configDir string) string {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	return filepath.Join(configDir, "config.toml")
}
