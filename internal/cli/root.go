package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"sensex-strangle/internal/config"
	"sensex-strangle/internal/logging"
	"sensex-strangle/internal/marketdata"
	"sensex-strangle/internal/store"
)

// Version information
const (
	Version   = "0.3.0"
	BuildDate = "2024-06-14"
)

// skipConfig marks commands that must run without loading config.toml.
const skipConfig = "skip-config"

// App holds the application dependencies.
type App struct {
	ConfigDir string
	Config    *config.Config
	Logger    zerolog.Logger

	store store.RunStore
}

// Loader returns the tick file loader for the configured data directories.
func (a *App) Loader() *marketdata.Loader {
	return marketdata.NewLoader(a.Config.LoaderConfig())
}

// Store opens the run store on first use.
func (a *App) Store() (store.RunStore, error) {
	if a.store != nil {
		return a.store, nil
	}
	s, err := store.NewSQLiteStore(a.Config.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("opening run store %s: %w", a.Config.Store.Path, err)
	}
	a.Logger.Debug().Str("path", a.Config.Store.Path).Msg("SQLite store initialized")
	a.store = s
	return s, nil
}

// Close releases the store if it was opened.
func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

// NewRootCmd creates the root command for the CLI. Configuration is loaded
// once flags are parsed, so --config can point at another directory.
func NewRootCmd(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "strangle",
		Short: "SENSEX intraday short-strangle backtester",
		Long: `strangle replays SENSEX weekly option ticks day by day.

Each day it sells an out-of-the-money call and put at the entry time, covers
the losing leg when the combined premium rises past the stop-loss multiple,
moves the other leg's stop to cost and re-enters the covered leg once.

Use 'strangle backtest --start 01012024 --end 31012024' to run a range.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("config")
			if dir == "" {
				dir = config.DefaultConfigDir()
			}
			app.ConfigDir = dir

			if cmd.Annotations[skipConfig] == "" {
				cfg, err := config.Load(dir)
				if err != nil {
					return err
				}
				app.Config = cfg
				app.Logger = logging.NewLoggerWithConfig(cfg.LogConfig())
			}

			// Handle debug flag
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/sensex-strangle)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newBacktestCmd(app))
	rootCmd.AddCommand(newDayCmd(app))
	rootCmd.AddCommand(newRunsCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Annotations: map[string]string{skipConfig: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("SENSEX Strangle Backtester v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and check the backtester configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:         "path",
		Short:       "Show configuration file path",
		Annotations: map[string]string{skipConfig: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			path := config.TemplatePath(app.ConfigDir)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": path})
			} else {
				output.Println(path)
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:         "validate",
		Short:       "Validate the configuration file",
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if _, err := config.Load(app.ConfigDir); err != nil {
				if output.IsJSON() {
					output.JSON(map[string]interface{}{"valid": false, "error": err.Error()})
				} else {
					output.Error("Configuration validation failed: %v", err)
				}
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	source := cfg.Path
	if source == "" {
		source = "built-in defaults"
	}
	output.Dim("Source: %s", source)
	output.Println()

	output.KeyValues("Data", [][2]string{
		{"Spot dir", cfg.Data.SpotDir},
		{"Options dir", cfg.Data.OptionsDir},
		{"Spot pattern", cfg.Data.SpotPattern},
		{"Options pattern", cfg.Data.OptionsPattern},
		{"Output", cfg.Data.Output},
	})
	output.Println()

	output.KeyValues("Backtest", [][2]string{
		{"Start", orDash(cfg.Backtest.StartDate)},
		{"End", orDash(cfg.Backtest.EndDate)},
		{"Workers", fmt.Sprintf("%d", cfg.Backtest.Workers)},
		{"Skip weekends", fmt.Sprintf("%v", cfg.Backtest.SkipWeekends)},
	})
	output.Println()

	output.KeyValues("Strategy", [][2]string{
		{"Entry time", cfg.Strategy.EntryTime},
		{"Strike step", fmt.Sprintf("%d", cfg.Strategy.StrikeStep)},
		{"Strike offset", fmt.Sprintf("%d", cfg.Strategy.StrikeOffset)},
		{"Stop-loss multiple", fmt.Sprintf("%.2f", cfg.Strategy.StopLossMultiplier)},
		{"Re-entry SL factor", fmt.Sprintf("%.2f", cfg.Strategy.ReentrySLFactor)},
		{"Target factor", fmt.Sprintf("%.2f", cfg.Strategy.TargetPremiumFactor)},
	})
	output.Println()

	output.KeyValues("Store", [][2]string{
		{"Enabled", fmt.Sprintf("%v", cfg.Store.Enabled)},
		{"Path", cfg.Store.Path},
	})
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
