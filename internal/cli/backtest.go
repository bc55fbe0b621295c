package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"sensex-strangle/internal/report"
	"sensex-strangle/internal/store"
	"sensex-strangle/internal/trading"
)

func newBacktestCmd(app *App) *cobra.Command {
	var (
		start, end   string
		spotDir      string
		optionsDir   string
		outputPath   string
		workers      int
		persist      bool
		skipWeekends bool
	)

	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Run the strangle over a date range",
		Long: `Run the strangle over every calendar day from --start to --end inclusive.

Days without spot or options files, or without an entry price, are skipped
and logged. The order log of all simulated days is written to --output.

Dates are DDMMYYYY or YYYY-MM-DD. Missing flags fall back to config.toml.`,
		Example: `  strangle backtest --start 01012024 --end 31012024
  strangle backtest --start 2024-01-01 --end 2024-03-31 --workers 4 --persist`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			cfg := app.Config

			if spotDir != "" {
				cfg.Data.SpotDir = spotDir
			}
			if optionsDir != "" {
				cfg.Data.OptionsDir = optionsDir
			}
			if outputPath != "" {
				cfg.Data.Output = outputPath
			}

			bc, err := cfg.ToBacktestConfig(start, end)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				bc.Workers = workers
			}
			if cmd.Flags().Changed("skip-weekends") {
				bc.SkipWeekends = skipWeekends
			}

			engine := trading.NewBacktestEngine(app.Loader(), app.Logger)
			result, err := engine.Run(cmd.Context(), bc)
			if err != nil {
				return err
			}

			if err := report.WriteOrderLogFile(cfg.Data.Output, result.Events()); err != nil {
				return err
			}
			app.Logger.Info().
				Str("run_id", result.RunID).
				Str("path", cfg.Data.Output).
				Int("events", result.Summary.Events).
				Msg("Order log written")

			if persist || cfg.Store.Enabled {
				if err := saveRun(cmd, app, result); err != nil {
					return err
				}
			}

			if output.IsJSON() {
				return output.JSON(newSummaryView(result, cfg.Data.Output))
			}
			printSummary(output, result, cfg.Data.Output)
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "first day, DDMMYYYY or YYYY-MM-DD")
	cmd.Flags().StringVar(&end, "end", "", "last day, inclusive")
	cmd.Flags().StringVar(&spotDir, "spot-dir", "", "spot tick directory (overrides config)")
	cmd.Flags().StringVar(&optionsDir, "options-dir", "", "options tick directory (overrides config)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "order log CSV path (overrides config)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 1, "days simulated in parallel")
	cmd.Flags().BoolVar(&persist, "persist", false, "save the run to the SQLite store")
	cmd.Flags().BoolVar(&skipWeekends, "skip-weekends", false, "skip Saturdays and Sundays")

	return cmd
}

func saveRun(cmd *cobra.Command, app *App, result *trading.BacktestResult) error {
	s, err := app.Store()
	if err != nil {
		return err
	}
	if err := s.SaveRun(cmd.Context(), store.RecordFromResult(result), result.Events()); err != nil {
		return fmt.Errorf("saving run %s: %w", result.RunID, err)
	}
	app.Logger.Info().Str("run_id", result.RunID).Msg("Run saved")
	return nil
}

// summaryView is the JSON shape of a finished run.
type summaryView struct {
	RunID         string               `json:"run_id"`
	Start         string               `json:"start"`
	End           string               `json:"end"`
	Output        string               `json:"output"`
	Duration      string               `json:"duration"`
	DaysRequested int                  `json:"days_requested"`
	DaysSimulated int                  `json:"days_simulated"`
	DaysSkipped   int                  `json:"days_skipped"`
	Holds         int                  `json:"holds"`
	StopLosses    int                  `json:"stop_losses"`
	Reentries     int                  `json:"reentries"`
	ReentryGaps   int                  `json:"reentry_gaps"`
	Events        int                  `json:"events"`
	EntryPremium  string               `json:"entry_premium"`
	Skipped       []trading.SkippedDay `json:"skipped,omitempty"`
}

func newSummaryView(r *trading.BacktestResult, outputPath string) summaryView {
	rec := store.RecordFromResult(r)
	return summaryView{
		RunID:         rec.ID,
		Start:         rec.StartKey,
		End:           rec.EndKey,
		Output:        outputPath,
		Duration:      r.Duration.String(),
		DaysRequested: rec.DaysRequested,
		DaysSimulated: rec.DaysSimulated,
		DaysSkipped:   rec.DaysSkipped,
		Holds:         rec.Holds,
		StopLosses:    rec.StopLosses,
		Reentries:     rec.Reentries,
		ReentryGaps:   rec.ReentryGaps,
		Events:        rec.Events,
		EntryPremium:  rec.EntryPremium,
		Skipped:       r.Summary.Skips,
	}
}

func printSummary(output *Output, r *trading.BacktestResult, outputPath string) {
	s := r.Summary
	rec := store.RecordFromResult(r)

	output.KeyValues(fmt.Sprintf("Backtest %s → %s", rec.StartKey, rec.EndKey), [][2]string{
		{"Run", rec.ID},
		{"Days requested", fmt.Sprintf("%d", s.DaysRequested)},
		{"Days simulated", fmt.Sprintf("%d", s.DaysSimulated)},
		{"Days skipped", fmt.Sprintf("%d", s.DaysSkipped)},
		{"Held all day", fmt.Sprintf("%d", s.Holds)},
		{"Stop-loss hits", fmt.Sprintf("%d (%s)", s.StopLosses, FormatRate(s.StopLosses, s.DaysSimulated))},
		{"Re-entries", fmt.Sprintf("%d", s.Reentries)},
		{"Re-entry gaps", fmt.Sprintf("%d", s.ReentryGaps)},
		{"Entry premium", FormatPoints(s.EntryPremium) + " pts"},
		{"Duration", FormatDuration(r.Duration)},
	})
	output.Println()

	if len(s.Skips) > 0 {
		output.Warning("Skipped days")
		table := NewTable(output, "Day", "Reason")
		for _, sk := range s.Skips {
			table.AddRow(sk.Key, TruncateString(sk.Reason, 80))
		}
		table.Render()
		output.Println()
	}

	output.Success("✓ %d events written to %s", s.Events, outputPath)
}
