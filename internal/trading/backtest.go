package trading

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"sensex-strangle/internal/errors"
	"sensex-strangle/internal/logging"
	"sensex-strangle/internal/models"
	"sensex-strangle/internal/performance"
	"sensex-strangle/pkg/utils"
)

// BacktestConfig is everything one run needs.
type BacktestConfig struct {
	StartDate    time.Time
	EndDate      time.Time
	SkipWeekends bool
	Workers      int
	Params       StrategyParams
}

// BacktestResult holds every day of a run, in date order.
type BacktestResult struct {
	RunID    string
	Config   BacktestConfig
	Days     []*DayResult
	Summary  Summary
	Started  time.Time
	Duration time.Duration
}

// Events returns the concatenated order log of all simulated days.
func (r *BacktestResult) Events() []models.TradeEvent {
	var events []models.TradeEvent
	for _, d := range r.Days {
		if d.Book != nil {
			events = append(events, d.Book.Events...)
		}
	}
	return events
}

// Summary aggregates a run.
type Summary struct {
	DaysRequested int
	DaysSimulated int
	DaysSkipped   int
	Holds         int
	StopLosses    int
	Reentries     int
	ReentryGaps   int
	Events        int
	EntryPremium  decimal.Decimal // sum of both legs' entry prices over simulated days
	Skips         []SkippedDay
}

// SkippedDay records why a day produced nothing.
type SkippedDay struct {
	Key    string `json:"day"`
	Reason string `json:"reason"`
}

// BacktestEngine runs the day simulator over a date range.
type BacktestEngine struct {
	loader DayLoader
	logger zerolog.Logger
}

// NewBacktestEngine creates a new backtest engine.
func NewBacktestEngine(loader DayLoader, logger zerolog.Logger) *BacktestEngine {
	return &BacktestEngine{
		loader: loader,
		logger: logger,
	}
}

// Run simulates every day in the configured range. Day-level data problems
// never fail the run; only an invalid config or a cancelled context do.
func (be *BacktestEngine) Run(ctx context.Context, config BacktestConfig) (*BacktestResult, error) {
	if err := be.validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	result := &BacktestResult{
		RunID:   uuid.NewString(),
		Config:  config,
		Started: time.Now(),
	}
	logger := logging.WithRun(be.logger, result.RunID)
	sim := NewSimulator(be.loader, config.Params, logger)

	days := utils.CalendarDays(config.StartDate, config.EndDate, config.SkipWeekends)
	logger.Info().
		Str("start", utils.DateKey(config.StartDate)).
		Str("end", utils.DateKey(config.EndDate)).
		Int("days", len(days)).
		Int("workers", config.Workers).
		Msg("Backtest started")

	var err error
	if config.Workers > 1 {
		result.Days, err = be.runParallel(ctx, sim, days, config.Workers)
	} else {
		result.Days, err = be.runSequential(ctx, sim, days)
	}
	if err != nil {
		return nil, err
	}

	result.Summary = Summarize(result.Days)
	result.Duration = time.Since(result.Started)

	s := result.Summary
	logging.LogRunSummary(logger, s.DaysRequested, s.DaysSimulated, s.DaysSkipped, s.StopLosses, s.Reentries, result.Duration)

	return result, nil
}

func (be *BacktestEngine) runSequential(ctx context.Context, sim *Simulator, days []time.Time) ([]*DayResult, error) {
	results := make([]*DayResult, 0, len(days))
	for _, day := range days {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results = append(results, sim.RunDay(ctx, day))
	}
	return results, nil
}

// runParallel fans days out to a worker pool. Each slot of the result slice
// is written by exactly one task, so date order is preserved.
func (be *BacktestEngine) runParallel(ctx context.Context, sim *Simulator, days []time.Time, workers int) ([]*DayResult, error) {
	results := make([]*DayResult, len(days))

	pool := performance.NewWorkerPool(workers)
	pool.Start()

	var submitErr error
	for i, day := range days {
		if err := pool.Submit(ctx, func() { results[i] = sim.RunDay(ctx, day) }); err != nil {
			submitErr = err
			break
		}
	}
	pool.Stop()

	st := pool.Stats()
	be.logger.Debug().
		Int("workers", st.Workers).
		Uint64("days_run", st.TasksDone).
		Msg("Worker pool drained")

	if submitErr != nil {
		return nil, submitErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// validateConfig validates the backtest configuration.
func (be *BacktestEngine) validateConfig(config BacktestConfig) error {
	if config.StartDate.IsZero() {
		return errors.NewValidationError("start_date", "", "start date is required")
	}
	if config.EndDate.IsZero() {
		return errors.NewValidationError("end_date", "", "end date is required")
	}
	if config.EndDate.Before(config.StartDate) {
		return errors.NewValidationError("end_date", utils.DateKey(config.EndDate), "end date must not be before start date")
	}
	if config.Workers < 0 {
		return errors.NewValidationError("workers", config.Workers, "must not be negative")
	}
	return config.Params.Validate()
}

// Summarize computes run counts from day results.
func Summarize(days []*DayResult) Summary {
	s := Summary{
		DaysRequested: len(days),
		EntryPremium:  decimal.Zero,
	}

	for _, d := range days {
		if d.Skipped() {
			s.DaysSkipped++
			reason := "unknown"
			if d.SkipReason != nil {
				reason = d.SkipReason.Error()
			}
			s.Skips = append(s.Skips, SkippedDay{Key: d.Key, Reason: reason})
			continue
		}

		s.DaysSimulated++
		s.Events += len(d.Book.Events)
		s.EntryPremium = s.EntryPremium.
			Add(decimal.NewFromFloat(d.Strangle.Call.EntryPrice)).
			Add(decimal.NewFromFloat(d.Strangle.Put.EntryPrice))

		switch {
		case d.StopLoss == nil:
			s.Holds++
		case d.Reentry != nil:
			s.StopLosses++
			s.Reentries++
		default:
			s.StopLosses++
			s.ReentryGaps++
		}
	}

	return s
}
