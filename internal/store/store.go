// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"sensex-strangle/internal/models"
	"sensex-strangle/internal/trading"
	"sensex-strangle/pkg/utils"
)

// RunStore defines the interface for backtest run persistence.
type RunStore interface {
	// Runs
	SaveRun(ctx context.Context, run *RunRecord, events []models.TradeEvent) error
	GetRun(ctx context.Context, id string) (*RunRecord, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]RunRecord, error)
	DeleteRun(ctx context.Context, id string) error

	// Events
	GetRunEvents(ctx context.Context, id string) ([]models.TradeEvent, error)

	// Lifecycle
	Close() error
}

// RunRecord is the stored header of one backtest run.
type RunRecord struct {
	ID            string
	StartKey      string
	EndKey        string
	CreatedAt     time.Time
	Duration      time.Duration
	Params        trading.StrategyParams
	DaysRequested int
	DaysSimulated int
	DaysSkipped   int
	Holds         int
	StopLosses    int
	Reentries     int
	ReentryGaps   int
	Events        int
	EntryPremium  string
}

// RunFilter represents filters for listing runs.
type RunFilter struct {
	Since time.Time
	Limit int
}

// RecordFromResult builds the stored header for a finished run.
func RecordFromResult(r *trading.BacktestResult) *RunRecord {
	s := r.Summary
	return &RunRecord{
		ID:            r.RunID,
		StartKey:      utils.DateKey(r.Config.StartDate),
		EndKey:        utils.DateKey(r.Config.EndDate),
		CreatedAt:     r.Started,
		Duration:      r.Duration,
		Params:        r.Config.Params,
		DaysRequested: s.DaysRequested,
		DaysSimulated: s.DaysSimulated,
		DaysSkipped:   s.DaysSkipped,
		Holds:         s.Holds,
		StopLosses:    s.StopLosses,
		Reentries:     s.Reentries,
		ReentryGaps:   s.ReentryGaps,
		Events:        s.Events,
		EntryPremium:  s.EntryPremium.StringFixed(2),
	}
}
