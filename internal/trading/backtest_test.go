package trading

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensex-strangle/internal/errors"
	"sensex-strangle/internal/marketdata"
	"sensex-strangle/internal/models"
	"sensex-strangle/pkg/utils"
)

type fakeLoader map[string]*marketdata.DayData

func (f fakeLoader) Load(ctx context.Context, day time.Time) (*marketdata.DayData, error) {
	key := utils.DateKey(day)
	d, ok := f[key]
	if !ok {
		return nil, errors.Unavailable(key, "spot", "file not found")
	}
	return d, nil
}

func date(t *testing.T, key string) time.Time {
	t.Helper()
	d, err := utils.ParseDateKey(key)
	require.NoError(t, err)
	return d
}

// threeDayLoader has a stop day, a missing day and a hold day.
func threeDayLoader() fakeLoader {
	stop := scenarioDay()
	stop.key = "01012024"

	hold := newDay("03012024").
		spotAt("09:16:59", 71234).
		option("09:16:59", models.Call, 71300, 150).
		option("09:16:59", models.Put, 71100, 140).
		option("11:00:00", models.Call, 71300, 120)

	return fakeLoader{
		"01012024": stop.build(),
		"03012024": hold.build(),
	}
}

func TestBacktestRun(t *testing.T) {
	engine := NewBacktestEngine(threeDayLoader(), zerolog.Nop())

	result, err := engine.Run(context.Background(), BacktestConfig{
		StartDate: date(t, "01012024"),
		EndDate:   date(t, "03012024"),
		Params:    DefaultStrategyParams(),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.RunID)
	require.Len(t, result.Days, 3)

	assert.Equal(t, "01012024", result.Days[0].Key)
	assert.True(t, result.Days[1].Skipped())
	assert.True(t, errors.IsDataUnavailable(result.Days[1].SkipReason))

	s := result.Summary
	assert.Equal(t, 3, s.DaysRequested)
	assert.Equal(t, 2, s.DaysSimulated)
	assert.Equal(t, 1, s.DaysSkipped)
	assert.Equal(t, 1, s.Holds)
	assert.Equal(t, 1, s.StopLosses)
	assert.Equal(t, 1, s.Reentries)
	assert.Equal(t, 8, s.Events)
	assert.Equal(t, "490", s.EntryPremium.String())
	require.Len(t, s.Skips, 1)
	assert.Equal(t, "02012024", s.Skips[0].Key)

	events := result.Events()
	require.Len(t, events, 8)
	assert.Equal(t, "01012024", utils.DateKey(events[0].Date))
	assert.Equal(t, "03012024", utils.DateKey(events[7].Date))
	assert.Equal(t, models.ActionHold, events[7].Action)
}

func TestBacktestParallelMatchesSequential(t *testing.T) {
	loader := threeDayLoader()
	cfg := BacktestConfig{
		StartDate: date(t, "28122023"),
		EndDate:   date(t, "05012024"),
		Params:    DefaultStrategyParams(),
	}

	seq, err := NewBacktestEngine(loader, zerolog.Nop()).Run(context.Background(), cfg)
	require.NoError(t, err)

	cfg.Workers = 4
	par, err := NewBacktestEngine(loader, zerolog.Nop()).Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, seq.Events(), par.Events())
	assert.Equal(t, seq.Summary, par.Summary)
	assert.NotEqual(t, seq.RunID, par.RunID)
}

func TestBacktestSkipWeekends(t *testing.T) {
	engine := NewBacktestEngine(fakeLoader{}, zerolog.Nop())

	// Friday to Monday.
	result, err := engine.Run(context.Background(), BacktestConfig{
		StartDate:    date(t, "05012024"),
		EndDate:      date(t, "08012024"),
		SkipWeekends: true,
		Params:       DefaultStrategyParams(),
	})
	require.NoError(t, err)
	require.Len(t, result.Days, 2)
	assert.Equal(t, "05012024", result.Days[0].Key)
	assert.Equal(t, "08012024", result.Days[1].Key)
	assert.Empty(t, result.Events())
}

func TestBacktestInvalidConfig(t *testing.T) {
	engine := NewBacktestEngine(fakeLoader{}, zerolog.Nop())

	_, err := engine.Run(context.Background(), BacktestConfig{
		StartDate: date(t, "05012024"),
		EndDate:   date(t, "01012024"),
		Params:    DefaultStrategyParams(),
	})
	assert.True(t, errors.Is(err, errors.ErrConfigInvalid))

	_, err = engine.Run(context.Background(), BacktestConfig{Params: DefaultStrategyParams()})
	assert.Error(t, err)

	bad := DefaultStrategyParams()
	bad.StopLossMultiplier = 0.9
	_, err = engine.Run(context.Background(), BacktestConfig{
		StartDate: date(t, "01012024"),
		EndDate:   date(t, "01012024"),
		Params:    bad,
	})
	assert.True(t, errors.Is(err, errors.ErrConfigInvalid))
}

func TestBacktestCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewBacktestEngine(threeDayLoader(), zerolog.Nop()).Run(ctx, BacktestConfig{
		StartDate: date(t, "01012024"),
		EndDate:   date(t, "03012024"),
		Params:    DefaultStrategyParams(),
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSummarizeCountsReentryGaps(t *testing.T) {
	gap := &DayResult{
		Key:        "01012024",
		Book:       &models.OrderBook{Events: make([]models.TradeEvent, 4)},
		Strangle:   &models.Strangle{Call: models.Leg{EntryPrice: 100.5}, Put: models.Leg{EntryPrice: 99.25}},
		StopLoss:   &StopLossTrigger{},
		ReentryGap: errors.ErrDataUnavailable,
	}
	s := Summarize([]*DayResult{gap, {Key: "02012024"}})

	assert.Equal(t, 1, s.StopLosses)
	assert.Equal(t, 1, s.ReentryGaps)
	assert.Zero(t, s.Reentries)
	assert.Equal(t, "199.75", s.EntryPremium.String())
	require.Len(t, s.Skips, 1)
	assert.Equal(t, "unknown", s.Skips[0].Reason)
}
