package trading

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"sensex-strangle/internal/logging"
	"sensex-strangle/internal/marketdata"
	"sensex-strangle/internal/models"
	"sensex-strangle/pkg/utils"
)

// DayLoader supplies one day's tick data.
type DayLoader interface {
	Load(ctx context.Context, day time.Time) (*marketdata.DayData, error)
}

// DayResult is the outcome of simulating one day.
type DayResult struct {
	Date       time.Time
	Key        string
	Book       *models.OrderBook // nil when skipped
	SkipReason error
	Strangle   *models.Strangle
	StopLoss   *StopLossTrigger
	Reentry    *ReentryPlan
	ReentryGap error // set when the stop fired but the re-entry could not be priced
}

// Skipped reports whether the day produced no events.
func (r *DayResult) Skipped() bool {
	return r.Book == nil
}

// Simulator runs the strangle for single days.
type Simulator struct {
	loader DayLoader
	params StrategyParams
	logger zerolog.Logger
}

// NewSimulator creates a simulator over the given loader.
func NewSimulator(loader DayLoader, params StrategyParams, logger zerolog.Logger) *Simulator {
	return &Simulator{loader: loader, params: params, logger: logger}
}

// RunDay loads and simulates one day. Data problems skip the day; they are
// logged and recorded on the result, never returned.
func (s *Simulator) RunDay(ctx context.Context, day time.Time) *DayResult {
	key := utils.DateKey(day)
	logger := logging.WithDay(s.logger, key)

	data, err := s.loader.Load(ctx, day)
	if err != nil {
		logging.LogSkip(logger, key, err)
		return &DayResult{Date: day, Key: key, SkipReason: err}
	}

	res := SimulateDay(data, s.params, logger)
	if res.Skipped() {
		logging.LogSkip(logger, key, res.SkipReason)
	}
	return res
}

// SimulateDay runs the strategy over an already loaded day.
func SimulateDay(data *marketdata.DayData, p StrategyParams, logger zerolog.Logger) *DayResult {
	res := &DayResult{Date: data.Date, Key: data.Key}

	strangle, err := SelectStrikes(data, p)
	if err != nil {
		res.SkipReason = err
		return res
	}
	res.Strangle = strangle
	logger.Debug().
		Int("call_strike", strangle.Call.Strike).
		Int("put_strike", strangle.Put.Strike).
		Str("expiry", strangle.Expiry.Format("2006-01-02")).
		Msg("Strikes selected")

	book := &models.OrderBook{Date: data.Date, Key: data.Key}
	emit := func(e models.TradeEvent) {
		e.Date = data.Date
		book.Append(e)
		logging.LogTradeEvent(logger, e)
	}

	for _, leg := range []models.Leg{strangle.Call, strangle.Put} {
		emit(models.TradeEvent{
			Time:       strangle.EntryTime,
			Action:     models.ActionSell,
			OptionType: leg.Type,
			Strike:     models.IntPtr(leg.Strike),
			Price:      models.FloatPtr(leg.EntryPrice),
			Note:       fmt.Sprintf("Entry sell, spot %.2f rounded to %d", strangle.Spot, strangle.Rounded),
		})
	}

	sl := MonitorStopLoss(data, strangle, p)
	if sl.Trigger == nil {
		holdAt := strangle.EntryTime
		if n := len(sl.Times); n > 0 {
			holdAt = sl.Times[n-1]
		}
		emit(models.TradeEvent{
			Time:   holdAt,
			Action: models.ActionHold,
			Note:   fmt.Sprintf("Combined premium stayed below %.2f, holding both legs", sl.Threshold),
		})
		res.Book = book
		return res
	}

	trig := sl.Trigger
	res.StopLoss = trig
	losing := strangle.Leg(trig.Losing)
	surviving := strangle.Leg(trig.Losing.Other())
	losing.Active = false

	emit(models.TradeEvent{
		Time:       trig.Time,
		Action:     models.ActionBuy,
		OptionType: losing.Type,
		Strike:     models.IntPtr(losing.Strike),
		Price:      models.FloatPtr(trig.LosingPrice),
		Note: fmt.Sprintf("Stop-loss hit: combined %.2f >= %.2f, loss %.2f pts",
			trig.Combined, sl.Threshold, trig.LossPoints),
	})
	emit(models.TradeEvent{
		Time:       trig.Time,
		Action:     models.ActionAdjustSL,
		OptionType: surviving.Type,
		Strike:     models.IntPtr(surviving.Strike),
		NewSL:      models.FloatPtr(surviving.EntryPrice),
		Note:       "Stop-loss moved to entry price",
	})

	plan, err := PlanReentry(data, *losing, *trig, sl.Times, p)
	if err != nil {
		res.ReentryGap = err
		logger.Warn().Err(err).Str("type", string(losing.Type)).Msg("Re-entry not priced, event omitted")
		res.Book = book
		return res
	}
	res.Reentry = plan

	emit(models.TradeEvent{
		Time:       plan.Time,
		Action:     models.ActionReentryBuy,
		OptionType: plan.Type,
		Strike:     models.IntPtr(plan.Strike),
		Price:      models.FloatPtr(plan.Price),
		NewSL:      models.FloatPtr(plan.StopLoss),
		Target:     models.FloatPtr(plan.Target),
		Note:       "Re-entry on stopped leg",
	})

	res.Book = book
	return res
}
