// Package trading implements the short-strangle day simulation and the
// backtest driver that runs it over a date range.
package trading

import (
	"fmt"
	"math"

	"sensex-strangle/internal/errors"
	"sensex-strangle/internal/marketdata"
	"sensex-strangle/internal/models"
)

// StrategyParams holds the strangle rules.
type StrategyParams struct {
	EntryTime           models.Clock
	StrikeStep          int     // spot is rounded to a multiple of this
	StrikeOffset        int     // distance of each leg from the rounded spot
	StopLossMultiplier  float64 // combined premium multiple that triggers the stop
	ReentrySLFactor     float64 // re-entry stop as a fraction of re-entry price
	TargetPremiumFactor float64 // share of the original premium added to the target
}

// DefaultStrategyParams returns the rules the backtest is defined with.
func DefaultStrategyParams() StrategyParams {
	return StrategyParams{
		EntryTime:           models.NewClock(9, 16, 59),
		StrikeStep:          100,
		StrikeOffset:        100,
		StopLossMultiplier:  1.10,
		ReentrySLFactor:     0.85,
		TargetPremiumFactor: 0.10,
	}
}

// Validate checks the parameters are usable.
func (p StrategyParams) Validate() error {
	if p.StrikeStep <= 0 {
		return errors.NewValidationError("strike_step", p.StrikeStep, "must be positive")
	}
	if p.StrikeOffset < 0 {
		return errors.NewValidationError("strike_offset", p.StrikeOffset, "must not be negative")
	}
	if p.StopLossMultiplier <= 1 {
		return errors.NewValidationError("stop_loss_multiplier", p.StopLossMultiplier, "must be greater than 1")
	}
	if p.ReentrySLFactor <= 0 || p.ReentrySLFactor >= 1 {
		return errors.NewValidationError("reentry_sl_factor", p.ReentrySLFactor, "must be between 0 and 1")
	}
	if p.TargetPremiumFactor < 0 {
		return errors.NewValidationError("target_premium_factor", p.TargetPremiumFactor, "must not be negative")
	}
	return nil
}

// RoundStrike rounds spot to the nearest multiple of step. Exact halves go
// to the even multiple.
func RoundStrike(spot float64, step int) int {
	return int(math.RoundToEven(spot/float64(step))) * step
}

// SelectStrikes picks the day's strikes from the spot at entry time and
// prices both legs. Any missing price fails the day.
func SelectStrikes(data *marketdata.DayData, p StrategyParams) (*models.Strangle, error) {
	spot, err := data.SpotAt(p.EntryTime)
	if err != nil {
		return nil, errors.Wrap(err, "entry spot")
	}

	rounded := RoundStrike(spot, p.StrikeStep)
	s := &models.Strangle{
		Call:      models.Leg{Type: models.Call, Strike: rounded + p.StrikeOffset, Active: true},
		Put:       models.Leg{Type: models.Put, Strike: rounded - p.StrikeOffset, Active: true},
		Spot:      spot,
		Rounded:   rounded,
		EntryTime: p.EntryTime,
	}

	for _, leg := range []*models.Leg{&s.Call, &s.Put} {
		price, err := data.PriceAt(leg.Type, leg.Strike, p.EntryTime)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("entry price %d%s", leg.Strike, leg.Type))
		}
		leg.EntryPrice = price
	}
	s.Expiry, _ = data.Expiry(models.Call, s.Call.Strike)

	return s, nil
}
