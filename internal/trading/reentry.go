package trading

import (
	"sort"

	"sensex-strangle/internal/errors"
	"sensex-strangle/internal/marketdata"
	"sensex-strangle/internal/models"
)

// ReentryPlan is the buy order placed on the covered leg.
type ReentryPlan struct {
	Time     models.Clock
	Type     models.OptionType
	Strike   int
	Price    float64
	StopLoss float64
	Target   float64
}

// ReentryTime returns the first monitoring time after the trigger, or the
// last monitoring time when nothing follows it.
func ReentryTime(times []models.Clock, trigger models.Clock) (models.Clock, bool) {
	if len(times) == 0 {
		return 0, false
	}
	i := sort.Search(len(times), func(i int) bool { return times[i] > trigger })
	if i < len(times) {
		return times[i], true
	}
	return times[len(times)-1], true
}

// PlanReentry prices the re-entry on the losing leg. An unavailable price
// returns an error matching ErrDataUnavailable and no plan.
func PlanReentry(data *marketdata.DayData, leg models.Leg, trig StopLossTrigger, times []models.Clock, p StrategyParams) (*ReentryPlan, error) {
	at, ok := ReentryTime(times, trig.Time)
	if !ok {
		return nil, errors.Unavailable(data.Key, string(leg.Type), "no monitoring times for re-entry")
	}

	price, err := data.PriceAt(leg.Type, leg.Strike, at)
	if err != nil {
		return nil, errors.Wrap(err, "re-entry price")
	}

	return &ReentryPlan{
		Time:     at,
		Type:     leg.Type,
		Strike:   leg.Strike,
		Price:    price,
		StopLoss: p.ReentrySLFactor * price,
		Target:   price + (p.TargetPremiumFactor*leg.EntryPrice + trig.LossPoints),
	}, nil
}
