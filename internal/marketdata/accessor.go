package marketdata

import (
	"sort"
	"time"

	"sensex-strangle/internal/errors"
	"sensex-strangle/internal/models"
	"sensex-strangle/pkg/utils"
)

// DayData is one trading day's immutable tick set.
// It is safe for concurrent reads.
type DayData struct {
	Date    time.Time
	Key     string
	Spot    []models.Tick
	Options []models.Tick

	series map[models.Instrument][]models.Tick
}

// NewDayData indexes the option ticks by instrument. Ticks are stable-sorted by
// time so that, among equal times, file order is kept.
func NewDayData(date time.Time, spot, options []models.Tick) *DayData {
	d := &DayData{
		Date:    date,
		Key:     utils.DateKey(date),
		Spot:    sortedCopy(spot),
		Options: options,
		series:  make(map[models.Instrument][]models.Tick),
	}

	for _, tick := range options {
		if !tick.HasStrike {
			continue
		}
		for _, typ := range []models.OptionType{models.Call, models.Put} {
			if typ.Matches(tick.Ticker) {
				inst := models.Instrument{Type: typ, Strike: tick.Strike}
				d.series[inst] = append(d.series[inst], tick)
			}
		}
	}
	for inst, ticks := range d.series {
		sort.SliceStable(ticks, func(i, j int) bool { return ticks[i].Time < ticks[j].Time })
		d.series[inst] = ticks
	}

	return d
}

// Series returns the ticks of one instrument.
func (d *DayData) Series(typ models.OptionType, strike int) models.OptionSeries {
	inst := models.Instrument{Type: typ, Strike: strike}
	return models.OptionSeries{Instrument: inst, Ticks: d.series[inst]}
}

// Expiry returns the contract expiry encoded in the instrument's tickers.
func (d *DayData) Expiry(typ models.OptionType, strike int) (time.Time, bool) {
	for _, tick := range d.series[models.Instrument{Type: typ, Strike: strike}] {
		if c, err := ParseTicker(tick.Ticker); err == nil && !c.Expiry.IsZero() {
			return c.Expiry, true
		}
	}
	return time.Time{}, false
}

// SpotAt returns the spot price at t, or the first one after it.
func (d *DayData) SpotAt(t models.Clock) (float64, error) {
	tick, ok := firstAtOrAfter(d.Spot, t)
	if !ok {
		return 0, errors.Unavailable(d.Key, "spot", "no spot tick at or after "+t.String())
	}
	return tick.Close, nil
}

// PriceAt returns the instrument's price at t. Without an exact match the
// earliest later tick is used; earlier ticks are never looked at.
func (d *DayData) PriceAt(typ models.OptionType, strike int, t models.Clock) (float64, error) {
	tick, ok := firstAtOrAfter(d.series[models.Instrument{Type: typ, Strike: strike}], t)
	if !ok {
		return 0, errors.Unavailable(d.Key, string(typ), "no tick at or after "+t.String())
	}
	return tick.Close, nil
}

// SortedTimesFrom returns the distinct tick times of the instrument at or
// after start, ascending.
func (d *DayData) SortedTimesFrom(typ models.OptionType, strike int, start models.Clock) []models.Clock {
	ticks := d.series[models.Instrument{Type: typ, Strike: strike}]
	i := sort.Search(len(ticks), func(i int) bool { return ticks[i].Time >= start })

	var times []models.Clock
	for ; i < len(ticks); i++ {
		if n := len(times); n > 0 && times[n-1] == ticks[i].Time {
			continue
		}
		times = append(times, ticks[i].Time)
	}
	return times
}

func firstAtOrAfter(ticks []models.Tick, t models.Clock) (models.Tick, bool) {
	i := sort.Search(len(ticks), func(i int) bool { return ticks[i].Time >= t })
	if i == len(ticks) {
		return models.Tick{}, false
	}
	return ticks[i], true
}

func sortedCopy(ticks []models.Tick) []models.Tick {
	out := make([]models.Tick, len(ticks))
	copy(out, ticks)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}
