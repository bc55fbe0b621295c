package trading

import (
	"sort"

	"sensex-strangle/internal/marketdata"
	"sensex-strangle/internal/models"
)

// StopLossTrigger describes the first combined-premium breach of the day.
type StopLossTrigger struct {
	Time           models.Clock
	Losing         models.OptionType
	LosingPrice    float64
	SurvivingPrice float64
	LossPoints     float64
	Combined       float64
}

// StopLossResult is the outcome of a scan.
type StopLossResult struct {
	Threshold float64
	Times     []models.Clock   // every monitoring time, ascending
	Trigger   *StopLossTrigger // nil when the day never breached
}

// legQuote is both legs' prices at one monitoring time; ok is false when
// either leg has no tick at or after that time.
type legQuote struct {
	call float64
	put  float64
	ok   bool
}

// Threshold is the combined premium at which the stop fires.
func Threshold(s *models.Strangle, multiplier float64) float64 {
	return multiplier * (s.Call.EntryPrice + s.Put.EntryPrice)
}

// LosingLeg decides which leg is covered. The put loses when its adverse
// move beats the call's favourable one; ties go to the call.
func LosingLeg(s *models.Strangle, call, put float64) models.OptionType {
	putLoss := put - s.Put.EntryPrice
	callLoss := call - s.Call.EntryPrice
	if putLoss > -callLoss {
		return models.Put
	}
	return models.Call
}

// MonitoringTimes returns the distinct tick times of either leg strictly
// after entry, ascending.
func MonitoringTimes(data *marketdata.DayData, s *models.Strangle) []models.Clock {
	start := s.EntryTime.Add(1)
	seen := make(map[models.Clock]struct{})
	var times []models.Clock
	for _, leg := range []models.Leg{s.Call, s.Put} {
		for _, t := range data.SortedTimesFrom(leg.Type, leg.Strike, start) {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			times = append(times, t)
		}
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })
	return times
}

func quoteAt(data *marketdata.DayData, s *models.Strangle, t models.Clock) legQuote {
	call, err := data.PriceAt(models.Call, s.Call.Strike, t)
	if err != nil {
		return legQuote{}
	}
	put, err := data.PriceAt(models.Put, s.Put.Strike, t)
	if err != nil {
		return legQuote{}
	}
	return legQuote{call: call, put: put, ok: true}
}

// MonitorStopLoss scans the monitoring times for the first breach of the
// combined threshold. Only one breach is ever reported per day.
func MonitorStopLoss(data *marketdata.DayData, s *models.Strangle, p StrategyParams) StopLossResult {
	res := StopLossResult{
		Threshold: Threshold(s, p.StopLossMultiplier),
		Times:     MonitoringTimes(data, s),
	}

	for _, t := range res.Times {
		q := quoteAt(data, s, t)
		if !q.ok {
			continue
		}

		combined := q.call + q.put
		if combined < res.Threshold {
			continue
		}

		losing := LosingLeg(s, q.call, q.put)
		trig := &StopLossTrigger{Time: t, Losing: losing, Combined: combined}
		if losing == models.Put {
			trig.LosingPrice, trig.SurvivingPrice = q.put, q.call
		} else {
			trig.LosingPrice, trig.SurvivingPrice = q.call, q.put
		}
		trig.LossPoints = trig.LosingPrice - s.Leg(losing).EntryPrice
		res.Trigger = trig
		break
	}
	return res
}
