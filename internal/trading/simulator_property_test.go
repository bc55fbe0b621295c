package trading

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rs/zerolog"

	"sensex-strangle/internal/models"
)

// randomDay builds a day with both legs sold at 100 and one tick per minute
// afterwards, prices taken from the two generated paths.
func randomDay(calls, puts []float64) *dayBuilder {
	b := newDay("05012024").
		spotAt("09:16:59", 70000).
		option("09:16:59", models.Call, 70100, 100).
		option("09:16:59", models.Put, 69900, 100)

	n := len(calls)
	if len(puts) < n {
		n = len(puts)
	}
	for i := 0; i < n; i++ {
		at := models.NewClock(9, 17, 0).Add(i * 60).String()
		b.option(at, models.Call, 70100, calls[i])
		b.option(at, models.Put, 69900, puts[i])
	}
	return b
}

func pricePath() gopter.Gen {
	return gen.SliceOfN(30, gen.Float64Range(40, 180))
}

func TestProperty_DayEventShape(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("every simulated day starts with two sells and ends with hold or the stop sequence", prop.ForAll(
		func(calls, puts []float64) bool {
			res := SimulateDay(randomDay(calls, puts).build(), DefaultStrategyParams(), zerolog.Nop())
			if res.Skipped() {
				return false
			}
			ev := res.Book.Events
			if len(ev) < 3 || ev[0].Action != models.ActionSell || ev[1].Action != models.ActionSell {
				return false
			}
			if res.StopLoss == nil {
				return len(ev) == 3 && ev[2].Action == models.ActionHold
			}
			if ev[2].Action != models.ActionBuy || ev[3].Action != models.ActionAdjustSL {
				return false
			}
			if ev[2].OptionType == ev[3].OptionType {
				return false
			}
			if res.Reentry == nil {
				return len(ev) == 4
			}
			return len(ev) == 5 && ev[4].Action == models.ActionReentryBuy && ev[4].OptionType == ev[2].OptionType
		},
		pricePath(),
		pricePath(),
	))

	properties.TestingRun(t)
}

func TestProperty_FirstBreachOnly(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("trigger is the first monitoring time at or above the threshold", prop.ForAll(
		func(calls, puts []float64) bool {
			p := DefaultStrategyParams()
			data := randomDay(calls, puts).build()
			s, err := SelectStrikes(data, p)
			if err != nil {
				return false
			}
			sl := MonitorStopLoss(data, s, p)

			for _, at := range sl.Times {
				q := quoteAt(data, s, at)
				breached := q.ok && q.call+q.put >= sl.Threshold
				if sl.Trigger != nil && at == sl.Trigger.Time {
					return breached && sl.Trigger.Combined >= sl.Threshold
				}
				if breached {
					return false
				}
			}
			return sl.Trigger == nil
		},
		pricePath(),
		pricePath(),
	))

	properties.TestingRun(t)
}

func TestProperty_ReentryPricing(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("re-entry follows the trigger and is priced from its own tick", prop.ForAll(
		func(calls, puts []float64) bool {
			p := DefaultStrategyParams()
			res := SimulateDay(randomDay(calls, puts).build(), p, zerolog.Nop())
			if res.Reentry == nil {
				return true
			}
			re, trig := res.Reentry, res.StopLoss
			if re.Time < trig.Time {
				return false
			}
			last := res.Book.Events[len(res.Book.Events)-1].Time
			if re.Time == trig.Time && re.Time != last {
				return false
			}
			losingEntry := res.Strangle.Leg(trig.Losing).EntryPrice
			wantTarget := re.Price + (p.TargetPremiumFactor*losingEntry + trig.LossPoints)
			return re.StopLoss == p.ReentrySLFactor*re.Price && re.Target == wantTarget
		},
		pricePath(),
		pricePath(),
	))

	properties.TestingRun(t)
}
