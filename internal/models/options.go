package models

import "time"

// Tick is one price observation from a day file.
// Spot ticks leave Ticker empty and HasStrike false.
type Tick struct {
	Time      Clock
	Ticker    string
	Strike    int
	HasStrike bool
	Close     float64
}

// Instrument identifies one option contract within a day.
type Instrument struct {
	Type   OptionType
	Strike int
}

// OptionSeries is the time-ordered ticks of one instrument on one day.
type OptionSeries struct {
	Instrument Instrument
	Ticks      []Tick
}

// Leg represents one side of the strangle.
type Leg struct {
	Type       OptionType
	Strike     int
	EntryPrice float64
	Active     bool
}

// Strangle is the pair of legs sold at entry.
type Strangle struct {
	Call      Leg
	Put       Leg
	Spot      float64
	Rounded   int
	EntryTime Clock
	Expiry    time.Time // zero when the tickers carry no valid date
}

// Leg returns the leg of the given type.
func (s *Strangle) Leg(t OptionType) *Leg {
	if t == Call {
		return &s.Call
	}
	return &s.Put
}

// Premium is the combined entry premium.
func (s *Strangle) Premium() float64 {
	return s.Call.EntryPrice + s.Put.EntryPrice
}
