package models

import "time"

// Action represents what a trade event does.
type Action string

const (
	ActionSell       Action = "Sell"
	ActionBuy        Action = "Buy"
	ActionAdjustSL   Action = "Adjust SL"
	ActionReentryBuy Action = "Re-entry Buy"
	ActionHold       Action = "Hold"
)

// TradeEvent is one row of a day's order log.
// Optional values are nil when the action does not carry them.
type TradeEvent struct {
	Date       time.Time
	Time       Clock
	Action     Action
	OptionType OptionType
	Strike     *int
	Price      *float64
	NewSL      *float64
	Target     *float64
	Note       string
}

// OrderBook is the append-only event list of one simulated day.
type OrderBook struct {
	Date   time.Time
	Key    string
	Events []TradeEvent
}

// Append adds an event to the book.
func (b *OrderBook) Append(e TradeEvent) {
	b.Events = append(b.Events, e)
}

// Count returns how many events carry the given action.
func (b *OrderBook) Count(a Action) int {
	n := 0
	for _, e := range b.Events {
		if e.Action == a {
			n++
		}
	}
	return n
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// FloatPtr returns a pointer to v.
func FloatPtr(v float64) *float64 { return &v }
