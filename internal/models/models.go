// Package models provides domain models for the strangle backtester.
package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// OptionType represents the side of an option contract.
type OptionType string

const (
	Call OptionType = "CE"
	Put  OptionType = "PE"
)

// Other returns the opposite option type.
func (t OptionType) Other() OptionType {
	if t == Call {
		return Put
	}
	return Call
}

// Matches reports whether an instrument identifier belongs to this option type.
// Matching is by substring, the way exchange tickers embed CE/PE.
func (t OptionType) Matches(ticker string) bool {
	return t != "" && strings.Contains(ticker, string(t))
}

// Clock is a time of day in seconds since midnight.
type Clock int

// NewClock builds a Clock from its parts.
func NewClock(hour, minute, second int) Clock {
	return Clock(hour*3600 + minute*60 + second)
}

// clockPattern is the whole of a HH:MM:SS value; fractions are rejected.
var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2}):(\d{2})$`)

// ParseClock parses HH:MM:SS. Single-digit hours are accepted.
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	parts := clockPattern.FindStringSubmatch(s)
	if parts == nil {
		return 0, fmt.Errorf("invalid time %q: want HH:MM:SS", s)
	}
	h, _ := strconv.Atoi(parts[1])
	m, _ := strconv.Atoi(parts[2])
	sec, _ := strconv.Atoi(parts[3])
	if h < 0 || h > 23 || m < 0 || m > 59 || sec < 0 || sec > 59 {
		return 0, fmt.Errorf("invalid time %q: out of range", s)
	}
	return NewClock(h, m, sec), nil
}

// MustParseClock is ParseClock for constants; it panics on bad input.
func MustParseClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// String formats the clock as HH:MM:SS.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", int(c)/3600, int(c)%3600/60, int(c)%60)
}

// Add returns the clock shifted by the given number of seconds.
func (c Clock) Add(seconds int) Clock {
	return c + Clock(seconds)
}
