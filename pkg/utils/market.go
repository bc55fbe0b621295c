// Package utils provides shared utility functions.
package utils

import (
	"fmt"
	"time"
)

// IndiaLocation is the timezone for Indian markets.
var IndiaLocation *time.Location

func init() {
	var err error
	IndiaLocation, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// Fallback to UTC+5:30
		IndiaLocation = time.FixedZone("IST", 5*60*60+30*60)
	}
}

// DateKeyLayout is the DDMMYYYY layout used to name day files.
const DateKeyLayout = "02012006"

// DateKey formats a trading day as DDMMYYYY.
func DateKey(day time.Time) string {
	return day.Format(DateKeyLayout)
}

// ParseDateKey parses a DDMMYYYY key into midnight IST.
func ParseDateKey(key string) (time.Time, error) {
	t, err := time.ParseInLocation(DateKeyLayout, key, IndiaLocation)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %q: want DDMMYYYY", key)
	}
	return t, nil
}

// ParseDate accepts either DDMMYYYY or YYYY-MM-DD.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, IndiaLocation); err == nil {
		return t, nil
	}
	return ParseDateKey(s)
}

// IsWeekend reports whether the day falls on Saturday or Sunday.
func IsWeekend(day time.Time) bool {
	return day.Weekday() == time.Saturday || day.Weekday() == time.Sunday
}

// CalendarDays returns every calendar day from start to end inclusive.
// When skipWeekends is set, Saturdays and Sundays are left out.
func CalendarDays(start, end time.Time, skipWeekends bool) []time.Time {
	start = truncateDay(start)
	end = truncateDay(end)

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if skipWeekends && IsWeekend(d) {
			continue
		}
		days = append(days, d)
	}
	return days
}

func truncateDay(t time.Time) time.Time {
	t = t.In(IndiaLocation)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, IndiaLocation)
}
