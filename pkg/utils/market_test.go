package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateKeyRoundTrip(t *testing.T) {
	day, err := ParseDateKey("05012024")
	require.NoError(t, err)
	assert.Equal(t, 2024, day.Year())
	assert.Equal(t, time.January, day.Month())
	assert.Equal(t, 5, day.Day())
	assert.Equal(t, "05012024", DateKey(day))

	_, err = ParseDateKey("2024-01-05")
	assert.Error(t, err)
}

func TestParseDateAcceptsBothLayouts(t *testing.T) {
	a, err := ParseDate("2024-01-05")
	require.NoError(t, err)
	b, err := ParseDate("05012024")
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
}

func TestCalendarDays(t *testing.T) {
	start, _ := ParseDateKey("29122023") // Friday
	end, _ := ParseDateKey("02012024")   // Tuesday

	all := CalendarDays(start, end, false)
	require.Len(t, all, 5)
	assert.Equal(t, "29122023", DateKey(all[0]))
	assert.Equal(t, "02012024", DateKey(all[4]))

	weekdays := CalendarDays(start, end, true)
	require.Len(t, weekdays, 3)
	for _, d := range weekdays {
		assert.False(t, IsWeekend(d))
	}

	assert.Empty(t, CalendarDays(end, start, false))
}
