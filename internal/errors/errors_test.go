package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDataErrorMatchesSentinel(t *testing.T) {
	err := Unavailable("05012024", "spot", "file missing")
	wrapped := fmt.Errorf("loading day: %w", err)

	assert.True(t, IsDataUnavailable(wrapped))
	assert.Contains(t, err.Error(), "05012024")

	var de *DataError
	assert.True(t, As(wrapped, &de))
	assert.Equal(t, "spot", de.Source)
}

func TestValidationErrorIsConfigInvalid(t *testing.T) {
	err := NewValidationError("strategy.entry_time", "9:99", "not a clock time")
	assert.True(t, Is(err, ErrConfigInvalid))
	assert.False(t, IsDataUnavailable(err))
}

func TestParseError(t *testing.T) {
	err := NewParseError("NIFTY24JAN")
	assert.True(t, Is(err, ErrAmbiguousParse))
	assert.Contains(t, err.Error(), "NIFTY24JAN")
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "ctx"))
	assert.NoError(t, Wrapf(nil, "ctx %d", 1))
	assert.EqualError(t, Wrapf(ErrRunNotFound, "run %s", "abc"), "run abc: run not found")
}
