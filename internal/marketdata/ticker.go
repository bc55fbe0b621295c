// Package marketdata loads per-day spot and options tick files and answers
// price lookups against them.
package marketdata

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"sensex-strangle/internal/errors"
	"sensex-strangle/internal/models"
)

// tickerPattern matches SENSEX<DD><MMM><YY><5-digit strike><CE|PE>.
var tickerPattern = regexp.MustCompile(`SENSEX(\d{2})([A-Za-z]{3})(\d{2})(\d{5})(CE|PE)`)

// Contract is the decoded form of an options ticker.
type Contract struct {
	Expiry time.Time // zero if the date part is not a real date
	Strike int
	Type   models.OptionType
}

// ParseTicker extracts expiry, strike and type from an options ticker.
// Tickers that do not carry a strike return an error matching ErrAmbiguousParse.
func ParseTicker(ticker string) (Contract, error) {
	m := tickerPattern.FindStringSubmatch(strings.TrimSpace(ticker))
	if m == nil {
		return Contract{}, errors.NewParseError(ticker)
	}

	strike, err := strconv.Atoi(m[4])
	if err != nil {
		return Contract{}, errors.NewParseError(ticker)
	}

	c := Contract{
		Strike: strike,
		Type:   models.OptionType(m[5]),
	}
	if expiry, err := time.Parse("02Jan06", m[1]+m[2]+m[3]); err == nil {
		c.Expiry = expiry
	}
	return c, nil
}

// StrikeOf returns the strike embedded in a ticker and whether it parsed.
func StrikeOf(ticker string) (int, bool) {
	c, err := ParseTicker(ticker)
	if err != nil {
		return 0, false
	}
	return c.Strike, true
}
