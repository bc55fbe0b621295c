package marketdata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"sensex-strangle/internal/errors"
	"sensex-strangle/internal/models"
	"sensex-strangle/pkg/utils"
)

// DatePlaceholder is replaced by the DDMMYYYY key in filename patterns.
const DatePlaceholder = "{date}"

// spotRow is one line of a spot tick file.
type spotRow struct {
	Time  string  `csv:"Time"`
	Close float64 `csv:"Close"`
}

// optionRow is one line of an options tick file.
type optionRow struct {
	Time   string  `csv:"Time"`
	Ticker string  `csv:"Ticker"`
	Close  float64 `csv:"Close"`
}

// LoaderConfig locates the day files on disk.
type LoaderConfig struct {
	SpotDir        string
	OptionsDir     string
	SpotPattern    string // e.g. "spot_{date}.csv"
	OptionsPattern string // e.g. "options_{date}.csv"
}

// Loader reads day files from local storage.
type Loader struct {
	cfg LoaderConfig
}

// NewLoader creates a new file loader.
func NewLoader(cfg LoaderConfig) *Loader {
	return &Loader{cfg: cfg}
}

// SpotPath returns the spot file path for a day key.
func (l *Loader) SpotPath(key string) string {
	return filepath.Join(l.cfg.SpotDir, strings.ReplaceAll(l.cfg.SpotPattern, DatePlaceholder, key))
}

// OptionsPath returns the options file path for a day key.
func (l *Loader) OptionsPath(key string) string {
	return filepath.Join(l.cfg.OptionsDir, strings.ReplaceAll(l.cfg.OptionsPattern, DatePlaceholder, key))
}

// Load reads both files for the day and builds the indexed view.
// A missing file returns an error matching ErrDataUnavailable.
func (l *Loader) Load(ctx context.Context, day time.Time) (*DayData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := utils.DateKey(day)

	spot, err := l.loadSpot(key)
	if err != nil {
		return nil, err
	}

	options, err := l.loadOptions(key)
	if err != nil {
		return nil, err
	}

	return NewDayData(day, spot, options), nil
}

func (l *Loader) loadSpot(key string) ([]models.Tick, error) {
	var rows []*spotRow
	if err := readCSV(l.SpotPath(key), key, "spot", &rows); err != nil {
		return nil, err
	}

	ticks := make([]models.Tick, 0, len(rows))
	for i, r := range rows {
		clock, err := models.ParseClock(r.Time)
		if err != nil {
			return nil, errors.NewDataError(key, "spot", fmt.Sprintf("row %d", i+2), err)
		}
		ticks = append(ticks, models.Tick{Time: clock, Close: r.Close})
	}
	return ticks, nil
}

func (l *Loader) loadOptions(key string) ([]models.Tick, error) {
	var rows []*optionRow
	if err := readCSV(l.OptionsPath(key), key, "options", &rows); err != nil {
		return nil, err
	}

	ticks := make([]models.Tick, 0, len(rows))
	for i, r := range rows {
		clock, err := models.ParseClock(r.Time)
		if err != nil {
			return nil, errors.NewDataError(key, "options", fmt.Sprintf("row %d", i+2), err)
		}
		strike, ok := StrikeOf(r.Ticker)
		ticks = append(ticks, models.Tick{
			Time:      clock,
			Ticker:    r.Ticker,
			Strike:    strike,
			HasStrike: ok,
			Close:     r.Close,
		})
	}
	return ticks, nil
}

func readCSV(path, key, source string, out interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Unavailable(key, source, "file not found: "+path)
		}
		return errors.NewDataError(key, source, "opening "+path, err)
	}
	defer f.Close()

	if err := gocsv.UnmarshalFile(f, out); err != nil {
		return errors.NewDataError(key, source, "parsing "+path, err)
	}
	return nil
}
