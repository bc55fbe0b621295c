// Package integration runs the backtester end to end against tick files on disk.
package integration

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensex-strangle/internal/config"
	"sensex-strangle/internal/marketdata"
	"sensex-strangle/internal/models"
	"sensex-strangle/internal/report"
	"sensex-strangle/internal/store"
	"sensex-strangle/internal/trading"
)

// fixture is a config directory with two days of tick files:
// 04012024 holds all day, 05012024 stops out and re-enters,
// 03012024 has no files.
type fixture struct {
	dir    string
	cfg    *config.Config
	output string
}

func writeFile(t *testing.T, path string, lines ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	spotDir := filepath.Join(dir, "spot")
	optionsDir := filepath.Join(dir, "options")

	writeFile(t, filepath.Join(spotDir, "SENSEX_04012024.csv"),
		"Time,Close",
		"09:15:00,71180.10",
		"09:16:59,71234.00",
		"09:20:00,71250.55",
	)
	writeFile(t, filepath.Join(optionsDir, "SENSEX_OPTIONS_04012024.csv"),
		"Time,Ticker,Close",
		"09:16:59,SENSEX05JAN2471300CE,150",
		"09:16:59,SENSEX05JAN2471100PE,140",
		"10:30:00,SENSEX05JAN2471300CE,120",
		"10:30:00,SENSEX05JAN2471100PE,160",
		"15:25:00,SENSEX05JAN2471300CE,95",
		"15:25:00,SENSEX05JAN2471100PE,110",
	)

	writeFile(t, filepath.Join(spotDir, "SENSEX_05012024.csv"),
		"Time,Close",
		"09:16:59,70000",
	)
	writeFile(t, filepath.Join(optionsDir, "SENSEX_OPTIONS_05012024.csv"),
		"Time,Ticker,Close",
		"09:16:59,SENSEX05JAN2470100CE,100",
		"09:16:59,SENSEX05JAN2469900PE,100",
		"09:16:59,SENSEX05JAN2470200CE,70",
		"09:18:00,SENSEX05JAN2470100CE,98",
		"09:18:00,SENSEX05JAN2469900PE,105",
		"09:20:00,SENSEX05JAN2470100CE,90",
		"09:20:00,SENSEX05JAN2469900PE,131",
		"09:20:05,SENSEX05JAN2470100CE,88",
		"09:20:05,SENSEX05JAN2469900PE,125",
	)

	output := filepath.Join(dir, "out", "orders.csv")
	writeFile(t, filepath.Join(dir, "config.toml"),
		"[data]",
		fmt.Sprintf("spot_dir = %q", spotDir),
		fmt.Sprintf("options_dir = %q", optionsDir),
		fmt.Sprintf("output = %q", output),
		"",
		"[backtest]",
		`start_date = "03012024"`,
		`end_date = "2024-01-05"`,
		"",
		"[log]",
		"file = false",
	)

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	return &fixture{dir: dir, cfg: cfg, output: output}
}

func (f *fixture) run(t *testing.T, workers int) *trading.BacktestResult {
	t.Helper()
	bc, err := f.cfg.ToBacktestConfig("", "")
	require.NoError(t, err)
	bc.Workers = workers

	engine := trading.NewBacktestEngine(marketdata.NewLoader(f.cfg.LoaderConfig()), zerolog.Nop())
	result, err := engine.Run(context.Background(), bc)
	require.NoError(t, err)
	return result
}

func TestBacktestFromFiles(t *testing.T) {
	f := newFixture(t)
	result := f.run(t, 1)

	s := result.Summary
	assert.Equal(t, 3, s.DaysRequested)
	assert.Equal(t, 2, s.DaysSimulated)
	assert.Equal(t, 1, s.DaysSkipped)
	assert.Equal(t, 1, s.Holds)
	assert.Equal(t, 1, s.StopLosses)
	assert.Equal(t, 1, s.Reentries)
	assert.Equal(t, 8, s.Events)
	require.Len(t, s.Skips, 1)
	assert.Equal(t, "03012024", s.Skips[0].Key)

	require.NoError(t, report.WriteOrderLogFile(f.cfg.Data.Output, result.Events()))
	data, err := os.ReadFile(f.output)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 9)
	assert.Equal(t, "Date,Time,Action,Option Type,Strike,Price,New SL,Target,Note", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "04012024,09:16:59,Sell,CE,71300,150.00,"), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "04012024,09:16:59,Sell,PE,71100,140.00,"), lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "04012024,15:25:00,Hold,"), lines[3])
	assert.True(t, strings.HasPrefix(lines[6], "05012024,09:20:00,Buy,PE,69900,131.00,,,"), lines[6])
	assert.True(t, strings.HasPrefix(lines[7], "05012024,09:20:00,Adjust SL,CE,70100,,100.00,"), lines[7])
	assert.True(t, strings.HasPrefix(lines[8], "05012024,09:20:05,Re-entry Buy,PE,69900,125.00,106.25,166.00"), lines[8])
}

func TestParallelRunWritesSameLog(t *testing.T) {
	f := newFixture(t)

	var seq, par bytes.Buffer
	require.NoError(t, report.WriteOrderLog(&seq, f.run(t, 1).Events()))
	require.NoError(t, report.WriteOrderLog(&par, f.run(t, 3).Events()))
	assert.Equal(t, seq.String(), par.String())
}

func TestStoredRunReproducesOrderLog(t *testing.T) {
	f := newFixture(t)
	result := f.run(t, 2)

	s, err := store.NewSQLiteStore(f.cfg.Store.Path)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.SaveRun(ctx, store.RecordFromResult(result), result.Events()))

	run, err := s.GetRun(ctx, result.RunID)
	require.NoError(t, err)
	assert.Equal(t, "03012024", run.StartKey)
	assert.Equal(t, "05012024", run.EndKey)
	assert.Equal(t, "490.00", run.EntryPremium)
	assert.Equal(t, models.NewClock(9, 16, 59), run.Params.EntryTime)

	events, err := s.GetRunEvents(ctx, result.RunID)
	require.NoError(t, err)

	var fromRun, fromStore bytes.Buffer
	require.NoError(t, report.WriteOrderLog(&fromRun, result.Events()))
	require.NoError(t, report.WriteOrderLog(&fromStore, events))
	assert.Equal(t, fromRun.String(), fromStore.String())
}
