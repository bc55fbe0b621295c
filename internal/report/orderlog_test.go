package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensex-strangle/internal/models"
	"sensex-strangle/pkg/utils"
)

func scenarioEvents(t *testing.T) []models.TradeEvent {
	t.Helper()
	day, err := utils.ParseDateKey("05012024")
	require.NoError(t, err)

	threshold := 1.10 * (100.0 + 100.0)
	return []models.TradeEvent{
		{Date: day, Time: models.MustParseClock("09:16:59"), Action: models.ActionSell, OptionType: models.Call,
			Strike: models.IntPtr(70100), Price: models.FloatPtr(100), Note: "Entry sell"},
		{Date: day, Time: models.MustParseClock("09:16:59"), Action: models.ActionSell, OptionType: models.Put,
			Strike: models.IntPtr(69900), Price: models.FloatPtr(100), Note: "Entry sell"},
		{Date: day, Time: models.MustParseClock("09:20:00"), Action: models.ActionBuy, OptionType: models.Put,
			Strike: models.IntPtr(69900), Price: models.FloatPtr(131), NewSL: models.FloatPtr(threshold), Note: "Stop-loss hit, loss 31"},
		{Date: day, Time: models.MustParseClock("09:20:00"), Action: models.ActionAdjustSL, OptionType: models.Call,
			Strike: models.IntPtr(70100), NewSL: models.FloatPtr(100)},
		{Date: day, Time: models.MustParseClock("09:20:05"), Action: models.ActionReentryBuy, OptionType: models.Put,
			Strike: models.IntPtr(69900), Price: models.FloatPtr(125), NewSL: models.FloatPtr(0.85 * 125), Target: models.FloatPtr(166)},
		{Date: day, Time: models.MustParseClock("15:29:59"), Action: models.ActionHold},
	}
}

func TestWriteOrderLog(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteOrderLog(&buf, scenarioEvents(t)))

	want := "Date,Time,Action,Option Type,Strike,Price,New SL,Target,Note\n" +
		"05012024,09:16:59,Sell,CE,70100,100.00,,,Entry sell\n" +
		"05012024,09:16:59,Sell,PE,69900,100.00,,,Entry sell\n" +
		"05012024,09:20:00,Buy,PE,69900,131.00,220.00,,\"Stop-loss hit, loss 31\"\n" +
		"05012024,09:20:00,Adjust SL,CE,70100,,100.00,,\n" +
		"05012024,09:20:05,Re-entry Buy,PE,69900,125.00,106.25,166.00,\n" +
		"05012024,15:29:59,Hold,,,,,,\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteOrderLogIsDeterministic(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, WriteOrderLog(&a, scenarioEvents(t)))
	require.NoError(t, WriteOrderLog(&b, scenarioEvents(t)))
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestWriteOrderLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "orders.csv")
	require.NoError(t, WriteOrderLogFile(path, scenarioEvents(t)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Re-entry Buy,PE,69900,125.00,106.25,166.00")
}

func TestWriteOrderLogEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteOrderLog(&buf, nil))
	assert.Equal(t, "Date,Time,Action,Option Type,Strike,Price,New SL,Target,Note\n", buf.String())
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "", FormatPrice(nil))
	assert.Equal(t, "220.00", FormatPrice(models.FloatPtr(1.1*float64(200))))
	assert.Equal(t, "106.25", FormatPrice(models.FloatPtr(106.25)))
	assert.Equal(t, "0.12", FormatPrice(models.FloatPtr(0.125)))
	assert.Equal(t, "0.38", FormatPrice(models.FloatPtr(0.375)))
}
