// Package report writes the backtest order log.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"sensex-strangle/internal/models"
	"sensex-strangle/pkg/utils"
)

// OrderRow is one line of the order log. Absent fields are empty cells.
type OrderRow struct {
	Date       string `csv:"Date" json:"date"`
	Time       string `csv:"Time" json:"time"`
	Action     string `csv:"Action" json:"action"`
	OptionType string `csv:"Option Type" json:"option_type,omitempty"`
	Strike     string `csv:"Strike" json:"strike,omitempty"`
	Price      string `csv:"Price" json:"price,omitempty"`
	NewSL      string `csv:"New SL" json:"new_sl,omitempty"`
	Target     string `csv:"Target" json:"target,omitempty"`
	Note       string `csv:"Note" json:"note,omitempty"`
}

// FormatPrice renders a price with two decimals, halves to even.
func FormatPrice(v *float64) string {
	if v == nil {
		return ""
	}
	return decimal.NewFromFloat(*v).StringFixedBank(2)
}

func formatStrike(v *int) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%d", *v)
}

// ToRows converts events to order-log rows, keeping their order.
func ToRows(events []models.TradeEvent) []*OrderRow {
	rows := make([]*OrderRow, 0, len(events))
	for _, e := range events {
		rows = append(rows, &OrderRow{
			Date:       utils.DateKey(e.Date),
			Time:       e.Time.String(),
			Action:     string(e.Action),
			OptionType: string(e.OptionType),
			Strike:     formatStrike(e.Strike),
			Price:      FormatPrice(e.Price),
			NewSL:      FormatPrice(e.NewSL),
			Target:     FormatPrice(e.Target),
			Note:       e.Note,
		})
	}
	return rows
}

// WriteOrderLog writes the events as CSV with a header row.
func WriteOrderLog(w io.Writer, events []models.TradeEvent) error {
	rows := ToRows(events)
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("failed to marshal order log: %w", err)
	}
	return nil
}

// WriteOrderLogFile writes the order log to path, creating its directory.
func WriteOrderLogFile(path string, events []models.TradeEvent) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := WriteOrderLog(file, events); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
