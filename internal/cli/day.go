package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"sensex-strangle/internal/models"
	"sensex-strangle/internal/report"
	"sensex-strangle/internal/trading"
	"sensex-strangle/pkg/utils"
)

func newDayCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "day <DDMMYYYY>",
		Short: "Simulate one day and print its order book",
		Example: `  strangle day 05012024
  strangle day 2024-01-05 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			day, err := utils.ParseDate(args[0])
			if err != nil {
				return err
			}
			params, err := app.Config.StrategyParams()
			if err != nil {
				return err
			}

			sim := trading.NewSimulator(app.Loader(), params, app.Logger)
			res := sim.RunDay(cmd.Context(), day)
			if res.Skipped() {
				if output.IsJSON() {
					return output.JSON(map[string]string{"day": res.Key, "skipped": res.SkipReason.Error()})
				}
				output.Warning("Day %s skipped: %v", res.Key, res.SkipReason)
				return nil
			}

			if output.IsJSON() {
				return output.JSON(report.ToRows(res.Book.Events))
			}
			printDay(output, res, params)
			return nil
		},
	}
}

func printDay(output *Output, res *trading.DayResult, p trading.StrategyParams) {
	s := res.Strangle
	expiry := "-"
	if !s.Expiry.IsZero() {
		expiry = s.Expiry.Format("02 Jan 2006")
	}
	output.KeyValues("Day "+res.Key, [][2]string{
		{"Expiry", expiry},
		{"Spot at " + s.EntryTime.String(), fmt.Sprintf("%.2f (rounded %d)", s.Spot, s.Rounded)},
		{"Call", fmt.Sprintf("%d CE @ %.2f", s.Call.Strike, s.Call.EntryPrice)},
		{"Put", fmt.Sprintf("%d PE @ %.2f", s.Put.Strike, s.Put.EntryPrice)},
		{"Stop-loss at", fmt.Sprintf("%.2f combined", trading.Threshold(s, p.StopLossMultiplier))},
	})
	output.Println()

	printEvents(output, res.Book.Events)

	if res.ReentryGap != nil {
		output.Println()
		output.Warning("Re-entry not recorded: %v", res.ReentryGap)
	}
}

func printEvents(output *Output, events []models.TradeEvent) {
	table := NewTable(output, "Date", "Time", "Action", "Type", "Strike", "Price", "New SL", "Target", "Note")
	rows := report.ToRows(events)
	for i, r := range rows {
		table.AddRow(r.Date, r.Time, output.ActionText(events[i].Action), r.OptionType,
			r.Strike, r.Price, r.NewSL, r.Target, TruncateString(r.Note, 60))
	}
	table.Render()
}
