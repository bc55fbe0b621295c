package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"sensex-strangle/internal/report"
	"sensex-strangle/internal/store"
	"sensex-strangle/pkg/utils"
)

func newRunsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect saved backtest runs",
		Long:  "List, show and delete runs saved with 'backtest --persist' or store.enabled.",
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List saved runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			s, err := app.Store()
			if err != nil {
				return err
			}

			runs, err := s.ListRuns(cmd.Context(), store.RunFilter{Limit: limit})
			if err != nil {
				return err
			}

			if output.IsJSON() {
				views := make([]runView, 0, len(runs))
				for i := range runs {
					views = append(views, newRunView(&runs[i]))
				}
				return output.JSON(views)
			}

			if len(runs) == 0 {
				output.Dim("No saved runs")
				return nil
			}

			table := NewTable(output, "Run", "Created", "Range", "Days", "Skipped", "SL hits", "Re-entries", "Premium")
			for _, r := range runs {
				table.AddRow(
					r.ID,
					FormatDateTime(r.CreatedAt, utils.IndiaLocation),
					r.StartKey+"-"+r.EndKey,
					fmt.Sprintf("%d", r.DaysSimulated),
					fmt.Sprintf("%d", r.DaysSkipped),
					fmt.Sprintf("%d", r.StopLosses),
					fmt.Sprintf("%d", r.Reentries),
					r.EntryPremium,
				)
			}
			table.Render()
			return nil
		},
	}
	list.Flags().IntVarP(&limit, "limit", "n", 20, "maximum runs to list (0 for all)")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a saved run and its order log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			s, err := app.Store()
			if err != nil {
				return err
			}

			run, err := s.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			events, err := s.GetRunEvents(cmd.Context(), run.ID)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(struct {
					runView
					Events []*report.OrderRow `json:"events"`
				}{newRunView(run), report.ToRows(events)})
			}

			p := run.Params
			output.KeyValues("Run "+run.ID, [][2]string{
				{"Created", FormatDateTime(run.CreatedAt, utils.IndiaLocation)},
				{"Range", run.StartKey + " → " + run.EndKey},
				{"Entry", fmt.Sprintf("%s, ±%d from spot rounded to %d", p.EntryTime, p.StrikeOffset, p.StrikeStep)},
				{"Stop / re-entry", fmt.Sprintf("%.2f× premium, SL %.2f× price", p.StopLossMultiplier, p.ReentrySLFactor)},
				{"Days", fmt.Sprintf("%d simulated, %d skipped", run.DaysSimulated, run.DaysSkipped)},
				{"Outcomes", fmt.Sprintf("%d held, %d stopped, %d re-entered", run.Holds, run.StopLosses, run.Reentries)},
				{"Entry premium", run.EntryPremium + " pts"},
				{"Duration", FormatDuration(run.Duration)},
			})
			output.Println()
			printEvents(output, events)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <run-id>",
		Short: "Delete a saved run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			s, err := app.Store()
			if err != nil {
				return err
			}
			if err := s.DeleteRun(cmd.Context(), args[0]); err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]string{"deleted": args[0]})
			}
			output.Success("✓ Run %s deleted", args[0])
			return nil
		},
	})

	return cmd
}

// runView is the JSON shape of a stored run.
type runView struct {
	ID            string `json:"run_id"`
	Created       string `json:"created_at"`
	Start         string `json:"start"`
	End           string `json:"end"`
	Duration      string `json:"duration"`
	DaysRequested int    `json:"days_requested"`
	DaysSimulated int    `json:"days_simulated"`
	DaysSkipped   int    `json:"days_skipped"`
	Holds         int    `json:"holds"`
	StopLosses    int    `json:"stop_losses"`
	Reentries     int    `json:"reentries"`
	ReentryGaps   int    `json:"reentry_gaps"`
	Events        int    `json:"events"`
	EntryPremium  string `json:"entry_premium"`
}

func newRunView(r *store.RunRecord) runView {
	return runView{
		ID:            r.ID,
		Created:       r.CreatedAt.In(utils.IndiaLocation).Format("2006-01-02T15:04:05-07:00"),
		Start:         r.StartKey,
		End:           r.EndKey,
		Duration:      r.Duration.String(),
		DaysRequested: r.DaysRequested,
		DaysSimulated: r.DaysSimulated,
		DaysSkipped:   r.DaysSkipped,
		Holds:         r.Holds,
		StopLosses:    r.StopLosses,
		Reentries:     r.Reentries,
		ReentryGaps:   r.ReentryGaps,
		Events:        r.Events,
		EntryPremium:  r.EntryPremium,
	}
}
