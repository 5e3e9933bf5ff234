package main

import (
	"context"
	"fmt"
	"io"

	"github.com/juju/errors"
	"github.com/spf13/cobra"

	"ecometrics/internal"
	"ecometrics/internal/carbon"
	"ecometrics/internal/models"
	"ecometrics/internal/services"
)

var statsCmd = &cobra.Command{
	Use:   "stats <application-id>",
	Short: "Show footprint totals and the projected monthly rate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(false, func(l *internal.Ledger) error {
			return printStats(cmd.Context(), cmd.OutOrStdout(), l, args[0])
		})
	},
}

func printStats(ctx context.Context, w io.Writer, l *internal.Ledger, appID string) error {
	app, err := l.Applications.Get(ctx, appID)
	if err != nil {
		return err
	}
	totals, err := l.Aggregate.Totals(ctx, appID)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s (%s)\n", app.Name, app.ID)
	fmt.Fprintln(w, "─────────────────────")
	if totals.Count == 0 {
		fmt.Fprintln(w, "  No metrics recorded yet")
		return nil
	}
	fmt.Fprintf(w, "  Days:      %d (%s to %s)\n", totals.Count, models.FormatDay(*totals.From), models.FormatDay(*totals.To))
	fmt.Fprintf(w, "  Requests:  %d\n", totals.TotalRequests)
	fmt.Fprintf(w, "  Storage:   %.3f GB\n", totals.TotalStorageGB)
	fmt.Fprintf(w, "  CPU:       %.3f h\n", totals.TotalCPUHours)
	fmt.Fprintf(w, "  Carbon:    %.3f kg (%.3f kg/day)\n", totals.TotalCarbonKg, *totals.AverageCarbonKg)

	asOf := l.Clock.Now()
	window, err := l.Aggregate.TrailingWindow(ctx, appID, asOf, carbon.WindowDays)
	if err != nil {
		return err
	}
	projection, err := services.Project(window)
	if errors.Is(err, models.ErrInsufficientData) {
		fmt.Fprintf(w, "  Projected: no metrics in the last %d days\n", carbon.WindowDays)
		return nil
	}
	if err != nil {
		return err
	}
	monthly := projection.MonthlyKg.InexactFloat64()
	fmt.Fprintf(w, "  Projected: %.3f kg/month over %d days, %s\n", monthly, projection.Days, carbon.Classify(monthly))
	return nil
}
