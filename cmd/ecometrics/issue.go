package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"ecometrics/internal"
	"ecometrics/internal/models"
)

var issueCmd = &cobra.Command{
	Use:   "issue <application-id>",
	Short: "Issue a carbon certificate from the last 30 days of metrics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(true, func(l *internal.Ledger) error {
			return issueCertificate(cmd.Context(), cmd.OutOrStdout(), l, args[0])
		})
	},
}

func issueCertificate(ctx context.Context, w io.Writer, l *internal.Ledger, appID string) error {
	cert, assessment, err := l.Certificates.Issue(ctx, appID, l.Clock.Now())
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Certificate %s: %s\n", cert.ID, cert.BadgeLevel)
	fmt.Fprintf(w, "  Days analyzed:   %d\n", assessment.DaysAnalyzed)
	fmt.Fprintf(w, "  Total carbon:    %.3f kg\n", assessment.TotalCarbonKg)
	fmt.Fprintf(w, "  Monthly average: %.3f kg\n", assessment.MonthlyAverageKg)
	fmt.Fprintf(w, "  Valid until:     %s\n", cert.ValidUntil.Format(models.DateLayout))
	return nil
}
