package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"ecometrics/internal"
	"ecometrics/internal/models"
)

var historyCmd = &cobra.Command{
	Use:   "history <application-id>",
	Short: "List issued certificates, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(false, func(l *internal.Ledger) error {
			return printHistory(cmd.Context(), cmd.OutOrStdout(), l, args[0])
		})
	},
}

func printHistory(ctx context.Context, w io.Writer, l *internal.Ledger, appID string) error {
	certs, err := l.Certificates.History(ctx, appID)
	if err != nil {
		return err
	}
	if len(certs) == 0 {
		fmt.Fprintln(w, "No certificates issued yet.")
		return nil
	}

	now := l.Clock.Now()
	fmt.Fprintf(w, "%-12s %-10s %-12s %s\n", "Issued", "Badge", "Valid until", "Status")
	for _, c := range certs {
		status := "valid"
		if !c.IsValid(now) {
			status = "expired"
		}
		fmt.Fprintf(w, "%-12s %-10s %-12s %s\n",
			c.IssuedAt.Format(models.DateLayout), c.BadgeLevel, c.ValidUntil.Format(models.DateLayout), status)
	}
	return nil
}
