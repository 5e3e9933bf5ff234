package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ecometrics/internal"
	"ecometrics/internal/di"
	"ecometrics/internal/structures"
)

var flags structures.CliFlags

var rootCmd = &cobra.Command{
	Use:   "ecometrics",
	Short: "Carbon accounting for applications",
	Long: `EcoMetrics records daily usage of applications, derives their carbon
footprint and issues carbon certificates from the trailing 30 day rate.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flags.ConfigPath, "config", "config.yml", "config file")
	rootCmd.PersistentFlags().BoolVar(&flags.DebugMode, "debug", false, "also log to the console")

	rootCmd.AddCommand(serveCmd, statsCmd, issueCmd, historyCmd)
}

// withLedger opens the ledger, runs fn and closes it again. persist writes
// the in-memory snapshot back for commands that change state.
func withLedger(persist bool, fn func(l *internal.Ledger) error) error {
	ledger, err := di.InitLedger(&flags)
	if err != nil {
		return fmt.Errorf("initializing ledger: %w", err)
	}
	if err := ledger.Open(); err != nil {
		ledger.Close(false)
		return fmt.Errorf("opening ledger: %w", err)
	}
	runErr := fn(ledger)
	if err := ledger.Close(persist && runErr == nil); err != nil && runErr == nil {
		return fmt.Errorf("closing ledger: %w", err)
	}
	return runErr
}
