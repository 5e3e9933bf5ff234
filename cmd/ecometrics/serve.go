package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ecometrics/internal/di"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := di.InitApp(&flags)
		if err != nil {
			return fmt.Errorf("initializing app: %w", err)
		}
		return app.Run()
	},
}
