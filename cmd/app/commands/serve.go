package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"MarketPulse/internal/di"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the full service: scheduled ingestion, HTTP API and websocket hub",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("initialize app: %w", err)
	}

	return app.Run()
}
