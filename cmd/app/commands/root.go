package commands

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"MarketPulse/pkg/config"
)

var configFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "marketpulse",
	Short: "Market signal ingestion and strategy matching service",
	Long: `MarketPulse collects social, financial and product signals from
external sources, normalizes them into a unified schema, scores
strategic product matches and serves the results over HTTP and
websocket.

Examples:
  go run ./cmd/app serve
  go run ./cmd/app ingest
  go run ./cmd/app match smartphone --goals increase_revenue`,
}

// Execute runs the CLI. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "config/config.yaml", "config file path")
}

// loadConfig reads the YAML config with .env and environment overrides
// applied. A missing .env file is not an error.
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()
	return config.LoadWithEnv(configFile)
}
