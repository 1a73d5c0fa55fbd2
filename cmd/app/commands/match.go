package commands

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"MarketPulse/internal/match"
)

var matchGoals []string

var matchCmd = &cobra.Command{
	Use:   "match <product>",
	Short: "Generate strategic product matches for a primary product",
	Args:  cobra.ExactArgs(1),
	RunE:  runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)
	matchCmd.Flags().StringSliceVar(&matchGoals, "goals", nil, "business goals, e.g. increase_revenue,expand_market")
}

func runMatch(cmd *cobra.Command, args []string) error {
	engine := match.NewEngine(rand.New(rand.NewSource(time.Now().UnixNano())))
	matches := engine.Generate(args[0], matchGoals)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(matches); err != nil {
		return fmt.Errorf("encode matches: %w", err)
	}
	return nil
}
