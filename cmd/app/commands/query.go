package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"MarketPulse/internal/di"
	"MarketPulse/internal/domain/models"
	"MarketPulse/internal/domain/repository"
	"MarketPulse/pkg/util"
)

var (
	queryPlatform string
	querySector   string
	queryKind     string
	querySince    string
	queryLimit    int
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query stored signals and print them as JSON",
	RunE:  runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVar(&queryPlatform, "platform", "", "filter by platform (twitter, reddit, ...)")
	queryCmd.Flags().StringVar(&querySector, "sector", "", "filter by sector")
	queryCmd.Flags().StringVar(&queryKind, "type", "", "filter by signal type (social, financial, product, trend, news)")
	queryCmd.Flags().StringVar(&querySince, "since", "", "only signals at or after this time (RFC3339 or unix seconds)")
	queryCmd.Flags().IntVar(&queryLimit, "limit", 50, "maximum rows")
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := di.InitializeStorage(cfg)
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	signals, err := store.QuerySignals(ctx, repository.SignalFilter{
		Platform: models.ParsePlatform(queryPlatform),
		Kind:     models.ParseSignalKind(queryKind),
		Sector:   querySector,
		Since:    util.ParseTimeDefault(querySince, time.Time{}),
		Limit:    queryLimit,
	})
	if err != nil {
		return fmt.Errorf("query signals: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(signals)
}
