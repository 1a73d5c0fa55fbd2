package source

import (
	"context"

	"MarketPulse/internal/domain/models"
	"MarketPulse/internal/normalize"
	"MarketPulse/pkg/logger"
)

type trendsSource struct {
	normalizer *normalize.Normalizer
	log        *logger.Logger
}

// NewGoogleTrends builds the search-interest source. Google Trends has
// no supported public API, so this source always serves the curated
// dataset; it still participates in the normal pipeline so downstream
// consumers see a uniform stream.
func NewGoogleTrends(n *normalize.Normalizer, log *logger.Logger) SignalSource {
	return &trendsSource{normalizer: n, log: log}
}

func (s *trendsSource) Name() string { return string(models.PlatformGoogleTrends) }

func (s *trendsSource) Fetch(ctx context.Context) ([]*models.Signal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fallbackTrends(s.normalizer), nil
}
