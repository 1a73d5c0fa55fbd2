package source

import (
	"context"

	"MarketPulse/internal/domain/models"
)

// SignalSource produces social/trend signals from one external platform.
// Implementations never fail the whole cycle: when the upstream is
// unreachable, rate limited, or unconfigured they return fallback data.
type SignalSource interface {
	Name() string
	Fetch(ctx context.Context) ([]*models.Signal, error)
}

// FinancialSource produces financial signals.
type FinancialSource interface {
	Name() string
	Fetch(ctx context.Context) ([]*models.FinancialSignal, error)
}

// ProductSource produces product trend observations.
type ProductSource interface {
	Name() string
	Fetch(ctx context.Context) ([]*models.ProductTrend, error)
}
