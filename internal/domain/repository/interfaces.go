package repository

import (
	"context"
	"time"

	"MarketPulse/internal/domain/models"
)

// SignalFilter narrows Storage queries. Zero values mean "any".
type SignalFilter struct {
	Platform models.Platform
	Kind     models.SignalKind
	Sector   string
	Since    time.Time
	Limit    int
}

// FinancialFilter narrows financial-signal queries.
type FinancialFilter struct {
	Symbol string
	Sector string
	Limit  int
}

// TrendFilter narrows product-trend queries.
type TrendFilter struct {
	Category string
	Status   models.TrendStatus
	Limit    int
}

// MatchFilter narrows strategic-match queries.
type MatchFilter struct {
	PrimaryProduct string
	MinScore       float64
	Limit          int
}

// Storage persists every signal family. Upserts replace by id: storing a
// record whose id already exists overwrites the previous row.
type Storage interface {
	Init(ctx context.Context) error // ensure tables, health checks
	UpsertSignals(ctx context.Context, signals []*models.Signal) error
	UpsertFinancials(ctx context.Context, signals []*models.FinancialSignal) error
	UpsertTrends(ctx context.Context, trends []*models.ProductTrend) error
	UpsertMatches(ctx context.Context, matches []*models.StrategicMatch) error
	UpsertSectorPerformance(ctx context.Context, rows []*models.SectorPerformance) error
	QuerySignals(ctx context.Context, f SignalFilter) ([]*models.Signal, error)
	QueryFinancials(ctx context.Context, f FinancialFilter) ([]*models.FinancialSignal, error)
	QueryTrends(ctx context.Context, f TrendFilter) ([]*models.ProductTrend, error)
	QueryMatches(ctx context.Context, f MatchFilter) ([]*models.StrategicMatch, error)
	SectorPerformance(ctx context.Context, limit int) ([]*models.SectorPerformance, error)
	Purge(ctx context.Context, olderThan time.Time) error
	Health(ctx context.Context) error // ping
	Close() error
}

// Publisher pushes normalized signals onto an external bus.
type Publisher interface {
	PublishSignals(ctx context.Context, signals []*models.Signal) error
	Close() error
}

// Broadcaster fans signal updates out to connected realtime clients.
type Broadcaster interface {
	BroadcastSignals(signals []*models.Signal)
	BroadcastMatches(matches []*models.StrategicMatch)
	ClientCount() int
}

type Metrics interface {
	RecordIngested(platform string, count int)
	RecordFallback(platform string)
	RecordError(kind string)
	RecordFetchLatency(platform string, seconds float64)
	SetWebsocketClients(n int)
}
