package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
	"MarketPulse/internal/match"
	"MarketPulse/internal/source"
	"MarketPulse/pkg/logger"
)

// Orchestrator drives the ingestion cycles. Each source family runs its
// own cycle; a failing source never stops the others, and a failing
// cycle never stops the scheduler.
type Orchestrator struct {
	signalSources    []source.SignalSource
	financialSources []source.FinancialSource
	productSources   []source.ProductSource
	engine           *match.Engine
	matchSeeds       []string

	store       drepo.Storage
	publisher   drepo.Publisher
	broadcaster drepo.Broadcaster
	metrics     drepo.Metrics
	log         *logger.Logger

	retention time.Duration
	now       func() time.Time
}

type OrchestratorOptions struct {
	SignalSources    []source.SignalSource
	FinancialSources []source.FinancialSource
	ProductSources   []source.ProductSource
	Engine           *match.Engine
	MatchSeeds       []string // primary products matched on the periodic cycle
	Retention        time.Duration
}

func NewOrchestrator(opts OrchestratorOptions, store drepo.Storage, publisher drepo.Publisher,
	broadcaster drepo.Broadcaster, metrics drepo.Metrics, log *logger.Logger) *Orchestrator {
	if opts.Retention <= 0 {
		opts.Retention = 7 * 24 * time.Hour
	}
	if len(opts.MatchSeeds) == 0 {
		opts.MatchSeeds = []string{"smartphone", "laptop", "coffee_maker", "fitness_tracker"}
	}
	return &Orchestrator{
		signalSources:    opts.SignalSources,
		financialSources: opts.FinancialSources,
		productSources:   opts.ProductSources,
		engine:           opts.Engine,
		matchSeeds:       opts.MatchSeeds,
		store:            store,
		publisher:        publisher,
		broadcaster:      broadcaster,
		metrics:          metrics,
		log:              log,
		retention:        opts.Retention,
		now:              time.Now,
	}
}

// maxConcurrentFetches caps simultaneous outbound fetches per cycle.
const maxConcurrentFetches = 4

type fetchOutcome[T any] struct {
	items   []T
	err     error
	elapsed time.Duration
}

// runFetches executes every fetch with bounded parallelism and returns
// outcomes in input order.
func runFetches[T any](ctx context.Context, fetches []func(context.Context) ([]T, error)) []fetchOutcome[T] {
	sem := make(chan struct{}, maxConcurrentFetches)
	out := make([]fetchOutcome[T], len(fetches))
	var wg sync.WaitGroup
	for i, fetch := range fetches {
		wg.Add(1)
		go func(i int, fetch func(context.Context) ([]T, error)) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			start := time.Now()
			items, err := fetch(ctx)
			out[i] = fetchOutcome[T]{items: items, err: err, elapsed: time.Since(start)}
		}(i, fetch)
	}
	wg.Wait()
	return out
}

// RunSocialCycle fetches every signal source, stores the batch, publishes
// it to the bus and broadcasts it to websocket clients.
func (o *Orchestrator) RunSocialCycle(ctx context.Context) error {
	fetches := make([]func(context.Context) ([]*models.Signal, error), len(o.signalSources))
	for i, src := range o.signalSources {
		fetches[i] = src.Fetch
	}

	var collected []*models.Signal
	for i, oc := range runFetches(ctx, fetches) {
		name := o.signalSources[i].Name()
		o.metrics.RecordFetchLatency(name, oc.elapsed.Seconds())
		if oc.err != nil {
			o.metrics.RecordError("fetch_" + name)
			o.log.Error("signal source failed", logger.String("source", name), logger.Error(oc.err))
			continue
		}
		o.metrics.RecordIngested(name, len(oc.items))
		if hasFallback(oc.items, signalMetadata) {
			o.metrics.RecordFallback(name)
		}
		collected = append(collected, oc.items...)
	}
	if len(collected) == 0 {
		return nil
	}

	if err := o.store.UpsertSignals(ctx, collected); err != nil {
		o.metrics.RecordError("store_signals")
		return fmt.Errorf("store signals: %w", err)
	}
	if err := o.publisher.PublishSignals(ctx, collected); err != nil {
		o.metrics.RecordError("publish_signals")
		o.log.Warn("signal bus publish failed", logger.Error(err))
	}
	o.broadcaster.BroadcastSignals(collected)
	o.log.Info("social cycle complete", logger.Int("signals", len(collected)))
	return nil
}

// RunFinancialCycle fetches financial sources, stores the signals and the
// per-sector aggregation derived from them.
func (o *Orchestrator) RunFinancialCycle(ctx context.Context) error {
	fetches := make([]func(context.Context) ([]*models.FinancialSignal, error), len(o.financialSources))
	for i, src := range o.financialSources {
		fetches[i] = src.Fetch
	}

	var collected []*models.FinancialSignal
	for i, oc := range runFetches(ctx, fetches) {
		name := o.financialSources[i].Name()
		o.metrics.RecordFetchLatency(name, oc.elapsed.Seconds())
		if oc.err != nil {
			o.metrics.RecordError("fetch_" + name)
			o.log.Error("financial source failed", logger.String("source", name), logger.Error(oc.err))
			continue
		}
		o.metrics.RecordIngested(name, len(oc.items))
		if hasFallback(oc.items, financialMetadata) {
			o.metrics.RecordFallback(name)
		}
		collected = append(collected, oc.items...)
	}
	if len(collected) == 0 {
		return nil
	}

	if err := o.store.UpsertFinancials(ctx, collected); err != nil {
		o.metrics.RecordError("store_financials")
		return fmt.Errorf("store financials: %w", err)
	}
	sectors := AggregateSectors(collected, o.now())
	if err := o.store.UpsertSectorPerformance(ctx, sectors); err != nil {
		o.metrics.RecordError("store_sectors")
		o.log.Warn("sector performance store failed", logger.Error(err))
	}
	o.log.Info("financial cycle complete",
		logger.Int("signals", len(collected)), logger.Int("sectors", len(sectors)))
	return nil
}

// RunProductCycle fetches product sources and stores the trends.
func (o *Orchestrator) RunProductCycle(ctx context.Context) error {
	fetches := make([]func(context.Context) ([]*models.ProductTrend, error), len(o.productSources))
	for i, src := range o.productSources {
		fetches[i] = src.Fetch
	}

	var collected []*models.ProductTrend
	for i, oc := range runFetches(ctx, fetches) {
		name := o.productSources[i].Name()
		o.metrics.RecordFetchLatency(name, oc.elapsed.Seconds())
		if oc.err != nil {
			o.metrics.RecordError("fetch_" + name)
			o.log.Error("product source failed", logger.String("source", name), logger.Error(oc.err))
			continue
		}
		o.metrics.RecordIngested(name, len(oc.items))
		if hasFallback(oc.items, trendMetadata) {
			o.metrics.RecordFallback(name)
		}
		collected = append(collected, oc.items...)
	}
	if len(collected) == 0 {
		return nil
	}

	if err := o.store.UpsertTrends(ctx, collected); err != nil {
		o.metrics.RecordError("store_trends")
		return fmt.Errorf("store trends: %w", err)
	}
	o.log.Info("product cycle complete", logger.Int("trends", len(collected)))
	return nil
}

// RunMatchCycle regenerates strategic matches for the seed products and
// pushes them to websocket clients.
func (o *Orchestrator) RunMatchCycle(ctx context.Context) error {
	var all []*models.StrategicMatch
	for _, seed := range o.matchSeeds {
		all = append(all, o.engine.Generate(seed, nil)...)
	}
	if len(all) == 0 {
		return nil
	}
	if err := o.store.UpsertMatches(ctx, all); err != nil {
		o.metrics.RecordError("store_matches")
		return fmt.Errorf("store matches: %w", err)
	}
	o.broadcaster.BroadcastMatches(all)
	o.log.Info("match cycle complete", logger.Int("matches", len(all)))
	return nil
}

// GenerateMatches runs the engine on demand and persists the result.
func (o *Orchestrator) GenerateMatches(ctx context.Context, primary string, goals []string) ([]*models.StrategicMatch, error) {
	matches := o.engine.Generate(primary, goals)
	if len(matches) == 0 {
		return matches, nil
	}
	if err := o.store.UpsertMatches(ctx, matches); err != nil {
		o.metrics.RecordError("store_matches")
		return nil, fmt.Errorf("store matches: %w", err)
	}
	return matches, nil
}

// IngestExternal stores a signal batch submitted through the API.
func (o *Orchestrator) IngestExternal(ctx context.Context, signals []*models.Signal) error {
	if len(signals) == 0 {
		return nil
	}
	if err := o.store.UpsertSignals(ctx, signals); err != nil {
		o.metrics.RecordError("store_signals")
		return fmt.Errorf("store external signals: %w", err)
	}
	o.metrics.RecordIngested("api", len(signals))
	o.broadcaster.BroadcastSignals(signals)
	return nil
}

// RunCleanup removes rows older than the retention horizon.
func (o *Orchestrator) RunCleanup(ctx context.Context) error {
	horizon := o.now().Add(-o.retention)
	if err := o.store.Purge(ctx, horizon); err != nil {
		o.metrics.RecordError("cleanup")
		return fmt.Errorf("cleanup: %w", err)
	}
	o.log.Info("cleanup complete", logger.String("older_than", horizon.Format(time.RFC3339)))
	return nil
}

// RunAll executes one pass of every cycle. Used by the one-shot CLI mode.
func (o *Orchestrator) RunAll(ctx context.Context) error {
	var firstErr error
	for name, run := range map[string]func(context.Context) error{
		"social":    o.RunSocialCycle,
		"financial": o.RunFinancialCycle,
		"product":   o.RunProductCycle,
		"matches":   o.RunMatchCycle,
	} {
		if err := run(ctx); err != nil {
			o.log.Error("cycle failed", logger.String("cycle", name), logger.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// hasFallback reports whether any item in the batch carries the
// fallback metadata tag set by the source adapters.
func hasFallback[T any](items []T, metadata func(T) map[string]any) bool {
	for _, it := range items {
		if fb, _ := metadata(it)["fallback"].(bool); fb {
			return true
		}
	}
	return false
}

func signalMetadata(s *models.Signal) map[string]any             { return s.Metadata }
func financialMetadata(s *models.FinancialSignal) map[string]any { return s.Metadata }
func trendMetadata(t *models.ProductTrend) map[string]any        { return t.Metadata }
