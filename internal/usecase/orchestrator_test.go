package usecase

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
	"MarketPulse/internal/match"
	"MarketPulse/internal/source"
	"MarketPulse/pkg/logger"
)

// memoryStore keeps everything keyed by id so upserts replace in place.
type memoryStore struct {
	mu        sync.Mutex
	signals   map[string]*models.Signal
	fins      map[string]*models.FinancialSignal
	trends    map[string]*models.ProductTrend
	matches   map[string]*models.StrategicMatch
	sectors   map[string]*models.SectorPerformance
	createdAt map[string]time.Time
	now       func() time.Time
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		signals:   map[string]*models.Signal{},
		fins:      map[string]*models.FinancialSignal{},
		trends:    map[string]*models.ProductTrend{},
		matches:   map[string]*models.StrategicMatch{},
		sectors:   map[string]*models.SectorPerformance{},
		createdAt: map[string]time.Time{},
		now:       time.Now,
	}
}

func (s *memoryStore) Init(context.Context) error { return nil }

func (s *memoryStore) UpsertSignals(_ context.Context, sigs []*models.Signal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sig := range sigs {
		s.signals[sig.ID] = sig
		s.createdAt[sig.ID] = s.now()
	}
	return nil
}

func (s *memoryStore) UpsertFinancials(_ context.Context, sigs []*models.FinancialSignal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sig := range sigs {
		s.fins[sig.ID] = sig
		s.createdAt[sig.ID] = s.now()
	}
	return nil
}

func (s *memoryStore) UpsertTrends(_ context.Context, trends []*models.ProductTrend) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tr := range trends {
		s.trends[tr.ID] = tr
		s.createdAt[tr.ID] = s.now()
	}
	return nil
}

func (s *memoryStore) UpsertMatches(_ context.Context, ms []*models.StrategicMatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range ms {
		s.matches[m.ID] = m
		s.createdAt[m.ID] = s.now()
	}
	return nil
}

func (s *memoryStore) UpsertSectorPerformance(_ context.Context, rows []*models.SectorPerformance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.sectors[r.Sector] = r
	}
	return nil
}

func (s *memoryStore) QuerySignals(_ context.Context, f drepo.SignalFilter) ([]*models.Signal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Signal
	for _, sig := range s.signals {
		if f.Platform != "" && sig.Platform != f.Platform {
			continue
		}
		out = append(out, sig)
	}
	return out, nil
}

func (s *memoryStore) QueryFinancials(context.Context, drepo.FinancialFilter) ([]*models.FinancialSignal, error) {
	return nil, nil
}

func (s *memoryStore) QueryTrends(context.Context, drepo.TrendFilter) ([]*models.ProductTrend, error) {
	return nil, nil
}

func (s *memoryStore) QueryMatches(context.Context, drepo.MatchFilter) ([]*models.StrategicMatch, error) {
	return nil, nil
}

func (s *memoryStore) SectorPerformance(context.Context, int) ([]*models.SectorPerformance, error) {
	return nil, nil
}

func (s *memoryStore) Purge(_ context.Context, olderThan time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, at := range s.createdAt {
		if at.Before(olderThan) {
			delete(s.signals, id)
			delete(s.fins, id)
			delete(s.trends, id)
			delete(s.matches, id)
			delete(s.createdAt, id)
		}
	}
	return nil
}

func (s *memoryStore) Health(context.Context) error { return nil }
func (s *memoryStore) Close() error                 { return nil }

type nopPublisher struct{}

func (nopPublisher) PublishSignals(context.Context, []*models.Signal) error { return nil }
func (nopPublisher) Close() error                                           { return nil }

type recordingBroadcaster struct {
	mu      sync.Mutex
	signals int
	matches int
}

func (b *recordingBroadcaster) BroadcastSignals(s []*models.Signal) {
	b.mu.Lock()
	b.signals += len(s)
	b.mu.Unlock()
}

func (b *recordingBroadcaster) BroadcastMatches(m []*models.StrategicMatch) {
	b.mu.Lock()
	b.matches += len(m)
	b.mu.Unlock()
}

func (b *recordingBroadcaster) ClientCount() int { return 0 }

type recordingMetrics struct {
	mu        sync.Mutex
	ingested  map[string]int
	fallbacks map[string]int
	errs      map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{ingested: map[string]int{}, fallbacks: map[string]int{}, errs: map[string]int{}}
}

func (m *recordingMetrics) RecordIngested(platform string, count int) {
	m.mu.Lock()
	m.ingested[platform] += count
	m.mu.Unlock()
}

func (m *recordingMetrics) RecordFallback(platform string) {
	m.mu.Lock()
	m.fallbacks[platform]++
	m.mu.Unlock()
}

func (m *recordingMetrics) RecordError(kind string) {
	m.mu.Lock()
	m.errs[kind]++
	m.mu.Unlock()
}

func (m *recordingMetrics) RecordFetchLatency(string, float64) {}
func (m *recordingMetrics) SetWebsocketClients(int)            {}

type stubSignalSource struct {
	name    string
	signals []*models.Signal
	err     error
}

func (s *stubSignalSource) Name() string { return s.name }
func (s *stubSignalSource) Fetch(context.Context) ([]*models.Signal, error) {
	return s.signals, s.err
}

type stubFinancialSource struct {
	name string
	fins []*models.FinancialSignal
}

func (s *stubFinancialSource) Name() string { return s.name }
func (s *stubFinancialSource) Fetch(context.Context) ([]*models.FinancialSignal, error) {
	return s.fins, nil
}

type stubProductSource struct {
	name   string
	trends []*models.ProductTrend
}

func (s *stubProductSource) Name() string { return s.name }
func (s *stubProductSource) Fetch(context.Context) ([]*models.ProductTrend, error) {
	return s.trends, nil
}

func testOrchestrator(t *testing.T, opts OrchestratorOptions) (*Orchestrator, *memoryStore, *recordingBroadcaster, *recordingMetrics) {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatal(err)
	}
	store := newMemoryStore()
	bc := &recordingBroadcaster{}
	metrics := newRecordingMetrics()
	if opts.Engine == nil {
		opts.Engine = match.NewEngine(rand.New(rand.NewSource(1)))
	}
	o := NewOrchestrator(opts, store, nopPublisher{}, bc, metrics, log)
	return o, store, bc, metrics
}

func makeSignal(id string, fallback bool) *models.Signal {
	meta := map[string]any{}
	if fallback {
		meta["fallback"] = true
	}
	return &models.Signal{
		ID:       id,
		Platform: models.PlatformTwitter,
		Kind:     models.KindSocial,
		Title:    "t",
		Metadata: meta,
	}
}

func TestSocialCycleStoresAndBroadcasts(t *testing.T) {
	src := &stubSignalSource{name: "twitter", signals: []*models.Signal{
		makeSignal("a", false), makeSignal("b", true),
	}}
	o, store, bc, metrics := testOrchestrator(t, OrchestratorOptions{
		SignalSources: []source.SignalSource{src},
	})

	if err := o.RunSocialCycle(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(store.signals) != 2 {
		t.Errorf("stored %d signals, want 2", len(store.signals))
	}
	if bc.signals != 2 {
		t.Errorf("broadcast %d signals, want 2", bc.signals)
	}
	if metrics.ingested["twitter"] != 2 {
		t.Errorf("ingested metric = %d", metrics.ingested["twitter"])
	}
	if metrics.fallbacks["twitter"] != 1 {
		t.Errorf("fallback metric = %d", metrics.fallbacks["twitter"])
	}
}

func TestUpsertIdempotence(t *testing.T) {
	src := &stubSignalSource{name: "twitter", signals: []*models.Signal{
		makeSignal("same_id", false),
	}}
	o, store, _, _ := testOrchestrator(t, OrchestratorOptions{SignalSources: []source.SignalSource{src}})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := o.RunSocialCycle(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if len(store.signals) != 1 {
		t.Errorf("store has %d signals after re-ingest, want 1", len(store.signals))
	}
}

func TestSourceFailureIsolation(t *testing.T) {
	bad := &stubSignalSource{name: "twitter", err: errors.New("boom")}
	good := &stubSignalSource{name: "reddit", signals: []*models.Signal{makeSignal("ok", false)}}
	o, store, _, metrics := testOrchestrator(t, OrchestratorOptions{SignalSources: []source.SignalSource{bad, good}})

	if err := o.RunSocialCycle(context.Background()); err != nil {
		t.Fatalf("cycle failed despite healthy source: %v", err)
	}
	if len(store.signals) != 1 {
		t.Errorf("stored %d signals, want 1", len(store.signals))
	}
	if metrics.errs["fetch_twitter"] != 1 {
		t.Errorf("fetch error metric = %d", metrics.errs["fetch_twitter"])
	}
}

func TestFinancialAndProductCyclesRecordFallback(t *testing.T) {
	fin := &stubFinancialSource{name: "yahoo_finance", fins: []*models.FinancialSignal{
		{ID: "f1", Sector: "Technology", Price: 100, Metadata: map[string]any{"fallback": true}},
	}}
	prod := &stubProductSource{name: "amazon", trends: []*models.ProductTrend{
		{ID: "p1", ProductName: "lamp", Metadata: map[string]any{"fallback": true}},
	}}
	o, _, _, metrics := testOrchestrator(t, OrchestratorOptions{
		FinancialSources: []source.FinancialSource{fin},
		ProductSources:   []source.ProductSource{prod},
	})

	ctx := context.Background()
	if err := o.RunFinancialCycle(ctx); err != nil {
		t.Fatal(err)
	}
	if err := o.RunProductCycle(ctx); err != nil {
		t.Fatal(err)
	}
	if metrics.fallbacks["yahoo_finance"] != 1 {
		t.Errorf("financial fallback metric = %d", metrics.fallbacks["yahoo_finance"])
	}
	if metrics.fallbacks["amazon"] != 1 {
		t.Errorf("product fallback metric = %d", metrics.fallbacks["amazon"])
	}
}

func TestMatchCycle(t *testing.T) {
	o, store, bc, _ := testOrchestrator(t, OrchestratorOptions{
		MatchSeeds: []string{"smartphone"},
	})

	if err := o.RunMatchCycle(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(store.matches) == 0 || len(store.matches) > 5 {
		t.Errorf("stored %d matches, want 1..5", len(store.matches))
	}
	if bc.matches == 0 {
		t.Error("matches not broadcast")
	}
}

func TestCleanupRetention(t *testing.T) {
	src := &stubSignalSource{name: "twitter", signals: []*models.Signal{makeSignal("old", false)}}
	o, store, _, _ := testOrchestrator(t, OrchestratorOptions{
		SignalSources: []source.SignalSource{src},
		Retention:     7 * 24 * time.Hour,
	})

	ctx := context.Background()
	past := time.Now().Add(-8 * 24 * time.Hour)
	store.now = func() time.Time { return past }
	if err := o.RunSocialCycle(ctx); err != nil {
		t.Fatal(err)
	}

	store.now = time.Now
	src.signals = []*models.Signal{makeSignal("fresh", false)}
	if err := o.RunSocialCycle(ctx); err != nil {
		t.Fatal(err)
	}

	if err := o.RunCleanup(ctx); err != nil {
		t.Fatal(err)
	}
	if _, ok := store.signals["old"]; ok {
		t.Error("expired signal survived cleanup")
	}
	if _, ok := store.signals["fresh"]; !ok {
		t.Error("fresh signal removed by cleanup")
	}
}

func TestFetchConcurrencyIsBounded(t *testing.T) {
	var mu sync.Mutex
	active, peak := 0, 0

	fetches := make([]func(context.Context) ([]*models.Signal, error), 10)
	for i := range fetches {
		fetches[i] = func(context.Context) ([]*models.Signal, error) {
			mu.Lock()
			active++
			if active > peak {
				peak = active
			}
			mu.Unlock()
			time.Sleep(10 * time.Millisecond)
			mu.Lock()
			active--
			mu.Unlock()
			return nil, nil
		}
	}

	runFetches(context.Background(), fetches)
	if peak > maxConcurrentFetches {
		t.Errorf("peak concurrency %d exceeds cap %d", peak, maxConcurrentFetches)
	}
}

func TestAggregateSectors(t *testing.T) {
	now := time.Now()
	signals := []*models.FinancialSignal{
		{ID: "1", Sector: "Technology", ChangePercent: 2, Volume: 100, Volatility: 0.5, TrendDirection: models.TrendBullish},
		{ID: "2", Sector: "Technology", ChangePercent: 4, Volume: 200, Volatility: 1.5, TrendDirection: models.TrendBullish},
		{ID: "3", Sector: "Finance", ChangePercent: -1, Volume: 50, Volatility: 0.2, TrendDirection: models.TrendBearish},
	}

	sectors := AggregateSectors(signals, now)
	if len(sectors) != 2 {
		t.Fatalf("got %d sectors, want 2", len(sectors))
	}

	fin, tech := sectors[0], sectors[1]
	if fin.Sector != "Finance" || tech.Sector != "Technology" {
		t.Fatalf("sector order: %s, %s", fin.Sector, tech.Sector)
	}
	if tech.AvgChange != 3 || tech.TotalVolume != 300 || tech.StockCount != 2 {
		t.Errorf("tech aggregate = %+v", tech)
	}
	if tech.TrendDirection != models.TrendBullish {
		t.Errorf("tech trend = %v", tech.TrendDirection)
	}
	if fin.TrendDirection != models.TrendBearish {
		t.Errorf("finance trend = %v", fin.TrendDirection)
	}
}
