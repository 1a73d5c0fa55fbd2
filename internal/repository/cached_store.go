package repository

import (
	"context"
	"time"

	"MarketPulse/internal/domain/models"
	"MarketPulse/internal/domain/repository"
	"MarketPulse/pkg/cache"
)

// CachedStore wraps Storage with a read-through cache on the hot query
// paths. Websocket snapshots and dashboard polls hit the same few
// queries every second; upserts invalidate the affected keys.
type CachedStore struct {
	repository.Storage
	cache cache.Service
	ttl   time.Duration
}

func NewCachedStore(inner repository.Storage, c cache.Service, ttl time.Duration) repository.Storage {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CachedStore{Storage: inner, cache: c, ttl: ttl}
}

func (s *CachedStore) QuerySignals(ctx context.Context, f repository.SignalFilter) ([]*models.Signal, error) {
	key := cache.GenerateKeyWithParams("signals", f.Platform, f.Kind, f.Sector, f.Since.Unix(), f.Limit)
	var cached []*models.Signal
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	}

	out, err := s.Storage.QuerySignals(ctx, f)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, out, s.ttl)
	return out, nil
}

func (s *CachedStore) QueryMatches(ctx context.Context, f repository.MatchFilter) ([]*models.StrategicMatch, error) {
	key := cache.GenerateKeyWithParams("matches", f.PrimaryProduct, f.MinScore, f.Limit)
	var cached []*models.StrategicMatch
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	}

	out, err := s.Storage.QueryMatches(ctx, f)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, out, s.ttl)
	return out, nil
}

func (s *CachedStore) UpsertSignals(ctx context.Context, signals []*models.Signal) error {
	if err := s.Storage.UpsertSignals(ctx, signals); err != nil {
		return err
	}
	_ = s.cache.DeleteByPattern(ctx, cache.BuildPattern("signals:"))
	return nil
}

func (s *CachedStore) UpsertMatches(ctx context.Context, matches []*models.StrategicMatch) error {
	if err := s.Storage.UpsertMatches(ctx, matches); err != nil {
		return err
	}
	_ = s.cache.DeleteByPattern(ctx, cache.BuildPattern("matches:"))
	return nil
}
