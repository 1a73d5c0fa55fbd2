package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"MarketPulse/internal/service/ratelimit"
	phttp "MarketPulse/pkg/http"
)

func testFetcher(t *testing.T) *Fetcher {
	t.Helper()
	f := NewFetcher(phttp.NewClient(), ratelimit.New(), testLogger(t))
	f.sleep = func(time.Duration) {}
	return f
}

func TestFetcherRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := testFetcher(t)
	budget := Budget{Limit: 10, Window: time.Minute}
	err := f.GetJSON(context.Background(), "flaky", budget, time.Second,
		&phttp.RequestOptions{URL: srv.URL}, nil)
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if got := hits.Load(); got != maxRetries {
		t.Errorf("server hit %d time(s), want %d", got, maxRetries)
	}
}

func TestFetcherRecoversAfterTransientError(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	f := testFetcher(t)
	budget := Budget{Limit: 10, Window: time.Minute}
	var dest struct {
		OK bool `json:"ok"`
	}
	err := f.GetJSON(context.Background(), "recovering", budget, time.Second,
		&phttp.RequestOptions{URL: srv.URL}, &dest)
	if err != nil {
		t.Fatalf("fetch after recovery: %v", err)
	}
	if !dest.OK {
		t.Error("body not decoded")
	}
	if got := hits.Load(); got != 3 {
		t.Errorf("server hit %d time(s), want 3", got)
	}
}

func TestFetcherDoesNotRetryClientErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := testFetcher(t)
	budget := Budget{Limit: 10, Window: time.Minute}
	err := f.GetJSON(context.Background(), "missing", budget, time.Second,
		&phttp.RequestOptions{URL: srv.URL}, nil)
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("server hit %d time(s), want 1", got)
	}
}

func TestFetcherDeniedByLimiterSkipsNetwork(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	f := testFetcher(t)
	budget := Budget{Limit: 1, Window: time.Hour}
	opts := func() *phttp.RequestOptions { return &phttp.RequestOptions{URL: srv.URL} }
	if err := f.GetJSON(context.Background(), "budgeted", budget, time.Second, opts(), nil); err != nil {
		t.Fatalf("first request: %v", err)
	}
	err := f.GetJSON(context.Background(), "budgeted", budget, time.Second, opts(), nil)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("server hit %d time(s), want 1", got)
	}
}
