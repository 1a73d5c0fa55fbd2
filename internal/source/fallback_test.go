package source

import (
	"context"
	"testing"
	"time"

	"MarketPulse/internal/domain/models"
	"MarketPulse/internal/normalize"
	"MarketPulse/internal/service/ratelimit"
	"MarketPulse/internal/service/sentiment"
	"MarketPulse/internal/service/technical"
	phttp "MarketPulse/pkg/http"
	"MarketPulse/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatal(err)
	}
	return log
}

func testNormalizer() *normalize.Normalizer {
	return normalize.New(sentiment.New(), technical.New(), normalize.DefaultConfidence())
}

// exhaustedFetcher returns a fetcher whose budget is already spent, so
// every live request is denied by the local limiter.
func exhaustedFetcher(t *testing.T) (*Fetcher, Budget) {
	t.Helper()
	limiter := ratelimit.New()
	budget := Budget{Limit: 1, Window: time.Hour}
	for _, key := range []string{"twitter", "reddit", "alpha_vantage", "yahoo_finance", "amazon"} {
		limiter.Allow(key, budget.Limit, budget.Window)
	}
	return NewFetcher(phttp.NewClient(), limiter, testLogger(t)), budget
}

func TestSourcesFallBackWhenRateLimited(t *testing.T) {
	fetcher, budget := exhaustedFetcher(t)
	n := testNormalizer()
	log := testLogger(t)
	ctx := context.Background()

	twitter := NewTwitter(TwitterOptions{BearerToken: "token", Budget: budget}, fetcher, n, log)
	signals, err := twitter.Fetch(ctx)
	if err != nil || len(signals) == 0 {
		t.Fatalf("twitter fallback: %d signals, err %v", len(signals), err)
	}
	for _, s := range signals {
		if s.Platform != models.PlatformTwitter {
			t.Errorf("platform = %v", s.Platform)
		}
		if fb, _ := s.Metadata["fallback"].(bool); !fb {
			t.Errorf("signal %s not marked fallback", s.ID)
		}
	}

	reddit := NewReddit(RedditOptions{Budget: budget}, fetcher, n, log)
	signals, err = reddit.Fetch(ctx)
	if err != nil || len(signals) == 0 {
		t.Fatalf("reddit fallback: %d signals, err %v", len(signals), err)
	}

	av := NewAlphaVantage(AlphaVantageOptions{APIKey: "key", Budget: budget}, fetcher, n, log)
	fins, err := av.Fetch(ctx)
	if err != nil || len(fins) == 0 {
		t.Fatalf("alpha vantage fallback: %d signals, err %v", len(fins), err)
	}
}

func TestSourcesFallBackWithoutCredentials(t *testing.T) {
	fetcher := NewFetcher(phttp.NewClient(), ratelimit.New(), testLogger(t))
	n := testNormalizer()
	log := testLogger(t)
	ctx := context.Background()

	twitter := NewTwitter(TwitterOptions{}, fetcher, n, log)
	signals, err := twitter.Fetch(ctx)
	if err != nil || len(signals) == 0 {
		t.Fatalf("twitter without token: %d signals, err %v", len(signals), err)
	}

	av := NewAlphaVantage(AlphaVantageOptions{}, fetcher, n, log)
	fins, err := av.Fetch(ctx)
	if err != nil || len(fins) == 0 {
		t.Fatalf("alpha vantage without key: %d signals, err %v", len(fins), err)
	}
	for _, f := range fins {
		if f.Price <= 0 {
			t.Errorf("fallback quote %s has price %v", f.Symbol, f.Price)
		}
	}

	amazon := NewAmazon(AmazonOptions{}, fetcher, n, log)
	trends, err := amazon.Fetch(ctx)
	if err != nil || len(trends) == 0 {
		t.Fatalf("amazon disabled: %d trends, err %v", len(trends), err)
	}
	for _, tr := range trends {
		if tr.DemandScore < 0 || tr.DemandScore > 100 {
			t.Errorf("trend %s demand %v out of range", tr.ID, tr.DemandScore)
		}
	}
}

func TestTrendSourcesAlwaysProduce(t *testing.T) {
	n := testNormalizer()
	log := testLogger(t)
	ctx := context.Background()

	gt := NewGoogleTrends(n, log)
	signals, err := gt.Fetch(ctx)
	if err != nil || len(signals) == 0 {
		t.Fatalf("google trends: %d signals, err %v", len(signals), err)
	}
	for _, s := range signals {
		if s.Kind != models.KindTrend {
			t.Errorf("kind = %v", s.Kind)
		}
		if s.EngagementScore < 0 || s.EngagementScore > 1 {
			t.Errorf("engagement %v out of range", s.EngagementScore)
		}
	}

	gs := NewGoogleShopping(n, log)
	trends, err := gs.Fetch(ctx)
	if err != nil || len(trends) == 0 {
		t.Fatalf("google shopping: %d trends, err %v", len(trends), err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := gt.Fetch(cancelled); err == nil {
		t.Error("cancelled context should fail")
	}
}
