package normalize

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"MarketPulse/internal/domain/models"
	"MarketPulse/internal/service/sentiment"
	"MarketPulse/internal/service/technical"
)

func newTestNormalizer() *Normalizer {
	return New(sentiment.New(), technical.New(), DefaultConfidence())
}

func TestTweetNormalization(t *testing.T) {
	n := newTestNormalizer()

	sig, err := n.Tweet(&Tweet{
		ID:       "12345",
		Text:     "Great launch for #smartwatch by @acme, love the wireless charging",
		Author:   "trader_x",
		Likes:    40,
		Retweets: 10,
		Replies:  20,
	})
	if err != nil {
		t.Fatal(err)
	}

	if sig.ID != "social_twitter_12345" {
		t.Errorf("id = %q", sig.ID)
	}
	if sig.Platform != models.PlatformTwitter || sig.Kind != models.KindSocial {
		t.Errorf("platform/kind = %v/%v", sig.Platform, sig.Kind)
	}
	// (40 + 10*2 + 20*1.5)/100 = 0.9
	if math.Abs(sig.EngagementScore-0.9) > 1e-9 {
		t.Errorf("engagement = %v, want 0.9", sig.EngagementScore)
	}
	if sig.SentimentScore <= 0 {
		t.Errorf("sentiment = %v, want positive", sig.SentimentScore)
	}
	if sig.Confidence != 0.7 {
		t.Errorf("confidence = %v, want 0.7", sig.Confidence)
	}
	if sig.Sector != "Technology" {
		t.Errorf("sector = %q", sig.Sector)
	}
	if len(sig.Hashtags) != 1 || sig.Hashtags[0] != "smartwatch" {
		t.Errorf("hashtags = %v", sig.Hashtags)
	}
	if len(sig.Mentions) != 1 || sig.Mentions[0] != "acme" {
		t.Errorf("mentions = %v", sig.Mentions)
	}
}

func TestTweetEngagementClamped(t *testing.T) {
	n := newTestNormalizer()
	sig, err := n.Tweet(&Tweet{ID: "1", Text: "viral", Likes: 100000})
	if err != nil {
		t.Fatal(err)
	}
	if sig.EngagementScore != 1 {
		t.Errorf("engagement = %v, want clamp at 1", sig.EngagementScore)
	}
}

func TestRedditSectorClassification(t *testing.T) {
	n := newTestNormalizer()

	tests := []struct {
		subreddit string
		want      string
	}{
		{"technology", "Technology"},
		{"wallstreetbets", "Finance"},
		{"smallbusiness", "Business"},
		{"nutrition", "Healthcare"},
		{"aww", "General"},
	}
	for _, tt := range tests {
		sig, err := n.RedditPost(&RedditPost{ID: "x", Title: "post title", Subreddit: tt.subreddit})
		if err != nil {
			t.Fatal(err)
		}
		if sig.Sector != tt.want {
			t.Errorf("subreddit %q sector = %q, want %q", tt.subreddit, sig.Sector, tt.want)
		}
	}
}

func TestSectorClassificationIsStable(t *testing.T) {
	// "healthtech" matches both the Technology and Healthcare keyword
	// lists; bucket order decides, so every call must agree.
	want := classifySector("healthtech")
	if want != "Technology" {
		t.Fatalf("classifySector(healthtech) = %q, want Technology", want)
	}
	for i := 0; i < 200; i++ {
		if got := classifySector("healthtech"); got != want {
			t.Fatalf("call %d: %q, want %q", i, got, want)
		}
	}
}

func TestRedditEngagement(t *testing.T) {
	n := newTestNormalizer()
	sig, err := n.RedditPost(&RedditPost{ID: "p1", Title: "title", Score: 300, Comments: 100})
	if err != nil {
		t.Fatal(err)
	}
	// (300 + 100*2)/1000 = 0.5
	if math.Abs(sig.EngagementScore-0.5) > 1e-9 {
		t.Errorf("engagement = %v, want 0.5", sig.EngagementScore)
	}
	if sig.Confidence != 0.6 {
		t.Errorf("confidence = %v, want 0.6", sig.Confidence)
	}
}

func TestDescriptionTruncation(t *testing.T) {
	n := newTestNormalizer()
	long := strings.Repeat("word ", 80)
	sig, err := n.RedditPost(&RedditPost{ID: "p", Title: "t", Selftext: long})
	if err != nil {
		t.Fatal(err)
	}
	if len(sig.Description) != 203 || !strings.HasSuffix(sig.Description, "...") {
		t.Errorf("description len = %d", len(sig.Description))
	}
}

func TestMalformedRecords(t *testing.T) {
	n := newTestNormalizer()

	cases := []error{
		errFrom(n.Tweet(nil)),
		errFrom(n.Tweet(&Tweet{ID: "1"})),
		errFrom(n.RedditPost(&RedditPost{Title: "no id"})),
		errFrom2(n.Quote(&Quote{Symbol: "AAPL"})),
		errFrom2(n.Quote(nil)),
		errFrom3(n.PriceSeries(&PriceSeries{Symbol: "MSFT"})),
		errFrom4(n.ProductListing(models.PlatformAmazon, &ProductListing{})),
	}
	for i, err := range cases {
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("case %d: err = %v, want ErrMalformed", i, err)
		}
	}
}

func errFrom(_ *models.Signal, err error) error           { return err }
func errFrom2(_ *models.FinancialSignal, err error) error { return err }
func errFrom3(_ *models.FinancialSignal, err error) error { return err }
func errFrom4(_ *models.ProductTrend, err error) error    { return err }

func TestQuoteTrendAndVolatility(t *testing.T) {
	n := newTestNormalizer()

	sig, err := n.Quote(&Quote{
		Symbol:        "AAPL",
		Price:         150.25,
		Change:        2.45,
		ChangePercent: 1.6576,
		Volume:        52000000,
		High:          151.10,
		Low:           148.30,
		Timestamp:     time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if sig.TrendDirection != models.TrendBullish {
		t.Errorf("trend = %v, want bullish", sig.TrendDirection)
	}
	wantVol := (151.10 - 148.30) / 150.25
	if math.Abs(sig.Volatility-wantVol) > 1e-9 {
		t.Errorf("volatility = %v, want %v", sig.Volatility, wantVol)
	}
	if sig.Confidence != 0.85 {
		t.Errorf("confidence = %v, want 0.85", sig.Confidence)
	}
}

func TestPriceSeriesIndicators(t *testing.T) {
	n := newTestNormalizer()

	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i)*0.8
	}
	sig, err := n.PriceSeries(&PriceSeries{Symbol: "MSFT", Closes: closes, Volume: 1000})
	if err != nil {
		t.Fatal(err)
	}
	if sig.Technicals == nil {
		t.Fatal("technicals missing")
	}
	if sig.Technicals.RSI != 100 {
		t.Errorf("rsi = %v, want 100 for monotone rise", sig.Technicals.RSI)
	}
	if sig.Price != closes[len(closes)-1] {
		t.Errorf("price = %v", sig.Price)
	}
	if sig.Change <= 0 || sig.ChangePercent <= 0 {
		t.Errorf("change = %v (%v%%), want positive", sig.Change, sig.ChangePercent)
	}
}

func TestProductListing(t *testing.T) {
	n := newTestNormalizer()

	trend, err := n.ProductListing(models.PlatformAmazon, &ProductListing{
		Name:       "Wireless Earbuds Pro",
		Category:   "Electronics",
		Rank:       3,
		GrowthRate: 25,
		PriceMin:   49.99,
		PriceMax:   89.99,
	})
	if err != nil {
		t.Fatal(err)
	}
	if trend.Status != models.TrendRising {
		t.Errorf("status = %v, want rising", trend.Status)
	}
	if trend.DemandScore != 90 {
		t.Errorf("demand = %v, want 90 for rank 3", trend.DemandScore)
	}
	if trend.ID != "product_amazon_wireless_earbuds_pro" {
		t.Errorf("id = %q", trend.ID)
	}
	if trend.Confidence != 0.65 {
		t.Errorf("confidence = %v, want 0.65", trend.Confidence)
	}
}

func TestProductListingConfidenceFromConfig(t *testing.T) {
	conf := DefaultConfidence()
	conf.ProductTrend = 0.9
	n := New(sentiment.New(), technical.New(), conf)

	trend, err := n.ProductListing(models.PlatformAmazon, &ProductListing{Name: "Desk Lamp", Rank: 1})
	if err != nil {
		t.Fatal(err)
	}
	if trend.Confidence != 0.9 {
		t.Errorf("confidence = %v, want configured 0.9", trend.Confidence)
	}
}
