package normalize

import (
	"errors"
	"fmt"
	"time"

	"MarketPulse/internal/domain/models"
	"MarketPulse/internal/service/sentiment"
	"MarketPulse/internal/service/technical"
	"MarketPulse/internal/service/text"
)

var ErrMalformed = errors.New("malformed source record")

const descriptionLimit = 200

// Confidence carries the per-source trust priors. Values come from
// config so calibration changes do not require a rebuild.
type Confidence struct {
	Twitter      float64
	Reddit       float64
	GoogleTrends float64
	YahooFinance float64
	AlphaVantage float64
	ProductTrend float64
}

// DefaultConfidence returns the calibration shipped with the service.
func DefaultConfidence() Confidence {
	return Confidence{
		Twitter:      0.7,
		Reddit:       0.6,
		GoogleTrends: 0.8,
		YahooFinance: 0.8,
		AlphaVantage: 0.85,
		ProductTrend: 0.65,
	}
}

// Normalizer converts raw source payloads into canonical signals.
// Malformed records return ErrMalformed; normalization never panics.
type Normalizer struct {
	scorer     *sentiment.Scorer
	analyzer   *technical.Analyzer
	confidence Confidence
	now        func() time.Time
}

func New(scorer *sentiment.Scorer, analyzer *technical.Analyzer, conf Confidence) *Normalizer {
	return &Normalizer{scorer: scorer, analyzer: analyzer, confidence: conf, now: time.Now}
}

// Tweet converts a tweet into a social signal.
func (n *Normalizer) Tweet(t *Tweet) (*models.Signal, error) {
	if t == nil || t.ID == "" || t.Text == "" {
		return nil, fmt.Errorf("%w: tweet missing id or text", ErrMalformed)
	}

	engagement := (float64(t.Likes) + float64(t.Retweets)*2 + float64(t.Replies)*1.5) / 100
	ts := t.CreatedAt
	if ts.IsZero() {
		ts = n.now()
	}

	return &models.Signal{
		ID:              "social_twitter_" + t.ID,
		Platform:        models.PlatformTwitter,
		Kind:            models.KindSocial,
		Title:           text.Truncate(t.Text, 80),
		Description:     text.Truncate(t.Text, descriptionLimit),
		Content:         t.Text,
		EngagementScore: clamp01(engagement),
		SentimentScore:  n.scorer.Score(t.Text),
		Confidence:      n.confidence.Twitter,
		Region:          orDefault(t.Region, "global"),
		Sector:          "Technology",
		Keywords:        text.Keywords(t.Text),
		Hashtags:        text.Hashtags(t.Text),
		Mentions:        text.Mentions(t.Text),
		Metadata: map[string]any{
			"likes":    t.Likes,
			"retweets": t.Retweets,
			"replies":  t.Replies,
		},
		Timestamp: ts,
		Author:    t.Author,
	}, nil
}

// RedditPost converts a reddit submission into a social signal. The
// subreddit drives sector classification.
func (n *Normalizer) RedditPost(p *RedditPost) (*models.Signal, error) {
	if p == nil || p.ID == "" || p.Title == "" {
		return nil, fmt.Errorf("%w: reddit post missing id or title", ErrMalformed)
	}

	body := p.Title
	if p.Selftext != "" {
		body = p.Title + " " + p.Selftext
	}
	engagement := (float64(p.Score) + float64(p.Comments)*2) / 1000
	ts := p.CreatedAt
	if ts.IsZero() {
		ts = n.now()
	}

	return &models.Signal{
		ID:              "social_reddit_" + p.ID,
		Platform:        models.PlatformReddit,
		Kind:            models.KindSocial,
		Title:           p.Title,
		Description:     text.Truncate(body, descriptionLimit),
		Content:         body,
		EngagementScore: clamp01(engagement),
		SentimentScore:  n.scorer.Score(body),
		Confidence:      n.confidence.Reddit,
		Region:          "global",
		Sector:          classifySector(p.Subreddit),
		Keywords:        text.Keywords(body),
		Hashtags:        text.Hashtags(body),
		Mentions:        text.Mentions(body),
		Metadata: map[string]any{
			"subreddit": p.Subreddit,
			"score":     p.Score,
			"comments":  p.Comments,
		},
		Timestamp: ts,
		SourceURL: p.URL,
		Author:    p.Author,
	}, nil
}

// TrendTopic converts a search-interest observation into a trend signal.
func (n *Normalizer) TrendTopic(t *TrendTopic) (*models.Signal, error) {
	if t == nil || t.Topic == "" {
		return nil, fmt.Errorf("%w: trend topic missing name", ErrMalformed)
	}

	ts := t.Timestamp
	if ts.IsZero() {
		ts = n.now()
	}
	status := "stable"
	if t.Rising {
		status = "rising"
	}

	return &models.Signal{
		ID:              "trend_google_" + sanitizeID(t.Topic),
		Platform:        models.PlatformGoogleTrends,
		Kind:            models.KindTrend,
		Title:           t.Topic,
		Description:     fmt.Sprintf("Search interest for %q at %d/100 (%s)", t.Topic, t.Interest, status),
		Content:         t.Topic,
		EngagementScore: clamp01(float64(t.Interest) / 100),
		SentimentScore:  0,
		Confidence:      n.confidence.GoogleTrends,
		Region:          orDefault(t.Region, "global"),
		Sector:          classifySector(t.Topic),
		Keywords:        text.Keywords(t.Topic),
		Metadata: map[string]any{
			"interest": t.Interest,
			"rising":   t.Rising,
		},
		Timestamp: ts,
	}, nil
}

// Quote converts a point-in-time quote into a financial signal.
// Volatility is approximated by the day's high/low spread over price.
func (n *Normalizer) Quote(q *Quote) (*models.FinancialSignal, error) {
	if q == nil || q.Symbol == "" || q.Price <= 0 {
		return nil, fmt.Errorf("%w: quote missing symbol or price", ErrMalformed)
	}

	volatility := 0.0
	if q.High > 0 && q.Low > 0 {
		volatility = (q.High - q.Low) / q.Price
	}
	ts := q.Timestamp
	if ts.IsZero() {
		ts = n.now()
	}

	return &models.FinancialSignal{
		ID:             "financial_alpha_vantage_" + q.Symbol,
		Platform:       models.PlatformAlphaVantage,
		Symbol:         q.Symbol,
		Name:           q.Symbol,
		Sector:         "General",
		Price:          q.Price,
		Change:         q.Change,
		ChangePercent:  q.ChangePercent,
		Volume:         q.Volume,
		Volatility:     volatility,
		TrendDirection: technical.TrendFromChange(q.Change),
		Confidence:     n.confidence.AlphaVantage,
		Metadata: map[string]any{
			"day_high": q.High,
			"day_low":  q.Low,
		},
		Timestamp: ts,
	}, nil
}

// PriceSeries converts a closing-price history into a financial signal
// with technical indicators attached.
func (n *Normalizer) PriceSeries(s *PriceSeries) (*models.FinancialSignal, error) {
	if s == nil || s.Symbol == "" || len(s.Closes) == 0 {
		return nil, fmt.Errorf("%w: price series missing symbol or closes", ErrMalformed)
	}

	last := s.Closes[len(s.Closes)-1]
	var change, changePct float64
	if len(s.Closes) > 1 {
		prev := s.Closes[len(s.Closes)-2]
		change = last - prev
		if prev != 0 {
			changePct = change / prev * 100
		}
	}
	ts := s.Timestamp
	if ts.IsZero() {
		ts = n.now()
	}

	return &models.FinancialSignal{
		ID:             "financial_yahoo_" + s.Symbol,
		Platform:       models.PlatformYahooFinance,
		Symbol:         s.Symbol,
		Name:           orDefault(s.Name, s.Symbol),
		Sector:         orDefault(s.Sector, "General"),
		Price:          last,
		Change:         change,
		ChangePercent:  changePct,
		Volume:         s.Volume,
		MarketCap:      s.MarketCap,
		Volatility:     n.analyzer.AnnualizedVolatility(s.Closes),
		TrendDirection: n.analyzer.Trend(s.Closes),
		Confidence:     n.confidence.YahooFinance,
		Technicals:     n.analyzer.Indicators(s.Closes),
		Timestamp:      ts,
	}, nil
}

// ProductListing converts a shopping observation into a product trend.
func (n *Normalizer) ProductListing(platform models.Platform, p *ProductListing) (*models.ProductTrend, error) {
	if p == nil || p.Name == "" {
		return nil, fmt.Errorf("%w: product listing missing name", ErrMalformed)
	}

	demand := clampRange(100-float64(p.Rank-1)*5, 0, 100)
	status := models.TrendStable
	switch {
	case p.GrowthRate > 10:
		status = models.TrendRising
	case p.GrowthRate < -10:
		status = models.TrendDeclining
	}
	ts := p.Timestamp
	if ts.IsZero() {
		ts = n.now()
	}

	avg := 0.0
	if p.PriceMin > 0 || p.PriceMax > 0 {
		avg = (p.PriceMin + p.PriceMax) / 2
	}

	return &models.ProductTrend{
		ID:          fmt.Sprintf("product_%s_%s", platform, sanitizeID(p.Name)),
		Platform:    platform,
		ProductName: p.Name,
		Category:    orDefault(p.Category, "General"),
		DemandScore: demand,
		GrowthRate:  p.GrowthRate,
		Status:      status,
		PriceRange:  models.PriceRange{Min: p.PriceMin, Max: p.PriceMax, Avg: avg},
		Keywords:    text.Keywords(p.Name),
		Confidence:  n.confidence.ProductTrend,
		Metadata: map[string]any{
			"rank":    p.Rank,
			"rating":  p.Rating,
			"reviews": p.Reviews,
		},
		Timestamp: ts,
		Region:    "global",
	}, nil
}

func clamp01(v float64) float64 { return clampRange(v, 0, 1) }

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func sanitizeID(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
