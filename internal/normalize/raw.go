package normalize

import "time"

// Raw payload shapes produced by the source fetchers. Fields mirror the
// upstream APIs after JSON decoding; the normalizer owns all derivation.

type Tweet struct {
	ID        string
	Text      string
	Author    string
	Likes     int
	Retweets  int
	Replies   int
	Region    string
	CreatedAt time.Time
}

type RedditPost struct {
	ID        string
	Title     string
	Selftext  string
	Author    string
	Subreddit string
	Score     int
	Comments  int
	URL       string
	CreatedAt time.Time
}

// Quote is a point-in-time price snapshot (Alpha Vantage global quote).
type Quote struct {
	Symbol        string
	Price         float64
	Change        float64
	ChangePercent float64
	Volume        int64
	High          float64
	Low           float64
	Timestamp     time.Time
}

// PriceSeries is a closing-price history (Yahoo Finance chart).
type PriceSeries struct {
	Symbol    string
	Name      string
	Sector    string
	Closes    []float64
	Volume    int64
	MarketCap float64
	Timestamp time.Time
}

// TrendTopic is a search-interest observation (Google Trends).
type TrendTopic struct {
	Topic     string
	Interest  int // 0..100
	Region    string
	Rising    bool
	Timestamp time.Time
}

// ProductListing is a raw product observation from a shopping source.
type ProductListing struct {
	Name       string
	Category   string
	Rank       int
	Rating     float64
	Reviews    int
	PriceMin   float64
	PriceMax   float64
	GrowthRate float64
	Timestamp  time.Time
}
