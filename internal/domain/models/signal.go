package models

import "time"

// SignalKind categorizes the source family of a market signal.
type SignalKind string

const (
	KindSocial    SignalKind = "social"
	KindFinancial SignalKind = "financial"
	KindProduct   SignalKind = "product"
	KindNews      SignalKind = "news"
	KindTrend     SignalKind = "trend"
	KindUnknown   SignalKind = "unknown"
)

// ParseSignalKind maps a raw value to a SignalKind, falling back to
// unknown. Empty input stays empty so filters can mean "any".
func ParseSignalKind(s string) SignalKind {
	switch SignalKind(s) {
	case KindSocial, KindFinancial, KindProduct, KindNews, KindTrend, "":
		return SignalKind(s)
	default:
		return KindUnknown
	}
}

// Platform identifies the originating system of a signal.
type Platform string

const (
	PlatformTwitter        Platform = "twitter"
	PlatformReddit         Platform = "reddit"
	PlatformGoogleTrends   Platform = "google_trends"
	PlatformYahooFinance   Platform = "yahoo_finance"
	PlatformAlphaVantage   Platform = "alpha_vantage"
	PlatformAmazon         Platform = "amazon"
	PlatformGoogleShopping Platform = "google_shopping"
	PlatformUnknown        Platform = "unknown"
)

// ParsePlatform maps a raw value to a Platform, falling back to
// unknown. Empty input stays empty so filters can mean "any".
func ParsePlatform(s string) Platform {
	switch Platform(s) {
	case PlatformTwitter, PlatformReddit, PlatformGoogleTrends,
		PlatformYahooFinance, PlatformAlphaVantage,
		PlatformAmazon, PlatformGoogleShopping, "":
		return Platform(s)
	default:
		return PlatformUnknown
	}
}

// Signal is the canonical record emitted by every source adapter.
// ID is the natural key (source_platform_nativeId) and the upsert key:
// re-ingesting the same entity replaces the prior row.
type Signal struct {
	ID              string         `json:"id"`
	Platform        Platform       `json:"platform"`
	Kind            SignalKind     `json:"signal_type"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	Content         string         `json:"content"`
	EngagementScore float64        `json:"engagement_score"` // [0,1]
	SentimentScore  float64        `json:"sentiment_score"`  // [-1,1]
	Confidence      float64        `json:"confidence"`       // [0,1], per-source prior
	Region          string         `json:"region"`
	Sector          string         `json:"sector"`
	Keywords        []string       `json:"keywords"`
	Hashtags        []string       `json:"hashtags"`
	Mentions        []string       `json:"mentions"`
	Metadata        map[string]any `json:"metadata"`
	Timestamp       time.Time      `json:"timestamp"` // event time, not ingestion time
	SourceURL       string         `json:"source_url,omitempty"`
	Author          string         `json:"author,omitempty"`
}
