package models

import "time"

// TrendDirection describes short-term price direction.
type TrendDirection string

const (
	TrendBullish  TrendDirection = "bullish"
	TrendBearish  TrendDirection = "bearish"
	TrendNeutral  TrendDirection = "neutral"
	TrendVolatile TrendDirection = "volatile"
)

// TechnicalIndicators holds simplified technical-analysis values.
// These are approximations for signal scoring, not a TA library.
type TechnicalIndicators struct {
	RSI             float64 `json:"rsi"`
	MACD            float64 `json:"macd"`
	MACDSignal      float64 `json:"macd_signal"`
	BollingerUpper  float64 `json:"bollinger_upper"`
	BollingerMiddle float64 `json:"bollinger_middle"`
	BollingerLower  float64 `json:"bollinger_lower"`
}

// FinancialSignal specializes Signal for market-data records.
type FinancialSignal struct {
	ID             string               `json:"id"`
	Platform       Platform             `json:"platform"`
	Symbol         string               `json:"symbol"`
	Name           string               `json:"name"`
	Sector         string               `json:"sector"`
	Price          float64              `json:"price"`
	Change         float64              `json:"change"`
	ChangePercent  float64              `json:"change_percent"`
	Volume         int64                `json:"volume"`
	MarketCap      float64              `json:"market_cap,omitempty"`
	Volatility     float64              `json:"volatility"`
	TrendDirection TrendDirection       `json:"trend_direction"`
	Confidence     float64              `json:"confidence"`
	Technicals     *TechnicalIndicators `json:"technical_indicators,omitempty"`
	Fundamentals   map[string]float64   `json:"fundamental_metrics,omitempty"`
	Metadata       map[string]any       `json:"metadata"`
	Timestamp      time.Time            `json:"timestamp"`
}

// SectorPerformance aggregates financial signals per sector within one cycle.
type SectorPerformance struct {
	Sector         string         `json:"sector"`
	AvgChange      float64        `json:"avg_change"`
	TotalVolume    int64          `json:"total_volume"`
	AvgVolatility  float64        `json:"avg_volatility"`
	TrendDirection TrendDirection `json:"trend_direction"`
	StockCount     int            `json:"stock_count"`
	Timestamp      time.Time      `json:"timestamp"`
}
