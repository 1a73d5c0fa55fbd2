package models

import "time"

// TrendStatus describes the demand trajectory of a product trend.
type TrendStatus string

const (
	TrendRising    TrendStatus = "rising"
	TrendDeclining TrendStatus = "declining"
	TrendStable    TrendStatus = "stable"
	TrendChoppy    TrendStatus = "volatile"
)

// PriceRange captures the observed price band for a product.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// ProductTrend is a product/e-commerce trend observation.
type ProductTrend struct {
	ID            string             `json:"id"`
	Platform      Platform           `json:"platform"`
	ProductName   string             `json:"product_name"`
	Category      string             `json:"category"`
	DemandScore   float64            `json:"demand_score"` // [0,100]
	GrowthRate    float64            `json:"growth_rate"`  // percent
	Status        TrendStatus        `json:"sentiment"`
	PriceRange    PriceRange         `json:"price_range"`
	MarketSize    float64            `json:"market_size,omitempty"`
	Competitors   []string           `json:"competitors"`
	Keywords      []string           `json:"keywords"`
	Complementary []string           `json:"complementary_products"`
	Seasonal      map[string]float64 `json:"seasonal_factors"`
	Confidence    float64            `json:"confidence"`
	Metadata      map[string]any     `json:"metadata"`
	Timestamp     time.Time          `json:"timestamp"`
	Region        string             `json:"region"`
}

// SynergyType classifies the relationship between matched products.
type SynergyType string

const (
	SynergyComplementary SynergyType = "complementary"
	SynergyCompetitive   SynergyType = "competitive"
	SynergySubstitute    SynergyType = "substitute"
)

// Complexity buckets implementation effort for a matched product.
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// RevenuePotential is derived deterministically from estimated demand.
type RevenuePotential struct {
	MonthlyMin      float64 `json:"monthly_min"`
	MonthlyMax      float64 `json:"monthly_max"`
	MonthlyAvg      float64 `json:"monthly_avg"`
	AnnualPotential float64 `json:"annual_potential"`
}

// StrategicMatch pairs a primary product with a complementary opportunity.
type StrategicMatch struct {
	ID                string           `json:"id"`
	PrimaryProduct    string           `json:"primary_product"`
	MatchedProduct    string           `json:"matched_product"`
	MatchScore        float64          `json:"match_score"` // [0,100]
	SynergyType       SynergyType      `json:"synergy_type"`
	MarketOpportunity string           `json:"market_opportunity"`
	EstimatedDemand   float64          `json:"estimated_demand"`
	RevenuePotential  RevenuePotential `json:"revenue_potential"`
	Complexity        Complexity       `json:"implementation_complexity"`
	TimeToMarket      string           `json:"time_to_market"`
	RiskFactors       []string         `json:"risk_factors"`
	SuccessIndicators []string         `json:"success_indicators"`
	Metadata          map[string]any   `json:"metadata"`
	Timestamp         time.Time        `json:"timestamp"`
}
