package models

// SignalsRequest filters the stored social/news signals.
type SignalsRequest struct {
	Platform string `query:"platform" validate:"omitempty,oneof=twitter reddit google_trends yahoo_finance alpha_vantage amazon google_shopping"`
	Kind     string `query:"signal_type" validate:"omitempty,oneof=social financial product news trend"`
	Sector   string `query:"sector"`
	Since    string `query:"since"` // RFC3339 or unix seconds
	Limit    int    `query:"limit" default:"50" validate:"gte=1,lte=500"`
}

// FinancialRequest filters the stored financial signals.
type FinancialRequest struct {
	Symbol string `query:"symbol" validate:"omitempty,alphanum"`
	Sector string `query:"sector"`
	Limit  int    `query:"limit" default:"50" validate:"gte=1,lte=500"`
}

// TrendsRequest filters stored product trends.
type TrendsRequest struct {
	Category string `query:"category"`
	Status   string `query:"status" validate:"omitempty,oneof=rising declining stable volatile"`
	Limit    int    `query:"limit" default:"50" validate:"gte=1,lte=500"`
}

// MatchesRequest filters stored strategic matches.
type MatchesRequest struct {
	PrimaryProduct string  `query:"primary_product"`
	MinScore       float64 `query:"min_score" validate:"gte=0,lte=100"`
	Limit          int     `query:"limit" default:"20" validate:"gte=1,lte=100"`
}

// GenerateMatchesRequest triggers on-demand match generation.
type GenerateMatchesRequest struct {
	PrimaryProduct string   `json:"primary_product" validate:"required,min=2,max=128"`
	UserGoals      []string `json:"user_goals" validate:"max=10,dive,max=128"`
}

// IngestRequest accepts an externally supplied signal batch.
type IngestRequest struct {
	Signals []Signal `json:"signals" validate:"required,min=1,max=1000"`
}
