package repository

import "fmt"

// Schema statements are idempotent. ReplacingMergeTree keyed by id gives
// INSERT-OR-REPLACE semantics: the newest created_at version wins and
// reads go through FINAL. created_at drives retention sweeps.

func schemaStatements(database string) []string {
	return []string{
		fmt.Sprintf(`CREATE DATABASE IF NOT EXISTS %s`, database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.market_signals (
			id String,
			platform LowCardinality(String),
			signal_type LowCardinality(String),
			title String,
			description String,
			content String,
			engagement_score Float64,
			sentiment_score Float64,
			confidence Float64,
			region LowCardinality(String),
			sector LowCardinality(String),
			keywords String,
			hashtags String,
			mentions String,
			metadata String,
			source_url String,
			author String,
			ts DateTime64(3),
			created_at DateTime DEFAULT now()
		) ENGINE = ReplacingMergeTree(created_at)
		ORDER BY id`, database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.financial_signals (
			id String,
			platform LowCardinality(String),
			symbol LowCardinality(String),
			name String,
			sector LowCardinality(String),
			price Float64,
			change Float64,
			change_percent Float64,
			volume Int64,
			market_cap Float64,
			volatility Float64,
			trend_direction LowCardinality(String),
			confidence Float64,
			technicals String,
			fundamentals String,
			metadata String,
			ts DateTime64(3),
			created_at DateTime DEFAULT now()
		) ENGINE = ReplacingMergeTree(created_at)
		ORDER BY id`, database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.product_trends (
			id String,
			platform LowCardinality(String),
			product_name String,
			category LowCardinality(String),
			demand_score Float64,
			growth_rate Float64,
			status LowCardinality(String),
			price_min Float64,
			price_max Float64,
			price_avg Float64,
			market_size Float64,
			competitors String,
			keywords String,
			complementary String,
			seasonal String,
			confidence Float64,
			metadata String,
			region LowCardinality(String),
			ts DateTime64(3),
			created_at DateTime DEFAULT now()
		) ENGINE = ReplacingMergeTree(created_at)
		ORDER BY id`, database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.strategic_matches (
			id String,
			primary_product String,
			matched_product String,
			match_score Float64,
			synergy_type LowCardinality(String),
			market_opportunity String,
			estimated_demand Float64,
			revenue String,
			complexity LowCardinality(String),
			time_to_market String,
			risk_factors String,
			success_indicators String,
			metadata String,
			ts DateTime64(3),
			created_at DateTime DEFAULT now()
		) ENGINE = ReplacingMergeTree(created_at)
		ORDER BY id`, database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.sector_performance (
			sector LowCardinality(String),
			avg_change Float64,
			total_volume Int64,
			avg_volatility Float64,
			trend_direction LowCardinality(String),
			stock_count Int32,
			ts DateTime64(3),
			created_at DateTime DEFAULT now()
		) ENGINE = ReplacingMergeTree(created_at)
		ORDER BY sector`, database),
	}
}
