package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"MarketPulse/internal/domain/models"
	"MarketPulse/internal/domain/repository"
	"MarketPulse/pkg/clickhouse"
)

// SignalStore implements Storage on ClickHouse. List and map fields are
// stored JSON-encoded; ReplacingMergeTree plus FINAL reads give upsert
// semantics keyed by id.
type SignalStore struct {
	client   *clickhouse.Client
	db       *sql.DB
	database string
}

func NewSignalStore(client *clickhouse.Client, database string) repository.Storage {
	return &SignalStore{client: client, db: client.DB(), database: database}
}

func (s *SignalStore) Init(ctx context.Context) error {
	if err := s.client.InitSchema(ctx, schemaStatements(s.database)); err != nil {
		return fmt.Errorf("signal store init: %w", err)
	}
	return nil
}

func (s *SignalStore) table(name string) string {
	return s.database + "." + name
}

func (s *SignalStore) UpsertSignals(ctx context.Context, signals []*models.Signal) error {
	if len(signals) == 0 {
		return nil
	}
	values := make([]string, 0, len(signals))
	args := make([]any, 0, len(signals)*17)
	for _, sig := range signals {
		if sig == nil || sig.ID == "" {
			continue
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			sig.ID, string(sig.Platform), string(sig.Kind),
			sig.Title, sig.Description, sig.Content,
			sig.EngagementScore, sig.SentimentScore, sig.Confidence,
			sig.Region, sig.Sector,
			encodeJSON(sig.Keywords), encodeJSON(sig.Hashtags), encodeJSON(sig.Mentions),
			encodeJSON(sig.Metadata),
			sig.SourceURL, sig.Author, sig.Timestamp,
		)
	}
	if len(values) == 0 {
		return nil
	}
	q := fmt.Sprintf(`INSERT INTO %s
		(id, platform, signal_type, title, description, content,
		 engagement_score, sentiment_score, confidence, region, sector,
		 keywords, hashtags, mentions, metadata, source_url, author, ts)
		VALUES %s`, s.table("market_signals"), strings.Join(values, ","))
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("upsert signals: %w", err)
	}
	return nil
}

func (s *SignalStore) UpsertFinancials(ctx context.Context, signals []*models.FinancialSignal) error {
	if len(signals) == 0 {
		return nil
	}
	values := make([]string, 0, len(signals))
	args := make([]any, 0, len(signals)*17)
	for _, sig := range signals {
		if sig == nil || sig.ID == "" {
			continue
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			sig.ID, string(sig.Platform), sig.Symbol, sig.Name, sig.Sector,
			sig.Price, sig.Change, sig.ChangePercent, sig.Volume, sig.MarketCap,
			sig.Volatility, string(sig.TrendDirection), sig.Confidence,
			encodeJSON(sig.Technicals), encodeJSON(sig.Fundamentals), encodeJSON(sig.Metadata),
			sig.Timestamp,
		)
	}
	if len(values) == 0 {
		return nil
	}
	q := fmt.Sprintf(`INSERT INTO %s
		(id, platform, symbol, name, sector, price, change, change_percent,
		 volume, market_cap, volatility, trend_direction, confidence,
		 technicals, fundamentals, metadata, ts)
		VALUES %s`, s.table("financial_signals"), strings.Join(values, ","))
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("upsert financials: %w", err)
	}
	return nil
}

func (s *SignalStore) UpsertTrends(ctx context.Context, trends []*models.ProductTrend) error {
	if len(trends) == 0 {
		return nil
	}
	values := make([]string, 0, len(trends))
	args := make([]any, 0, len(trends)*19)
	for _, tr := range trends {
		if tr == nil || tr.ID == "" {
			continue
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			tr.ID, string(tr.Platform), tr.ProductName, tr.Category,
			tr.DemandScore, tr.GrowthRate, string(tr.Status),
			tr.PriceRange.Min, tr.PriceRange.Max, tr.PriceRange.Avg,
			tr.MarketSize,
			encodeJSON(tr.Competitors), encodeJSON(tr.Keywords),
			encodeJSON(tr.Complementary), encodeJSON(tr.Seasonal),
			tr.Confidence, encodeJSON(tr.Metadata), tr.Region, tr.Timestamp,
		)
	}
	if len(values) == 0 {
		return nil
	}
	q := fmt.Sprintf(`INSERT INTO %s
		(id, platform, product_name, category, demand_score, growth_rate,
		 status, price_min, price_max, price_avg, market_size, competitors,
		 keywords, complementary, seasonal, confidence, metadata, region, ts)
		VALUES %s`, s.table("product_trends"), strings.Join(values, ","))
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("upsert trends: %w", err)
	}
	return nil
}

func (s *SignalStore) UpsertMatches(ctx context.Context, matches []*models.StrategicMatch) error {
	if len(matches) == 0 {
		return nil
	}
	values := make([]string, 0, len(matches))
	args := make([]any, 0, len(matches)*14)
	for _, m := range matches {
		if m == nil || m.ID == "" {
			continue
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			m.ID, m.PrimaryProduct, m.MatchedProduct, m.MatchScore,
			string(m.SynergyType), m.MarketOpportunity, m.EstimatedDemand,
			encodeJSON(m.RevenuePotential), string(m.Complexity), m.TimeToMarket,
			encodeJSON(m.RiskFactors), encodeJSON(m.SuccessIndicators),
			encodeJSON(m.Metadata), m.Timestamp,
		)
	}
	if len(values) == 0 {
		return nil
	}
	q := fmt.Sprintf(`INSERT INTO %s
		(id, primary_product, matched_product, match_score, synergy_type,
		 market_opportunity, estimated_demand, revenue, complexity,
		 time_to_market, risk_factors, success_indicators, metadata, ts)
		VALUES %s`, s.table("strategic_matches"), strings.Join(values, ","))
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("upsert matches: %w", err)
	}
	return nil
}

func (s *SignalStore) UpsertSectorPerformance(ctx context.Context, rows []*models.SectorPerformance) error {
	if len(rows) == 0 {
		return nil
	}
	values := make([]string, 0, len(rows))
	args := make([]any, 0, len(rows)*7)
	for _, r := range rows {
		if r == nil || r.Sector == "" {
			continue
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			r.Sector, r.AvgChange, r.TotalVolume, r.AvgVolatility,
			string(r.TrendDirection), int32(r.StockCount), r.Timestamp,
		)
	}
	if len(values) == 0 {
		return nil
	}
	q := fmt.Sprintf(`INSERT INTO %s
		(sector, avg_change, total_volume, avg_volatility, trend_direction, stock_count, ts)
		VALUES %s`, s.table("sector_performance"), strings.Join(values, ","))
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("upsert sector performance: %w", err)
	}
	return nil
}

func (s *SignalStore) QuerySignals(ctx context.Context, f repository.SignalFilter) ([]*models.Signal, error) {
	where := []string{"1 = 1"}
	args := []any{}
	if f.Platform != "" {
		where = append(where, "platform = ?")
		args = append(args, string(f.Platform))
	}
	if f.Kind != "" {
		where = append(where, "signal_type = ?")
		args = append(args, string(f.Kind))
	}
	if f.Sector != "" {
		where = append(where, "sector = ?")
		args = append(args, f.Sector)
	}
	if !f.Since.IsZero() {
		where = append(where, "ts >= ?")
		args = append(args, f.Since)
	}
	args = append(args, limitOrDefault(f.Limit))

	q := fmt.Sprintf(`SELECT id, platform, signal_type, title, description, content,
		engagement_score, sentiment_score, confidence, region, sector,
		keywords, hashtags, mentions, metadata, source_url, author, ts
		FROM %s FINAL WHERE %s ORDER BY ts DESC LIMIT ?`,
		s.table("market_signals"), strings.Join(where, " AND "))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query signals: %w", err)
	}
	defer rows.Close()

	var out []*models.Signal
	for rows.Next() {
		var sig models.Signal
		var platform, kind, keywords, hashtags, mentions, metadata string
		if err := rows.Scan(&sig.ID, &platform, &kind, &sig.Title, &sig.Description,
			&sig.Content, &sig.EngagementScore, &sig.SentimentScore, &sig.Confidence,
			&sig.Region, &sig.Sector, &keywords, &hashtags, &mentions, &metadata,
			&sig.SourceURL, &sig.Author, &sig.Timestamp); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		sig.Platform = models.ParsePlatform(platform)
		sig.Kind = models.ParseSignalKind(kind)
		decodeJSON(keywords, &sig.Keywords)
		decodeJSON(hashtags, &sig.Hashtags)
		decodeJSON(mentions, &sig.Mentions)
		decodeJSON(metadata, &sig.Metadata)
		out = append(out, &sig)
	}
	return out, rows.Err()
}

func (s *SignalStore) QueryFinancials(ctx context.Context, f repository.FinancialFilter) ([]*models.FinancialSignal, error) {
	where := []string{"1 = 1"}
	args := []any{}
	if f.Symbol != "" {
		where = append(where, "symbol = ?")
		args = append(args, f.Symbol)
	}
	if f.Sector != "" {
		where = append(where, "sector = ?")
		args = append(args, f.Sector)
	}
	args = append(args, limitOrDefault(f.Limit))

	q := fmt.Sprintf(`SELECT id, platform, symbol, name, sector, price, change,
		change_percent, volume, market_cap, volatility, trend_direction,
		confidence, technicals, fundamentals, metadata, ts
		FROM %s FINAL WHERE %s ORDER BY ts DESC LIMIT ?`,
		s.table("financial_signals"), strings.Join(where, " AND "))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query financials: %w", err)
	}
	defer rows.Close()

	var out []*models.FinancialSignal
	for rows.Next() {
		var sig models.FinancialSignal
		var platform, trend, technicals, fundamentals, metadata string
		if err := rows.Scan(&sig.ID, &platform, &sig.Symbol, &sig.Name, &sig.Sector,
			&sig.Price, &sig.Change, &sig.ChangePercent, &sig.Volume, &sig.MarketCap,
			&sig.Volatility, &trend, &sig.Confidence, &technicals, &fundamentals,
			&metadata, &sig.Timestamp); err != nil {
			return nil, fmt.Errorf("scan financial: %w", err)
		}
		sig.Platform = models.ParsePlatform(platform)
		sig.TrendDirection = models.TrendDirection(trend)
		decodeJSON(technicals, &sig.Technicals)
		decodeJSON(fundamentals, &sig.Fundamentals)
		decodeJSON(metadata, &sig.Metadata)
		out = append(out, &sig)
	}
	return out, rows.Err()
}

func (s *SignalStore) QueryTrends(ctx context.Context, f repository.TrendFilter) ([]*models.ProductTrend, error) {
	where := []string{"1 = 1"}
	args := []any{}
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	args = append(args, limitOrDefault(f.Limit))

	q := fmt.Sprintf(`SELECT id, platform, product_name, category, demand_score,
		growth_rate, status, price_min, price_max, price_avg, market_size,
		competitors, keywords, complementary, seasonal, confidence, metadata,
		region, ts
		FROM %s FINAL WHERE %s ORDER BY demand_score DESC LIMIT ?`,
		s.table("product_trends"), strings.Join(where, " AND "))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query trends: %w", err)
	}
	defer rows.Close()

	var out []*models.ProductTrend
	for rows.Next() {
		var tr models.ProductTrend
		var platform, status, competitors, keywords, complementary, seasonal, metadata string
		if err := rows.Scan(&tr.ID, &platform, &tr.ProductName, &tr.Category,
			&tr.DemandScore, &tr.GrowthRate, &status,
			&tr.PriceRange.Min, &tr.PriceRange.Max, &tr.PriceRange.Avg,
			&tr.MarketSize, &competitors, &keywords, &complementary, &seasonal,
			&tr.Confidence, &metadata, &tr.Region, &tr.Timestamp); err != nil {
			return nil, fmt.Errorf("scan trend: %w", err)
		}
		tr.Platform = models.ParsePlatform(platform)
		tr.Status = models.TrendStatus(status)
		decodeJSON(competitors, &tr.Competitors)
		decodeJSON(keywords, &tr.Keywords)
		decodeJSON(complementary, &tr.Complementary)
		decodeJSON(seasonal, &tr.Seasonal)
		decodeJSON(metadata, &tr.Metadata)
		out = append(out, &tr)
	}
	return out, rows.Err()
}

func (s *SignalStore) QueryMatches(ctx context.Context, f repository.MatchFilter) ([]*models.StrategicMatch, error) {
	where := []string{"match_score >= ?"}
	args := []any{f.MinScore}
	if f.PrimaryProduct != "" {
		where = append(where, "primary_product = ?")
		args = append(args, strings.ToLower(f.PrimaryProduct))
	}
	args = append(args, limitOrDefault(f.Limit))

	q := fmt.Sprintf(`SELECT id, primary_product, matched_product, match_score,
		synergy_type, market_opportunity, estimated_demand, revenue, complexity,
		time_to_market, risk_factors, success_indicators, metadata, ts
		FROM %s FINAL WHERE %s ORDER BY match_score DESC LIMIT ?`,
		s.table("strategic_matches"), strings.Join(where, " AND "))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var out []*models.StrategicMatch
	for rows.Next() {
		var m models.StrategicMatch
		var synergy, complexity, revenue, risks, indicators, metadata string
		if err := rows.Scan(&m.ID, &m.PrimaryProduct, &m.MatchedProduct, &m.MatchScore,
			&synergy, &m.MarketOpportunity, &m.EstimatedDemand, &revenue, &complexity,
			&m.TimeToMarket, &risks, &indicators, &metadata, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		m.SynergyType = models.SynergyType(synergy)
		m.Complexity = models.Complexity(complexity)
		decodeJSON(revenue, &m.RevenuePotential)
		decodeJSON(risks, &m.RiskFactors)
		decodeJSON(indicators, &m.SuccessIndicators)
		decodeJSON(metadata, &m.Metadata)
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (s *SignalStore) SectorPerformance(ctx context.Context, limit int) ([]*models.SectorPerformance, error) {
	q := fmt.Sprintf(`SELECT sector, avg_change, total_volume, avg_volatility,
		trend_direction, stock_count, ts
		FROM %s FINAL ORDER BY avg_change DESC LIMIT ?`,
		s.table("sector_performance"))

	rows, err := s.db.QueryContext(ctx, q, limitOrDefault(limit))
	if err != nil {
		return nil, fmt.Errorf("query sector performance: %w", err)
	}
	defer rows.Close()

	var out []*models.SectorPerformance
	for rows.Next() {
		var sp models.SectorPerformance
		var trend string
		var count int32
		if err := rows.Scan(&sp.Sector, &sp.AvgChange, &sp.TotalVolume,
			&sp.AvgVolatility, &trend, &count, &sp.Timestamp); err != nil {
			return nil, fmt.Errorf("scan sector performance: %w", err)
		}
		sp.TrendDirection = models.TrendDirection(trend)
		sp.StockCount = int(count)
		out = append(out, &sp)
	}
	return out, rows.Err()
}

// Purge removes rows older than the retention horizon from every table.
func (s *SignalStore) Purge(ctx context.Context, olderThan time.Time) error {
	tables := []string{
		"market_signals", "financial_signals", "product_trends",
		"strategic_matches", "sector_performance",
	}
	for _, t := range tables {
		q := fmt.Sprintf("ALTER TABLE %s DELETE WHERE created_at < ?", s.table(t))
		if _, err := s.db.ExecContext(ctx, q, olderThan); err != nil {
			return fmt.Errorf("purge %s: %w", t, err)
		}
	}
	return nil
}

func (s *SignalStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SignalStore) Close() error {
	return s.client.Close()
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return 50
	}
	return limit
}

func encodeJSON(v any) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func decodeJSON[T any](s string, dest *T) {
	if s == "" || s == "null" {
		return
	}
	_ = json.Unmarshal([]byte(s), dest)
}
