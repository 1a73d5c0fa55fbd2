package source

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"MarketPulse/internal/domain/models"
	"MarketPulse/internal/normalize"
	phttp "MarketPulse/pkg/http"
	"MarketPulse/pkg/logger"
)

const alphaVantageURL = "https://www.alphavantage.co/query"

const financialRetryDelay = 2 * time.Second

// AlphaVantageOptions configures the Alpha Vantage quote source.
type AlphaVantageOptions struct {
	APIKey  string
	Symbols []string
	Budget  Budget
}

type alphaVantageSource struct {
	opts       AlphaVantageOptions
	fetcher    *Fetcher
	normalizer *normalize.Normalizer
	log        *logger.Logger
}

// NewAlphaVantage builds the global-quote source. Without an API key it
// serves fallback quotes only.
func NewAlphaVantage(opts AlphaVantageOptions, fetcher *Fetcher, n *normalize.Normalizer, log *logger.Logger) FinancialSource {
	if len(opts.Symbols) == 0 {
		opts.Symbols = []string{"AAPL", "MSFT", "GOOGL", "AMZN"}
	}
	return &alphaVantageSource{opts: opts, fetcher: fetcher, normalizer: n, log: log}
}

func (s *alphaVantageSource) Name() string { return string(models.PlatformAlphaVantage) }

// globalQuote mirrors the GLOBAL_QUOTE payload. Every value arrives as a
// string keyed by a numbered field name.
type globalQuote struct {
	Quote map[string]string `json:"Global Quote"`
}

func (s *alphaVantageSource) Fetch(ctx context.Context) ([]*models.FinancialSignal, error) {
	if s.opts.APIKey == "" {
		s.log.Debug("alpha vantage key missing, using fallback data")
		return fallbackFinancial(s.normalizer, models.PlatformAlphaVantage), nil
	}

	signals := make([]*models.FinancialSignal, 0, len(s.opts.Symbols))
	for _, symbol := range s.opts.Symbols {
		sig, err := s.fetchQuote(ctx, symbol)
		if err != nil {
			if errors.Is(err, ErrRateLimited) {
				s.log.Warn("alpha vantage rate limited", logger.String("symbol", symbol))
				break
			}
			s.log.Error("alpha vantage fetch failed",
				logger.String("symbol", symbol), logger.Error(err))
			continue
		}
		signals = append(signals, sig)
	}

	if len(signals) == 0 {
		return fallbackFinancial(s.normalizer, models.PlatformAlphaVantage), nil
	}
	return signals, nil
}

func (s *alphaVantageSource) fetchQuote(ctx context.Context, symbol string) (*models.FinancialSignal, error) {
	var resp globalQuote
	err := s.fetcher.GetJSON(ctx, s.Name(), s.opts.Budget, financialRetryDelay, &phttp.RequestOptions{
		URL: alphaVantageURL,
		QueryParams: map[string][]string{
			"function": {"GLOBAL_QUOTE"},
			"symbol":   {symbol},
			"apikey":   {s.opts.APIKey},
		},
	}, &resp)
	if err != nil {
		return nil, err
	}

	q := resp.Quote
	quote := &normalize.Quote{
		Symbol:        symbol,
		Price:         parseFloat(q["05. price"]),
		Change:        parseFloat(q["09. change"]),
		ChangePercent: parsePercent(q["10. change percent"]),
		Volume:        int64(parseFloat(q["06. volume"])),
		High:          parseFloat(q["03. high"]),
		Low:           parseFloat(q["04. low"]),
		Timestamp:     time.Now(),
	}
	return s.normalizer.Quote(quote)
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func parsePercent(s string) float64 {
	return parseFloat(strings.TrimSuffix(strings.TrimSpace(s), "%"))
}
