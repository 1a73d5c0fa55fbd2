package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"MarketPulse/internal/domain/models"
	"MarketPulse/internal/normalize"
	phttp "MarketPulse/pkg/http"
	"MarketPulse/pkg/logger"
)

const yahooChartURL = "https://query1.finance.yahoo.com/v8/finance/chart/%s"

// YahooOptions configures the Yahoo Finance chart source.
type YahooOptions struct {
	Symbols map[string]string // symbol -> sector label
	Budget  Budget
}

type yahooSource struct {
	opts       YahooOptions
	fetcher    *Fetcher
	normalizer *normalize.Normalizer
	log        *logger.Logger
}

// NewYahoo builds the Yahoo Finance history source. The public chart
// endpoint needs no key; failures still degrade to fallback data.
func NewYahoo(opts YahooOptions, fetcher *Fetcher, n *normalize.Normalizer, log *logger.Logger) FinancialSource {
	if len(opts.Symbols) == 0 {
		opts.Symbols = map[string]string{
			"TSLA": "Technology",
			"JPM":  "Finance",
			"JNJ":  "Healthcare",
		}
	}
	return &yahooSource{opts: opts, fetcher: fetcher, normalizer: n, log: log}
}

func (s *yahooSource) Name() string { return string(models.PlatformYahooFinance) }

type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol    string  `json:"symbol"`
				LongName  string  `json:"longName"`
				MarketCap float64 `json:"marketCap"`
			} `json:"meta"`
			Indicators struct {
				Quote []struct {
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
	} `json:"chart"`
}

func (s *yahooSource) Fetch(ctx context.Context) ([]*models.FinancialSignal, error) {
	signals := make([]*models.FinancialSignal, 0, len(s.opts.Symbols))
	for symbol, sector := range s.opts.Symbols {
		sig, err := s.fetchChart(ctx, symbol, sector)
		if err != nil {
			if errors.Is(err, ErrRateLimited) {
				s.log.Warn("yahoo rate limited", logger.String("symbol", symbol))
				break
			}
			s.log.Error("yahoo fetch failed",
				logger.String("symbol", symbol), logger.Error(err))
			continue
		}
		signals = append(signals, sig)
	}

	if len(signals) == 0 {
		return fallbackFinancial(s.normalizer, models.PlatformYahooFinance), nil
	}
	return signals, nil
}

func (s *yahooSource) fetchChart(ctx context.Context, symbol, sector string) (*models.FinancialSignal, error) {
	var resp yahooChart
	err := s.fetcher.GetJSON(ctx, s.Name(), s.opts.Budget, financialRetryDelay, &phttp.RequestOptions{
		URL:     fmt.Sprintf(yahooChartURL, symbol),
		Headers: map[string]string{"User-Agent": userAgent},
		QueryParams: map[string][]string{
			"range":    {"1mo"},
			"interval": {"1d"},
		},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo chart for %s empty", symbol)
	}

	result := resp.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	closes := make([]float64, 0, len(quote.Close))
	for _, c := range quote.Close {
		if c > 0 {
			closes = append(closes, c)
		}
	}
	var volume int64
	if n := len(quote.Volume); n > 0 {
		volume = quote.Volume[n-1]
	}

	return s.normalizer.PriceSeries(&normalize.PriceSeries{
		Symbol:    symbol,
		Name:      result.Meta.LongName,
		Sector:    sector,
		Closes:    closes,
		Volume:    volume,
		MarketCap: result.Meta.MarketCap,
		Timestamp: time.Now(),
	})
}
