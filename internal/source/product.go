package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"MarketPulse/internal/domain/models"
	"MarketPulse/internal/normalize"
	phttp "MarketPulse/pkg/http"
	"MarketPulse/pkg/logger"
)

const productRetryDelay = 3 * time.Second

// AmazonOptions configures the Amazon best-sellers source.
type AmazonOptions struct {
	CategoryURLs map[string]string // category label -> best-sellers page
	Enabled      bool
	Budget       Budget
}

type amazonSource struct {
	opts       AmazonOptions
	fetcher    *Fetcher
	normalizer *normalize.Normalizer
	log        *logger.Logger
}

// NewAmazon builds the best-sellers scraper. Scraping is disabled by
// default; the source then serves curated fallback listings.
func NewAmazon(opts AmazonOptions, fetcher *Fetcher, n *normalize.Normalizer, log *logger.Logger) ProductSource {
	if len(opts.CategoryURLs) == 0 {
		opts.CategoryURLs = map[string]string{
			"Electronics": "https://www.amazon.com/gp/bestsellers/electronics",
		}
	}
	return &amazonSource{opts: opts, fetcher: fetcher, normalizer: n, log: log}
}

func (s *amazonSource) Name() string { return string(models.PlatformAmazon) }

func (s *amazonSource) Fetch(ctx context.Context) ([]*models.ProductTrend, error) {
	if !s.opts.Enabled {
		return fallbackProducts(s.normalizer, models.PlatformAmazon), nil
	}

	var trends []*models.ProductTrend
	for category, url := range s.opts.CategoryURLs {
		batch, err := s.scrapeCategory(ctx, category, url)
		if err != nil {
			if errors.Is(err, ErrRateLimited) {
				s.log.Warn("amazon rate limited", logger.String("category", category))
				break
			}
			s.log.Error("amazon scrape failed",
				logger.String("category", category), logger.Error(err))
			continue
		}
		trends = append(trends, batch...)
	}

	if len(trends) == 0 {
		return fallbackProducts(s.normalizer, models.PlatformAmazon), nil
	}
	return trends, nil
}

func (s *amazonSource) scrapeCategory(ctx context.Context, category, url string) ([]*models.ProductTrend, error) {
	body, err := s.fetcher.GetBody(ctx, s.Name(), s.opts.Budget, productRetryDelay, &phttp.RequestOptions{
		URL:     url,
		Headers: map[string]string{"User-Agent": userAgent},
	})
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse best-sellers page: %w", err)
	}

	var trends []*models.ProductTrend
	doc.Find("div.zg-grid-general-faceout").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		name := strings.TrimSpace(sel.Find("img").AttrOr("alt", ""))
		if name == "" {
			name = strings.TrimSpace(sel.Find("a span div").First().Text())
		}
		trend, err := s.normalizer.ProductListing(models.PlatformAmazon, &normalize.ProductListing{
			Name:      name,
			Category:  category,
			Rank:      i + 1,
			Timestamp: time.Now(),
		})
		if err != nil {
			return true
		}
		trends = append(trends, trend)
		return len(trends) < 20
	})
	return trends, nil
}

type googleShoppingSource struct {
	normalizer *normalize.Normalizer
	log        *logger.Logger
}

// NewGoogleShopping builds the shopping-trends source. There is no
// public API, so it serves the curated dataset.
func NewGoogleShopping(n *normalize.Normalizer, log *logger.Logger) ProductSource {
	return &googleShoppingSource{normalizer: n, log: log}
}

func (s *googleShoppingSource) Name() string { return string(models.PlatformGoogleShopping) }

func (s *googleShoppingSource) Fetch(ctx context.Context) ([]*models.ProductTrend, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fallbackProducts(s.normalizer, models.PlatformGoogleShopping), nil
}
