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

const twitterSearchURL = "https://api.twitter.com/2/tweets/search/recent"

const socialRetryDelay = 5 * time.Second

// TwitterOptions configures the twitter source.
type TwitterOptions struct {
	BearerToken string
	Query       string
	MaxResults  int
	Budget      Budget
}

type twitterSource struct {
	opts       TwitterOptions
	fetcher    *Fetcher
	normalizer *normalize.Normalizer
	log        *logger.Logger
}

// NewTwitter builds the twitter recent-search source. Without a bearer
// token the source serves fallback data only.
func NewTwitter(opts TwitterOptions, fetcher *Fetcher, n *normalize.Normalizer, log *logger.Logger) SignalSource {
	if opts.Query == "" {
		opts.Query = "product launch OR market trend lang:en -is:retweet"
	}
	if opts.MaxResults == 0 {
		opts.MaxResults = 25
	}
	return &twitterSource{opts: opts, fetcher: fetcher, normalizer: n, log: log}
}

func (s *twitterSource) Name() string { return string(models.PlatformTwitter) }

type twitterResponse struct {
	Data []struct {
		ID            string    `json:"id"`
		Text          string    `json:"text"`
		AuthorID      string    `json:"author_id"`
		CreatedAt     time.Time `json:"created_at"`
		PublicMetrics struct {
			LikeCount    int `json:"like_count"`
			RetweetCount int `json:"retweet_count"`
			ReplyCount   int `json:"reply_count"`
		} `json:"public_metrics"`
	} `json:"data"`
}

func (s *twitterSource) Fetch(ctx context.Context) ([]*models.Signal, error) {
	if s.opts.BearerToken == "" {
		s.log.Debug("twitter token missing, using fallback data")
		return fallbackSocial(s.normalizer, models.PlatformTwitter), nil
	}

	var resp twitterResponse
	err := s.fetcher.GetJSON(ctx, s.Name(), s.opts.Budget, socialRetryDelay, &phttp.RequestOptions{
		URL: twitterSearchURL,
		Headers: map[string]string{
			"Authorization": "Bearer " + s.opts.BearerToken,
		},
		QueryParams: map[string][]string{
			"query":        {s.opts.Query},
			"max_results":  {fmt.Sprint(s.opts.MaxResults)},
			"tweet.fields": {"public_metrics,created_at,author_id"},
		},
	}, &resp)
	if err != nil {
		if errors.Is(err, ErrRateLimited) {
			s.log.Warn("twitter rate limited, using fallback data")
		} else {
			s.log.Error("twitter fetch failed, using fallback data", logger.Error(err))
		}
		return fallbackSocial(s.normalizer, models.PlatformTwitter), nil
	}

	signals := make([]*models.Signal, 0, len(resp.Data))
	for _, t := range resp.Data {
		sig, err := s.normalizer.Tweet(&normalize.Tweet{
			ID:        t.ID,
			Text:      t.Text,
			Author:    t.AuthorID,
			Likes:     t.PublicMetrics.LikeCount,
			Retweets:  t.PublicMetrics.RetweetCount,
			Replies:   t.PublicMetrics.ReplyCount,
			CreatedAt: t.CreatedAt,
		})
		if err != nil {
			s.log.Debug("skipping malformed tweet", logger.Error(err))
			continue
		}
		signals = append(signals, sig)
	}
	if len(signals) == 0 {
		return fallbackSocial(s.normalizer, models.PlatformTwitter), nil
	}
	return signals, nil
}
