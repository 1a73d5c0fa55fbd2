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

const userAgent = "MarketPulse/1.0"

// RedditOptions configures the reddit source.
type RedditOptions struct {
	Subreddits []string
	PostLimit  int
	Budget     Budget
}

type redditSource struct {
	opts       RedditOptions
	fetcher    *Fetcher
	normalizer *normalize.Normalizer
	log        *logger.Logger
}

// NewReddit builds a source reading the public hot listings of the
// configured subreddits. No credentials required.
func NewReddit(opts RedditOptions, fetcher *Fetcher, n *normalize.Normalizer, log *logger.Logger) SignalSource {
	if len(opts.Subreddits) == 0 {
		opts.Subreddits = []string{"technology", "business", "investing"}
	}
	if opts.PostLimit == 0 {
		opts.PostLimit = 10
	}
	return &redditSource{opts: opts, fetcher: fetcher, normalizer: n, log: log}
}

func (s *redditSource) Name() string { return string(models.PlatformReddit) }

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				ID          string  `json:"id"`
				Title       string  `json:"title"`
				Selftext    string  `json:"selftext"`
				Author      string  `json:"author"`
				Subreddit   string  `json:"subreddit"`
				Score       int     `json:"score"`
				NumComments int     `json:"num_comments"`
				Permalink   string  `json:"permalink"`
				CreatedUTC  float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (s *redditSource) Fetch(ctx context.Context) ([]*models.Signal, error) {
	var signals []*models.Signal
	var failures int

	for _, sub := range s.opts.Subreddits {
		batch, err := s.fetchSubreddit(ctx, sub)
		if err != nil {
			failures++
			if errors.Is(err, ErrRateLimited) {
				s.log.Warn("reddit rate limited", logger.String("subreddit", sub))
				break
			}
			s.log.Error("reddit fetch failed", logger.String("subreddit", sub), logger.Error(err))
			continue
		}
		signals = append(signals, batch...)
	}

	if len(signals) == 0 {
		s.log.Warn("reddit produced no signals, using fallback data",
			logger.Int("failed_subreddits", failures))
		return fallbackSocial(s.normalizer, models.PlatformReddit), nil
	}
	return signals, nil
}

func (s *redditSource) fetchSubreddit(ctx context.Context, sub string) ([]*models.Signal, error) {
	var listing redditListing
	err := s.fetcher.GetJSON(ctx, s.Name(), s.opts.Budget, socialRetryDelay, &phttp.RequestOptions{
		URL:     fmt.Sprintf("https://www.reddit.com/r/%s/hot.json", sub),
		Headers: map[string]string{"User-Agent": userAgent},
		QueryParams: map[string][]string{
			"limit": {fmt.Sprint(s.opts.PostLimit)},
		},
	}, &listing)
	if err != nil {
		return nil, err
	}

	out := make([]*models.Signal, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		d := child.Data
		sig, err := s.normalizer.RedditPost(&normalize.RedditPost{
			ID:        d.ID,
			Title:     d.Title,
			Selftext:  d.Selftext,
			Author:    d.Author,
			Subreddit: d.Subreddit,
			Score:     d.Score,
			Comments:  d.NumComments,
			URL:       "https://www.reddit.com" + d.Permalink,
			CreatedAt: time.Unix(int64(d.CreatedUTC), 0),
		})
		if err != nil {
			s.log.Debug("skipping malformed reddit post", logger.Error(err))
			continue
		}
		out = append(out, sig)
	}
	return out, nil
}
