package source

import (
	"time"

	"MarketPulse/internal/domain/models"
	"MarketPulse/internal/normalize"
)

// Fallback datasets keep the pipeline producing plausible signals when a
// source has no API key, is rate limited, or exhausted its retries.
// Records run through the same normalizer as live data so downstream
// scoring stays uniform.

var fallbackTweets = []normalize.Tweet{
	{ID: "fb_tw_1", Text: "Smart home devices are having an amazing year, demand for wireless hubs keeps climbing #smarthome #IoT", Author: "techpulse", Likes: 320, Retweets: 85, Replies: 40},
	{ID: "fb_tw_2", Text: "Supply chain pressure easing, great news for consumer electronics pricing into the holidays", Author: "marketwatcher", Likes: 150, Retweets: 42, Replies: 18},
	{ID: "fb_tw_3", Text: "Wearable fitness trackers with longer battery life are the best purchase this quarter #fitness", Author: "gadgetfan", Likes: 95, Retweets: 20, Replies: 12},
	{ID: "fb_tw_4", Text: "Disappointing earnings from legacy retail, e-commerce keeps taking share", Author: "retailbeat", Likes: 210, Retweets: 60, Replies: 33},
}

var fallbackRedditPosts = []normalize.RedditPost{
	{ID: "fb_rd_1", Title: "Portable espresso makers are exploding in popularity", Selftext: "Seeing great reviews everywhere, perfect gift category this season", Subreddit: "business", Score: 840, Comments: 120},
	{ID: "fb_rd_2", Title: "Which budget mechanical keyboard is actually good?", Selftext: "Looking for recommendations under $100", Subreddit: "technology", Score: 450, Comments: 230},
	{ID: "fb_rd_3", Title: "Home gym equipment demand still strong post-pandemic", Subreddit: "fitness", Score: 620, Comments: 95},
	{ID: "fb_rd_4", Title: "Index funds vs individual stocks for beginners", Subreddit: "investing", Score: 1100, Comments: 340},
}

var fallbackTrendTopics = []normalize.TrendTopic{
	{Topic: "wireless earbuds", Interest: 88, Rising: true},
	{Topic: "standing desk", Interest: 72, Rising: true},
	{Topic: "air fryer", Interest: 65, Rising: false},
	{Topic: "smart thermostat", Interest: 58, Rising: true},
	{Topic: "electric scooter", Interest: 51, Rising: false},
}

var fallbackQuotes = []normalize.Quote{
	{Symbol: "AAPL", Price: 150.25, Change: 2.45, ChangePercent: 1.6576, Volume: 52_000_000, High: 151.10, Low: 148.30},
	{Symbol: "MSFT", Price: 310.80, Change: -1.20, ChangePercent: -0.3846, Volume: 28_000_000, High: 313.50, Low: 309.10},
	{Symbol: "GOOGL", Price: 138.40, Change: 0.90, ChangePercent: 0.6545, Volume: 19_500_000, High: 139.20, Low: 136.80},
	{Symbol: "AMZN", Price: 134.60, Change: 3.10, ChangePercent: 2.3575, Volume: 41_000_000, High: 135.40, Low: 131.20},
}

var fallbackSeries = []normalize.PriceSeries{
	{Symbol: "TSLA", Name: "Tesla Inc", Sector: "Technology", Volume: 98_000_000, Closes: seriesAround(240, []float64{-2, 1.5, 3, -1, 2.5, 4, -0.5, 1, 2, 3.5, -1.5, 2, 1, 4.5, -2, 3, 1.5, 2.5, -1, 3})},
	{Symbol: "JPM", Name: "JPMorgan Chase", Sector: "Finance", Volume: 12_000_000, Closes: seriesAround(148, []float64{0.5, -0.3, 0.8, 0.2, -0.6, 0.4, 0.9, -0.2, 0.3, 0.6, -0.4, 0.5, 0.2, -0.1, 0.7, 0.3, -0.5, 0.4, 0.6, 0.2})},
	{Symbol: "JNJ", Name: "Johnson & Johnson", Sector: "Healthcare", Volume: 8_500_000, Closes: seriesAround(162, []float64{-0.2, 0.3, -0.4, 0.1, 0.2, -0.3, 0.4, 0.1, -0.2, 0.3, 0.2, -0.1, 0.3, -0.2, 0.1, 0.4, -0.3, 0.2, 0.1, -0.1})},
}

var fallbackListings = map[models.Platform][]normalize.ProductListing{
	models.PlatformAmazon: {
		{Name: "Wireless Earbuds Pro", Category: "Electronics", Rank: 1, Rating: 4.6, Reviews: 18200, PriceMin: 49.99, PriceMax: 89.99, GrowthRate: 28},
		{Name: "Smart Fitness Tracker", Category: "Electronics", Rank: 2, Rating: 4.4, Reviews: 9400, PriceMin: 29.99, PriceMax: 59.99, GrowthRate: 22},
		{Name: "Portable Phone Charger", Category: "Accessories", Rank: 3, Rating: 4.7, Reviews: 31000, PriceMin: 19.99, PriceMax: 39.99, GrowthRate: 12},
		{Name: "Ergonomic Laptop Stand", Category: "Office", Rank: 4, Rating: 4.5, Reviews: 5200, PriceMin: 24.99, PriceMax: 49.99, GrowthRate: 18},
	},
	models.PlatformGoogleShopping: {
		{Name: "Premium Coffee Maker", Category: "Home", Rank: 1, Rating: 4.3, Reviews: 7600, PriceMin: 79.99, PriceMax: 199.99, GrowthRate: 15},
		{Name: "Eco Water Bottle", Category: "Home", Rank: 2, Rating: 4.8, Reviews: 12500, PriceMin: 14.99, PriceMax: 34.99, GrowthRate: 31},
		{Name: "Gaming Console Stand", Category: "Electronics", Rank: 3, Rating: 4.2, Reviews: 2900, PriceMin: 22.99, PriceMax: 44.99, GrowthRate: -12},
	},
}

func seriesAround(base float64, deltas []float64) []float64 {
	out := make([]float64, 0, len(deltas)+1)
	price := base
	out = append(out, price)
	for _, d := range deltas {
		price += d
		out = append(out, price)
	}
	return out
}

// fallback maps each dataset through the normalizer, stamping records
// with the current time so retention does not immediately evict them.

func fallbackSocial(n *normalize.Normalizer, platform models.Platform) []*models.Signal {
	now := time.Now()
	var out []*models.Signal
	switch platform {
	case models.PlatformTwitter:
		for i := range fallbackTweets {
			t := fallbackTweets[i]
			t.CreatedAt = now
			if sig, err := n.Tweet(&t); err == nil {
				sig.Metadata["fallback"] = true
				out = append(out, sig)
			}
		}
	case models.PlatformReddit:
		for i := range fallbackRedditPosts {
			p := fallbackRedditPosts[i]
			p.CreatedAt = now
			if sig, err := n.RedditPost(&p); err == nil {
				sig.Metadata["fallback"] = true
				out = append(out, sig)
			}
		}
	}
	return out
}

func fallbackTrends(n *normalize.Normalizer) []*models.Signal {
	now := time.Now()
	out := make([]*models.Signal, 0, len(fallbackTrendTopics))
	for i := range fallbackTrendTopics {
		t := fallbackTrendTopics[i]
		t.Timestamp = now
		if sig, err := n.TrendTopic(&t); err == nil {
			sig.Metadata["fallback"] = true
			out = append(out, sig)
		}
	}
	return out
}

func fallbackFinancial(n *normalize.Normalizer, platform models.Platform) []*models.FinancialSignal {
	now := time.Now()
	var out []*models.FinancialSignal
	switch platform {
	case models.PlatformAlphaVantage:
		for i := range fallbackQuotes {
			q := fallbackQuotes[i]
			q.Timestamp = now
			if sig, err := n.Quote(&q); err == nil {
				markFallback(&sig.Metadata)
				out = append(out, sig)
			}
		}
	case models.PlatformYahooFinance:
		for i := range fallbackSeries {
			s := fallbackSeries[i]
			s.Timestamp = now
			if sig, err := n.PriceSeries(&s); err == nil {
				markFallback(&sig.Metadata)
				out = append(out, sig)
			}
		}
	}
	return out
}

func fallbackProducts(n *normalize.Normalizer, platform models.Platform) []*models.ProductTrend {
	now := time.Now()
	listings := fallbackListings[platform]
	out := make([]*models.ProductTrend, 0, len(listings))
	for i := range listings {
		l := listings[i]
		l.Timestamp = now
		trend, err := n.ProductListing(platform, &l)
		if err != nil {
			continue
		}
		trend.Metadata["fallback"] = true
		out = append(out, trend)
	}
	return out
}

func markFallback(m *map[string]any) {
	if *m == nil {
		*m = map[string]any{}
	}
	(*m)["fallback"] = true
}
