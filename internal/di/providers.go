package di

import (
	"fmt"
	"math/rand"
	"net"
	"strconv"
	"time"

	"MarketPulse/internal/domain/repository"
	"MarketPulse/internal/handler/api"
	"MarketPulse/internal/handler/ws"
	"MarketPulse/internal/match"
	"MarketPulse/internal/normalize"
	internalrepo "MarketPulse/internal/repository"
	"MarketPulse/internal/scheduler"
	"MarketPulse/internal/service/ratelimit"
	"MarketPulse/internal/service/sentiment"
	"MarketPulse/internal/service/technical"
	"MarketPulse/internal/source"
	"MarketPulse/internal/usecase"
	"MarketPulse/pkg/cache"
	pkgch "MarketPulse/pkg/clickhouse"
	"MarketPulse/pkg/config"
	phttp "MarketPulse/pkg/http"
	pkgkafka "MarketPulse/pkg/kafka"
	"MarketPulse/pkg/logger"
	"MarketPulse/pkg/metrics"
	"MarketPulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client. Schema creation
// happens in Storage.Init, not here.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideCache selects the cache backend from configuration.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if cfg.Cache.Backend != "redis" {
		return cache.NewMemoryCache(), nil
	}

	host, portStr, err := net.SplitHostPort(cfg.Cache.Redis.Addr)
	if err != nil {
		return nil, fmt.Errorf("cache.redis.addr: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("cache.redis.addr port: %w", err)
	}

	redisCache, err := cache.NewRedisCache(
		cache.WithRedisHost(host),
		cache.WithRedisPort(port),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
	)
	if err != nil {
		return nil, err
	}
	// L1 memory in front of Redis keeps snapshot queries off the wire.
	return cache.NewLayeredCache(redisCache), nil
}

// ProvideStorage creates the ClickHouse signal store behind a
// read-through cache.
func ProvideStorage(chClient *pkgch.Client, c cache.Service, cfg *config.Config) repository.Storage {
	store := internalrepo.NewSignalStore(chClient, cfg.ClickHouse.Database)
	return internalrepo.NewCachedStore(store, c, cfg.Cache.TTL)
}

// ProvidePublisher creates the Kafka publisher, or a no-op one when the
// bus is disabled.
func ProvidePublisher(cfg *config.Config) (repository.Publisher, error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NopPublisher{}, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewSignalPublisher(producer, cfg.Kafka.Topic), nil
}

// ProvideFetcher creates the rate-limited HTTP fetcher shared by all
// sources. The limiter is per-fetcher so source budgets are tracked in
// one place.
func ProvideFetcher(log *logger.Logger) *source.Fetcher {
	client := phttp.NewClient(phttp.WithTimeout(30 * time.Second))
	return source.NewFetcher(client, ratelimit.New(), log)
}

// ProvideNormalizer creates the signal normalizer with confidence
// priors from configuration.
func ProvideNormalizer(cfg *config.Config) *normalize.Normalizer {
	conf := normalize.Confidence{
		Twitter:      cfg.Sources.Confidence.Twitter,
		Reddit:       cfg.Sources.Confidence.Reddit,
		GoogleTrends: cfg.Sources.Confidence.GoogleTrends,
		YahooFinance: cfg.Sources.Confidence.YahooFinance,
		AlphaVantage: cfg.Sources.Confidence.AlphaVantage,
		ProductTrend: cfg.Sources.Confidence.ProductTrend,
	}
	return normalize.New(sentiment.New(), technical.New(), conf)
}

// ProvideSignalSources creates the social and trend sources.
func ProvideSignalSources(cfg *config.Config, fetcher *source.Fetcher, n *normalize.Normalizer, log *logger.Logger) []source.SignalSource {
	return []source.SignalSource{
		source.NewTwitter(source.TwitterOptions{
			BearerToken: cfg.Sources.Twitter.BearerToken,
			Query:       cfg.Sources.Twitter.Query,
			MaxResults:  cfg.Sources.Twitter.MaxResults,
			Budget:      budgetFrom(cfg.Sources.Twitter.RateLimit),
		}, fetcher, n, log),
		source.NewReddit(source.RedditOptions{
			Subreddits: cfg.Sources.Reddit.Subreddits,
			PostLimit:  cfg.Sources.Reddit.PostLimit,
			Budget:     budgetFrom(cfg.Sources.Reddit.RateLimit),
		}, fetcher, n, log),
		source.NewGoogleTrends(n, log),
	}
}

// ProvideFinancialSources creates the market-data sources.
func ProvideFinancialSources(cfg *config.Config, fetcher *source.Fetcher, n *normalize.Normalizer, log *logger.Logger) []source.FinancialSource {
	return []source.FinancialSource{
		source.NewAlphaVantage(source.AlphaVantageOptions{
			APIKey:  cfg.Sources.AlphaVantage.APIKey,
			Symbols: cfg.Sources.AlphaVantage.Symbols,
			Budget:  budgetFrom(cfg.Sources.AlphaVantage.RateLimit),
		}, fetcher, n, log),
		source.NewYahoo(source.YahooOptions{
			Symbols: cfg.Sources.Yahoo.Symbols,
			Budget:  budgetFrom(cfg.Sources.Yahoo.RateLimit),
		}, fetcher, n, log),
	}
}

// ProvideProductSources creates the product-trend sources.
func ProvideProductSources(cfg *config.Config, fetcher *source.Fetcher, n *normalize.Normalizer, log *logger.Logger) []source.ProductSource {
	return []source.ProductSource{
		source.NewAmazon(source.AmazonOptions{
			CategoryURLs: cfg.Sources.Amazon.CategoryURLs,
			Enabled:      cfg.Sources.Amazon.Enabled,
			Budget:       budgetFrom(cfg.Sources.Amazon.RateLimit),
		}, fetcher, n, log),
		source.NewGoogleShopping(n, log),
	}
}

// ProvideEngine creates the strategic match engine.
func ProvideEngine() *match.Engine {
	return match.NewEngine(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// ProvideHub creates the websocket hub.
func ProvideHub(store repository.Storage, m repository.Metrics, log *logger.Logger) *ws.Hub {
	return ws.NewHub(store, m, log)
}

// ProvideOrchestrator wires sources, store, bus and hub into the
// ingestion orchestrator.
func ProvideOrchestrator(
	cfg *config.Config,
	signals []source.SignalSource,
	financial []source.FinancialSource,
	products []source.ProductSource,
	engine *match.Engine,
	store repository.Storage,
	publisher repository.Publisher,
	hub *ws.Hub,
	m repository.Metrics,
	log *logger.Logger,
) *usecase.Orchestrator {
	return usecase.NewOrchestrator(usecase.OrchestratorOptions{
		SignalSources:    signals,
		FinancialSources: financial,
		ProductSources:   products,
		Engine:           engine,
		MatchSeeds:       cfg.Ingest.MatchSeeds,
		Retention:        cfg.Ingest.Retention,
	}, store, publisher, hub, m, log)
}

// ProvidePulseHandler creates the HTTP API handler.
func ProvidePulseHandler(log *logger.Logger, store repository.Storage, orch *usecase.Orchestrator, hub *ws.Hub) *api.PulseHandler {
	return api.NewPulseHandler(log, store, orch, hub)
}

// ProvideScheduler creates the cycle scheduler.
func ProvideScheduler(log *logger.Logger) *scheduler.Scheduler {
	return scheduler.New(log)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	store repository.Storage,
	publisher repository.Publisher,
	orch *usecase.Orchestrator,
	hub *ws.Hub,
	handler *api.PulseHandler,
	sched *scheduler.Scheduler,
) *server.App {
	return server.New(cfg, log, store, publisher, orch, hub, handler, sched)
}

func budgetFrom(r config.Rate) source.Budget {
	return source.Budget{Limit: r.Limit, Window: r.Window}
}
