package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	Cache struct {
		Backend string        `yaml:"backend"` // memory or redis
		TTL     time.Duration `yaml:"ttl"`
		Redis   struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Sources struct {
		Twitter struct {
			BearerToken string `yaml:"bearer_token"`
			Query       string `yaml:"query"`
			MaxResults  int    `yaml:"max_results"`
			RateLimit   Rate   `yaml:"rate_limit"`
		} `yaml:"twitter"`
		Reddit struct {
			Subreddits []string `yaml:"subreddits"`
			PostLimit  int      `yaml:"post_limit"`
			RateLimit  Rate     `yaml:"rate_limit"`
		} `yaml:"reddit"`
		Yahoo struct {
			Symbols   map[string]string `yaml:"symbols"` // symbol -> sector
			RateLimit Rate              `yaml:"rate_limit"`
		} `yaml:"yahoo"`
		AlphaVantage struct {
			APIKey    string   `yaml:"api_key"`
			Symbols   []string `yaml:"symbols"`
			RateLimit Rate     `yaml:"rate_limit"`
		} `yaml:"alpha_vantage"`
		Amazon struct {
			Enabled      bool              `yaml:"enabled"`
			CategoryURLs map[string]string `yaml:"category_urls"`
			RateLimit    Rate              `yaml:"rate_limit"`
		} `yaml:"amazon"`
		Confidence struct {
			Twitter      float64 `yaml:"twitter"`
			Reddit       float64 `yaml:"reddit"`
			GoogleTrends float64 `yaml:"google_trends"`
			YahooFinance float64 `yaml:"yahoo_finance"`
			AlphaVantage float64 `yaml:"alpha_vantage"`
			ProductTrend float64 `yaml:"product_trend"`
		} `yaml:"confidence"`
	} `yaml:"sources"`
	Ingest struct {
		SocialInterval    time.Duration `yaml:"social_interval"`
		FinancialInterval time.Duration `yaml:"financial_interval"`
		ProductInterval   time.Duration `yaml:"product_interval"`
		MatchInterval     time.Duration `yaml:"match_interval"`
		CleanupInterval   time.Duration `yaml:"cleanup_interval"`
		Retention         time.Duration `yaml:"retention"`
		MatchSeeds        []string      `yaml:"match_seeds"`
	} `yaml:"ingest"`
}

// Rate is a fixed-window allowance for one source.
type Rate struct {
	Limit  int           `yaml:"limit"`
	Window time.Duration `yaml:"window"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides secrets and endpoints
// with environment variables. Missing API keys are not an error; the
// affected sources run on fallback data.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("TWITTER_BEARER_TOKEN"); v != "" {
		c.Sources.Twitter.BearerToken = v
	}
	if v := os.Getenv("ALPHA_VANTAGE_API_KEY"); v != "" {
		c.Sources.AlphaVantage.APIKey = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Backend = "redis"
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
	if c.ClickHouse.Port == 0 {
		c.ClickHouse.Port = 9000
	}
	if c.ClickHouse.Database == "" {
		c.ClickHouse.Database = "marketpulse"
	}
	if c.ClickHouse.User == "" {
		c.ClickHouse.User = "default"
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "marketpulse.signals"
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 5 * time.Minute
	}
	if c.Ingest.SocialInterval == 0 {
		c.Ingest.SocialInterval = time.Minute
	}
	if c.Ingest.FinancialInterval == 0 {
		c.Ingest.FinancialInterval = 2 * time.Minute
	}
	if c.Ingest.ProductInterval == 0 {
		c.Ingest.ProductInterval = 5 * time.Minute
	}
	if c.Ingest.MatchInterval == 0 {
		c.Ingest.MatchInterval = 10 * time.Minute
	}
	if c.Ingest.CleanupInterval == 0 {
		c.Ingest.CleanupInterval = time.Hour
	}
	if c.Ingest.Retention == 0 {
		c.Ingest.Retention = 7 * 24 * time.Hour
	}
	cf := &c.Sources.Confidence
	if cf.Twitter == 0 {
		cf.Twitter = 0.7
	}
	if cf.Reddit == 0 {
		cf.Reddit = 0.6
	}
	if cf.GoogleTrends == 0 {
		cf.GoogleTrends = 0.8
	}
	if cf.YahooFinance == 0 {
		cf.YahooFinance = 0.8
	}
	if cf.AlphaVantage == 0 {
		cf.AlphaVantage = 0.85
	}
	if cf.ProductTrend == 0 {
		cf.ProductTrend = 0.65
	}
	defaultRate := func(r *Rate, limit int, window time.Duration) {
		if r.Limit == 0 {
			r.Limit = limit
		}
		if r.Window == 0 {
			r.Window = window
		}
	}
	defaultRate(&c.Sources.Twitter.RateLimit, 100, 15*time.Minute)
	defaultRate(&c.Sources.Reddit.RateLimit, 60, time.Minute)
	defaultRate(&c.Sources.Yahoo.RateLimit, 100, time.Hour)
	defaultRate(&c.Sources.AlphaVantage.RateLimit, 5, time.Minute)
	defaultRate(&c.Sources.Amazon.RateLimit, 10, time.Hour)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers required when kafka is enabled")
	}
	if c.Cache.Backend != "memory" && c.Cache.Backend != "redis" {
		return fmt.Errorf("cache.backend must be 'memory' or 'redis', got '%s'", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache.redis.addr required when backend is redis")
	}
	return nil
}
