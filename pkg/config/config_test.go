package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalConfig = `
environment: test
clickhouse:
  host: localhost
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "marketpulse", cfg.ClickHouse.Database)
	assert.Equal(t, 9000, cfg.ClickHouse.Port)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, time.Minute, cfg.Ingest.SocialInterval)
	assert.Equal(t, 2*time.Minute, cfg.Ingest.FinancialInterval)
	assert.Equal(t, 5*time.Minute, cfg.Ingest.ProductInterval)
	assert.Equal(t, 10*time.Minute, cfg.Ingest.MatchInterval)
	assert.Equal(t, 7*24*time.Hour, cfg.Ingest.Retention)
	assert.InDelta(t, 0.7, cfg.Sources.Confidence.Twitter, 1e-9)
	assert.InDelta(t, 0.85, cfg.Sources.Confidence.AlphaVantage, 1e-9)
	assert.InDelta(t, 0.65, cfg.Sources.Confidence.ProductTrend, 1e-9)
	assert.Equal(t, 5, cfg.Sources.AlphaVantage.RateLimit.Limit)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"missing environment", "clickhouse:\n  host: localhost\n", "environment is required"},
		{"missing clickhouse host", "environment: test\n", "clickhouse.host is required"},
		{"kafka enabled without brokers", minimalConfig + "kafka:\n  enabled: true\n", "kafka.brokers required"},
		{"bad cache backend", minimalConfig + "cache:\n  backend: memcached\n", "cache.backend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("TWITTER_BEARER_TOKEN", "tok-123")
	t.Setenv("ALPHA_VANTAGE_API_KEY", "av-456")
	t.Setenv("KAFKA_BROKERS", "b1:9092,b2:9092")
	t.Setenv("REDIS_ADDR", "cache:6379")

	cfg, err := LoadWithEnv(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "tok-123", cfg.Sources.Twitter.BearerToken)
	assert.Equal(t, "av-456", cfg.Sources.AlphaVantage.APIKey)
	assert.Equal(t, []string{"b1:9092", "b2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, "cache:6379", cfg.Cache.Redis.Addr)
}

func TestMissingAPIKeysAreNotFatal(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)
	assert.Empty(t, cfg.Sources.Twitter.BearerToken)
	assert.Empty(t, cfg.Sources.AlphaVantage.APIKey)
}
