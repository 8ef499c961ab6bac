package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 30*time.Second, cfg.HTTP.RequestTimeout)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, cfg.Database.WriterDSN, cfg.Database.ReaderDSN)
	assert.False(t, cfg.Database.AutoMigrate)
	assert.Equal(t, "orderdesk", cfg.Observability.ServiceName)
	assert.Equal(t, "/metrics", cfg.Observability.PrometheusPath)
}

func TestNewDisabledBackendsFallBackToNoop(t *testing.T) {
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("MESSAGING_ENABLED", "false")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "noop", cfg.Cache.Driver)
	assert.Equal(t, "noop", cfg.Messaging.Driver)
}

func TestNewSQLiteWithAutoMigrate(t *testing.T) {
	t.Setenv("DB_DRIVER", " SQLite ")
	t.Setenv("DB_WRITER_DSN", "file:orderdesk.db")
	t.Setenv("DB_AUTO_MIGRATE", "true")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, "file:orderdesk.db", cfg.Database.ReaderDSN)
}

func TestNewRejectsInvalidSettings(t *testing.T) {
	cases := map[string]map[string]string{
		"http port":         {"HTTP_PORT": "0"},
		"grpc port":         {"GRPC_PORT": "-1"},
		"cache driver":      {"CACHE_DRIVER": "memcached"},
		"messaging driver":  {"MESSAGING_DRIVER": "nats"},
		"database driver":   {"DB_DRIVER": "oracle"},
		"writer dsn":        {"DB_WRITER_DSN": ""},
		"kafka topic":       {"KAFKA_TOPIC": ""},
		"redis address":     {"REDIS_ADDR": ""},
		"kafka consumer gp": {"KAFKA_CONSUMER_GROUP": ""},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := New()
			assert.Error(t, err)
		})
	}
}

func TestNewNormalisesObservability(t *testing.T) {
	t.Setenv("OBS_LOG_LEVEL", " DEBUG ")
	t.Setenv("OBS_LOG_ENCODING", "")
	t.Setenv("OBS_PROMETHEUS_PATH", "prom")
	t.Setenv("HTTP_REQUEST_TIMEOUT", "-5s")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Observability.LogLevel)
	assert.Equal(t, "json", cfg.Observability.LogEncoding)
	assert.Equal(t, "/prom", cfg.Observability.PrometheusPath)
	assert.Equal(t, 30*time.Second, cfg.HTTP.RequestTimeout)
}

func TestGetEnvAsStringSlice(t *testing.T) {
	t.Setenv("TEST_BROKERS", " a:1, ,b:2 ")
	assert.Equal(t, []string{"a:1", "b:2"}, getEnvAsStringSlice("TEST_BROKERS", nil))

	t.Setenv("TEST_BROKERS", " , ")
	assert.Equal(t, []string{"x"}, getEnvAsStringSlice("TEST_BROKERS", []string{"x"}))
}

func TestTypedLookupsFallBack(t *testing.T) {
	t.Setenv("TEST_PORT", " 9000 ")
	t.Setenv("TEST_FLAG", "maybe")
	t.Setenv("TEST_TTL", "")

	assert.Equal(t, 9000, getEnvAsInt("TEST_PORT", 1))
	assert.True(t, getEnvAsBool("TEST_FLAG", true))
	assert.Equal(t, time.Minute, getEnvAsDuration("TEST_TTL", time.Minute))
	assert.Equal(t, "", getEnv("TEST_TTL", "fallback"))
	assert.Equal(t, "fallback", getEnv("TEST_UNSET_KEY", "fallback"))
}
