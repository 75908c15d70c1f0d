package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("MOON_DATA_DIR", "")
	t.Setenv("MOON_PORT", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:3000", cfg.Addr())
	require.Equal(t, "./data", cfg.Storage.DataDir)
	require.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	require.False(t, cfg.RateLimit.Enabled)
	require.Equal(t, "dollpublish", cfg.MinIO.Bucket)
	require.Empty(t, cfg.MinIO.Endpoint)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("MOON_DATA_DIR", "/srv/moon")
	t.Setenv("MOON_BIND_ADDR", "127.0.0.1")
	t.Setenv("MOON_PORT", "8080")
	t.Setenv("REGISTRY_WATCH", "true")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "/srv/moon", cfg.Storage.DataDir)
	require.True(t, cfg.Storage.WatchRegistry)
	require.Equal(t, "127.0.0.1:8080", cfg.Addr())
	require.Equal(t, "localhost", cfg.Redis.Host)
	require.Equal(t, "6379", cfg.Redis.Port)
	require.True(t, cfg.RateLimit.Enabled)
	require.InDelta(t, 2.5, cfg.RateLimit.RPS, 0.0001)
}

func TestAddrBracketsIPv6(t *testing.T) {
	t.Setenv("MOON_BIND_ADDR", "::1")
	t.Setenv("MOON_PORT", "8080")
	t.Setenv("REDIS_HOST", "fd00::6")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "[::1]:8080", cfg.Addr())
	require.Equal(t, "[fd00::6]:6379", cfg.Redis.Addr())

	cfg.Server.Host = "localhost"
	require.Equal(t, "localhost:8080", cfg.Addr())
}
