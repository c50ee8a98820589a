package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_PATH", "PORT", "HTTP_ADDRESS", "CORS_ORIGINS", "OPENAI_API_KEY", "LLM_API_KEY",
		"TMDB_API_KEY", "TMDB_V4_TOKEN", "FORCE_IPV4", "TRENDING_TTL", "VALKEY_ADDR",
		"ROOMS_VALKEY_ENABLED", "HISTORY_VALKEY_ENABLED", "HISTORY_POSTGRES_DSN",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultsWithEnv(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("TMDB_API_KEY", "tmdb-key")
	t.Setenv("LLM_API_KEY", "fallback")
	t.Setenv("OPENAI_API_KEY", "sk-live")
	t.Setenv("PORT", "7000")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("FORCE_IPV4", "true")
	t.Setenv("TRENDING_TTL", "5m")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":7000", cfg.HTTP.Address)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORSOrigins)
	require.Equal(t, "sk-live", cfg.LLM.APIKey)
	require.Equal(t, "tmdb-key", cfg.TMDB.APIKey)
	require.True(t, cfg.Outbound.ForceIPv4)
	require.Equal(t, 5*time.Minute, cfg.Trending.TTL)
	require.EqualValues(t, 4, cfg.Outbound.Attempts)
	require.Equal(t, 15*time.Second, cfg.TMDB.Timeout)
	require.Equal(t, 20*time.Second, cfg.LLM.Timeout)
}

func TestLoadRequiresTMDBCredential(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	_, err := Load()
	require.ErrorContains(t, err, "tmdb")

	t.Setenv("TMDB_V4_TOKEN", "bearer")
	_, err = Load()
	require.NoError(t, err)
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  address: ":9000"
tmdb:
  apiKey: from-file
recommend:
  concurrency: 6
history:
  limit: 25
`), 0o600))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.HTTP.Address)
	require.Equal(t, "from-file", cfg.TMDB.APIKey)
	require.Equal(t, 6, cfg.Recommend.Concurrency)
	require.Equal(t, 25, cfg.History.Limit)
	require.Equal(t, 15, cfg.Recommend.Target)
}

func TestValidateValkeyAddr(t *testing.T) {
	cfg := defaultConfig()
	cfg.TMDB.APIKey = "k"
	cfg.Rooms.Valkey.Enabled = true
	require.ErrorContains(t, cfg.Validate(), "rooms.valkey.addr")

	cfg.Rooms.Valkey.Addr = "localhost:6379"
	require.NoError(t, cfg.Validate())
}
