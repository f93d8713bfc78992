package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.Equal(t, ":8080", cfg.ListenAddr)
	require.Equal(t, "http://localhost:8000", cfg.APIBaseURL)
	require.Equal(t, 20, cfg.RateLimit.RequestsPerSecond)
	require.Equal(t, 40, cfg.RateLimit.Burst)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
listen_addr: ":9090"
api_base_url: "http://api.internal:8000"
request_timeout: 10s
log_level: debug
allowed_origins:
  - "https://shop.example"
rate_limit:
  requests_per_second: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.ListenAddr)
	require.Equal(t, "http://api.internal:8000", cfg.APIBaseURL)
	require.Equal(t, Duration(10*time.Second), cfg.RequestTimeout)
	require.Equal(t, []string{"https://shop.example"}, cfg.AllowedOrigins)
	require.Equal(t, 5, cfg.RateLimit.RequestsPerSecond)
	// Burst falls back to twice the configured rate.
	require.Equal(t, 10, cfg.RateLimit.Burst)
	// Session file keeps its default when the file omits it.
	require.Equal(t, "session.json", cfg.SessionFile)
}

func TestLoadInvalidDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("request_timeout: banana\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)

	cfg := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Equal(t, ":8080", cfg.ListenAddr)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("STOREFRONT_ADDR", ":7070")
	t.Setenv("MARKETPLACE_API_URL", "http://upstream:8000")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("RATE_LIMIT_RPS", "3")

	cfg := LoadOrDefault("")
	require.Equal(t, ":7070", cfg.ListenAddr)
	require.Equal(t, "http://upstream:8000", cfg.APIBaseURL)
	require.Equal(t, Duration(5*time.Second), cfg.RequestTimeout)
	require.Equal(t, 3, cfg.RateLimit.RequestsPerSecond)
}
