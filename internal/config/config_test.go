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

func TestLoad(t *testing.T) {
	t.Run("FullConfig", func(t *testing.T) {
		path := writeConfig(t, `
app:
  name: agendalink
  environment: test
backend:
  base_url: http://backend:3000
  timeout_seconds: 5
flow:
  poll_interval_seconds: 3
  session_ttl_seconds: 900
http:
  port: 9090
  rate_limit:
    rps: 2
    burst: 4
redis:
  enabled: true
  address: localhost:6379
logging:
  level: debug
  format: console
`)
		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "http://backend:3000", cfg.Backend.BaseURL)
		assert.Equal(t, 5*time.Second, cfg.Backend.Timeout())
		assert.Equal(t, 3*time.Second, cfg.Flow.PollInterval())
		assert.Equal(t, 15*time.Minute, cfg.Flow.SessionTTL())
		assert.Equal(t, 9090, cfg.HTTP.Port)
		assert.Equal(t, 2.0, cfg.HTTP.RateLimit.RPS)
		assert.True(t, cfg.Redis.Enabled)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("Defaults", func(t *testing.T) {
		path := writeConfig(t, `
backend:
  base_url: http://backend:3000
`)
		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "agendalink", cfg.App.Name)
		assert.Equal(t, 10*time.Second, cfg.Backend.Timeout())
		assert.Equal(t, 3, cfg.Flow.PollIntervalSeconds)
		assert.Equal(t, 30*time.Minute, cfg.Flow.SessionTTL())
		assert.Equal(t, 8080, cfg.HTTP.Port)
		assert.Equal(t, 5.0, cfg.HTTP.RateLimit.RPS)
		assert.Equal(t, 10, cfg.HTTP.RateLimit.Burst)
	})

	t.Run("EnvExpansion", func(t *testing.T) {
		t.Setenv("TEST_BACKEND_URL", "http://expanded:3000")
		path := writeConfig(t, `
backend:
  base_url: ${TEST_BACKEND_URL}
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "http://expanded:3000", cfg.Backend.BaseURL)
	})

	t.Run("MissingBaseURL", func(t *testing.T) {
		path := writeConfig(t, `
app:
  name: agendalink
`)
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "base_url")
	})

	t.Run("TelegramRequiresToken", func(t *testing.T) {
		path := writeConfig(t, `
backend:
  base_url: http://backend:3000
notify:
  telegram:
    enabled: true
`)
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bot_token")
	})

	t.Run("SheetsRequireCredentials", func(t *testing.T) {
		path := writeConfig(t, `
backend:
  base_url: http://backend:3000
google:
  bookings_spreadsheet_id: sheet123
`)
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "credentials_file")
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
	})
}
