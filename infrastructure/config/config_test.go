package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, 10, cfg.RateLimitRequests)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, 15*time.Second, cfg.CaptureTimeout)
	assert.Equal(t, 30*time.Second, cfg.CompletionTimeout)
	assert.Equal(t, "TimeIndex", cfg.TimeIndexName)
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
environment: staging
capture_base_url: http://capture.internal:3030
capture_timeout: 5s
rate_limit_requests: 20
cors_origins:
  - https://dash.example.com
completion_model: from-file
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("COMPLETION_MODEL", "from-env")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "http://capture.internal:3030", cfg.CaptureBaseURL)
	assert.Equal(t, 5*time.Second, cfg.CaptureTimeout)
	assert.Equal(t, 20, cfg.RateLimitRequests)
	assert.Equal(t, "from-env", cfg.CompletionModel)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)

	dc := cfg.DomainConfig()
	assert.Equal(t, 5*time.Second, dc.CaptureTimeout)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.Environment = "production"
	assert.Error(t, cfg.Validate(), "production needs an ingest secret")

	cfg.IngestSecret = "s3cret"
	assert.NoError(t, cfg.Validate())

	cfg.CaptureBaseURL = "not a url"
	assert.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.RateLimitRequests = 0
	assert.Error(t, cfg.Validate())
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("X_DURATION", "45")
	assert.Equal(t, 45*time.Second, getEnvDuration("X_DURATION", time.Second))

	t.Setenv("X_DURATION", "250ms")
	assert.Equal(t, 250*time.Millisecond, getEnvDuration("X_DURATION", time.Second))

	t.Setenv("X_DURATION", "soon")
	assert.Equal(t, time.Second, getEnvDuration("X_DURATION", time.Second))
}
