package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"truthlens/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 25, cfg.Quota.DailyLimit)
	assert.Equal(t, models.HistoryTypeMemory, cfg.History.Type)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_FromFile(t *testing.T) {
	configYAML := `
server:
  port: 9999
quota:
  enabled: true
  daily_limit: 100
  cleanup_interval: 5m
classifier:
  endpoint: https://classifier.internal/v2/sync
  api_key: file-key
  timeout: 10s
  max_workers: 4
history:
  enabled: true
  type: sqlite
  dsn: ./data/test.db
  cache_ttl: 1h
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(configYAML), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 100, cfg.Quota.DailyLimit)
	assert.Equal(t, "https://classifier.internal/v2/sync", cfg.Classifier.Endpoint)
	assert.Equal(t, "file-key", cfg.Classifier.APIKey)
	assert.Equal(t, 10*time.Second, cfg.Classifier.Timeout)
	assert.Equal(t, models.HistoryTypeSQLite, cfg.History.Type)
	assert.Equal(t, time.Hour, cfg.History.CacheTTL)
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("TRUTHLENS_PORT", "7070")
	t.Setenv("TRUTHLENS_QUOTA_DAILY_LIMIT", "50")
	t.Setenv("TRUTHLENS_CLASSIFIER_API_KEY", "env-key")
	t.Setenv("TRUTHLENS_CLASSIFIER_TIMEOUT", "15s")
	t.Setenv("TRUTHLENS_LOG_LEVEL", "debug")
	t.Setenv("TRUTHLENS_TRACING_ENABLED", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 50, cfg.Quota.DailyLimit)
	assert.Equal(t, "env-key", cfg.Classifier.APIKey)
	assert.Equal(t, 15*time.Second, cfg.Classifier.Timeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Observability.Tracing.Enabled)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	configYAML := `
server:
  port: 9999
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(configYAML), 0644))

	t.Setenv("TRUTHLENS_PORT", "7070")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port, "environment must win over the file")
}

func TestLoad_InvalidConfigRejected(t *testing.T) {
	t.Setenv("TRUTHLENS_QUOTA_DAILY_LIMIT", "-5")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not: valid"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveExample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "example.yaml")
	require.NoError(t, SaveExample(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "your-classifier-api-key-here")
	assert.Contains(t, string(data), "sqlite")
}
