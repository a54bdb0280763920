package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
app:
  name: venture-workers
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    database: venture
    user: venture
    password: ${TEST_DB_PASSWORD}
  elasticsearch:
    addresses:
      - http://localhost:9200
  redis:
    address: localhost:6379
scoring:
  default_weights:
    founders: 30
    pitch: 5
workers:
  calculate-startup-score:
    enabled: true
  send-newsletter:
    enabled: false
    timeout: 120000
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_DefaultsAndExpansion(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "s3cret")

	cfg, err := LoadFromFile(writeConfig(t, baseYAML))
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Database.Postgres.Password)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, "http://localhost:9200", cfg.Database.Elasticsearch.URL)
	assert.Equal(t, ":8080", cfg.App.HealthAddr)
	assert.Equal(t, 7, cfg.Matchmaking.VisibilityDays)
	assert.Equal(t, 3, cfg.Matchmaking.MaxStartupsPerInvestor)
	assert.Equal(t, "startups", cfg.Search.StartupIndex)
	assert.Equal(t, 30, cfg.Scoring.DefaultWeights["founders"])

	scoreCfg := GetWorkerConfig(cfg, "calculate-startup-score")
	assert.True(t, scoreCfg.Enabled)
	assert.Equal(t, 5, scoreCfg.MaxJobsActive)
	assert.Equal(t, 30000, scoreCfg.Timeout)
	assert.Equal(t, 3, scoreCfg.MaxRetries)

	assert.False(t, IsWorkerEnabled(cfg, "send-newsletter"))
	assert.Equal(t, 120000, GetWorkerConfig(cfg, "send-newsletter").Timeout)
	assert.True(t, IsWorkerEnabled(cfg, "not-configured"))
}

func TestLoadFromFile_MissingBroker(t *testing.T) {
	_, err := LoadFromFile(writeConfig(t, `
database:
  postgres:
    host: localhost
    database: venture
    user: venture
  redis:
    address: localhost:6379
  elasticsearch:
    url: http://localhost:9200
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "camunda.broker_address")
}

func TestLoadFromFile_RejectsOutOfRangeWeight(t *testing.T) {
	_, err := LoadFromFile(writeConfig(t, strings.Replace(baseYAML, "pitch: 5", "pitch: 150", 1)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scoring.default_weights.pitch")
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
	assert.Equal(t, time.Duration(0), GetDuration(0))
}
