package registry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `{
  "version": "1.0.0",
  "activities": [
    {"id": "score", "taskType": "calculate-startup-score", "category": "scoring", "timeout": "30s", "retries": 3,
     "errorCodes": ["STARTUP_NOT_FOUND"]},
    {"id": "assign", "taskType": "assign-matchmaking", "category": "matchmaking", "timeout": "30s", "retries": 0}
  ]
}`

func TestLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activities.json")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", reg.Version)
	assert.Equal(t, []string{"assign-matchmaking", "calculate-startup-score"}, reg.TaskTypes())

	a, ok := reg.FindByTaskType("calculate-startup-score")
	require.True(t, ok)
	assert.Equal(t, []string{"STARTUP_NOT_FOUND"}, a.ErrorCodes)

	_, ok = reg.FindByTaskType("send-newsletter")
	assert.False(t, ok)

	assert.Equal(t, []string{"send-newsletter"}, reg.Missing([]string{"assign-matchmaking", "send-newsletter"}))
}

func TestSave_RoundTrip(t *testing.T) {
	reg, err := Parse([]byte(sample))
	require.NoError(t, err)

	a, _ := reg.FindByTaskType("assign-matchmaking")
	a.ImplementationStatus = "verified"

	path := filepath.Join(t.TempDir(), "nested", "activities.json")
	require.NoError(t, reg.Save(path, time.Date(2026, 10, 14, 18, 0, 0, 0, time.UTC)))

	again, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-14", again.LastUpdated)
	got, ok := again.FindByTaskType("assign-matchmaking")
	require.True(t, ok)
	assert.Equal(t, "verified", got.ImplementationStatus)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{`},
		{"missing task type", `{"activities": [{"id": "x"}]}`},
		{"duplicate", `{"activities": [{"taskType": "a"}, {"taskType": "a"}]}`},
		{"bad timeout", `{"activities": [{"taskType": "a", "timeout": "thirty"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}

	_, err := LoadRegistry(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

// The shipped registry must cover every worker the manager can start.
func TestShippedRegistry(t *testing.T) {
	reg, err := LoadRegistry(filepath.Join("..", "..", "configs", "activities.json"))
	require.NoError(t, err)

	assert.Empty(t, reg.Missing([]string{
		"calculate-startup-score",
		"rank-startups",
		"query-postgresql",
		"query-elasticsearch",
		"assign-matchmaking",
		"expire-matchmaking",
		"review-profile",
		"validate-profile-data",
		"verify-admin-access",
		"send-notification",
		"send-newsletter",
	}))
}
