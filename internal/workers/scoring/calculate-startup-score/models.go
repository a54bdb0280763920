// internal/workers/scoring/calculate-startup-score/models.go
package calculatestartupscore

import (
	"time"

	"venture-workers/internal/scoring"
)

// Where the weights of a calculation came from.
const (
	WeightsSourceInput    = "input"
	WeightsSourceCache    = "cache"
	WeightsSourceDatabase = "database"
	WeightsSourceDefaults = "defaults"
)

type Input struct {
	StartupID string          `json:"startupId,omitempty"`
	Inputs    *scoring.Inputs `json:"inputs,omitempty"`
	Weights   map[string]int  `json:"weights,omitempty"`
	SaveScore bool            `json:"saveScore"`
}

type Output struct {
	StartupID string `json:"startupId,omitempty"`
	scoring.Result
	WeightsSource string    `json:"weightsSource"`
	Saved         bool      `json:"saved"`
	ScoredAt      time.Time `json:"scoredAt"`
}
