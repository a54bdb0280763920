// internal/workers/scoring/rank-startups/config.go
package rankstartups

import (
	"time"

	"venture-workers/internal/common/config"
	"venture-workers/internal/scoring"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type Config struct {
	Timeout        time.Duration
	DefaultWeights scoring.Weights
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{
		Timeout:        10 * time.Second,
		DefaultWeights: scoring.DefaultWeights(),
	}
	if cfg == nil {
		return c
	}
	if wc := config.GetWorkerConfig(cfg, TaskType); wc.Timeout > 0 {
		c.Timeout = config.GetDuration(wc.Timeout)
	}
	if len(cfg.Scoring.DefaultWeights) > 0 {
		c.DefaultWeights, _ = c.DefaultWeights.Merge(cfg.Scoring.DefaultWeights)
	}
	return c
}
