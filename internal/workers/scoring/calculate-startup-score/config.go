// internal/workers/scoring/calculate-startup-score/config.go
package calculatestartupscore

import (
	"time"

	"venture-workers/internal/common/config"
	"venture-workers/internal/scoring"
)

type Config struct {
	Timeout        time.Duration
	CacheTTL       time.Duration
	DefaultWeights scoring.Weights
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{
		Timeout:        30 * time.Second,
		CacheTTL:       15 * time.Minute,
		DefaultWeights: scoring.DefaultWeights(),
	}
	if cfg == nil {
		return c
	}
	if wc := config.GetWorkerConfig(cfg, TaskType); wc.Timeout > 0 {
		c.Timeout = config.GetDuration(wc.Timeout)
	}
	if cfg.Scoring.CacheTTL > 0 {
		c.CacheTTL = time.Duration(cfg.Scoring.CacheTTL) * time.Second
	}
	if len(cfg.Scoring.DefaultWeights) > 0 {
		c.DefaultWeights, _ = c.DefaultWeights.Merge(cfg.Scoring.DefaultWeights)
	}
	return c
}
