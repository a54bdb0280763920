// internal/workers/matchmaking/assign-matchmaking/config.go
package assignmatchmaking

import (
	"time"

	"venture-workers/internal/common/config"
)

type Config struct {
	Timeout                time.Duration
	VisibilityDays         int
	MaxStartupsPerInvestor int
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{
		Timeout:                30 * time.Second,
		VisibilityDays:         7,
		MaxStartupsPerInvestor: 3,
	}
	if cfg == nil {
		return c
	}
	if wc := config.GetWorkerConfig(cfg, TaskType); wc.Timeout > 0 {
		c.Timeout = config.GetDuration(wc.Timeout)
	}
	if cfg.Matchmaking.VisibilityDays > 0 {
		c.VisibilityDays = cfg.Matchmaking.VisibilityDays
	}
	if cfg.Matchmaking.MaxStartupsPerInvestor > 0 {
		c.MaxStartupsPerInvestor = cfg.Matchmaking.MaxStartupsPerInvestor
	}
	return c
}
