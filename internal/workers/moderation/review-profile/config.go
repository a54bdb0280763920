// internal/workers/moderation/review-profile/config.go
package reviewprofile

import (
	"time"

	"venture-workers/internal/common/config"
)

type Config struct {
	Timeout      time.Duration
	StartupIndex string
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{
		Timeout:      30 * time.Second,
		StartupIndex: "startups",
	}
	if cfg == nil {
		return c
	}
	if wc := config.GetWorkerConfig(cfg, TaskType); wc.Timeout > 0 {
		c.Timeout = config.GetDuration(wc.Timeout)
	}
	if cfg.Search.StartupIndex != "" {
		c.StartupIndex = cfg.Search.StartupIndex
	}
	return c
}
