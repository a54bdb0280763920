package sendnewsletter

import (
	"time"

	"venture-workers/internal/common/config"
)

type Config struct {
	Timeout     time.Duration
	Concurrency int
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{
		Timeout:     5 * time.Minute,
		Concurrency: 10,
	}
	if cfg == nil {
		return c
	}
	if wc, ok := cfg.Workers[TaskType]; ok && wc.Timeout > 0 {
		c.Timeout = config.GetDuration(wc.Timeout)
	}
	if cfg.Newsletter.Concurrency > 0 {
		c.Concurrency = cfg.Newsletter.Concurrency
	}
	return c
}
