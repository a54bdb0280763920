// internal/workers/infrastructure/verify-admin-access/config.go
package verifyadminaccess

import (
	"time"

	"venture-workers/internal/common/config"
)

type Config struct {
	Timeout  time.Duration
	CacheTTL time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{
		Timeout:  10 * time.Second,
		CacheTTL: 5 * time.Minute,
	}
	if cfg != nil {
		if wc := config.GetWorkerConfig(cfg, TaskType); wc.Timeout > 0 {
			c.Timeout = config.GetDuration(wc.Timeout)
		}
	}
	return c
}
