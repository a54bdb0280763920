// internal/workers/data-access/query-postgresql/config.go
package querypostgresql

import (
	"time"

	"venture-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{
		Timeout: 30 * time.Second,
	}
	if cfg != nil {
		if wc := config.GetWorkerConfig(cfg, TaskType); wc.Timeout > 0 {
			c.Timeout = config.GetDuration(wc.Timeout)
		}
	}
	return c
}
