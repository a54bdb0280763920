// internal/workers/data-access/query-elasticsearch/config.go
package queryelasticsearch

import (
	"time"

	"venture-workers/internal/common/config"
)

type Config struct {
	Timeout      time.Duration
	DefaultIndex string
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{
		Timeout:      30 * time.Second,
		DefaultIndex: "startups",
	}
	if cfg == nil {
		return c
	}
	if wc := config.GetWorkerConfig(cfg, TaskType); wc.Timeout > 0 {
		c.Timeout = config.GetDuration(wc.Timeout)
	}
	if cfg.Search.StartupIndex != "" {
		c.DefaultIndex = cfg.Search.StartupIndex
	}
	return c
}
