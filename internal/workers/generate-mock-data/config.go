package generatemockdata

import (
	"time"

	"mock-data-forge/internal/common/config"
)

type Config struct {
	Timeout  time.Duration
	MaxCount int // 0 means unlimited
}

func LoadConfig() *Config {
	return &Config{
		Timeout:  30 * time.Second,
		MaxCount: 10000,
	}
}

// ConfigFrom builds the worker settings from the application config.
func ConfigFrom(cfg *config.Config) *Config {
	c := LoadConfig()
	if wcfg := config.GetWorkerConfig(cfg, TaskType); wcfg.Timeout > 0 {
		c.Timeout = config.GetDuration(wcfg.Timeout)
	}
	c.MaxCount = cfg.Generator.MaxCount
	return c
}
