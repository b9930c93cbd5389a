// internal/workers/negotiation/extract-bid/config.go
package extractbid

import (
	"time"

	"negotiation-gateway/internal/common/config"
)

type Config struct {
	Timeout    time.Duration
	MaxRetries int
}

func LoadConfig(cfg *config.Config) *Config {
	w := config.GetWorkerConfig(cfg, TaskType)
	return &Config{
		Timeout:    config.GetDuration(w.Timeout),
		MaxRetries: w.MaxRetries,
	}
}
