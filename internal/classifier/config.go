package classifier

import (
	"time"

	"negotiation-gateway/internal/common/config"
)

type Config struct {
	BaseURL      string
	ClassifyPath string
	APIKey       string
	Timeout      time.Duration
	MaxRetries   int
	BaseBackoff  time.Duration
	CacheTTL     time.Duration
}

// NewConfig maps the classifier section of the application config.
func NewConfig(cfg config.ClassifierConfig) *Config {
	return &Config{
		BaseURL:      cfg.BaseURL,
		ClassifyPath: cfg.ClassifyPath,
		APIKey:       cfg.APIKey,
		Timeout:      config.GetDuration(cfg.Timeout),
		MaxRetries:   cfg.MaxRetries,
		BaseBackoff:  100 * time.Millisecond,
		CacheTTL:     time.Duration(cfg.CacheTTL) * time.Second,
	}
}
