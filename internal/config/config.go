package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	BaseURL   string        `env:"STRATCOM_BASE_URL,     default=http://localhost:8080"`
	Timeout   time.Duration `env:"STRATCOM_HTTP_TIMEOUT, default=30s"`
	TokenFile string        `env:"STRATCOM_TOKEN_FILE"`
	Env       string        `env:"ENV,       default=development"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`
}

// Load reads configuration from environment variables using go-envconfig.
// TokenFile is optional; when empty the CLI falls back to the per-user
// default location.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
