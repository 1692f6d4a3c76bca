package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for the relay service.
type Config struct {
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"relay-api"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"PORT" envDefault:"5000"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	EnableTracing   bool          `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	AzureOpenAIEndpoint   string `env:"AZURE_OPENAI_ENDPOINT"`
	AzureOpenAIVersion    string `env:"AZURE_OPENAI_VERSION" envDefault:"2024-05-01-preview"`
	AzureOpenAIDeployment string `env:"AZURE_OPENAI_DEPLOYMENT_NAME"`

	UpstreamTimeout        time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"30s"`
	UpstreamMaxAttempts    int           `env:"UPSTREAM_MAX_ATTEMPTS" envDefault:"3"`
	UpstreamRetryBaseDelay time.Duration `env:"UPSTREAM_RETRY_BASE_DELAY" envDefault:"1s"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	if strings.TrimSpace(cfg.AzureOpenAIEndpoint) == "" {
		return nil, fmt.Errorf("AZURE_OPENAI_ENDPOINT environment variable is not set")
	}
	cfg.AzureOpenAIEndpoint = strings.TrimRight(cfg.AzureOpenAIEndpoint, "/")

	if cfg.UpstreamTimeout <= 0 {
		cfg.UpstreamTimeout = 30 * time.Second
	}

	if cfg.UpstreamMaxAttempts <= 0 {
		cfg.UpstreamMaxAttempts = 3
	}

	if cfg.UpstreamRetryBaseDelay <= 0 {
		cfg.UpstreamRetryBaseDelay = time.Second
	}

	return cfg, nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
