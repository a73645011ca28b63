package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the configuration for the nooklet service.
// Environment variables are parsed from the NOOKLET_ prefix,
// e.g. NOOKLET_HTTP_PORT, NOOKLET_POSTGRES_DSN.
type Config struct {
	// DBDriver selects the store backend: postgres, sqlite, or auto
	// (postgres when a DSN is present, sqlite otherwise).
	DBDriver string `envconfig:"DB_DRIVER" default:"auto"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Postgres Configuration
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// SQLite Configuration
	SQLitePath string `envconfig:"SQLITE_PATH" default:"nooklet.db"`

	// RAG Configuration
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY" default:""`
	OpenAIURL    string `envconfig:"OPENAI_URL" default:"https://api.openai.com"`
	EmbedModel   string `envconfig:"EMBED_MODEL" default:"text-embedding-3-small"`
	ChatModel    string `envconfig:"CHAT_MODEL" default:"gpt-4o-mini"`

	// Weaviate vector index, host:port without scheme.
	WeaviateURL string `envconfig:"WEAVIATE_URL" default:"localhost:8081"`

	// Health monitoring
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"5"`

	// BootstrapTimeoutSeconds bounds the async schema/index bootstrap.
	BootstrapTimeoutSeconds int `envconfig:"BOOTSTRAP_TIMEOUT_SECONDS" default:"30"`

	// DevMode enables the fixed development bearer token.
	DevMode bool `envconfig:"DEV_MODE" default:"false"`
}

// IsDevMode reports whether the fixed development token is accepted.
func (c *Config) IsDevMode() bool { return c.DevMode }

// ResolveDefaults derives DBDriver when set to "auto" and validates it.
func (c *Config) ResolveDefaults() error {
	if c.DBDriver == "" || c.DBDriver == "auto" {
		if c.PostgresDSN != "" {
			c.DBDriver = "postgres"
		} else {
			c.DBDriver = "sqlite"
		}
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	return nil
}

// New creates a Config by parsing NOOKLET_-prefixed environment variables.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("NOOKLET", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GetHTTPAddr returns the HTTP server address.
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
