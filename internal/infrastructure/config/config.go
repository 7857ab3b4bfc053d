package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	TLS       TLSConfig
	Render    RenderConfig
	Store     StoreConfig
	Static    StaticConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	ClientDir       string        `envconfig:"CLIENT_DIR" default:"./client/dist"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// TLSConfig holds HTTPS listener configuration.
type TLSConfig struct {
	KeyFile       string `envconfig:"SSL_KEY"`
	CertFile      string `envconfig:"SSL_CERT"`
	Port          string `envconfig:"TLS_PORT" default:"443"`
	RedirectHTTPS bool   `envconfig:"TLS_REDIRECT" default:"true"`
}

// Enabled reports whether both key and certificate are configured.
func (c TLSConfig) Enabled() bool {
	return c.KeyFile != "" && c.CertFile != ""
}

// RenderConfig holds server-side rendering configuration.
type RenderConfig struct {
	Entrypoint    string        `envconfig:"SSR_ENTRYPOINT" default:"SSR"`
	Timeout       time.Duration `envconfig:"RENDER_TIMEOUT" default:"5s"`
	MaxConcurrent int           `envconfig:"RENDER_MAX_CONCURRENT" default:"0"`
	WaitTimeout   time.Duration `envconfig:"RENDER_WAIT_TIMEOUT" default:"5s"`
	MaxCallStack  int           `envconfig:"RENDER_MAX_CALL_STACK" default:"4096"`
}

// StoreConfig holds review persistence configuration. An empty DatabaseURL
// selects the in-memory store.
type StoreConfig struct {
	DatabaseURL string `envconfig:"DATABASE_URL"`
	Table       string `envconfig:"DB_TABLE" default:"reviews"`
}

// StaticConfig holds static asset configuration.
type StaticConfig struct {
	MaxAge time.Duration `envconfig:"STATIC_MAX_AGE" default:"8760h"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			Host:            "0.0.0.0",
			ClientDir:       "./client/dist",
			ShutdownTimeout: 10 * time.Second,
		},
		TLS: TLSConfig{
			Port:          "443",
			RedirectHTTPS: true,
		},
		Render: RenderConfig{
			Entrypoint:   "SSR",
			Timeout:      5 * time.Second,
			WaitTimeout:  5 * time.Second,
			MaxCallStack: 4096,
		},
		Store: StoreConfig{
			Table: "reviews",
		},
		Static: StaticConfig{
			MaxAge: 365 * 24 * time.Hour,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
