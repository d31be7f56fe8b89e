// Package config loads application configuration from environment variables
// with defaults, and validates it on startup so misconfiguration fails fast.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Security SecurityConfig
	Logging  LoggingConfig
	Metrics  MetricsConfig
	Export   ExportConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`

	// RateLimit is the request budget per client IP per minute; 0 disables it
	RateLimit int `env:"RATE_LIMIT_PER_MINUTE" default:"100"`
}

// DatabaseConfig selects the storage backend and its connection parameters.
// Either URL or the discrete fields may be used; URL wins.
type DatabaseConfig struct {
	// Kind is the backend: postgresql, vercelPostgres, sqlite, mysql, mongodb
	Kind string `env:"DB_KIND" default:"postgresql"`

	// URL is a connection string. Supports DATABASE_URL and POSTGRES_URL.
	URL string `env:"DATABASE_URL" envAlt:"POSTGRES_URL"`

	Host     string `env:"DB_HOST"`
	Port     int    `env:"DB_PORT" default:"5432"`
	Name     string `env:"DB_NAME"`
	User     string `env:"DB_USER"`
	Password string `env:"DB_PASSWORD"`
	SSL      bool   `env:"DB_SSL" default:"false"`

	// Filename is the database file for the sqlite backend.
	Filename string `env:"DB_FILENAME"`

	// ReuseConnection keeps one adapter for the process lifetime. When
	// false every request opens and closes its own adapter.
	ReuseConnection bool `env:"DB_REUSE_CONNECTION" default:"true"`

	ConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" default:"10s"`

	// InitSchema runs InitializeSchema once at server start
	InitSchema bool `env:"DB_INIT_SCHEMA" default:"false"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// RequireAPIKey protects the admin routes with X-API-Key (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`

	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `env:"METRICS_ENABLED" default:"true"`
	Path    string `env:"METRICS_PATH" default:"/metrics"`
}

// ExportConfig holds report export settings.
type ExportConfig struct {
	// MaxRows caps exported rows; 0 means no cap
	MaxRows int `env:"EXPORT_MAX_ROWS" default:"0"`

	// MaxConcurrent bounds parallel exports; MaxWait is how long a request
	// waits for a slot before it is turned away.
	MaxConcurrent int           `env:"EXPORT_MAX_CONCURRENT" default:"4"`
	MaxWait       time.Duration `env:"EXPORT_MAX_WAIT" default:"10s"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
