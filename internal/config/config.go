// Package config loads the service configuration from environment variables.
// Unset values fall back to defaults, and the result is validated on startup
// so a misconfigured service fails before it serves anything.
package config

import (
	"net"
	"strconv"
	"time"
	_ "time/tzdata" // zones resolve without system tzdata
)

// Config holds all service configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Sorting  SortingConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 30s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"30s"`

	// MaxBodyBytes caps request bodies (default: 10MB)
	MaxBodyBytes int64 `env:"SERVER_MAX_BODY_BYTES" default:"10485760"`
}

// DatabaseConfig holds the optional profile database. Without a URL,
// profiles live in memory.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"1"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// Enabled reports whether profiles are stored in PostgreSQL.
func (c DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// SortingConfig holds classifier settings.
type SortingConfig struct {
	// TimeZone is the IANA zone dates are read in (default: UTC)
	TimeZone string `env:"SORT_TIME_ZONE" default:"UTC"`

	// DefaultLocale names month and day names for date formats that do not
	// set their own locale. Empty means English.
	DefaultLocale string `env:"SORT_DEFAULT_LOCALE"`

	// ProfilesFile is a YAML file of profiles stored at startup.
	ProfilesFile string `env:"SORT_PROFILES_FILE"`

	// MaxRows caps the rows of a single sort request (default: 50000)
	MaxRows int `env:"SORT_MAX_ROWS" default:"50000"`

	// SampleSize caps the values of a single classify request (default: 1000)
	SampleSize int `env:"SORT_SAMPLE_SIZE" default:"1000"`

	// MaxConcurrent is how many sorts run at once (default: 8)
	MaxConcurrent int `env:"SORT_MAX_CONCURRENT" default:"8"`

	// MaxWait is how long a sort waits for a free slot (default: 10s)
	MaxWait time.Duration `env:"SORT_MAX_WAIT" default:"10s"`
}

// Location resolves TimeZone.
func (c SortingConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.TimeZone)
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the sustained rate per IP (default: 300)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"300"`

	// Burst is how many requests an IP may make at once (default: 50)
	Burst int `env:"RATE_LIMIT_BURST" default:"50"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey protects /api with the keys in APIKeys (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
