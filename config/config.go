// Package config holds the env-driven configuration structs for this
// module's ambient concerns (logging, tracing) plus ConnectionConfig, the
// immutable input spec.md §3 defines for a Connection.
package config

import (
	"time"

	"github.com/sageimap/goimap/internal/logger"
	"github.com/sageimap/goimap/internal/tracing"
)

// ConnectionConfig is read-only once constructed; it is passed by value
// into connection.New and never mutated afterward.
type ConnectionConfig struct {
	Host     string `env:"IMAP_HOST,required"`
	Port     int    `env:"IMAP_PORT" envDefault:"993"`
	User     string `env:"IMAP_USER,required"`
	Password string `env:"IMAP_PASSWORD,required"`
	UseTLS   bool   `env:"IMAP_USE_TLS" envDefault:"true"`

	ConnectTimeout time.Duration `env:"IMAP_CONNECT_TIMEOUT" envDefault:"30s"`

	MaxRetries         int           `env:"IMAP_MAX_RETRIES" envDefault:"3"`
	InitialRetryDelay  time.Duration `env:"IMAP_INITIAL_RETRY_DELAY" envDefault:"1s"`
	ExponentialBackoff bool          `env:"IMAP_EXPONENTIAL_BACKOFF" envDefault:"true"`
	MaxRetryDelay      time.Duration `env:"IMAP_MAX_RETRY_DELAY" envDefault:"30s"`

	KeepaliveInterval   time.Duration `env:"IMAP_KEEPALIVE_INTERVAL" envDefault:"5m"`
	HealthCheckInterval time.Duration `env:"IMAP_HEALTH_CHECK_INTERVAL" envDefault:"1m"`
	MonitoringEnabled   bool          `env:"IMAP_MONITORING_ENABLED" envDefault:"true"`

	// UsePool opts the Connection into checking out/returning handles from
	// a pool.Pool supplied at construction time, per the Design Notes'
	// "explicit value, not a hidden singleton" guidance.
	UsePool bool `env:"IMAP_USE_POOL" envDefault:"false"`
}

// DefaultConnectionConfig mirrors the defaults spec.md §3 lists, for callers
// that construct a ConnectionConfig programmatically instead of via env.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		Port:                993,
		UseTLS:              true,
		ConnectTimeout:      30 * time.Second,
		MaxRetries:          3,
		InitialRetryDelay:   1 * time.Second,
		ExponentialBackoff:  true,
		MaxRetryDelay:       30 * time.Second,
		KeepaliveInterval:   5 * time.Minute,
		HealthCheckInterval: 1 * time.Minute,
		MonitoringEnabled:   true,
	}
}

// PoolConfig configures a pool.Pool.
type PoolConfig struct {
	MaxConnectionsPerKey int `env:"IMAP_POOL_MAX_PER_KEY" envDefault:"10"`
}

func DefaultPoolConfig() PoolConfig {
	return PoolConfig{MaxConnectionsPerKey: 10}
}

// AppConfig bundles the ambient config structs, the way the teacher's
// config.AppConfig bundles Logger/Tracing alongside its own fields.
type AppConfig struct {
	Connection ConnectionConfig
	Pool       PoolConfig
	Logger     logger.Config
	Tracing    tracing.JaegerConfig
}
