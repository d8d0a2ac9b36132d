package config

import (
	"strings"
	"time"
)

// DBConfig contains the optional PostgreSQL audit database configuration.
// The audit log is disabled when Enabled is false.
type DBConfig struct {
	Enabled  bool   `env:"ENABLED"  envDefault:"false"`
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"control_panel"`
	Password string `env:"PASSWORD" envDefault:"control_panel"`
	Name     string `env:"NAME"     envDefault:"control_panel"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the application automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// Sanitize applies defaults to the database configuration.
func (c *DBConfig) Sanitize() {
	if c.Port <= 0 {
		c.Port = 5432
	}
	if c.SSLMode = strings.TrimSpace(c.SSLMode); c.SSLMode == "" {
		c.SSLMode = "disable"
	}
}

// RedisConfig contains Redis configuration for the session registry and status cache.
// Redis is optional; when disabled sign-out only clears the cookie.
type RedisConfig struct {
	Enabled            bool     `env:"ENABLED"              envDefault:"false"`
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`

	// StatusCacheTTL controls how long the system status widget is cached.
	StatusCacheTTL time.Duration `env:"STATUS_CACHE_TTL" envDefault:"15s"`
}

// Sanitize applies defaults to the Redis configuration.
func (c *RedisConfig) Sanitize() {
	if c.StatusCacheTTL < 0 {
		c.StatusCacheTTL = 0
	}
	if c.UseCluster && len(c.ClusterNodes) == 0 {
		c.UseCluster = false
	}
}
