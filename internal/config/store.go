package config

import (
	"fmt"
	"strings"
	"time"
)

// Store drivers.
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

type StoreConfig struct {
	Driver string `koanf:"driver"`
	// Strict makes a corrupt snapshot an error. When false it is replaced by an empty collection.
	Strict   bool           `koanf:"strict"`
	File     FileConfig     `koanf:"file"`
	Database DatabaseConfig `koanf:"database"`
	Redis    RedisConfig    `koanf:"redis"`
	// Breaker guards the postgres and redis backends.
	Breaker BreakerConfig `koanf:"breaker"`
}

type BreakerConfig struct {
	Enabled             bool          `koanf:"enabled"`
	ConsecutiveFailures uint32        `koanf:"consecutiveFailures"`
	OpenTimeout         time.Duration `koanf:"openTimeout"`
}

type FileConfig struct {
	Path string `koanf:"path"`
}

type DatabaseConfig struct {
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
	Migrate bool          `koanf:"migrate"`
}

type RedisConfig struct {
	URL     string        `koanf:"url"`
	Key     string        `koanf:"key"`
	Timeout time.Duration `koanf:"timeout"`
}

// String returns a string representation of the store configuration.
func (c *StoreConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Store Configuration ---\n")
	b.WriteString(fmt.Sprintf("  store.driver: %s\n", c.Driver))
	b.WriteString(fmt.Sprintf("  store.strict: %t\n", c.Strict))
	switch c.Driver {
	case DriverFile:
		b.WriteString(fmt.Sprintf("  store.file.path: %s\n", c.File.Path))
	case DriverPostgres:
		b.WriteString(fmt.Sprintf("  store.database.url: %s\n", maskURL(c.Database.URL)))
		b.WriteString(fmt.Sprintf("  store.database.timeout: %s\n", c.Database.Timeout))
		b.WriteString(fmt.Sprintf("  store.database.migrate: %t\n", c.Database.Migrate))
	case DriverRedis:
		b.WriteString(fmt.Sprintf("  store.redis.url: %s\n", maskURL(c.Redis.URL)))
		b.WriteString(fmt.Sprintf("  store.redis.key: %s\n", c.Redis.Key))
		b.WriteString(fmt.Sprintf("  store.redis.timeout: %s\n", c.Redis.Timeout))
	}
	if c.Driver == DriverPostgres || c.Driver == DriverRedis {
		b.WriteString(fmt.Sprintf("  store.breaker.enabled: %t\n", c.Breaker.Enabled))
		b.WriteString(fmt.Sprintf("  store.breaker.consecutiveFailures: %d\n", c.Breaker.ConsecutiveFailures))
		b.WriteString(fmt.Sprintf("  store.breaker.openTimeout: %s\n", c.Breaker.OpenTimeout))
	}
	return b.String()
}

func (c *StoreConfig) Validate() error {
	switch c.Driver {
	case DriverFile:
		if c.File.Path == "" {
			return fmt.Errorf("store file path is not configured")
		}
	case DriverPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("database URL is not configured")
		}
		if !isValidPostgresURL(c.Database.URL) {
			return fmt.Errorf("database URL must start with 'postgres://': %s", maskURL(c.Database.URL))
		}
		if c.Database.Timeout <= 0 {
			return fmt.Errorf("invalid database connect timeout: %v", c.Database.Timeout)
		}
	case DriverRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("redis URL is not configured")
		}
		if !strings.HasPrefix(c.Redis.URL, "redis://") && !strings.HasPrefix(c.Redis.URL, "rediss://") {
			return fmt.Errorf("redis URL must start with 'redis://': %s", maskURL(c.Redis.URL))
		}
		if c.Redis.Timeout <= 0 {
			return fmt.Errorf("invalid redis connect timeout: %v", c.Redis.Timeout)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown store driver: %q", c.Driver)
	}
	if c.Breaker.Enabled && c.Breaker.OpenTimeout <= 0 {
		return fmt.Errorf("invalid store breaker open timeout: %v", c.Breaker.OpenTimeout)
	}
	return nil
}

// isValidPostgresURL checks if the provided URL is a valid PostgreSQL URL
func isValidPostgresURL(url string) bool {
	return strings.HasPrefix(url, "postgres://") ||
		strings.HasPrefix(url, "postgresql://")
}

func maskURL(url string) string {
	if url == "" {
		return "<not configured>"
	}
	// Mask the URL by replacing the scheme, username and password with "****"
	parts := strings.Split(url, "@")
	if len(parts) == 2 {
		return "****@" + parts[1]
	}
	return url
}
