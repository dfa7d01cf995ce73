package repository

import (
	"time"

	"github.com/okian/talentmatch/pkg/logger"
)

// Connection pool defaults.
const (
	defaultMaxOpenConns    = 20
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 30 * time.Minute
	defaultCacheTTL        = 5 * time.Minute
	defaultCachePrefix     = "talentmatch:"
)

type postgresOptions struct {
	maxOpenConns    int
	maxIdleConns    int
	connMaxLifetime time.Duration
}

// PostgresOption applies a configuration option to OpenPostgres.
type PostgresOption func(*postgresOptions)

// WithMaxOpenConns caps the pool size.
func WithMaxOpenConns(n int) PostgresOption {
	return func(o *postgresOptions) {
		if n > 0 {
			o.maxOpenConns = n
		}
	}
}

// WithMaxIdleConns caps idle connections.
func WithMaxIdleConns(n int) PostgresOption {
	return func(o *postgresOptions) {
		if n >= 0 {
			o.maxIdleConns = n
		}
	}
}

// WithConnMaxLifetime recycles connections older than d.
func WithConnMaxLifetime(d time.Duration) PostgresOption {
	return func(o *postgresOptions) {
		if d > 0 {
			o.connMaxLifetime = d
		}
	}
}

// CacheOption applies a configuration option to the CachedRepository.
type CacheOption func(*CachedRepository)

// WithTTL sets how long reference data stays cached.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *CachedRepository) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithKeyPrefix namespaces cache keys.
func WithKeyPrefix(prefix string) CacheOption {
	return func(c *CachedRepository) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// WithCacheLogger sets the logger for cache failures.
func WithCacheLogger(l logger.Logger) CacheOption {
	return func(c *CachedRepository) {
		if l != nil {
			c.log = l
		}
	}
}
