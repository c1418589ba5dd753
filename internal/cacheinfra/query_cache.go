// Package cacheinfra decorates a refresh.Refresher with a short-lived,
// sturdyc-backed cache over the pending-updates query, so that multiple
// convergence tasks polling the same provider and resource kind within one
// window share a single remote fetch.
package cacheinfra

import (
	"context"
	"time"

	"github.com/viccon/sturdyc"

	"github.com/goliatone/go-cache-convergence/refresh"
)

// Config holds the configuration for the pending-updates query cache.
type Config struct {
	// Capacity defines the maximum number of cached query results.
	// Must be greater than 0.
	Capacity int

	// NumShards determines the number of cache shards for concurrent access.
	// Must be greater than 0.
	NumShards int

	// TTL is how long one pending-updates fetch is reused. It must stay
	// below the convergence tick backoff, otherwise consecutive ticks of the
	// same task would observe the same response and never make progress.
	TTL time.Duration

	// EvictionPercentage specifies what percentage of entries to evict when
	// the cache reaches capacity. Must be between 1-100.
	EvictionPercentage int
}

// DefaultConfig returns a Config with sensible defaults: the TTL sits well
// below the default 10-second tick backoff.
func DefaultConfig() Config {
	return Config{
		Capacity:           256,
		NumShards:          16,
		TTL:                3 * time.Second,
		EvictionPercentage: 10,
	}
}

// Validate checks if the configuration values are valid.
// Returns an error if any configuration parameter is invalid.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}

	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}

	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}

	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}

	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// QueryCache wraps a Refresher, caching PendingUpdates responses in sturdyc.
// ForceRefresh calls pass through untouched; caching a mutation would hide
// real issuance failures from the issuer.
type QueryCache struct {
	next   refresh.Refresher
	client *sturdyc.Client[[]refresh.PendingUpdate]
}

// Interface assertion to ensure QueryCache implements refresh.Refresher
var _ refresh.Refresher = (*QueryCache)(nil)

// NewQueryCache creates the query cache decorator around next.
// It validates the configuration and initializes a sturdyc client with the
// provided settings. sturdyc also deduplicates in-flight fetches for the same
// key, so concurrent pollers trigger at most one remote call.
func NewQueryCache(next refresh.Refresher, cfg Config) (*QueryCache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[[]refresh.PendingUpdate](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
	)

	return &QueryCache{next: next, client: client}, nil
}

// ForceRefresh passes through to the underlying refresher.
func (q *QueryCache) ForceRefresh(ctx context.Context, provider, kind string, fields map[string]string) (refresh.Result, error) {
	return q.next.ForceRefresh(ctx, provider, kind, fields)
}

// PendingUpdates serves the query from cache, fetching from the underlying
// refresher on miss or expiry.
func (q *QueryCache) PendingUpdates(ctx context.Context, provider, kind string) ([]refresh.PendingUpdate, error) {
	return q.client.GetOrFetch(ctx, queryKey(provider, kind), func(ctx context.Context) ([]refresh.PendingUpdate, error) {
		return q.next.PendingUpdates(ctx, provider, kind)
	})
}

// Invalidate drops the cached response for one provider/kind pair, forcing
// the next PendingUpdates call to hit the service.
func (q *QueryCache) Invalidate(provider, kind string) {
	q.client.Delete(queryKey(provider, kind))
}

func queryKey(provider, kind string) string {
	return provider + "::" + kind
}
