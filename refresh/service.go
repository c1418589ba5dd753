package refresh

import (
	"context"
	"time"
)

// Result reports how the remote caching service handled a force-refresh
// request. Applied is true when the service refreshed the entry synchronously;
// false means the request was accepted for asynchronous processing and will
// show up later as a pending update.
type Result struct {
	Applied bool `json:"applied"`
}

// PendingUpdate is the caching service's bookkeeping entry for one
// outstanding or recently completed force-refresh request. Details may carry
// more fields than the ones a caller asked to refresh; extra fields are
// ignored when matching.
type PendingUpdate struct {
	// Details maps field names to values identifying the cached resource.
	Details map[string]string `json:"details"`

	// ProcessedAt is when the refresh survived a full cache cycle.
	// The zero value means the request has not been processed yet.
	ProcessedAt time.Time `json:"processedAt,omitempty"`

	// CachedAt is when the service recorded the request.
	CachedAt time.Time `json:"cachedAt"`
}

// Processed reports whether the update has been applied and made durable.
func (u PendingUpdate) Processed() bool {
	return !u.ProcessedAt.IsZero()
}

// Refresher is the client contract for a remote caching service that can be
// told to re-fetch individual resources outside its normal polling cycle.
// It is exported so that other packages can decorate the client (see
// internal/cacheinfra) or substitute fakes in tests.
type Refresher interface {
	// ForceRefresh asks the service to refresh the cache entry identified by
	// fields for the given cloud provider and resource kind.
	ForceRefresh(ctx context.Context, provider, kind string, fields map[string]string) (Result, error)

	// PendingUpdates returns the service's outstanding and recently completed
	// refresh requests for the given provider and resource kind.
	PendingUpdates(ctx context.Context, provider, kind string) ([]PendingUpdate, error)
}
