// Package refresh defines the client contract for a remote caching service
// that supports forced, out-of-band refreshes of individual resources.
//
// # Overview
//
// The package exports one interface and two value types:
//
//   - Refresher: issues force-refresh requests and lists pending updates
//   - Result: distinguishes synchronous application from async queuing
//   - PendingUpdate: the service's bookkeeping entry for one request
//
// The interface is intentionally small. The convergence package drives it to
// confirm that every requested refresh has been applied and survived a full
// cache cycle; internal/refreshhttp implements it over HTTP, and
// internal/cacheinfra decorates it with a short-lived query cache so that
// concurrent convergence tasks share pending-update fetches.
//
// # Timestamps
//
// PendingUpdate carries two timestamps. CachedAt is when the service recorded
// the request; ProcessedAt is when the refresh became durable, with the zero
// time meaning "not processed yet". Consumers compare both against the start
// of their own refresh cycle to detect stale records left over from earlier,
// unrelated refreshes.
package refresh
