package convergence

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config holds the convergence tunables. All three durations are policy
// knobs, not hardcoded behavior: the backoff and hard timeout belong to the
// host loop (Runner), while the auto-succeed threshold belongs to the task
// itself.
type Config struct {
	// ResourceKind is the cached resource type to refresh, e.g. "serverGroup".
	ResourceKind string

	// Backoff is the fixed delay between ticks.
	Backoff time.Duration

	// HardTimeout bounds a whole convergence run. When it elapses while the
	// task is still RUNNING, the run fails.
	HardTimeout time.Duration

	// AutoSucceedThreshold forces a tick to succeed once this much time has
	// passed since the run started. It must be shorter than HardTimeout and
	// should be at least as long as the remote cache's record TTL: by the
	// time the guard fires, any unconfirmed record has expired on its own,
	// so downstream readers cannot observe stale data.
	AutoSucceedThreshold time.Duration
}

// DefaultConfig returns a Config with the defaults used by the original
// pipeline deployments: a 10-second tick backoff, 15-minute hard timeout and
// a 12-minute auto-succeed threshold.
func DefaultConfig() Config {
	return Config{
		Backoff:              10 * time.Second,
		HardTimeout:          15 * time.Minute,
		AutoSucceedThreshold: 12 * time.Minute,
	}
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ResourceKind, validation.Required),
		validation.Field(&c.Backoff, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.HardTimeout, validation.Required),
		validation.Field(&c.AutoSucceedThreshold,
			validation.Required,
			validation.Max(c.HardTimeout).Exclusive(),
		),
	)
}
