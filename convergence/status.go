package convergence

// Status indicates the outcome of one tick.
type Status string

const (
	// StatusRunning means convergence is not yet confirmed and the host
	// should invoke another tick after its backoff.
	StatusRunning Status = "RUNNING"

	// StatusSucceeded is terminal: every target converged, or the
	// auto-succeed guard fired.
	StatusSucceeded Status = "SUCCEEDED"
)

// Terminal reports whether the host should stop invoking ticks.
func (s Status) Terminal() bool { return s == StatusSucceeded }
