package convergence

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-cache-convergence/refresh"
)

// Execution identifies one run of the surrounding pipeline stage. StartedAt
// anchors both the staleness checks and the auto-succeed guard.
type Execution struct {
	ID            string
	Account       string
	CloudProvider string
	StartedAt     time.Time
}

// Result is what one tick hands back to the host.
type Result struct {
	Status Status `json:"status"`

	// AutoSucceeded marks a success forced by the auto-succeed guard rather
	// than confirmed convergence.
	AutoSucceeded bool `json:"autoSucceeded,omitempty"`

	// Diagnostics lists the recoverable conditions observed during the tick.
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`

	// State is the serialized progress to carry into the next tick.
	State Snapshot `json:"state"`
}

// Task orchestrates one tick of the convergence algorithm: the auto-succeed
// guard, then issuance, then polling. It keeps no state of its own between
// ticks; everything lives in the State the host passes in and the Snapshot it
// gets back. The host re-invokes Tick on a fixed backoff until the status is
// terminal or its hard timeout elapses (see Runner).
type Task struct {
	issuer *Issuer
	poller *Poller
	cfg    Config
	now    func() time.Time
}

// TaskOption customizes a Task.
type TaskOption func(*Task)

// WithClock overrides the task's time source. Intended for tests.
func WithClock(now func() time.Time) TaskOption {
	return func(t *Task) { t.now = now }
}

// NewTask creates a Task driving the given refresher. The configuration is
// validated up front.
func NewTask(refresher refresh.Refresher, cfg Config, opts ...TaskOption) (*Task, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid convergence config: %w", err)
	}

	t := &Task{
		issuer: NewIssuer(refresher, cfg.ResourceKind),
		poller: NewPoller(refresher, cfg.ResourceKind),
		cfg:    cfg,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Config returns a copy of the task configuration.
func (t *Task) Config() Config { return t.cfg }

// Tick runs one pass of the algorithm:
//
//  1. If more than AutoSucceedThreshold has passed since the execution
//     started, succeed immediately. This tolerates caching-infrastructure
//     degradation without failing the surrounding pipeline; by then any
//     unconfirmed cache record has expired on its own TTL.
//  2. Otherwise issue force-refresh requests for unrefreshed targets. If any
//     were issued this tick, return without polling.
//  3. Otherwise poll pending updates. When every region is complete, reset
//     the state and succeed; otherwise keep running.
//
// The only error Tick returns is a pending-updates query failure, which the
// host recovers by re-invoking the tick; Tick itself never retries or sleeps.
func (t *Task) Tick(ctx context.Context, exec Execution, state *State) (Result, error) {
	if t.now().Sub(exec.StartedAt) > t.cfg.AutoSucceedThreshold {
		diag := newDiagnostic(ctx, DiagAutoSucceed, nil,
			fmt.Sprintf("auto-succeeding after %s without confirmed convergence", t.cfg.AutoSucceedThreshold))
		return Result{
			Status:        StatusSucceeded,
			AutoSucceeded: true,
			Diagnostics:   []Diagnostic{diag},
			State:         state.Snapshot(),
		}, nil
	}

	status, issued, diags := t.issuer.Issue(ctx, exec, state)
	if issued {
		return Result{Status: status, Diagnostics: diags, State: state.Snapshot()}, nil
	}

	complete, diags, err := t.poller.Poll(ctx, exec, state, exec.StartedAt)
	if err != nil {
		return Result{Status: StatusRunning, State: state.Snapshot()}, err
	}
	if complete {
		state.Reset()
		return Result{Status: StatusSucceeded, Diagnostics: diags, State: state.Snapshot()}, nil
	}
	return Result{Status: StatusRunning, Diagnostics: diags, State: state.Snapshot()}, nil
}
