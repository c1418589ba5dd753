package convergence

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrHardTimeout is returned by Runner.Run when the hard timeout elapses
// while the task is still running.
var ErrHardTimeout = errors.New("convergence hard timeout elapsed")

// Runner is the host-side loop: it re-invokes Task.Tick on a fixed backoff
// until the status is terminal or the hard timeout elapses. Ticks run
// strictly sequentially; the runner owns all waiting and the task none.
type Runner struct {
	task  *Task
	log   *slog.Logger
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithRunnerClock overrides the runner's time source. Intended for tests.
func WithRunnerClock(now func() time.Time) RunnerOption {
	return func(r *Runner) { r.now = now }
}

// WithRunnerSleep overrides how the runner waits between ticks. Intended for
// tests.
func WithRunnerSleep(sleep func(ctx context.Context, d time.Duration) error) RunnerOption {
	return func(r *Runner) { r.sleep = sleep }
}

// NewRunner creates a Runner for the task. A nil logger defaults to
// slog.Default.
func NewRunner(task *Task, log *slog.Logger, opts ...RunnerOption) *Runner {
	if log == nil {
		log = slog.Default()
	}
	r := &Runner{
		task:  task,
		log:   log,
		now:   time.Now,
		sleep: sleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run drives the task to a terminal status. Tick errors (pending-updates
// query failures) are logged and retried on the same backoff; the only
// failure modes are context cancellation and ErrHardTimeout.
func (r *Runner) Run(ctx context.Context, exec Execution, state *State) (Result, error) {
	deadline := exec.StartedAt.Add(r.task.cfg.HardTimeout)
	var last Result

	for {
		result, err := r.task.Tick(ctx, exec, state)
		if err != nil {
			r.log.WarnContext(ctx, "convergence tick failed",
				"execution", exec.ID,
				"kind", r.task.cfg.ResourceKind,
				"err", err)
		} else {
			last = result
			for _, diag := range result.Diagnostics {
				r.log.WarnContext(ctx, "convergence diagnostic",
					"execution", exec.ID,
					"kind", diag.Kind,
					"message", diag.Message)
			}
			if result.Status.Terminal() {
				return result, nil
			}
		}

		if !r.now().Add(r.task.cfg.Backoff).Before(deadline) {
			return last, ErrHardTimeout
		}
		if err := r.sleep(ctx, r.task.cfg.Backoff); err != nil {
			return last, err
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
