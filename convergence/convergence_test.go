package convergence

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/goliatone/go-cache-convergence/refresh"
)

// --- shared fakes ---

// fakeRefresher is an in-memory refresh.Refresher with per-target scripting.
type fakeRefresher struct {
	mu sync.Mutex

	// applied maps a target name to the Applied flag ForceRefresh reports.
	applied map[string]bool
	// failNames lists target names whose ForceRefresh call errors.
	failNames map[string]error

	updates    []refresh.PendingUpdate
	updatesErr error
	// failPending makes the next N PendingUpdates calls fail before the
	// service "heals".
	failPending int

	forceCalls   []string
	pendingCalls int
}

func newFakeRefresher() *fakeRefresher {
	return &fakeRefresher{
		applied:   make(map[string]bool),
		failNames: make(map[string]error),
	}
}

func (f *fakeRefresher) ForceRefresh(_ context.Context, _, _ string, fields map[string]string) (refresh.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := fields["name"]
	f.forceCalls = append(f.forceCalls, name)
	if err, ok := f.failNames[name]; ok {
		return refresh.Result{}, err
	}
	return refresh.Result{Applied: f.applied[name]}, nil
}

func (f *fakeRefresher) PendingUpdates(context.Context, string, string) ([]refresh.PendingUpdate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.pendingCalls++
	if f.failPending > 0 {
		f.failPending--
		return nil, errors.New("service unavailable")
	}
	if f.updatesErr != nil {
		return nil, f.updatesErr
	}
	return append([]refresh.PendingUpdate(nil), f.updates...), nil
}

func (f *fakeRefresher) setUpdates(updates ...refresh.PendingUpdate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = updates
}

// --- helpers ---

var cycleStart = time.Date(2026, time.March, 5, 12, 0, 0, 0, time.UTC)

func testExecution() Execution {
	return Execution{
		ID:            "exec-1",
		Account:       "prod",
		CloudProvider: "aws",
		StartedAt:     cycleStart,
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.ResourceKind = "serverGroup"
	return cfg
}

func update(t Target, processedAt, cachedAt time.Time) refresh.PendingUpdate {
	return refresh.PendingUpdate{
		Details:     t.Fields(),
		ProcessedAt: processedAt,
		CachedAt:    cachedAt,
	}
}
