package di

import (
	"fmt"
	"log/slog"

	"github.com/goliatone/go-cache-convergence/convergence"
	"github.com/goliatone/go-cache-convergence/internal/cacheinfra"
	"github.com/goliatone/go-cache-convergence/internal/refreshhttp"
	"github.com/goliatone/go-cache-convergence/pkg/statestore"
	"github.com/goliatone/go-cache-convergence/refresh"
)

// Options configures the container.
type Options struct {
	// Task holds the convergence tunables. Required.
	Task convergence.Config

	// QueryCache configures the pending-updates query cache. Zero value
	// uses cacheinfra.DefaultConfig.
	QueryCache cacheinfra.Config

	// Refresher is the remote caching service client. Leave nil to build an
	// HTTP client from BaseURL instead.
	Refresher refresh.Refresher

	// BaseURL is the caching service root used when Refresher is nil.
	BaseURL string

	// StateDSN, when set, opens a sqlite-backed state store at this path.
	StateDSN string

	// Logger is used by the runner and the HTTP client. Nil defaults to
	// slog.Default.
	Logger *slog.Logger
}

// Container provides dependency injection for the convergence components.
// It manages singleton instances of the refresher stack, the task and the
// optional state store, wired the same way for every consumer.
type Container struct {
	refresher refresh.Refresher
	task      *convergence.Task
	store     *statestore.Store
	log       *slog.Logger
	opts      Options
}

// NewContainer creates a new DI container from the provided options. The
// refresher (injected or HTTP) is wrapped in the query cache so that all
// tasks built from this container share pending-update fetches.
func NewContainer(opts Options) (*Container, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	refresher := opts.Refresher
	if refresher == nil {
		client, err := refreshhttp.New(refreshhttp.Config{BaseURL: opts.BaseURL, Logger: log})
		if err != nil {
			return nil, err
		}
		refresher = client
	}

	queryCfg := opts.QueryCache
	if queryCfg == (cacheinfra.Config{}) {
		queryCfg = cacheinfra.DefaultConfig()
	}
	cached, err := cacheinfra.NewQueryCache(refresher, queryCfg)
	if err != nil {
		return nil, err
	}

	task, err := convergence.NewTask(cached, opts.Task)
	if err != nil {
		return nil, err
	}

	container := &Container{
		refresher: cached,
		task:      task,
		log:       log,
		opts:      opts,
	}

	if opts.StateDSN != "" {
		store, err := statestore.Open(opts.StateDSN)
		if err != nil {
			return nil, fmt.Errorf("open state store: %w", err)
		}
		container.store = store
	}

	return container, nil
}

// Refresher returns the singleton (query-cached) refresher instance.
func (c *Container) Refresher() refresh.Refresher {
	return c.refresher
}

// Task returns the singleton convergence task.
func (c *Container) Task() *convergence.Task {
	return c.task
}

// StateStore returns the state store, or nil when no StateDSN was configured.
func (c *Container) StateStore() *statestore.Store {
	return c.store
}

// NewRunner creates a runner driving the container's task.
func (c *Container) NewRunner() *convergence.Runner {
	return convergence.NewRunner(c.task, c.log)
}
