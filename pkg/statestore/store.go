// Package statestore persists convergence state snapshots between ticks for
// hosts whose ticks span process boundaries. Records live in sqlite via bun,
// with snapshots stored as msgpack blobs; an in-memory write-through layer
// lets same-process ticks skip the read entirely.
package statestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/goliatone/go-cache-convergence/convergence"
)

// ErrNotFound indicates no state has been saved for the execution id.
var ErrNotFound = errors.New("stage state not found")

// Record is the persisted row for one execution's state.
type Record struct {
	bun.BaseModel `bun:"table:stage_states,alias:ss"`

	ExecutionID string    `bun:"execution_id,pk"`
	State       []byte    `bun:"state,notnull"`
	UpdatedAt   time.Time `bun:"updated_at,notnull"`
}

// Store saves and restores convergence snapshots keyed by execution id.
type Store struct {
	db  *bun.DB
	mem *xsync.MapOf[string, convergence.Snapshot]
}

// New creates a Store on an existing bun DB.
func New(db *bun.DB) *Store {
	return &Store{
		db:  db,
		mem: xsync.NewMapOf[string, convergence.Snapshot](),
	}
}

// Open opens (or creates) a sqlite database at dsn and returns a Store on it.
// Use ":memory:" for an ephemeral store.
func Open(dsn string) (*Store, error) {
	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open state store %q: %w", dsn, err)
	}
	// sqlite allows one writer, and an in-memory database exists per
	// connection; a single pooled connection covers both.
	sqldb.SetMaxOpenConns(1)
	return New(bun.NewDB(sqldb, sqlitedialect.New())), nil
}

// Init creates the backing table if it does not exist.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*Record)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create stage_states table: %w", err)
	}
	return nil
}

// Save upserts the snapshot for the execution id.
func (s *Store) Save(ctx context.Context, executionID string, snap convergence.Snapshot) error {
	blob, err := msgpack.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode state for %s: %w", executionID, err)
	}

	record := Record{
		ExecutionID: executionID,
		State:       blob,
		UpdatedAt:   time.Now().UTC(),
	}
	_, err = s.db.NewInsert().
		Model(&record).
		On("CONFLICT (execution_id) DO UPDATE").
		Set("state = EXCLUDED.state").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save state for %s: %w", executionID, err)
	}

	s.mem.Store(executionID, snap)
	return nil
}

// Load returns the most recently saved snapshot for the execution id,
// serving from the in-memory layer when possible. Returns ErrNotFound when
// nothing has been saved.
func (s *Store) Load(ctx context.Context, executionID string) (convergence.Snapshot, error) {
	if snap, ok := s.mem.Load(executionID); ok {
		return snap, nil
	}

	var record Record
	err := s.db.NewSelect().
		Model(&record).
		Where("execution_id = ?", executionID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return convergence.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return convergence.Snapshot{}, fmt.Errorf("load state for %s: %w", executionID, err)
	}

	var snap convergence.Snapshot
	if err := msgpack.Unmarshal(record.State, &snap); err != nil {
		return convergence.Snapshot{}, fmt.Errorf("decode state for %s: %w", executionID, err)
	}

	s.mem.Store(executionID, snap)
	return snap, nil
}

// Delete removes the saved state for the execution id. Deleting an unknown
// id is not an error.
func (s *Store) Delete(ctx context.Context, executionID string) error {
	s.mem.Delete(executionID)

	_, err := s.db.NewDelete().
		Model((*Record)(nil)).
		Where("execution_id = ?", executionID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete state for %s: %w", executionID, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// NewExecutionID returns a fresh execution identifier.
func NewExecutionID() string {
	return uuid.NewString()
}
