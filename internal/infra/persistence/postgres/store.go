// Package postgres persists entries in Postgres through the pgx
// database/sql driver, mirroring the sqlite store's write-through model.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"psibridge/internal/infra/persistence/memory"
	"psibridge/pkg/domain"
)

var _ domain.EntryStore = (*Store)(nil)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/psibridge?sslmode=disable"
)

const schema = `CREATE TABLE IF NOT EXISTS entries (
	id TEXT PRIMARY KEY,
	label TEXT NOT NULL,
	source_key TEXT NOT NULL DEFAULT '',
	interactions INTEGER NOT NULL,
	experiments INTEGER NOT NULL,
	interactors INTEGER NOT NULL,
	payload JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store is a write-through Postgres entry store.
type Store struct {
	*memory.Store
	db *sql.DB
	mu sync.Mutex
}

// NewStore opens the database at dsn (falls back to defaultDSN), ensures the
// entries table exists and hydrates the in-memory copy.
func NewStore(dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure entries table: %w", err)
	}
	rows, err := loadRows(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	mem := memory.NewStore()
	mem.Import(rows)
	return &Store{Store: mem, db: db}, nil
}

func loadRows(ctx context.Context, db *sql.DB) ([]memory.Row, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, label, source_key, interactions, experiments, interactors, payload, created_at, updated_at FROM entries`)
	if err != nil {
		return nil, fmt.Errorf("select entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []memory.Row
	for rows.Next() {
		var r memory.Row
		if err := rows.Scan(&r.ID, &r.Label, &r.SourceKey, &r.Interactions, &r.Experiments, &r.Interactors, &r.Payload, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		r.CreatedAt = r.CreatedAt.UTC()
		r.UpdatedAt = r.UpdatedAt.UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return out, nil
}

// Save upserts the record row inside a transaction, then updates the
// in-memory copy.
func (s *Store) Save(ctx context.Context, record domain.EntryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, err := s.Prepare(record)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `INSERT INTO entries(id, label, source_key, interactions, experiments, interactors, payload, created_at, updated_at)
		VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT(id) DO UPDATE SET label=EXCLUDED.label, source_key=EXCLUDED.source_key,
			interactions=EXCLUDED.interactions, experiments=EXCLUDED.experiments, interactors=EXCLUDED.interactors,
			payload=EXCLUDED.payload, updated_at=EXCLUDED.updated_at`,
		row.ID, row.Label, row.SourceKey, row.Interactions, row.Experiments, row.Interactors, row.Payload,
		row.CreatedAt, row.UpdatedAt); err != nil {
		return fmt.Errorf("upsert entry %s: %w", row.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	s.Put(row)
	return nil
}

// Delete removes the row, then the in-memory copy.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.Has(id) {
		return fmt.Errorf("delete entry %s: %w", id, domain.ErrEntryNotFound)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete entry %s: %w", id, err)
	}
	return s.Store.Delete(ctx, id)
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}

