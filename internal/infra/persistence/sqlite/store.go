// Package sqlite persists entries in a SQLite database using the pure Go
// modernc.org/sqlite driver. Reads are served from an in-memory copy
// hydrated on open; writes go to the database first.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"psibridge/internal/infra/persistence/memory"
	"psibridge/pkg/domain"
)

var _ domain.EntryStore = (*Store)(nil)

const schema = `CREATE TABLE IF NOT EXISTS entries (
	id TEXT PRIMARY KEY,
	label TEXT NOT NULL,
	source_key TEXT NOT NULL DEFAULT '',
	interactions INTEGER NOT NULL,
	experiments INTEGER NOT NULL,
	interactors INTEGER NOT NULL,
	payload BLOB NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

// Store is a write-through SQLite entry store.
type Store struct {
	*memory.Store
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore opens (creating if needed) the database at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "psibridge.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer at a time; SQLite serialises them anyway.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create entries table: %w", err)
	}
	s := &Store{Store: memory.NewStore(), db: db, path: path}
	if err := s.load(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT id, label, source_key, interactions, experiments, interactors, payload, created_at, updated_at FROM entries`)
	if err != nil {
		return fmt.Errorf("select entries: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var loaded []memory.Row
	for rows.Next() {
		var (
			r                memory.Row
			created, updated string
		)
		if err := rows.Scan(&r.ID, &r.Label, &r.SourceKey, &r.Interactions, &r.Experiments, &r.Interactors, &r.Payload, &created, &updated); err != nil {
			return fmt.Errorf("scan entry: %w", err)
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return fmt.Errorf("entry %s created_at: %w", r.ID, err)
		}
		if r.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
			return fmt.Errorf("entry %s updated_at: %w", r.ID, err)
		}
		loaded = append(loaded, r)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate entries: %w", err)
	}
	s.Import(loaded)
	return nil
}

// Save upserts the record row, then updates the in-memory copy.
func (s *Store) Save(ctx context.Context, record domain.EntryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, err := s.Prepare(record)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO entries(id, label, source_key, interactions, experiments, interactors, payload, created_at, updated_at)
		VALUES(?,?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET label=excluded.label, source_key=excluded.source_key,
			interactions=excluded.interactions, experiments=excluded.experiments, interactors=excluded.interactors,
			payload=excluded.payload, updated_at=excluded.updated_at`,
		row.ID, row.Label, row.SourceKey, row.Interactions, row.Experiments, row.Interactors, row.Payload,
		row.CreatedAt.Format(time.RFC3339Nano), row.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("upsert entry %s: %w", row.ID, err)
	}
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
	if _, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete entry %s: %w", id, err)
	}
	return s.Store.Delete(ctx, id)
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
