// Package memory provides an in-memory domain.EntryStore. The SQL backends
// embed it and write each change through to their table.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"psibridge/pkg/domain"
)

var _ domain.EntryStore = (*Store)(nil)

// Row is the stored form of an entry: the graph is kept encoded so that
// callers never share objects with the store.
type Row struct {
	ID           string
	Label        string
	SourceKey    string
	Interactions int
	Experiments  int
	Interactors  int
	Payload      []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (r Row) summary() domain.EntrySummary {
	return domain.EntrySummary{
		ID:           r.ID,
		Label:        r.Label,
		SourceKey:    r.SourceKey,
		Interactions: r.Interactions,
		Experiments:  r.Experiments,
		Interactors:  r.Interactors,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// Store keeps rows in a map guarded by a RWMutex.
type Store struct {
	mu   sync.RWMutex
	rows map[string]Row
	now  func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{rows: make(map[string]Row), now: func() time.Time { return time.Now().UTC() }}
}

// SetClock replaces the time source used to stamp records.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Prepare encodes record into the row Save would store, keeping the
// creation time of an existing row with the same id.
func (s *Store) Prepare(record domain.EntryRecord) (Row, error) {
	if record.ID == "" {
		return Row{}, errors.New("save entry: empty id")
	}
	payload, err := domain.EncodeEntry(record.Entry)
	if err != nil {
		return Row{}, fmt.Errorf("save entry %s: %w", record.ID, err)
	}
	sum := record.Summarize()
	s.mu.RLock()
	prev, exists := s.rows[record.ID]
	now := s.now()
	s.mu.RUnlock()

	row := Row{
		ID:           record.ID,
		Label:        record.Label,
		SourceKey:    record.SourceKey,
		Interactions: sum.Interactions,
		Experiments:  sum.Experiments,
		Interactors:  sum.Interactors,
		Payload:      payload,
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    now,
	}
	if row.Label == "" {
		row.Label = record.Entry.Label()
	}
	switch {
	case exists:
		row.CreatedAt = prev.CreatedAt
	case row.CreatedAt.IsZero():
		row.CreatedAt = now
	}
	return row, nil
}

// Put stores a prepared row.
func (s *Store) Put(row Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[row.ID] = row
}

// Save inserts or replaces the record with the same id.
func (s *Store) Save(ctx context.Context, record domain.EntryRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	row, err := s.Prepare(record)
	if err != nil {
		return err
	}
	s.Put(row)
	return nil
}

// Get decodes a fresh copy of the stored entry.
func (s *Store) Get(ctx context.Context, id string) (domain.EntryRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.EntryRecord{}, err
	}
	s.mu.RLock()
	row, ok := s.rows[id]
	s.mu.RUnlock()
	if !ok {
		return domain.EntryRecord{}, fmt.Errorf("get entry %s: %w", id, domain.ErrEntryNotFound)
	}
	entry, err := domain.DecodeEntry(row.Payload)
	if err != nil {
		return domain.EntryRecord{}, fmt.Errorf("get entry %s: %w", id, err)
	}
	return domain.EntryRecord{
		ID:        row.ID,
		Label:     row.Label,
		SourceKey: row.SourceKey,
		Entry:     entry,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

// List returns summaries ordered by creation time, then id.
func (s *Store) List(ctx context.Context) ([]domain.EntrySummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]domain.EntrySummary, 0, len(s.rows))
	for _, row := range s.rows {
		out = append(out, row.summary())
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Delete removes the record with id.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return fmt.Errorf("delete entry %s: %w", id, domain.ErrEntryNotFound)
	}
	delete(s.rows, id)
	return nil
}

// Has reports whether a record with id exists.
func (s *Store) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rows[id]
	return ok
}

// Import replaces the store content with rows, e.g. when hydrating from a
// database on open.
func (s *Store) Import(rows []Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = make(map[string]Row, len(rows))
	for _, r := range rows {
		s.rows[r.ID] = r
	}
}

// Export returns every row ordered by id.
func (s *Store) Export() []Row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Row, 0, len(s.rows))
	for _, r := range s.rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
