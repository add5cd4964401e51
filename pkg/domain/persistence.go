package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrEntryNotFound is returned by EntryStore implementations for unknown ids.
var ErrEntryNotFound = errors.New("entry not found")

// EntryRecord is a stored, converted entry.
type EntryRecord struct {
	ID        string       `json:"id"`
	Label     string       `json:"label"`
	SourceKey string       `json:"sourceKey,omitempty"`
	Entry     *IntactEntry `json:"entry"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// EntrySummary lists a stored entry without its graph.
type EntrySummary struct {
	ID           string    `json:"id"`
	Label        string    `json:"label"`
	SourceKey    string    `json:"sourceKey,omitempty"`
	Interactions int       `json:"interactions"`
	Experiments  int       `json:"experiments"`
	Interactors  int       `json:"interactors"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Summarize derives the listing view of a record.
func (r EntryRecord) Summarize() EntrySummary {
	s := EntrySummary{
		ID:        r.ID,
		Label:     r.Label,
		SourceKey: r.SourceKey,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.Entry != nil {
		s.Interactions = len(r.Entry.Interactions)
		s.Experiments = len(r.Entry.Experiments())
		s.Interactors = len(r.Entry.Interactors())
	}
	return s
}

// EntryStore persists converted entries. Save inserts or replaces by ID;
// Get and Delete return ErrEntryNotFound for unknown ids. List is ordered by
// creation time.
type EntryStore interface {
	Save(ctx context.Context, record EntryRecord) error
	Get(ctx context.Context, id string) (EntryRecord, error)
	List(ctx context.Context) ([]EntrySummary, error)
	Delete(ctx context.Context, id string) error
}

// EncodeEntry serialises an entry graph. Shared objects are written once per
// reference.
func EncodeEntry(e *IntactEntry) ([]byte, error) {
	if e == nil {
		return nil, errors.New("encode entry: nil entry")
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode entry: %w", err)
	}
	return data, nil
}

// DecodeEntry restores an entry graph and reattaches the owning institution.
func DecodeEntry(data []byte) (*IntactEntry, error) {
	var e IntactEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decode entry: %w", err)
	}
	e.AttachOwner()
	return &e, nil
}
