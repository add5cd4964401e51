package enrich

import (
	"context"
	"errors"
)

// Capability describes how one kind of object is enriched from a remote
// record of type R.
type Capability[T, R any] interface {
	// Key returns the lookup key of obj, or "" when obj cannot be looked up.
	Key(obj T) string
	Fetch(ctx context.Context, key string) (R, error)
	// Diff lists the fields of obj that differ from rec.
	Diff(obj T, rec R) []string
	Apply(obj T, rec R)
}

// Flow runs fetch, diff, apply and notify for one capability.
type Flow[T, R any] struct {
	Kind       string
	Capability Capability[T, R]
	Listener   Listener
}

// Enrich updates obj from its remote record. It reports whether obj
// changed. A missing record is reported to the listener, not returned.
func (f Flow[T, R]) Enrich(ctx context.Context, obj T) (bool, error) {
	key := f.Capability.Key(obj)
	if key == "" {
		return false, nil
	}
	listener := f.Listener
	if listener == nil {
		listener = noopListener{}
	}
	rec, err := f.Capability.Fetch(ctx, key)
	if errors.Is(err, ErrNotFound) {
		listener.OnMissing(f.Kind, key)
		return false, nil
	}
	if err != nil {
		return false, &FetchError{Kind: f.Kind, Key: key, Err: err}
	}
	changes := f.Capability.Diff(obj, rec)
	if len(changes) == 0 {
		return false, nil
	}
	f.Capability.Apply(obj, rec)
	listener.OnEnriched(f.Kind, key, changes)
	return true, nil
}
