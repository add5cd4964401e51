package core

import (
	"errors"
	"fmt"

	"psibridge/internal/blob"
	"psibridge/pkg/domain"
)

// EntityType names the kind of object an error refers to.
type EntityType string

const (
	EntityEntry EntityType = "entry"
	EntityBlob  EntityType = "blob"
)

// ErrNotFound is returned when an operation references an unknown entry or
// artifact.
type ErrNotFound struct {
	Entity EntityType
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// Is lets callers match the store-level sentinels.
func (e ErrNotFound) Is(target error) bool {
	switch target {
	case domain.ErrEntryNotFound:
		return e.Entity == EntityEntry
	case blob.ErrNotFound:
		return e.Entity == EntityBlob
	}
	return false
}

var (
	// ErrEmptyDocument is returned when an imported document holds no entries.
	ErrEmptyDocument = errors.New("document holds no entries")
	// ErrEnrichmentDisabled is returned by EnrichEntry when no enricher is configured.
	ErrEnrichmentDisabled = errors.New("enrichment is not configured")
)
