// Package convert translates between the PSI-MI XML interchange model and
// the IntAct curation model. Each top-level call runs one conversion pass
// with its own identity cache, so a Converter is safe for concurrent use.
package convert

import (
	"fmt"
	"io"
	"slices"

	"psibridge/pkg/domain"
	"psibridge/pkg/psixml"
)

// Converter converts whole entries in either direction.
type Converter struct {
	opts Options
}

// New returns a Converter using opts.
func New(opts Options) *Converter {
	opts.ExcludedAnnotationTopics = slices.Clone(opts.ExcludedAnnotationTopics)
	return &Converter{opts: opts}
}

// Options returns the converter configuration.
func (c *Converter) Options() Options { return c.opts }

// WithOptions returns a copy of the converter using opts.
func (c *Converter) WithOptions(opts Options) *Converter { return New(opts) }

// PsiToIntact converts one PSI-MI entry. The source entry is not modified.
func (c *Converter) PsiToIntact(e *psixml.Entry) (*domain.IntactEntry, error) {
	return NewRegistry(c.opts).Entries.PsiToIntact(e)
}

// IntactToPsi converts one curated entry.
func (c *Converter) IntactToPsi(e *domain.IntactEntry) (*psixml.Entry, error) {
	return NewRegistry(c.opts).Entries.IntactToPsi(e)
}

// ReadEntries streams a PSI-MI XML document and converts each entry in its
// own pass as soon as it is decoded. Id references are resolved first, so a
// dangling reference fails before any conversion work. It stops at the first
// failing entry.
func (c *Converter) ReadEntries(r io.Reader) ([]*domain.IntactEntry, error) {
	var out []*domain.IntactEntry
	err := psixml.DecodeEntries(r, func(e *psixml.Entry) error {
		i := len(out)
		if err := e.Resolve(); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		converted, err := c.PsiToIntact(e)
		if err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		out = append(out, converted)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// IntactToPsiSet converts curated entries into one PSI-MI document.
func (c *Converter) IntactToPsiSet(entries []*domain.IntactEntry) (*psixml.EntrySet, error) {
	set := psixml.NewEntrySet()
	for i, e := range entries {
		converted, err := c.IntactToPsi(e)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		set.Entries = append(set.Entries, converted)
	}
	return set, nil
}
