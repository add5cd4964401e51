package enrich

import (
	"context"
	"errors"
	"strings"

	"psibridge/pkg/domain"
)

// Enrichment kinds reported to listeners.
const (
	KindTerm     = "cv-term"
	KindOrganism = "organism"
	KindProtein  = "protein"
)

type termCapability struct {
	fetch func(context.Context, string) (TermRecord, error)
}

func (termCapability) Key(t *domain.CvObject) string {
	// Only ontology identifiers can be looked up; bare labels cannot.
	if !strings.Contains(t.Identifier, ":") {
		return ""
	}
	return t.Identifier
}

func (c termCapability) Fetch(ctx context.Context, key string) (TermRecord, error) {
	return c.fetch(ctx, key)
}

func (termCapability) Diff(t *domain.CvObject, rec TermRecord) []string {
	var changes []string
	if rec.ShortLabel != "" && rec.ShortLabel != t.ShortLabel {
		changes = append(changes, "shortLabel")
	}
	if rec.FullName != "" && rec.FullName != t.FullName {
		changes = append(changes, "fullName")
	}
	return changes
}

func (termCapability) Apply(t *domain.CvObject, rec TermRecord) {
	if rec.ShortLabel != "" {
		t.ShortLabel = rec.ShortLabel
	}
	if rec.FullName != "" {
		t.FullName = rec.FullName
	}
}

type organismCapability struct {
	fetch func(context.Context, string) (TaxonRecord, error)
}

func (organismCapability) Key(b *domain.BioSource) string {
	// Negative taxids are PSI-MI pseudo organisms such as in vitro (-1).
	if b.TaxID == "" || strings.HasPrefix(b.TaxID, "-") {
		return ""
	}
	return b.TaxID
}

func (c organismCapability) Fetch(ctx context.Context, key string) (TaxonRecord, error) {
	return c.fetch(ctx, key)
}

func organismLabel(rec TaxonRecord) string {
	if rec.CommonName != "" {
		return strings.ToLower(rec.CommonName)
	}
	return strings.ToLower(rec.ScientificName)
}

func (organismCapability) Diff(b *domain.BioSource, rec TaxonRecord) []string {
	var changes []string
	if label := organismLabel(rec); label != "" && label != b.ShortLabel {
		changes = append(changes, "shortLabel")
	}
	if rec.ScientificName != "" && rec.ScientificName != b.FullName {
		changes = append(changes, "fullName")
	}
	return changes
}

func (organismCapability) Apply(b *domain.BioSource, rec TaxonRecord) {
	if label := organismLabel(rec); label != "" {
		b.ShortLabel = label
	}
	if rec.ScientificName != "" {
		b.FullName = rec.ScientificName
	}
}

type proteinCapability struct {
	fetch func(context.Context, string) (ProteinRecord, error)
	// organism returns the biosource shared by every object of the run
	// with the given taxid.
	organism func(taxID string) *domain.BioSource
}

func (proteinCapability) Key(i *domain.Interactor) string {
	return i.UniprotAC()
}

func (c proteinCapability) Fetch(ctx context.Context, key string) (ProteinRecord, error) {
	return c.fetch(ctx, key)
}

func (proteinCapability) Diff(i *domain.Interactor, rec ProteinRecord) []string {
	var changes []string
	if label := strings.ToLower(rec.EntryName); label != "" && label != i.ShortLabel {
		changes = append(changes, "shortLabel")
	}
	if rec.FullName != "" && rec.FullName != i.FullName {
		changes = append(changes, "fullName")
	}
	if rec.Sequence != "" && rec.Sequence != i.Sequence {
		changes = append(changes, "sequence")
	}
	if rec.TaxID != "" && (i.BioSource == nil || i.BioSource.TaxID != rec.TaxID) {
		changes = append(changes, "organism")
	}
	return changes
}

func (c proteinCapability) Apply(i *domain.Interactor, rec ProteinRecord) {
	if label := strings.ToLower(rec.EntryName); label != "" {
		i.ShortLabel = label
	}
	if rec.FullName != "" {
		i.FullName = rec.FullName
	}
	if rec.Sequence != "" {
		i.Sequence = rec.Sequence
	}
	if rec.TaxID != "" && (i.BioSource == nil || i.BioSource.TaxID != rec.TaxID) {
		i.BioSource = c.organism(rec.TaxID)
	}
}

// memoize remembers the records and misses of fetch for the lifetime of a
// run. Other errors are not remembered.
func memoize[R any](fetch func(context.Context, string) (R, error)) func(context.Context, string) (R, error) {
	type result struct {
		rec R
		err error
	}
	seen := make(map[string]result)
	return func(ctx context.Context, key string) (R, error) {
		if r, ok := seen[key]; ok {
			return r.rec, r.err
		}
		rec, err := fetch(ctx, key)
		if err == nil || errors.Is(err, ErrNotFound) {
			seen[key] = result{rec: rec, err: err}
		}
		return rec, err
	}
}
