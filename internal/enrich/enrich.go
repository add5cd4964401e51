// Package enrich completes curated entries with data from reference
// resources: controlled vocabulary terms from an ontology service, organisms
// from a taxonomy service and proteins from UniProtKB.
package enrich

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by fetchers when the remote resource has no
// record for a key.
var ErrNotFound = errors.New("enrich: remote record not found")

// FetchError reports a failed lookup other than a missing record.
type FetchError struct {
	Kind string
	Key  string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("enrich %s %s: %v", e.Kind, e.Key, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Config selects which parts of an entry are enriched.
type Config struct {
	UpdateCvTerms         bool
	UpdateOrganisms       bool
	UpdateProteins        bool
	RegenerateShortLabels bool
}

// DefaultConfig enables every cascade.
func DefaultConfig() Config {
	return Config{UpdateCvTerms: true, UpdateOrganisms: true, UpdateProteins: true, RegenerateShortLabels: true}
}

// TermRecord is an ontology term as published by the ontology service.
type TermRecord struct {
	Identifier string
	ShortLabel string
	FullName   string
}

// TaxonRecord is a taxonomy node.
type TaxonRecord struct {
	TaxID          string
	ScientificName string
	CommonName     string
}

// ProteinRecord is the subset of a UniProtKB entry used for enrichment.
type ProteinRecord struct {
	Accession string
	// EntryName is the UniProtKB mnemonic, e.g. BRCA1_HUMAN.
	EntryName string
	FullName  string
	GeneName  string
	Sequence  string
	TaxID     string
}

// TermFetcher looks up ontology terms by identifier.
type TermFetcher interface {
	FetchTerm(ctx context.Context, identifier string) (TermRecord, error)
}

// TaxonFetcher looks up taxonomy nodes by NCBI taxid.
type TaxonFetcher interface {
	FetchTaxon(ctx context.Context, taxID string) (TaxonRecord, error)
}

// ProteinFetcher looks up UniProtKB entries by accession.
type ProteinFetcher interface {
	FetchProtein(ctx context.Context, accession string) (ProteinRecord, error)
}

// Fetchers bundles the remote lookups. A nil fetcher disables its cascade.
type Fetchers struct {
	Terms    TermFetcher
	Taxa     TaxonFetcher
	Proteins ProteinFetcher
}

// Listener is notified of the outcome of each enrichment.
type Listener interface {
	OnEnriched(kind, key string, changes []string)
	OnMissing(kind, key string)
}

type noopListener struct{}

func (noopListener) OnEnriched(string, string, []string) {}
func (noopListener) OnMissing(string, string)            {}
