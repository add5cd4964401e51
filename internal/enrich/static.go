package enrich

import "context"

// StaticFetcher serves records from memory. It backs offline runs and
// tests; keys absent from the maps yield ErrNotFound.
type StaticFetcher struct {
	Terms    map[string]TermRecord
	Taxa     map[string]TaxonRecord
	Proteins map[string]ProteinRecord
}

var (
	_ TermFetcher    = (*StaticFetcher)(nil)
	_ TaxonFetcher   = (*StaticFetcher)(nil)
	_ ProteinFetcher = (*StaticFetcher)(nil)
)

// Fetchers returns f as every fetcher.
func (f *StaticFetcher) Fetchers() Fetchers {
	return Fetchers{Terms: f, Taxa: f, Proteins: f}
}

func (f *StaticFetcher) FetchTerm(ctx context.Context, identifier string) (TermRecord, error) {
	if err := ctx.Err(); err != nil {
		return TermRecord{}, err
	}
	rec, ok := f.Terms[identifier]
	if !ok {
		return TermRecord{}, ErrNotFound
	}
	return rec, nil
}

func (f *StaticFetcher) FetchTaxon(ctx context.Context, taxID string) (TaxonRecord, error) {
	if err := ctx.Err(); err != nil {
		return TaxonRecord{}, err
	}
	rec, ok := f.Taxa[taxID]
	if !ok {
		return TaxonRecord{}, ErrNotFound
	}
	return rec, nil
}

func (f *StaticFetcher) FetchProtein(ctx context.Context, accession string) (ProteinRecord, error) {
	if err := ctx.Err(); err != nil {
		return ProteinRecord{}, err
	}
	rec, ok := f.Proteins[accession]
	if !ok {
		return ProteinRecord{}, ErrNotFound
	}
	return rec, nil
}
