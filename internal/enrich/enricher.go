package enrich

import (
	"context"
	"errors"

	"psibridge/pkg/domain"
)

// Report summarises one enrichment call.
type Report struct {
	Terms      int
	Organisms  int
	Proteins   int
	Relabelled int
	Missing    int
}

// Changed reports whether anything in the entry was updated.
func (r Report) Changed() bool {
	return r.Terms+r.Organisms+r.Proteins+r.Relabelled > 0
}

// Enricher enriches entries. It holds no per-call state and is safe for
// concurrent use.
type Enricher struct {
	cfg      Config
	fetchers Fetchers
	listener Listener
}

// Option customises an Enricher.
type Option func(*Enricher)

// WithListener sets the listener notified of each enrichment.
func WithListener(l Listener) Option {
	return func(e *Enricher) {
		if l != nil {
			e.listener = l
		}
	}
}

// New returns an Enricher using the given fetchers.
func New(cfg Config, fetchers Fetchers, opts ...Option) *Enricher {
	e := &Enricher{cfg: cfg, fetchers: fetchers, listener: noopListener{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the enricher configuration.
func (e *Enricher) Config() Config { return e.cfg }

// EnrichEntry enriches entry in place: proteins first, since they may move
// to another organism, then organisms, then vocabulary terms, and finally
// interaction short labels. Each shared object is enriched once.
func (e *Enricher) EnrichEntry(ctx context.Context, entry *domain.IntactEntry) (Report, error) {
	if entry == nil {
		return Report{}, errors.New("enrich: nil entry")
	}
	run := e.newRun(entry)
	err := run.enrich(ctx, entry)
	return run.report, err
}

// Run is the state of one EnrichEntry call: the objects already visited,
// the remote records already fetched and the biosources by taxid.
type Run struct {
	cfg        Config
	listener   *countingListener
	terms      *Flow[*domain.CvObject, TermRecord]
	organisms  *Flow[*domain.BioSource, TaxonRecord]
	proteins   *Flow[*domain.Interactor, ProteinRecord]
	visited    map[any]struct{}
	biosources map[string]*domain.BioSource
	owner      *domain.Institution
	report     Report
}

func (e *Enricher) newRun(entry *domain.IntactEntry) *Run {
	r := &Run{
		cfg:        e.cfg,
		visited:    make(map[any]struct{}),
		biosources: make(map[string]*domain.BioSource),
		owner:      entry.Institution,
	}
	r.listener = &countingListener{next: e.listener, report: &r.report}
	if e.cfg.UpdateCvTerms && e.fetchers.Terms != nil {
		r.terms = &Flow[*domain.CvObject, TermRecord]{Kind: KindTerm, Capability: termCapability{fetch: memoize(e.fetchers.Terms.FetchTerm)}, Listener: r.listener}
	}
	if e.cfg.UpdateOrganisms && e.fetchers.Taxa != nil {
		r.organisms = &Flow[*domain.BioSource, TaxonRecord]{Kind: KindOrganism, Capability: organismCapability{fetch: memoize(e.fetchers.Taxa.FetchTaxon)}, Listener: r.listener}
	}
	if e.cfg.UpdateProteins && e.fetchers.Proteins != nil {
		r.proteins = &Flow[*domain.Interactor, ProteinRecord]{
			Kind:       KindProtein,
			Capability: proteinCapability{fetch: memoize(e.fetchers.Proteins.FetchProtein), organism: r.bioSource},
			Listener:   r.listener,
		}
	}
	return r
}

// bioSource returns the run's biosource for taxID, creating a bare one
// owned by the entry institution when the entry has none.
func (r *Run) bioSource(taxID string) *domain.BioSource {
	if b, ok := r.biosources[taxID]; ok {
		return b
	}
	b := &domain.BioSource{TaxID: taxID}
	b.ShortLabel = taxID
	b.Owner = r.owner
	r.biosources[taxID] = b
	return b
}

func (r *Run) first(obj any) bool {
	if _, ok := r.visited[obj]; ok {
		return false
	}
	r.visited[obj] = struct{}{}
	return true
}

func (r *Run) enrich(ctx context.Context, entry *domain.IntactEntry) error {
	var (
		terms       []*domain.CvObject
		organisms   []*domain.BioSource
		interactors []*domain.Interactor
	)
	entry.Walk(domain.Visitor{
		CvObject:   func(c *domain.CvObject) { terms = append(terms, c) },
		Interactor: func(i *domain.Interactor) { interactors = append(interactors, i) },
		BioSource: func(b *domain.BioSource) {
			organisms = append(organisms, b)
			if b.CellType == nil && b.Tissue == nil {
				if _, ok := r.biosources[b.TaxID]; !ok {
					r.biosources[b.TaxID] = b
				}
			}
		},
	})

	if r.proteins != nil {
		for _, it := range interactors {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !r.first(it) {
				continue
			}
			changed, err := r.proteins.Enrich(ctx, it)
			if err != nil {
				return err
			}
			if changed {
				r.report.Proteins++
			}
		}
		// Proteins may have moved to organisms the entry did not hold yet.
		for _, it := range interactors {
			if b := it.BioSource; b != nil && !containsBioSource(organisms, b) {
				organisms = append(organisms, b)
			}
		}
	}
	if r.organisms != nil {
		for _, b := range organisms {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !r.first(b) {
				continue
			}
			changed, err := r.organisms.Enrich(ctx, b)
			if err != nil {
				return err
			}
			if changed {
				r.report.Organisms++
			}
		}
	}
	if r.terms != nil {
		for _, t := range terms {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !r.first(t) {
				continue
			}
			changed, err := r.terms.Enrich(ctx, t)
			if err != nil {
				return err
			}
			if changed {
				r.report.Terms++
			}
		}
	}
	if r.cfg.RegenerateShortLabels {
		r.report.Relabelled += RelabelInteractions(entry.Interactions)
	}
	return nil
}

func containsBioSource(list []*domain.BioSource, b *domain.BioSource) bool {
	for _, x := range list {
		if x == b {
			return true
		}
	}
	return false
}

type countingListener struct {
	next   Listener
	report *Report
}

func (l *countingListener) OnEnriched(kind, key string, changes []string) {
	l.next.OnEnriched(kind, key, changes)
}

func (l *countingListener) OnMissing(kind, key string) {
	l.report.Missing++
	l.next.OnMissing(kind, key)
}
