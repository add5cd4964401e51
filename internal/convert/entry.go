package convert

import (
	"errors"
	"strings"
	"time"

	"psibridge/pkg/domain"
	"psibridge/pkg/psixml"
)

const releaseDateLayout = "2006-01-02"

var releaseDateLayouts = []string{releaseDateLayout, "2006-01-02Z07:00", time.RFC3339}

// EntryConverter orchestrates the conversion of a whole entry and checks
// that no interaction, experiment or interactor was lost or duplicated.
type EntryConverter struct {
	s            *session
	institutions *InstitutionConverter
	interactions *InteractionConverter
	experiments  *ExperimentConverter
	interactors  *InteractorConverter
	annotations  *AnnotationConverter
}

// PsiToIntact converts an entry. The source block is converted first so
// that its institution owns every object created afterwards. The session is
// reset before the counts are checked.
func (c *EntryConverter) PsiToIntact(e *psixml.Entry) (*domain.IntactEntry, error) {
	if e == nil {
		return nil, errors.New("convert: nil entry")
	}
	defer c.s.reset()
	c.s.index(e)
	pop := c.s.enter("entry")

	inst, err := c.institutions.PsiToIntact(e.Source)
	if err != nil {
		return nil, err
	}
	c.s.owner = inst
	// Terms created for the institution's own xrefs predate c.s.owner.
	(&domain.IntactEntry{Institution: inst}).AttachOwner()

	out := &domain.IntactEntry{Institution: inst}
	for _, in := range e.Interactions {
		if in == nil {
			continue
		}
		converted, err := c.interactions.PsiToIntact(in)
		if err != nil {
			return nil, err
		}
		out.Interactions = append(out.Interactions, converted)
	}

	if out.Annotations, err = c.annotations.AllToIntact(e.Attributes); err != nil {
		return nil, err
	}
	if e.Source != nil && strings.TrimSpace(e.Source.ReleaseDate) != "" {
		date, err := parseReleaseDate(e.Source.ReleaseDate)
		if err != nil {
			return nil, c.s.wrap("invalid release date", err)
		}
		out.ReleaseDate = &date
	}

	pop()
	c.s.reset()

	err = checkCounts(PsiToIntact,
		count{"interactions", e.CountInteractions(), len(out.Interactions)},
		count{"experiments", e.DistinctExperiments(), len(out.Experiments())},
		count{"interactors", e.DistinctInteractors(), len(out.Interactors())},
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func parseReleaseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	var firstErr error
	for _, layout := range releaseDateLayouts {
		t, err := time.Parse(layout, v)
		if err == nil {
			return t.UTC(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// IntactToPsi converts an entry. With CompactXML the distinct experiments
// and interactors are written to the entry-level lists before the
// interactions, which then reference them by id.
func (c *EntryConverter) IntactToPsi(e *domain.IntactEntry) (*psixml.Entry, error) {
	if e == nil {
		return nil, errors.New("convert: nil entry")
	}
	defer c.s.reset()
	pop := c.s.enter("entry")

	release := ""
	if e.ReleaseDate != nil {
		release = e.ReleaseDate.UTC().Format(releaseDateLayout)
	}
	src, err := c.institutions.IntactToPsi(e.Institution, release)
	if err != nil {
		return nil, err
	}
	out := &psixml.Entry{Source: src}

	if c.s.opts.CompactXML {
		seenEx := make(map[*psixml.ExperimentDescription]struct{})
		for _, ex := range e.Experiments() {
			desc, err := c.experiments.IntactToPsi(ex)
			if err != nil {
				return nil, err
			}
			if _, ok := seenEx[desc]; !ok {
				seenEx[desc] = struct{}{}
				out.Experiments = append(out.Experiments, desc)
			}
		}
		seenIt := make(map[*psixml.Interactor]struct{})
		for _, it := range e.Interactors() {
			node, err := c.interactors.IntactToPsi(it)
			if err != nil {
				return nil, err
			}
			if _, ok := seenIt[node]; !ok {
				seenIt[node] = struct{}{}
				out.Interactors = append(out.Interactors, node)
			}
		}
	}

	for _, in := range e.Interactions {
		if in == nil {
			continue
		}
		converted, err := c.interactions.IntactToPsi(in)
		if err != nil {
			return nil, err
		}
		out.Interactions = append(out.Interactions, converted)
	}
	if out.Attributes, err = c.annotations.AllToPsi(e.Annotations); err != nil {
		return nil, err
	}

	pop()
	c.s.reset()

	interactions := 0
	for _, in := range e.Interactions {
		if in != nil {
			interactions++
		}
	}
	err = checkCounts(IntactToPsi,
		count{"interactions", interactions, out.CountInteractions()},
		count{"experiments", distinctExperimentIdentities(e), out.DistinctExperiments()},
		count{"interactors", distinctInteractorIdentities(e), out.DistinctInteractors()},
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}

type count struct {
	kind   string
	source int
	target int
}

func checkCounts(dir Direction, counts ...count) error {
	for _, c := range counts {
		if c.source != c.target {
			return &InconsistencyError{Direction: dir, Kind: c.kind, Source: c.source, Target: c.target}
		}
	}
	return nil
}

// Curated objects are non-redundant by identity, not by address.
func distinctExperimentIdentities(e *domain.IntactEntry) int {
	ids := make(map[domain.Identity]struct{})
	for _, ex := range e.Experiments() {
		ids[ex.Identity()] = struct{}{}
	}
	return len(ids)
}

func distinctInteractorIdentities(e *domain.IntactEntry) int {
	ids := make(map[domain.Identity]struct{})
	for _, it := range e.Interactors() {
		ids[it.Identity()] = struct{}{}
	}
	return len(ids)
}
