package psixml

import "fmt"

// RefError reports a reference to an id missing from the entry.
type RefError struct {
	Kind        string
	Ref         int
	Interaction int
}

func (e *RefError) Error() string {
	return fmt.Sprintf("psixml: interaction %d references unknown %s %d", e.Interaction, e.Kind, e.Ref)
}

// Index maps the ids of an entry's top-level experiments and interactors to
// their descriptions. The first description of an id wins.
type Index struct {
	Experiments map[int]*ExperimentDescription
	Interactors map[int]*Interactor
}

// NewIndex indexes the entry-level lists of e without modifying it.
func NewIndex(e *Entry) *Index {
	x := &Index{
		Experiments: make(map[int]*ExperimentDescription, len(e.Experiments)),
		Interactors: make(map[int]*Interactor, len(e.Interactors)),
	}
	for _, ex := range e.Experiments {
		if ex != nil && ex.ID != 0 {
			if _, ok := x.Experiments[ex.ID]; !ok {
				x.Experiments[ex.ID] = ex
			}
		}
	}
	for _, it := range e.Interactors {
		if it != nil && it.ID != 0 {
			if _, ok := x.Interactors[it.ID]; !ok {
				x.Interactors[it.ID] = it
			}
		}
	}
	return x
}

// Resolve replaces experimentRef and interactorRef ids with pointers to the
// described objects. Descriptions sharing an id collapse onto the first one
// seen, so every id maps to a single pointer afterwards. Resolve is
// idempotent.
func (e *Entry) Resolve() error {
	x := NewIndex(e)
	experiments, interactors := x.Experiments, x.Interactors
	for _, in := range e.Interactions {
		if in == nil {
			continue
		}
		resolved := make([]*ExperimentDescription, 0, len(in.ExperimentRefs)+len(in.Experiments))
		for _, ref := range in.ExperimentRefs {
			ex, ok := experiments[ref]
			if !ok {
				return &RefError{Kind: "experiment", Ref: ref, Interaction: in.ID}
			}
			resolved = append(resolved, ex)
		}
		for _, ex := range in.Experiments {
			if ex == nil {
				continue
			}
			if ex.ID != 0 {
				if canonical, ok := experiments[ex.ID]; ok {
					ex = canonical
				} else {
					experiments[ex.ID] = ex
				}
			}
			resolved = append(resolved, ex)
		}
		in.ExperimentRefs = nil
		in.Experiments = resolved

		for _, p := range in.Participants {
			if p == nil {
				continue
			}
			if p.InteractorRef != 0 {
				it, ok := interactors[p.InteractorRef]
				if !ok {
					return &RefError{Kind: "interactor", Ref: p.InteractorRef, Interaction: in.ID}
				}
				p.Interactor = it
				p.InteractorRef = 0
				continue
			}
			if p.Interactor != nil && p.Interactor.ID != 0 {
				if canonical, ok := interactors[p.Interactor.ID]; ok {
					p.Interactor = canonical
				} else {
					interactors[p.Interactor.ID] = p.Interactor
				}
			}
		}
	}
	return nil
}

// DistinctExperiments counts the non-redundant experiments of the entry:
// top-level descriptions, inline descriptions and references, distinct by id.
func (e *Entry) DistinctExperiments() int {
	ids := make(map[int]struct{})
	anon := make(map[*ExperimentDescription]struct{})
	add := func(ex *ExperimentDescription) {
		switch {
		case ex == nil:
		case ex.ID != 0:
			ids[ex.ID] = struct{}{}
		default:
			anon[ex] = struct{}{}
		}
	}
	for _, ex := range e.Experiments {
		add(ex)
	}
	for _, in := range e.Interactions {
		if in == nil {
			continue
		}
		for _, ref := range in.ExperimentRefs {
			ids[ref] = struct{}{}
		}
		for _, ex := range in.Experiments {
			add(ex)
		}
	}
	return len(ids) + len(anon)
}

// DistinctInteractors counts the non-redundant interactors of the entry,
// distinct by id.
func (e *Entry) DistinctInteractors() int {
	ids := make(map[int]struct{})
	anon := make(map[*Interactor]struct{})
	add := func(it *Interactor) {
		switch {
		case it == nil:
		case it.ID != 0:
			ids[it.ID] = struct{}{}
		default:
			anon[it] = struct{}{}
		}
	}
	for _, it := range e.Interactors {
		add(it)
	}
	for _, in := range e.Interactions {
		if in == nil {
			continue
		}
		for _, p := range in.Participants {
			if p == nil {
				continue
			}
			if p.InteractorRef != 0 {
				ids[p.InteractorRef] = struct{}{}
				continue
			}
			add(p.Interactor)
		}
	}
	return len(ids) + len(anon)
}

// CountInteractions counts the non-nil interactions of the entry.
func (e *Entry) CountInteractions() int {
	n := 0
	for _, in := range e.Interactions {
		if in != nil {
			n++
		}
	}
	return n
}
