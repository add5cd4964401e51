package convert

import (
	"fmt"
	"strings"

	"psibridge/pkg/domain"
	"psibridge/pkg/psixml"
)

// session is the mutable state of one top-level conversion: the identity
// cache, the owner stamped on created objects, the location used in error
// messages, the id sequence of written PSI-MI nodes and the id lookup of the
// entry being read.
type session struct {
	cache       *Cache
	opts        Options
	owner       *domain.Institution
	path        []string
	nextID      int
	experiments map[int]*psixml.ExperimentDescription
	interactors map[int]*psixml.Interactor
}

func (s *session) enter(format string, args ...any) func() {
	s.path = append(s.path, fmt.Sprintf(format, args...))
	depth := len(s.path)
	return func() {
		if len(s.path) >= depth {
			s.path = s.path[:depth-1]
		}
	}
}

func (s *session) location() string { return strings.Join(s.path, "/") }

func (s *session) failf(format string, args ...any) error {
	return &ConversionError{Path: s.location(), Reason: fmt.Sprintf(format, args...)}
}

func (s *session) wrap(reason string, err error) error {
	return &ConversionError{Path: s.location(), Reason: reason, Err: err}
}

func (s *session) id() int {
	s.nextID++
	return s.nextID
}

func (s *session) own(a *domain.AnnotatedObject) {
	if s.owner != nil {
		a.Owner = s.owner
	}
}

// index records the entry-level experiments and interactors so that id
// references can be followed without rewriting the source entry.
func (s *session) index(e *psixml.Entry) {
	x := psixml.NewIndex(e)
	s.experiments = x.Experiments
	s.interactors = x.Interactors
}

// reset ends the pass: the cache is cleared and location tracking dropped.
func (s *session) reset() {
	s.cache.Clear()
	s.path = nil
	s.nextID = 0
	s.owner = nil
	s.experiments = nil
	s.interactors = nil
}

// Registry holds one converter per entity kind, wired to each other and to
// a single session. Every top-level conversion builds its own Registry.
type Registry struct {
	s *session

	CvTerms      *CvConverter
	Xrefs        *XrefConverter
	Aliases      *AliasConverter
	Annotations  *AnnotationConverter
	Organisms    *OrganismConverter
	Ranges       *RangeConverter
	Confidences  *ConfidenceConverter
	Parameters   *ParameterConverter
	Interactors  *InteractorConverter
	Features     *FeatureConverter
	Participants *ParticipantConverter
	Experiments  *ExperimentConverter
	Interactions *InteractionConverter
	Institutions *InstitutionConverter
	Entries      *EntryConverter
}

// NewRegistry wires a fresh set of converters around an empty cache.
func NewRegistry(opts Options) *Registry {
	s := &session{cache: NewCache(), opts: opts}
	r := &Registry{s: s}

	r.CvTerms = &CvConverter{s: s}
	r.Xrefs = &XrefConverter{s: s, terms: r.CvTerms}
	r.Aliases = &AliasConverter{s: s, terms: r.CvTerms}
	r.CvTerms.xrefs = r.Xrefs
	r.CvTerms.aliases = r.Aliases
	r.Annotations = &AnnotationConverter{s: s, terms: r.CvTerms}

	objects := objectMapper{s: s, xrefs: r.Xrefs, aliases: r.Aliases, annotations: r.Annotations}

	r.Organisms = &OrganismConverter{s: s, terms: r.CvTerms, objects: objects}
	r.Ranges = &RangeConverter{s: s, terms: r.CvTerms}
	r.Confidences = &ConfidenceConverter{s: s, terms: r.CvTerms}
	r.Parameters = &ParameterConverter{s: s, terms: r.CvTerms}
	r.Interactors = &InteractorConverter{s: s, terms: r.CvTerms, organisms: r.Organisms, objects: objects}
	r.Features = &FeatureConverter{s: s, terms: r.CvTerms, ranges: r.Ranges, objects: objects}
	r.Participants = &ParticipantConverter{
		s:           s,
		terms:       r.CvTerms,
		interactors: r.Interactors,
		features:    r.Features,
		organisms:   r.Organisms,
		confidences: r.Confidences,
		parameters:  r.Parameters,
		objects:     objects,
	}
	r.Experiments = &ExperimentConverter{
		s:           s,
		terms:       r.CvTerms,
		organisms:   r.Organisms,
		confidences: r.Confidences,
		xrefs:       r.Xrefs,
		annotations: r.Annotations,
		objects:     objects,
	}
	r.Interactions = &InteractionConverter{
		s:            s,
		terms:        r.CvTerms,
		experiments:  r.Experiments,
		participants: r.Participants,
		confidences:  r.Confidences,
		parameters:   r.Parameters,
		objects:      objects,
	}
	r.Institutions = &InstitutionConverter{s: s, objects: objects}
	r.Entries = &EntryConverter{
		s:            s,
		institutions: r.Institutions,
		interactions: r.Interactions,
		experiments:  r.Experiments,
		interactors:  r.Interactors,
		annotations:  r.Annotations,
	}
	return r
}

// Cache exposes the identity cache of the registry's session.
func (r *Registry) Cache() *Cache { return r.s.cache }

// Reset clears the session so the registry can start another pass.
func (r *Registry) Reset() { r.s.reset() }
