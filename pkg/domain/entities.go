// Package domain defines the IntAct curation model: the entities a converted
// PSI-MI entry is made of and the persistence contract used to store entries.
package domain

import (
	"strings"
	"time"
)

// CvKind identifies the controlled vocabulary a CvObject belongs to.
type CvKind string

// Controlled vocabularies referenced by the curation model.
const (
	CvDatabase             CvKind = "database"
	CvXrefQualifier        CvKind = "xref_qualifier"
	CvTopic                CvKind = "topic"
	CvAliasType            CvKind = "alias_type"
	CvInteractorType       CvKind = "interactor_type"
	CvInteractionType      CvKind = "interaction_type"
	CvInteractionDetection CvKind = "interaction_detection"
	CvIdentification       CvKind = "identification"
	CvFeatureDetection     CvKind = "feature_detection"
	CvExperimentalRole     CvKind = "experimental_role"
	CvBiologicalRole       CvKind = "biological_role"
	CvExperimentalPrep     CvKind = "experimental_preparation"
	CvFeatureType          CvKind = "feature_type"
	CvFuzzyType            CvKind = "fuzzy_type"
	CvConfidenceType       CvKind = "confidence_type"
	CvParameterType        CvKind = "parameter_type"
	CvParameterUnit        CvKind = "parameter_unit"
	CvTissue               CvKind = "tissue"
	CvCellType             CvKind = "cell_type"
	CvCompartment          CvKind = "compartment"
)

// PSI-MI identifiers the converters and exporters depend on.
const (
	MIPsiMi              = "MI:0488"
	MIIntact             = "MI:0469"
	MIIdentity           = "MI:0356"
	MISecondaryAc        = "MI:0360"
	MIPrimaryReference   = "MI:0358"
	MIPubmed             = "MI:0446"
	MIUniprot            = "MI:0486"
	MIGeneName           = "MI:0301"
	MIUnspecifiedRole    = "MI:0499"
	MIBait               = "MI:0496"
	MIPrey               = "MI:0498"
	MINeutralComponent   = "MI:0497"
	MIUnknownParticipant = "MI:0329"
	MIProtein            = "MI:0326"
	MIPhysicalAssoc      = "MI:0915"
	MIComment            = "MI:0612"

	MIFuzzyCertain      = "MI:0335"
	MIFuzzyGreaterThan  = "MI:0336"
	MIFuzzyLessThan     = "MI:0337"
	MIFuzzyRange        = "MI:0338"
	MIFuzzyUndetermined = "MI:0339"
	MIFuzzyNTerminal    = "MI:0340"
	MIFuzzyCTerminal    = "MI:0334"
	MIFuzzyRaggedN      = "MI:0341"
)

// Short labels paired with the identifiers above when a term has to be
// synthesised without any source data.
const (
	LabelPsiMi              = "psi-mi"
	LabelIdentity           = "identity"
	LabelUnspecifiedRole    = "unspecified role"
	LabelUnknownParticipant = "unknown participant"
	LabelCertain            = "certain"
	LabelUndetermined       = "undetermined"
)

// AnnotatedObject carries the fields shared by every curated entity.
type AnnotatedObject struct {
	AC          string       `json:"ac,omitempty"`
	ShortLabel  string       `json:"shortLabel"`
	FullName    string       `json:"fullName,omitempty"`
	Xrefs       []Xref       `json:"xrefs,omitempty"`
	Aliases     []Alias      `json:"aliases,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty"`
	// Owner is reattached on load rather than serialised with every object.
	Owner *Institution `json:"-"`
}

// Annotated exposes the embedded annotated object.
func (a *AnnotatedObject) Annotated() *AnnotatedObject { return a }

// XrefsFor returns the cross-references pointing at database db (MI id).
func (a *AnnotatedObject) XrefsFor(db string) []Xref {
	var out []Xref
	for _, x := range a.Xrefs {
		if x.Database.Is(db) {
			out = append(out, x)
		}
	}
	return out
}

// Identity is the natural key of a curated entity: its short label plus its kind.
type Identity struct {
	Kind  string
	Label string
}

func (id Identity) String() string { return id.Kind + ":" + id.Label }

// Institution owns every object created while converting one entry.
type Institution struct {
	AnnotatedObject
	PostalAddress string `json:"postalAddress,omitempty"`
	URL           string `json:"url,omitempty"`
}

// CvObject is a controlled vocabulary term.
type CvObject struct {
	AnnotatedObject
	Kind       CvKind `json:"kind"`
	Identifier string `json:"identifier,omitempty"`
}

// Is reports whether the term carries the given identifier. Nil terms match nothing.
func (c *CvObject) Is(identifier string) bool {
	return c != nil && identifier != "" && c.Identifier == identifier
}

// Identity returns the natural key of the term.
func (c *CvObject) Identity() Identity {
	return Identity{Kind: "cv/" + string(c.Kind), Label: c.ShortLabel}
}

// Xref is a typed pointer to an identifier in an external database.
type Xref struct {
	Database    *CvObject `json:"database"`
	Qualifier   *CvObject `json:"qualifier,omitempty"`
	PrimaryID   string    `json:"primaryId"`
	SecondaryID string    `json:"secondaryId,omitempty"`
	DbRelease   string    `json:"dbRelease,omitempty"`
}

// Alias is an alternative name for a curated entity.
type Alias struct {
	Type *CvObject `json:"type,omitempty"`
	Name string    `json:"name"`
}

// Annotation is a free-text note classified by a topic term.
type Annotation struct {
	Topic *CvObject `json:"topic"`
	Text  string    `json:"text,omitempty"`
}

// BioSource is an organism, optionally narrowed to a cell type and tissue.
type BioSource struct {
	AnnotatedObject
	TaxID    string    `json:"taxId"`
	CellType *CvObject `json:"cellType,omitempty"`
	Tissue   *CvObject `json:"tissue,omitempty"`
}

// Interactor is a molecule taking part in interactions.
type Interactor struct {
	AnnotatedObject
	Type      *CvObject  `json:"type,omitempty"`
	BioSource *BioSource `json:"bioSource,omitempty"`
	Sequence  string     `json:"sequence,omitempty"`
}

// Identity returns the natural key of the interactor. The interactor type
// stands in for the runtime class of the curation model.
func (i *Interactor) Identity() Identity {
	kind := "interactor"
	if i.Type != nil && i.Type.Identifier != "" {
		kind += "/" + i.Type.Identifier
	}
	return Identity{Kind: kind, Label: i.ShortLabel}
}

// UniprotAC returns the UniProtKB identity accession, or "" when absent.
func (i *Interactor) UniprotAC() string {
	var fallback string
	for _, x := range i.XrefsFor(MIUniprot) {
		if x.Qualifier.Is(MIIdentity) {
			return x.PrimaryID
		}
		if fallback == "" && x.Qualifier == nil {
			fallback = x.PrimaryID
		}
	}
	return fallback
}

// GeneName returns the first gene-name alias, or "" when absent.
func (i *Interactor) GeneName() string {
	for _, a := range i.Aliases {
		if a.Type.Is(MIGeneName) {
			return a.Name
		}
	}
	return ""
}

// Publication is the literature reference an experiment is curated from.
type Publication struct {
	AnnotatedObject
}

// PubmedID returns the PubMed identifier of the publication, preferring the
// primary-reference cross-reference.
func (p *Publication) PubmedID() string {
	if p == nil {
		return ""
	}
	var fallback string
	for _, x := range p.XrefsFor(MIPubmed) {
		if x.Qualifier.Is(MIPrimaryReference) {
			return x.PrimaryID
		}
		if fallback == "" {
			fallback = x.PrimaryID
		}
	}
	return fallback
}

// Experiment describes how a set of interactions was detected.
type Experiment struct {
	AnnotatedObject
	HostOrganism           *BioSource   `json:"hostOrganism,omitempty"`
	DetectionMethod        *CvObject    `json:"detectionMethod,omitempty"`
	IdentificationMethod   *CvObject    `json:"identificationMethod,omitempty"`
	FeatureDetectionMethod *CvObject    `json:"featureDetectionMethod,omitempty"`
	Publication            *Publication `json:"publication,omitempty"`
	Confidences            []Confidence `json:"confidences,omitempty"`
}

// Identity returns the natural key of the experiment.
func (e *Experiment) Identity() Identity {
	return Identity{Kind: "experiment", Label: e.ShortLabel}
}

// Interaction is a curated interaction evidence. Type and InteractorType are
// single-valued.
type Interaction struct {
	AnnotatedObject
	Type           *CvObject     `json:"type,omitempty"`
	InteractorType *CvObject     `json:"interactorType,omitempty"`
	Experiments    []*Experiment `json:"experiments"`
	Components     []*Component  `json:"components"`
	Confidences    []Confidence  `json:"confidences,omitempty"`
	Parameters     []Parameter   `json:"parameters,omitempty"`
	Negative       bool          `json:"negative,omitempty"`
	IMExID         string        `json:"imexId,omitempty"`
}

// Identity returns the natural key of the interaction.
func (i *Interaction) Identity() Identity {
	return Identity{Kind: "interaction", Label: i.ShortLabel}
}

// Bait returns the first component playing the bait role, or nil.
func (i *Interaction) Bait() *Component {
	for _, c := range i.Components {
		if c.HasExperimentalRole(MIBait) {
			return c
		}
	}
	return nil
}

// Component is an interactor in the context of one interaction.
type Component struct {
	AnnotatedObject
	Interactor            *Interactor  `json:"interactor"`
	ExperimentalRoles     []*CvObject  `json:"experimentalRoles"`
	BiologicalRole        *CvObject    `json:"biologicalRole,omitempty"`
	IdentificationMethods []*CvObject  `json:"identificationMethods,omitempty"`
	ExperimentalPreps     []*CvObject  `json:"experimentalPreparations,omitempty"`
	ExpressedIn           *BioSource   `json:"expressedIn,omitempty"`
	Features              []*Feature   `json:"features,omitempty"`
	Confidences           []Confidence `json:"confidences,omitempty"`
	Parameters            []Parameter  `json:"parameters,omitempty"`
}

// HasExperimentalRole reports whether the component plays the given role.
func (c *Component) HasExperimentalRole(identifier string) bool {
	for _, r := range c.ExperimentalRoles {
		if r.Is(identifier) {
			return true
		}
	}
	return false
}

// Feature is an annotated region of a component.
type Feature struct {
	AnnotatedObject
	Type            *CvObject `json:"type,omitempty"`
	DetectionMethod *CvObject `json:"detectionMethod,omitempty"`
	Ranges          []Range   `json:"ranges,omitempty"`
}

// Range locates a feature on a sequence. Each end is an interval; a certain
// position has equal start and end.
type Range struct {
	FromFuzzyType     *CvObject `json:"fromFuzzyType,omitempty"`
	ToFuzzyType       *CvObject `json:"toFuzzyType,omitempty"`
	FromIntervalStart int64     `json:"fromIntervalStart"`
	FromIntervalEnd   int64     `json:"fromIntervalEnd"`
	ToIntervalStart   int64     `json:"toIntervalStart"`
	ToIntervalEnd     int64     `json:"toIntervalEnd"`
	Link              bool      `json:"link,omitempty"`
}

// Confidence is a typed confidence score.
type Confidence struct {
	Type  *CvObject `json:"type"`
	Value string    `json:"value"`
}

// Parameter is a typed kinetic or thermodynamic measurement expressed as
// factor * base^exponent.
type Parameter struct {
	Type        *CvObject `json:"type"`
	Unit        *CvObject `json:"unit,omitempty"`
	Factor      float64   `json:"factor"`
	Base        int       `json:"base,omitempty"`
	Exponent    int       `json:"exponent,omitempty"`
	Uncertainty float64   `json:"uncertainty,omitempty"`
}

// IntactEntry groups the interactions of one submission.
type IntactEntry struct {
	Institution  *Institution   `json:"institution"`
	Interactions []*Interaction `json:"interactions"`
	ReleaseDate  *time.Time     `json:"releaseDate,omitempty"`
	Annotations  []Annotation   `json:"annotations,omitempty"`
}

// Experiments returns the distinct experiments referenced by the entry's
// interactions, in first-seen order.
func (e *IntactEntry) Experiments() []*Experiment {
	seen := make(map[*Experiment]struct{})
	var out []*Experiment
	for _, in := range e.Interactions {
		if in == nil {
			continue
		}
		for _, ex := range in.Experiments {
			if ex == nil {
				continue
			}
			if _, ok := seen[ex]; ok {
				continue
			}
			seen[ex] = struct{}{}
			out = append(out, ex)
		}
	}
	return out
}

// Interactors returns the distinct interactors referenced by the entry's
// components, in first-seen order.
func (e *IntactEntry) Interactors() []*Interactor {
	seen := make(map[*Interactor]struct{})
	var out []*Interactor
	for _, in := range e.Interactions {
		if in == nil {
			continue
		}
		for _, c := range in.Components {
			if c == nil || c.Interactor == nil {
				continue
			}
			if _, ok := seen[c.Interactor]; ok {
				continue
			}
			seen[c.Interactor] = struct{}{}
			out = append(out, c.Interactor)
		}
	}
	return out
}

// Label derives a display label for the entry from its institution and
// first interaction.
func (e *IntactEntry) Label() string {
	var parts []string
	if e.Institution != nil && e.Institution.ShortLabel != "" {
		parts = append(parts, e.Institution.ShortLabel)
	}
	for _, in := range e.Interactions {
		if in == nil {
			continue
		}
		if in.ShortLabel != "" {
			parts = append(parts, in.ShortLabel)
		}
		break
	}
	if len(parts) == 0 {
		return "entry"
	}
	return strings.Join(parts, "/")
}
