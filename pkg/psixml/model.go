// Package psixml models the PSI-MI XML 2.5 interchange format and reads and
// writes it.
package psixml

import "encoding/xml"

// Namespace is the default namespace of PSI-MI XML 2.5 documents.
const Namespace = "net:sf:psidev:mi"

// EntrySet is the document root.
type EntrySet struct {
	XMLName      xml.Name `xml:"entrySet"`
	Xmlns        string   `xml:"xmlns,attr,omitempty"`
	Level        int      `xml:"level,attr"`
	Version      int      `xml:"version,attr"`
	MinorVersion int      `xml:"minorVersion,attr"`
	Entries      []*Entry `xml:"entry"`
}

// NewEntrySet wraps entries in a 2.5.4 document root.
func NewEntrySet(entries ...*Entry) *EntrySet {
	return &EntrySet{Xmlns: Namespace, Level: 2, Version: 5, MinorVersion: 4, Entries: entries}
}

// Entry groups the interactions of one submission. The experiment and
// interactor lists are filled in compact documents and referenced by id.
type Entry struct {
	Source       *Source                  `xml:"source"`
	Experiments  []*ExperimentDescription `xml:"experimentList>experimentDescription"`
	Interactors  []*Interactor            `xml:"interactorList>interactor"`
	Interactions []*Interaction           `xml:"interactionList>interaction"`
	Attributes   []Attribute              `xml:"attributeList>attribute"`
}

// Names holds the labels of a node.
type Names struct {
	ShortLabel string  `xml:"shortLabel,omitempty"`
	FullName   string  `xml:"fullName,omitempty"`
	Aliases    []Alias `xml:"alias"`
}

// Label returns the short label of n, tolerating nil.
func (n *Names) Label() string {
	if n == nil {
		return ""
	}
	return n.ShortLabel
}

// Alias is an alternative name, typed by the alias-type vocabulary.
type Alias struct {
	Type   string `xml:"type,attr,omitempty"`
	TypeAc string `xml:"typeAc,attr,omitempty"`
	Value  string `xml:",chardata"`
}

// Xref lists the cross-references of a node; the first is the primary one.
type Xref struct {
	PrimaryRef    *DbReference  `xml:"primaryRef"`
	SecondaryRefs []DbReference `xml:"secondaryRef"`
}

// All returns the primary and secondary references in document order.
func (x *Xref) All() []DbReference {
	if x == nil {
		return nil
	}
	var out []DbReference
	if x.PrimaryRef != nil {
		out = append(out, *x.PrimaryRef)
	}
	return append(out, x.SecondaryRefs...)
}

// NewXref builds an Xref from references, the first becoming primary.
func NewXref(refs []DbReference) *Xref {
	if len(refs) == 0 {
		return nil
	}
	first := refs[0]
	x := &Xref{PrimaryRef: &first}
	if len(refs) > 1 {
		x.SecondaryRefs = append([]DbReference(nil), refs[1:]...)
	}
	return x
}

// DbReference points at an identifier in an external database.
type DbReference struct {
	Db         string      `xml:"db,attr"`
	DbAc       string      `xml:"dbAc,attr,omitempty"`
	ID         string      `xml:"id,attr"`
	Secondary  string      `xml:"secondary,attr,omitempty"`
	Version    string      `xml:"version,attr,omitempty"`
	RefType    string      `xml:"refType,attr,omitempty"`
	RefTypeAc  string      `xml:"refTypeAc,attr,omitempty"`
	Attributes []Attribute `xml:"attributeList>attribute"`
}

// Attribute is a free-text annotation named by a topic term.
type Attribute struct {
	Name   string `xml:"name,attr"`
	NameAc string `xml:"nameAc,attr,omitempty"`
	Value  string `xml:",chardata"`
}

// CvType is a controlled vocabulary term reference.
type CvType struct {
	Names *Names `xml:"names"`
	Xref  *Xref  `xml:"xref"`
}

// ShortLabel returns the short label of the term.
func (c *CvType) ShortLabel() string {
	if c == nil {
		return ""
	}
	return c.Names.Label()
}

// Identifier returns the term identifier: the identity reference, or failing
// that the first psi-mi reference, or failing that the primary reference.
func (c *CvType) Identifier() string {
	if c == nil || c.Xref == nil {
		return ""
	}
	refs := c.Xref.All()
	for _, r := range refs {
		if r.RefTypeAc == miIdentity || r.RefType == "identity" {
			return r.ID
		}
	}
	for _, r := range refs {
		if r.DbAc == miPsiMi || r.Db == "psi-mi" {
			return r.ID
		}
	}
	if c.Xref.PrimaryRef != nil {
		return c.Xref.PrimaryRef.ID
	}
	return ""
}

const (
	miPsiMi    = "MI:0488"
	miIdentity = "MI:0356"
)

// NewCvType builds a psi-mi term reference with an identity xref.
func NewCvType(label, identifier string) *CvType {
	c := &CvType{Names: &Names{ShortLabel: label}}
	if identifier != "" {
		c.Xref = &Xref{PrimaryRef: &DbReference{
			Db: "psi-mi", DbAc: miPsiMi, ID: identifier,
			RefType: "identity", RefTypeAc: miIdentity,
		}}
	}
	return c
}

// Bibref cites the publication an experiment comes from.
type Bibref struct {
	Xref       *Xref       `xml:"xref"`
	Attributes []Attribute `xml:"attributeList>attribute"`
}

// Source describes the institution that produced the entry.
type Source struct {
	ReleaseDate string      `xml:"releaseDate,attr,omitempty"`
	Names       *Names      `xml:"names"`
	Bibref      *Bibref     `xml:"bibref"`
	Xref        *Xref       `xml:"xref"`
	Attributes  []Attribute `xml:"attributeList>attribute"`
}

// Organism is a host or source organism.
type Organism struct {
	NcbiTaxID   string  `xml:"ncbiTaxId,attr"`
	Names       *Names  `xml:"names"`
	CellType    *CvType `xml:"cellType"`
	Compartment *CvType `xml:"compartment"`
	Tissue      *CvType `xml:"tissue"`
}

// Interactor is a molecule description.
type Interactor struct {
	ID             int         `xml:"id,attr"`
	Names          *Names      `xml:"names"`
	Xref           *Xref       `xml:"xref"`
	InteractorType *CvType     `xml:"interactorType"`
	Organism       *Organism   `xml:"organism"`
	Sequence       string      `xml:"sequence,omitempty"`
	Attributes     []Attribute `xml:"attributeList>attribute"`
}

// ExperimentDescription describes how interactions were detected.
type ExperimentDescription struct {
	ID                              int          `xml:"id,attr"`
	Names                           *Names       `xml:"names"`
	Bibref                          *Bibref      `xml:"bibref"`
	Xref                            *Xref        `xml:"xref"`
	HostOrganisms                   []*Organism  `xml:"hostOrganismList>hostOrganism"`
	InteractionDetectionMethod      *CvType      `xml:"interactionDetectionMethod"`
	ParticipantIdentificationMethod *CvType      `xml:"participantIdentificationMethod"`
	FeatureDetectionMethod          *CvType      `xml:"featureDetectionMethod"`
	Confidences                     []Confidence `xml:"confidenceList>confidence"`
	Attributes                      []Attribute  `xml:"attributeList>attribute"`
}

// Interaction is one interaction evidence. Experiments are referenced by id
// (ExperimentRefs) or described inline; Resolve turns references into
// pointers.
type Interaction struct {
	ID               int                      `xml:"id,attr"`
	ImexID           string                   `xml:"imexId,attr,omitempty"`
	Names            *Names                   `xml:"names"`
	Xref             *Xref                    `xml:"xref"`
	ExperimentRefs   []int                    `xml:"experimentList>experimentRef"`
	Experiments      []*ExperimentDescription `xml:"experimentList>experimentDescription"`
	Participants     []*Participant           `xml:"participantList>participant"`
	InteractionTypes []*CvType                `xml:"interactionType"`
	Modelled         *bool                    `xml:"modelled"`
	IntraMolecular   *bool                    `xml:"intraMolecular"`
	Negative         bool                     `xml:"negative,omitempty"`
	Confidences      []Confidence             `xml:"confidenceList>confidence"`
	Parameters       []Parameter              `xml:"parameterList>parameter"`
	Attributes       []Attribute              `xml:"attributeList>attribute"`
}

// Participant is an interactor in the context of one interaction.
type Participant struct {
	ID                       int          `xml:"id,attr"`
	Names                    *Names       `xml:"names"`
	Xref                     *Xref        `xml:"xref"`
	InteractorRef            int          `xml:"interactorRef,omitempty"`
	Interactor               *Interactor  `xml:"interactor"`
	IdentificationMethods    []*CvType    `xml:"participantIdentificationMethodList>participantIdentificationMethod"`
	BiologicalRole           *CvType      `xml:"biologicalRole"`
	ExperimentalRoles        []*CvType    `xml:"experimentalRoleList>experimentalRole"`
	ExperimentalPreparations []*CvType    `xml:"experimentalPreparationList>experimentalPreparation"`
	Features                 []*Feature   `xml:"featureList>feature"`
	HostOrganisms            []*Organism  `xml:"hostOrganismList>hostOrganism"`
	Confidences              []Confidence `xml:"confidenceList>confidence"`
	Parameters               []Parameter  `xml:"parameterList>parameter"`
	Attributes               []Attribute  `xml:"attributeList>attribute"`
}

// Feature is an annotated region of a participant.
type Feature struct {
	ID                     int         `xml:"id,attr"`
	Names                  *Names      `xml:"names"`
	Xref                   *Xref       `xml:"xref"`
	FeatureType            *CvType     `xml:"featureType"`
	FeatureDetectionMethod *CvType     `xml:"featureDetectionMethod"`
	Ranges                 []Range     `xml:"featureRangeList>featureRange"`
	Attributes             []Attribute `xml:"attributeList>attribute"`
}

// Range locates a feature. Each end is either a position or an interval.
type Range struct {
	StartStatus   *CvType   `xml:"startStatus"`
	Begin         *Position `xml:"begin"`
	BeginInterval *Interval `xml:"beginInterval"`
	EndStatus     *CvType   `xml:"endStatus"`
	End           *Position `xml:"end"`
	EndInterval   *Interval `xml:"endInterval"`
	IsLink        bool      `xml:"isLink,omitempty"`
}

// Position is a single sequence coordinate.
type Position struct {
	Position int64 `xml:"position,attr"`
}

// Interval is a fuzzy sequence coordinate.
type Interval struct {
	Begin int64 `xml:"begin,attr"`
	End   int64 `xml:"end,attr"`
}

// Confidence is a typed confidence score.
type Confidence struct {
	Unit  *CvType `xml:"unit"`
	Value string  `xml:"value"`
}

// Parameter is a kinetic or thermodynamic measurement.
type Parameter struct {
	Term          string  `xml:"term,attr"`
	TermAc        string  `xml:"termAc,attr,omitempty"`
	Unit          string  `xml:"unit,attr,omitempty"`
	UnitAc        string  `xml:"unitAc,attr,omitempty"`
	Base          int     `xml:"base,attr,omitempty"`
	Exponent      int     `xml:"exponent,attr,omitempty"`
	Factor        float64 `xml:"factor,attr"`
	Uncertainty   float64 `xml:"uncertainty,attr,omitempty"`
	ExperimentRef int     `xml:"experimentRef,omitempty"`
}
