package convert

import (
	"strings"

	"psibridge/pkg/domain"
	"psibridge/pkg/psixml"
)

// XrefConverter maps cross-references. Database and qualifier terms are
// created on demand.
type XrefConverter struct {
	s     *session
	terms *CvConverter
}

// PsiToIntact converts one reference.
func (c *XrefConverter) PsiToIntact(ref psixml.DbReference) (domain.Xref, error) {
	if strings.TrimSpace(ref.ID) == "" {
		return domain.Xref{}, c.s.failf("cross-reference to %q has no id", ref.Db)
	}
	if ref.Db == "" && ref.DbAc == "" {
		return domain.Xref{}, c.s.failf("cross-reference %q has no database", ref.ID)
	}
	db, err := c.terms.Term(domain.CvDatabase, ref.Db, ref.DbAc)
	if err != nil {
		return domain.Xref{}, err
	}
	x := domain.Xref{Database: db, PrimaryID: ref.ID, SecondaryID: ref.Secondary, DbRelease: ref.Version}
	if ref.RefType != "" || ref.RefTypeAc != "" {
		if x.Qualifier, err = c.terms.Term(domain.CvXrefQualifier, ref.RefType, ref.RefTypeAc); err != nil {
			return domain.Xref{}, err
		}
	}
	return x, nil
}

// IntactToPsi converts one cross-reference.
func (c *XrefConverter) IntactToPsi(x domain.Xref) (psixml.DbReference, error) {
	if x.Database == nil {
		return psixml.DbReference{}, c.s.failf("cross-reference %q has no database", x.PrimaryID)
	}
	ref := psixml.DbReference{
		Db:        x.Database.ShortLabel,
		DbAc:      x.Database.Identifier,
		ID:        x.PrimaryID,
		Secondary: x.SecondaryID,
		Version:   x.DbRelease,
	}
	if q := x.Qualifier; q != nil {
		ref.RefType = q.ShortLabel
		ref.RefTypeAc = q.Identifier
	}
	return ref, nil
}

// AllToIntact converts the primary and secondary references of xref.
func (c *XrefConverter) AllToIntact(xref *psixml.Xref) ([]domain.Xref, error) {
	refs := xref.All()
	if len(refs) == 0 {
		return nil, nil
	}
	out := make([]domain.Xref, 0, len(refs))
	for _, ref := range refs {
		x, err := c.PsiToIntact(ref)
		if err != nil {
			return nil, err
		}
		out = append(out, x)
	}
	return out, nil
}

// AllToPsi converts xrefs, the first becoming the primary reference.
func (c *XrefConverter) AllToPsi(xrefs []domain.Xref) (*psixml.Xref, error) {
	if len(xrefs) == 0 {
		return nil, nil
	}
	refs := make([]psixml.DbReference, 0, len(xrefs))
	for _, x := range xrefs {
		ref, err := c.IntactToPsi(x)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return psixml.NewXref(refs), nil
}

// AliasConverter maps aliases. Empty alias values are rejected in both
// directions whatever the alias type.
type AliasConverter struct {
	s     *session
	terms *CvConverter
}

// PsiToIntact converts one alias.
func (c *AliasConverter) PsiToIntact(a psixml.Alias) (domain.Alias, error) {
	name := strings.TrimSpace(a.Value)
	if name == "" {
		return domain.Alias{}, c.s.failf("alias of type %q has an empty value", a.Type)
	}
	out := domain.Alias{Name: name}
	if a.Type != "" || a.TypeAc != "" {
		t, err := c.terms.Term(domain.CvAliasType, a.Type, a.TypeAc)
		if err != nil {
			return domain.Alias{}, err
		}
		out.Type = t
	}
	return out, nil
}

// IntactToPsi converts one alias.
func (c *AliasConverter) IntactToPsi(a domain.Alias) (psixml.Alias, error) {
	var typeLabel string
	out := psixml.Alias{Value: strings.TrimSpace(a.Name)}
	if a.Type != nil {
		typeLabel = a.Type.ShortLabel
		out.Type = a.Type.ShortLabel
		out.TypeAc = a.Type.Identifier
	}
	if out.Value == "" {
		return psixml.Alias{}, c.s.failf("alias of type %q has an empty value", typeLabel)
	}
	return out, nil
}

// AnnotationConverter maps attributes to topic annotations.
type AnnotationConverter struct {
	s     *session
	terms *CvConverter
}

// PsiToIntact converts one attribute.
func (c *AnnotationConverter) PsiToIntact(a psixml.Attribute) (domain.Annotation, error) {
	topic, err := c.terms.Term(domain.CvTopic, a.Name, a.NameAc)
	if err != nil {
		return domain.Annotation{}, err
	}
	return domain.Annotation{Topic: topic, Text: strings.TrimSpace(a.Value)}, nil
}

// IntactToPsi converts one annotation. It reports false for annotations
// whose topic is excluded from PSI-MI output.
func (c *AnnotationConverter) IntactToPsi(a domain.Annotation) (psixml.Attribute, bool, error) {
	if a.Topic == nil {
		return psixml.Attribute{}, false, c.s.failf("annotation %q has no topic", a.Text)
	}
	if c.s.opts.excludes(a.Topic) {
		return psixml.Attribute{}, false, nil
	}
	name := a.Topic.ShortLabel
	if name == "" {
		name = a.Topic.Identifier
	}
	return psixml.Attribute{Name: name, NameAc: a.Topic.Identifier, Value: a.Text}, true, nil
}

// AllToIntact converts a list of attributes.
func (c *AnnotationConverter) AllToIntact(attrs []psixml.Attribute) ([]domain.Annotation, error) {
	if len(attrs) == 0 {
		return nil, nil
	}
	out := make([]domain.Annotation, 0, len(attrs))
	for _, a := range attrs {
		ann, err := c.PsiToIntact(a)
		if err != nil {
			return nil, err
		}
		out = append(out, ann)
	}
	return out, nil
}

// AllToPsi converts annotations, dropping excluded topics.
func (c *AnnotationConverter) AllToPsi(anns []domain.Annotation) ([]psixml.Attribute, error) {
	var out []psixml.Attribute
	for _, a := range anns {
		attr, ok, err := c.IntactToPsi(a)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, attr)
		}
	}
	return out, nil
}

// objectMapper copies the names, cross-references and annotations every
// curated entity carries.
type objectMapper struct {
	s           *session
	xrefs       *XrefConverter
	aliases     *AliasConverter
	annotations *AnnotationConverter
}

func (m objectMapper) toIntact(dst *domain.AnnotatedObject, names *psixml.Names, xref *psixml.Xref, attrs []psixml.Attribute) error {
	m.s.own(dst)
	if names != nil {
		dst.ShortLabel = strings.TrimSpace(names.ShortLabel)
		dst.FullName = strings.TrimSpace(names.FullName)
		for _, a := range names.Aliases {
			alias, err := m.aliases.PsiToIntact(a)
			if err != nil {
				return err
			}
			dst.Aliases = append(dst.Aliases, alias)
		}
	}
	xrefs, err := m.xrefs.AllToIntact(xref)
	if err != nil {
		return err
	}
	dst.Xrefs = xrefs
	for _, x := range xrefs {
		if x.Database.Is(domain.MIIntact) && x.Qualifier.Is(domain.MIIdentity) {
			dst.AC = x.PrimaryID
			break
		}
	}
	if dst.Annotations, err = m.annotations.AllToIntact(attrs); err != nil {
		return err
	}
	return nil
}

func (m objectMapper) toPsi(src *domain.AnnotatedObject) (*psixml.Names, *psixml.Xref, []psixml.Attribute, error) {
	var names *psixml.Names
	if src.ShortLabel != "" || src.FullName != "" || len(src.Aliases) > 0 {
		names = &psixml.Names{ShortLabel: src.ShortLabel, FullName: src.FullName}
		for _, a := range src.Aliases {
			alias, err := m.aliases.IntactToPsi(a)
			if err != nil {
				return nil, nil, nil, err
			}
			names.Aliases = append(names.Aliases, alias)
		}
	}
	refs := make([]psixml.DbReference, 0, len(src.Xrefs)+1)
	hasAC := src.AC == ""
	for _, x := range src.Xrefs {
		ref, err := m.xrefs.IntactToPsi(x)
		if err != nil {
			return nil, nil, nil, err
		}
		if ref.ID == src.AC && x.Database.Is(domain.MIIntact) {
			hasAC = true
		}
		refs = append(refs, ref)
	}
	if !hasAC {
		refs = append(refs, psixml.DbReference{
			Db: "intact", DbAc: domain.MIIntact, ID: src.AC,
			RefType: domain.LabelIdentity, RefTypeAc: domain.MIIdentity,
		})
	}
	attrs, err := m.annotations.AllToPsi(src.Annotations)
	if err != nil {
		return nil, nil, nil, err
	}
	return names, psixml.NewXref(refs), attrs, nil
}
