package convert

import (
	"strings"

	"psibridge/pkg/domain"
	"psibridge/pkg/psixml"
)

// CvConverter maps controlled vocabulary terms. Terms are deduplicated by
// kind and identifier within a pass.
type CvConverter struct {
	s       *session
	xrefs   *XrefConverter
	aliases *AliasConverter
}

func termKey(kind domain.CvKind, label, identifier string) string {
	if identifier != "" {
		return cacheKey("cv", string(kind), identifier)
	}
	return cacheKey("cv", string(kind), "label", strings.ToLower(label))
}

// Term returns the term of kind with the given identifier, creating a bare
// term on first use. Without an identifier the label is the key.
func (c *CvConverter) Term(kind domain.CvKind, label, identifier string) (*domain.CvObject, error) {
	label = strings.TrimSpace(label)
	identifier = strings.TrimSpace(identifier)
	if label == "" && identifier == "" {
		return nil, c.s.failf("%s term has neither label nor identifier", kind)
	}
	if label == "" {
		label = identifier
	}
	key := termKey(kind, label, identifier)
	if t, ok := cached[*domain.CvObject](c.s.cache, key); ok {
		return t, nil
	}
	t := &domain.CvObject{Kind: kind, Identifier: identifier}
	t.ShortLabel = label
	c.s.own(&t.AnnotatedObject)
	c.s.cache.Put(key, t)
	return t, nil
}

// PsiToIntact converts a term reference. Nil converts to nil. The first full
// description of a term fills in names and cross-references of a term that
// was created bare by Term.
func (c *CvConverter) PsiToIntact(kind domain.CvKind, src *psixml.CvType) (*domain.CvObject, error) {
	if src == nil {
		return nil, nil
	}
	id := src.Identifier()
	t, err := c.Term(kind, src.ShortLabel(), id)
	if err != nil {
		return nil, err
	}
	populated := "populated:" + termKey(kind, t.ShortLabel, id)
	if _, done := c.s.cache.Get(populated); done {
		return t, nil
	}
	c.s.cache.Put(populated, true)

	// A term first created from a bare identifier takes the label of its
	// first full description.
	if label := src.ShortLabel(); label != "" && id != "" && t.ShortLabel == id {
		t.ShortLabel = label
	}

	if src.Names != nil {
		if t.FullName == "" {
			t.FullName = src.Names.FullName
		}
		for _, a := range src.Names.Aliases {
			alias, err := c.aliases.PsiToIntact(a)
			if err != nil {
				return nil, err
			}
			t.Aliases = append(t.Aliases, alias)
		}
	}
	skipped := false
	for _, ref := range src.Xref.All() {
		if !skipped && id != "" && ref.ID == id {
			skipped = true
			continue
		}
		x, err := c.xrefs.PsiToIntact(ref)
		if err != nil {
			return nil, err
		}
		t.Xrefs = append(t.Xrefs, x)
	}
	return t, nil
}

// IntactToPsi converts a term. Nil converts to nil. The identifier is
// written as an identity reference ahead of the term's other xrefs.
func (c *CvConverter) IntactToPsi(t *domain.CvObject) (*psixml.CvType, error) {
	if t == nil {
		return nil, nil
	}
	natural := t.Identifier
	if natural == "" {
		natural = "label:" + strings.ToLower(t.ShortLabel)
	}
	key := cacheKey("psi-cv", string(t.Kind), natural)
	if out, ok := cached[*psixml.CvType](c.s.cache, key); ok {
		return out, nil
	}
	if t.ShortLabel == "" && t.Identifier == "" {
		return nil, c.s.failf("%s term has neither label nor identifier", t.Kind)
	}
	out := &psixml.CvType{Names: &psixml.Names{ShortLabel: t.ShortLabel, FullName: t.FullName}}
	if out.Names.ShortLabel == "" {
		out.Names.ShortLabel = t.Identifier
	}
	for _, a := range t.Aliases {
		alias, err := c.aliases.IntactToPsi(a)
		if err != nil {
			return nil, err
		}
		out.Names.Aliases = append(out.Names.Aliases, alias)
	}
	var refs []psixml.DbReference
	if t.Identifier != "" {
		db, dbAc := databaseOf(t.Identifier)
		refs = append(refs, psixml.DbReference{
			Db: db, DbAc: dbAc, ID: t.Identifier,
			RefType: domain.LabelIdentity, RefTypeAc: domain.MIIdentity,
		})
	}
	for _, x := range t.Xrefs {
		ref, err := c.xrefs.IntactToPsi(x)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	out.Xref = psixml.NewXref(refs)
	c.s.cache.Put(key, out)
	return out, nil
}

// databaseOf names the ontology an identifier belongs to.
func databaseOf(identifier string) (string, string) {
	prefix, _, ok := strings.Cut(identifier, ":")
	if !ok {
		return "intact", domain.MIIntact
	}
	switch strings.ToUpper(prefix) {
	case "MI":
		return domain.LabelPsiMi, domain.MIPsiMi
	case "MOD":
		return "psi-mod", "MI:0897"
	case "GO":
		return "go", "MI:0448"
	case "EBI":
		return "intact", domain.MIIntact
	default:
		return strings.ToLower(prefix), ""
	}
}
