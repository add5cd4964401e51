package convert

import (
	"strings"

	"psibridge/pkg/domain"
	"psibridge/pkg/psixml"
)

// OrganismConverter maps organisms to biosources, one biosource per taxid,
// cell type and tissue within a pass.
type OrganismConverter struct {
	s       *session
	terms   *CvConverter
	objects objectMapper
}

func termPart(c *psixml.CvType) string {
	if c == nil {
		return "-"
	}
	if id := c.Identifier(); id != "" {
		return id
	}
	return strings.ToLower(c.ShortLabel())
}

func cvPart(c *domain.CvObject) string {
	if c == nil {
		return "-"
	}
	if c.Identifier != "" {
		return c.Identifier
	}
	return strings.ToLower(c.ShortLabel)
}

// PsiToIntact converts an organism. Nil converts to nil.
func (c *OrganismConverter) PsiToIntact(o *psixml.Organism) (*domain.BioSource, error) {
	if o == nil {
		return nil, nil
	}
	taxID := strings.TrimSpace(o.NcbiTaxID)
	if taxID == "" {
		return nil, c.s.failf("organism %q has no taxonomy id", o.Names.Label())
	}
	key := cacheKey("biosource", taxID, termPart(o.CellType), termPart(o.Tissue))
	if b, ok := cached[*domain.BioSource](c.s.cache, key); ok {
		return b, nil
	}
	b := &domain.BioSource{TaxID: taxID}
	if err := c.objects.toIntact(&b.AnnotatedObject, o.Names, nil, nil); err != nil {
		return nil, err
	}
	if b.ShortLabel == "" {
		b.ShortLabel = taxID
	}
	var err error
	if b.CellType, err = c.terms.PsiToIntact(domain.CvCellType, o.CellType); err != nil {
		return nil, err
	}
	if b.Tissue, err = c.terms.PsiToIntact(domain.CvTissue, o.Tissue); err != nil {
		return nil, err
	}
	c.s.cache.Put(key, b)
	return b, nil
}

// IntactToPsi converts a biosource. Nil converts to nil.
func (c *OrganismConverter) IntactToPsi(b *domain.BioSource) (*psixml.Organism, error) {
	if b == nil {
		return nil, nil
	}
	if b.TaxID == "" {
		return nil, c.s.failf("biosource %q has no taxonomy id", b.ShortLabel)
	}
	key := cacheKey("psi-organism", b.TaxID, cvPart(b.CellType), cvPart(b.Tissue))
	if o, ok := cached[*psixml.Organism](c.s.cache, key); ok {
		return o, nil
	}
	names, _, _, err := c.objects.toPsi(&domain.AnnotatedObject{
		ShortLabel: b.ShortLabel,
		FullName:   b.FullName,
		Aliases:    b.Aliases,
	})
	if err != nil {
		return nil, err
	}
	o := &psixml.Organism{NcbiTaxID: b.TaxID, Names: names}
	if o.CellType, err = c.terms.IntactToPsi(b.CellType); err != nil {
		return nil, err
	}
	if o.Tissue, err = c.terms.IntactToPsi(b.Tissue); err != nil {
		return nil, err
	}
	c.s.cache.Put(key, o)
	return o, nil
}
