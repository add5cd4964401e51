package convert

import (
	"strings"

	"psibridge/pkg/domain"
	"psibridge/pkg/psixml"
)

// Source attribute names carried on the institution itself.
const (
	attrPostalAddress = "postaladdress"
	attrURL           = "url"
	miURL             = "MI:0614"
)

// UnknownInstitution labels the owner of entries without a source block.
const UnknownInstitution = "unknown"

// InstitutionConverter maps the entry source block to the owning institution.
type InstitutionConverter struct {
	s       *session
	objects objectMapper
}

// PsiToIntact converts a source block. A missing block yields an
// institution labelled "unknown".
func (c *InstitutionConverter) PsiToIntact(src *psixml.Source) (*domain.Institution, error) {
	defer c.s.enter("source")()
	inst := &domain.Institution{}
	if src == nil {
		inst.ShortLabel = UnknownInstitution
		return inst, nil
	}
	var rest []psixml.Attribute
	for _, a := range src.Attributes {
		switch {
		case strings.EqualFold(a.Name, attrPostalAddress):
			inst.PostalAddress = strings.TrimSpace(a.Value)
		case strings.EqualFold(a.Name, attrURL) || a.NameAc == miURL:
			inst.URL = strings.TrimSpace(a.Value)
		default:
			rest = append(rest, a)
		}
	}
	if err := c.objects.toIntact(&inst.AnnotatedObject, src.Names, src.Xref, rest); err != nil {
		return nil, err
	}
	if inst.ShortLabel == "" {
		inst.ShortLabel = UnknownInstitution
	}
	return inst, nil
}

// IntactToPsi converts the owning institution. releaseDate is written in
// ISO date form when non-empty.
func (c *InstitutionConverter) IntactToPsi(inst *domain.Institution, releaseDate string) (*psixml.Source, error) {
	defer c.s.enter("source")()
	out := &psixml.Source{ReleaseDate: releaseDate}
	if inst == nil {
		out.Names = &psixml.Names{ShortLabel: UnknownInstitution}
		return out, nil
	}
	var err error
	if out.Names, out.Xref, out.Attributes, err = c.objects.toPsi(&inst.AnnotatedObject); err != nil {
		return nil, err
	}
	if inst.PostalAddress != "" {
		out.Attributes = append(out.Attributes, psixml.Attribute{Name: attrPostalAddress, Value: inst.PostalAddress})
	}
	if inst.URL != "" {
		out.Attributes = append(out.Attributes, psixml.Attribute{Name: attrURL, NameAc: miURL, Value: inst.URL})
	}
	return out, nil
}
