package convert

import (
	"psibridge/pkg/domain"
	"psibridge/pkg/psixml"
)

// ParticipantConverter maps participants to components.
type ParticipantConverter struct {
	s           *session
	terms       *CvConverter
	interactors *InteractorConverter
	features    *FeatureConverter
	organisms   *OrganismConverter
	confidences *ConfidenceConverter
	parameters  *ParameterConverter
	objects     objectMapper
}

func (c *ParticipantConverter) unspecifiedRole(kind domain.CvKind) (*domain.CvObject, error) {
	return c.terms.Term(kind, domain.LabelUnspecifiedRole, domain.MIUnspecifiedRole)
}

func (c *ParticipantConverter) termsToIntact(kind domain.CvKind, src []*psixml.CvType) ([]*domain.CvObject, error) {
	var out []*domain.CvObject
	for _, cv := range src {
		t, err := c.terms.PsiToIntact(kind, cv)
		if err != nil {
			return nil, err
		}
		if t != nil {
			out = append(out, t)
		}
	}
	return out, nil
}

func (c *ParticipantConverter) termsToPsi(src []*domain.CvObject) ([]*psixml.CvType, error) {
	var out []*psixml.CvType
	for _, t := range src {
		cv, err := c.terms.IntactToPsi(t)
		if err != nil {
			return nil, err
		}
		if cv != nil {
			out = append(out, cv)
		}
	}
	return out, nil
}

// PsiToIntact converts a participant. Missing experimental or biological
// roles become "unspecified role"; the first host organism becomes the
// expression system.
func (c *ParticipantConverter) PsiToIntact(p *psixml.Participant) (*domain.Component, error) {
	defer c.s.enter("participant[%d]", p.ID)()

	it := p.Interactor
	if p.InteractorRef != 0 {
		var ok bool
		if it, ok = c.s.interactors[p.InteractorRef]; !ok {
			return nil, c.s.failf("unknown interactorRef %d", p.InteractorRef)
		}
	}
	if it == nil {
		return nil, c.s.failf("participant has no interactor")
	}
	interactor, err := c.interactors.PsiToIntact(it)
	if err != nil {
		return nil, err
	}
	out := &domain.Component{Interactor: interactor}
	if err := c.objects.toIntact(&out.AnnotatedObject, p.Names, p.Xref, p.Attributes); err != nil {
		return nil, err
	}

	if out.ExperimentalRoles, err = c.termsToIntact(domain.CvExperimentalRole, p.ExperimentalRoles); err != nil {
		return nil, err
	}
	if len(out.ExperimentalRoles) == 0 {
		role, err := c.unspecifiedRole(domain.CvExperimentalRole)
		if err != nil {
			return nil, err
		}
		out.ExperimentalRoles = []*domain.CvObject{role}
	}
	if out.BiologicalRole, err = c.terms.PsiToIntact(domain.CvBiologicalRole, p.BiologicalRole); err != nil {
		return nil, err
	}
	if out.BiologicalRole == nil {
		if out.BiologicalRole, err = c.unspecifiedRole(domain.CvBiologicalRole); err != nil {
			return nil, err
		}
	}
	if out.IdentificationMethods, err = c.termsToIntact(domain.CvIdentification, p.IdentificationMethods); err != nil {
		return nil, err
	}
	if out.ExperimentalPreps, err = c.termsToIntact(domain.CvExperimentalPrep, p.ExperimentalPreparations); err != nil {
		return nil, err
	}
	if len(p.HostOrganisms) > 0 {
		if out.ExpressedIn, err = c.organisms.PsiToIntact(p.HostOrganisms[0]); err != nil {
			return nil, err
		}
	}
	for _, f := range p.Features {
		if f == nil {
			continue
		}
		feature, err := c.features.PsiToIntact(f)
		if err != nil {
			return nil, err
		}
		out.Features = append(out.Features, feature)
	}
	if out.Confidences, err = c.confidences.AllToIntact(p.Confidences); err != nil {
		return nil, err
	}
	if out.Parameters, err = c.parameters.AllToIntact(p.Parameters); err != nil {
		return nil, err
	}
	return out, nil
}

// IntactToPsi converts a component. In compact mode the interactor is
// referenced by id instead of being written inline.
func (c *ParticipantConverter) IntactToPsi(comp *domain.Component) (*psixml.Participant, error) {
	label := ""
	if comp.Interactor != nil {
		label = comp.Interactor.ShortLabel
	}
	defer c.s.enter("component[%s]", label)()

	out := &psixml.Participant{ID: c.s.id()}
	it, err := c.interactors.IntactToPsi(comp.Interactor)
	if err != nil {
		return nil, err
	}
	if c.s.opts.CompactXML {
		out.InteractorRef = it.ID
	} else {
		out.Interactor = it
	}
	if out.Names, out.Xref, out.Attributes, err = c.objects.toPsi(&comp.AnnotatedObject); err != nil {
		return nil, err
	}
	if out.ExperimentalRoles, err = c.termsToPsi(comp.ExperimentalRoles); err != nil {
		return nil, err
	}
	if len(out.ExperimentalRoles) == 0 {
		out.ExperimentalRoles = []*psixml.CvType{psixml.NewCvType(domain.LabelUnspecifiedRole, domain.MIUnspecifiedRole)}
	}
	if out.BiologicalRole, err = c.terms.IntactToPsi(comp.BiologicalRole); err != nil {
		return nil, err
	}
	if out.IdentificationMethods, err = c.termsToPsi(comp.IdentificationMethods); err != nil {
		return nil, err
	}
	if out.ExperimentalPreparations, err = c.termsToPsi(comp.ExperimentalPreps); err != nil {
		return nil, err
	}
	if comp.ExpressedIn != nil {
		host, err := c.organisms.IntactToPsi(comp.ExpressedIn)
		if err != nil {
			return nil, err
		}
		out.HostOrganisms = []*psixml.Organism{host}
	}
	for _, f := range comp.Features {
		if f == nil {
			continue
		}
		feature, err := c.features.IntactToPsi(f)
		if err != nil {
			return nil, err
		}
		out.Features = append(out.Features, feature)
	}
	if out.Confidences, err = c.confidences.AllToPsi(comp.Confidences); err != nil {
		return nil, err
	}
	if out.Parameters, err = c.parameters.AllToPsi(comp.Parameters); err != nil {
		return nil, err
	}
	return out, nil
}
