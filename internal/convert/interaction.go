package convert

import (
	"psibridge/pkg/domain"
	"psibridge/pkg/psixml"
)

// InteractionConverter maps interactions.
type InteractionConverter struct {
	s            *session
	terms        *CvConverter
	experiments  *ExperimentConverter
	participants *ParticipantConverter
	confidences  *ConfidenceConverter
	parameters   *ParameterConverter
	objects      objectMapper
}

// PsiToIntact converts an interaction. Only the first interaction type is
// kept, and the interactor type of the first participant becomes the
// interaction's interactor type.
func (c *InteractionConverter) PsiToIntact(in *psixml.Interaction) (*domain.Interaction, error) {
	defer c.s.enter("interaction[%d]", in.ID)()

	out := &domain.Interaction{Negative: in.Negative, IMExID: in.ImexID}
	if err := c.objects.toIntact(&out.AnnotatedObject, in.Names, in.Xref, in.Attributes); err != nil {
		return nil, err
	}
	if out.ShortLabel == "" {
		out.ShortLabel = fallbackLabel(nil, "interaction", in.ID)
	}

	for _, ref := range in.ExperimentRefs {
		ex, ok := c.s.experiments[ref]
		if !ok {
			return nil, c.s.failf("unknown experimentRef %d", ref)
		}
		converted, err := c.experiments.PsiToIntact(ex)
		if err != nil {
			return nil, err
		}
		out.Experiments = appendExperiment(out.Experiments, converted)
	}
	for _, ex := range in.Experiments {
		if ex == nil {
			continue
		}
		converted, err := c.experiments.PsiToIntact(ex)
		if err != nil {
			return nil, err
		}
		out.Experiments = appendExperiment(out.Experiments, converted)
	}
	if len(out.Experiments) == 0 {
		return nil, c.s.failf("interaction has no experiment")
	}

	for _, p := range in.Participants {
		if p == nil {
			continue
		}
		comp, err := c.participants.PsiToIntact(p)
		if err != nil {
			return nil, err
		}
		out.Components = append(out.Components, comp)
	}
	if len(out.Components) == 0 {
		return nil, c.s.failf("interaction has no participant")
	}

	var err error
	if len(in.InteractionTypes) > 0 {
		if out.Type, err = c.terms.PsiToIntact(domain.CvInteractionType, in.InteractionTypes[0]); err != nil {
			return nil, err
		}
	}
	out.InteractorType = out.Components[0].Interactor.Type

	if out.Confidences, err = c.confidences.AllToIntact(in.Confidences); err != nil {
		return nil, err
	}
	if out.Parameters, err = c.parameters.AllToIntact(in.Parameters); err != nil {
		return nil, err
	}
	return out, nil
}

func appendExperiment(list []*domain.Experiment, ex *domain.Experiment) []*domain.Experiment {
	for _, existing := range list {
		if existing == ex {
			return list
		}
	}
	return append(list, ex)
}

// IntactToPsi converts an interaction. In compact mode experiments are
// referenced by id instead of being written inline.
func (c *InteractionConverter) IntactToPsi(in *domain.Interaction) (*psixml.Interaction, error) {
	defer c.s.enter("interaction[%s]", in.ShortLabel)()

	out := &psixml.Interaction{ID: c.s.id(), ImexID: in.IMExID, Negative: in.Negative}
	var err error
	if out.Names, out.Xref, out.Attributes, err = c.objects.toPsi(&in.AnnotatedObject); err != nil {
		return nil, err
	}
	for _, ex := range in.Experiments {
		if ex == nil {
			continue
		}
		desc, err := c.experiments.IntactToPsi(ex)
		if err != nil {
			return nil, err
		}
		if c.s.opts.CompactXML {
			out.ExperimentRefs = append(out.ExperimentRefs, desc.ID)
		} else {
			out.Experiments = append(out.Experiments, desc)
		}
	}
	if len(out.ExperimentRefs) == 0 && len(out.Experiments) == 0 {
		return nil, c.s.failf("interaction has no experiment")
	}
	for _, comp := range in.Components {
		if comp == nil {
			continue
		}
		p, err := c.participants.IntactToPsi(comp)
		if err != nil {
			return nil, err
		}
		out.Participants = append(out.Participants, p)
	}
	if in.Type != nil {
		t, err := c.terms.IntactToPsi(in.Type)
		if err != nil {
			return nil, err
		}
		out.InteractionTypes = []*psixml.CvType{t}
	}
	if out.Confidences, err = c.confidences.AllToPsi(in.Confidences); err != nil {
		return nil, err
	}
	if out.Parameters, err = c.parameters.AllToPsi(in.Parameters); err != nil {
		return nil, err
	}
	return out, nil
}
