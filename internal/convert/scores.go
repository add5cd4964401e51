package convert

import (
	"strings"

	"psibridge/pkg/domain"
	"psibridge/pkg/psixml"
)

// ConfidenceConverter maps confidence scores.
type ConfidenceConverter struct {
	s     *session
	terms *CvConverter
}

// PsiToIntact converts one confidence. The unit names the confidence type.
func (c *ConfidenceConverter) PsiToIntact(conf psixml.Confidence) (domain.Confidence, error) {
	if conf.Unit == nil {
		return domain.Confidence{}, c.s.failf("confidence %q has no unit", conf.Value)
	}
	value := strings.TrimSpace(conf.Value)
	if value == "" {
		return domain.Confidence{}, c.s.failf("confidence %q has no value", conf.Unit.ShortLabel())
	}
	t, err := c.terms.PsiToIntact(domain.CvConfidenceType, conf.Unit)
	if err != nil {
		return domain.Confidence{}, err
	}
	return domain.Confidence{Type: t, Value: value}, nil
}

// IntactToPsi converts one confidence.
func (c *ConfidenceConverter) IntactToPsi(conf domain.Confidence) (psixml.Confidence, error) {
	if conf.Type == nil {
		return psixml.Confidence{}, c.s.failf("confidence %q has no type", conf.Value)
	}
	unit, err := c.terms.IntactToPsi(conf.Type)
	if err != nil {
		return psixml.Confidence{}, err
	}
	return psixml.Confidence{Unit: unit, Value: conf.Value}, nil
}

// AllToIntact converts a list of confidences.
func (c *ConfidenceConverter) AllToIntact(confs []psixml.Confidence) ([]domain.Confidence, error) {
	if len(confs) == 0 {
		return nil, nil
	}
	out := make([]domain.Confidence, 0, len(confs))
	for _, conf := range confs {
		v, err := c.PsiToIntact(conf)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// AllToPsi converts a list of confidences.
func (c *ConfidenceConverter) AllToPsi(confs []domain.Confidence) ([]psixml.Confidence, error) {
	if len(confs) == 0 {
		return nil, nil
	}
	out := make([]psixml.Confidence, 0, len(confs))
	for _, conf := range confs {
		v, err := c.IntactToPsi(conf)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ParameterConverter maps kinetic and thermodynamic parameters.
type ParameterConverter struct {
	s     *session
	terms *CvConverter
}

const defaultParameterBase = 10

// PsiToIntact converts one parameter. A missing base defaults to 10.
func (c *ParameterConverter) PsiToIntact(p psixml.Parameter) (domain.Parameter, error) {
	t, err := c.terms.Term(domain.CvParameterType, p.Term, p.TermAc)
	if err != nil {
		return domain.Parameter{}, err
	}
	out := domain.Parameter{
		Type:        t,
		Factor:      p.Factor,
		Base:        p.Base,
		Exponent:    p.Exponent,
		Uncertainty: p.Uncertainty,
	}
	if out.Base == 0 {
		out.Base = defaultParameterBase
	}
	if p.Unit != "" || p.UnitAc != "" {
		if out.Unit, err = c.terms.Term(domain.CvParameterUnit, p.Unit, p.UnitAc); err != nil {
			return domain.Parameter{}, err
		}
	}
	return out, nil
}

// IntactToPsi converts one parameter.
func (c *ParameterConverter) IntactToPsi(p domain.Parameter) (psixml.Parameter, error) {
	if p.Type == nil {
		return psixml.Parameter{}, c.s.failf("parameter has no type")
	}
	out := psixml.Parameter{
		Term:        p.Type.ShortLabel,
		TermAc:      p.Type.Identifier,
		Base:        p.Base,
		Exponent:    p.Exponent,
		Factor:      p.Factor,
		Uncertainty: p.Uncertainty,
	}
	if out.Base == 0 {
		out.Base = defaultParameterBase
	}
	if u := p.Unit; u != nil {
		out.Unit = u.ShortLabel
		out.UnitAc = u.Identifier
	}
	return out, nil
}

// AllToIntact converts a list of parameters.
func (c *ParameterConverter) AllToIntact(ps []psixml.Parameter) ([]domain.Parameter, error) {
	if len(ps) == 0 {
		return nil, nil
	}
	out := make([]domain.Parameter, 0, len(ps))
	for _, p := range ps {
		v, err := c.PsiToIntact(p)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// AllToPsi converts a list of parameters.
func (c *ParameterConverter) AllToPsi(ps []domain.Parameter) ([]psixml.Parameter, error) {
	if len(ps) == 0 {
		return nil, nil
	}
	out := make([]psixml.Parameter, 0, len(ps))
	for _, p := range ps {
		v, err := c.IntactToPsi(p)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
