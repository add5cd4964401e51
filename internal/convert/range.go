package convert

import (
	"psibridge/pkg/domain"
	"psibridge/pkg/psixml"
)

// RangeConverter maps feature ranges. A range end written back to PSI-MI is
// an interval only when its span is positive, otherwise a single position.
type RangeConverter struct {
	s     *session
	terms *CvConverter
}

func bounds(p *psixml.Position, iv *psixml.Interval) (int64, int64) {
	switch {
	case iv != nil:
		return iv.Begin, iv.End
	case p != nil:
		return p.Position, p.Position
	default:
		return 0, 0
	}
}

func positions(start, end int64) (*psixml.Position, *psixml.Interval) {
	if end-start > 0 {
		return nil, &psixml.Interval{Begin: start, End: end}
	}
	return &psixml.Position{Position: start}, nil
}

// PsiToIntact converts one range. A missing status defaults to certain for
// a positioned end and undetermined otherwise.
func (c *RangeConverter) PsiToIntact(r psixml.Range) (domain.Range, error) {
	var out domain.Range
	out.FromIntervalStart, out.FromIntervalEnd = bounds(r.Begin, r.BeginInterval)
	out.ToIntervalStart, out.ToIntervalEnd = bounds(r.End, r.EndInterval)
	if out.FromIntervalStart > out.FromIntervalEnd || out.ToIntervalStart > out.ToIntervalEnd {
		return domain.Range{}, c.s.failf("range interval begins after it ends")
	}
	var err error
	if out.FromFuzzyType, err = c.status(r.StartStatus, out.FromIntervalStart); err != nil {
		return domain.Range{}, err
	}
	if out.ToFuzzyType, err = c.status(r.EndStatus, out.ToIntervalStart); err != nil {
		return domain.Range{}, err
	}
	out.Link = r.IsLink
	return out, nil
}

func (c *RangeConverter) status(cv *psixml.CvType, position int64) (*domain.CvObject, error) {
	if cv != nil {
		return c.terms.PsiToIntact(domain.CvFuzzyType, cv)
	}
	if position > 0 {
		return c.terms.Term(domain.CvFuzzyType, domain.LabelCertain, domain.MIFuzzyCertain)
	}
	return c.terms.Term(domain.CvFuzzyType, domain.LabelUndetermined, domain.MIFuzzyUndetermined)
}

// IntactToPsi converts one range.
func (c *RangeConverter) IntactToPsi(r domain.Range) (psixml.Range, error) {
	var out psixml.Range
	out.Begin, out.BeginInterval = positions(r.FromIntervalStart, r.FromIntervalEnd)
	out.End, out.EndInterval = positions(r.ToIntervalStart, r.ToIntervalEnd)
	var err error
	if out.StartStatus, err = c.psiStatus(r.FromFuzzyType, r.FromIntervalStart); err != nil {
		return psixml.Range{}, err
	}
	if out.EndStatus, err = c.psiStatus(r.ToFuzzyType, r.ToIntervalStart); err != nil {
		return psixml.Range{}, err
	}
	out.IsLink = r.Link
	return out, nil
}

func (c *RangeConverter) psiStatus(t *domain.CvObject, position int64) (*psixml.CvType, error) {
	if t != nil {
		return c.terms.IntactToPsi(t)
	}
	if position > 0 {
		return psixml.NewCvType(domain.LabelCertain, domain.MIFuzzyCertain), nil
	}
	return psixml.NewCvType(domain.LabelUndetermined, domain.MIFuzzyUndetermined), nil
}
