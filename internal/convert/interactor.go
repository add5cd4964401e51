package convert

import (
	"fmt"
	"strconv"
	"strings"

	"psibridge/pkg/domain"
	"psibridge/pkg/psixml"
)

// psiNodeKey keys a PSI-MI node by its id, or by address when it has none.
func psiNodeKey(kind string, id int, node any) string {
	if id != 0 {
		return cacheKey(kind, "id", strconv.Itoa(id))
	}
	return cacheKey(kind, "ptr", fmt.Sprintf("%p", node))
}

// InteractorConverter maps interactors. Interactors are shared by id when
// reading and by short label and type when writing.
type InteractorConverter struct {
	s         *session
	terms     *CvConverter
	organisms *OrganismConverter
	objects   objectMapper
}

// PsiToIntact converts an interactor. A missing interactor type becomes
// "unknown participant".
func (c *InteractorConverter) PsiToIntact(it *psixml.Interactor) (*domain.Interactor, error) {
	if it == nil {
		return nil, c.s.failf("missing interactor")
	}
	key := psiNodeKey("interactor", it.ID, it)
	if out, ok := cached[*domain.Interactor](c.s.cache, key); ok {
		return out, nil
	}
	defer c.s.enter("interactor[%d]", it.ID)()

	out := &domain.Interactor{Sequence: strings.Join(strings.Fields(it.Sequence), "")}
	if err := c.objects.toIntact(&out.AnnotatedObject, it.Names, it.Xref, it.Attributes); err != nil {
		return nil, err
	}
	if out.ShortLabel == "" {
		out.ShortLabel = fallbackLabel(it.Xref, "interactor", it.ID)
	}
	var err error
	if out.Type, err = c.terms.PsiToIntact(domain.CvInteractorType, it.InteractorType); err != nil {
		return nil, err
	}
	if out.Type == nil {
		if out.Type, err = c.terms.Term(domain.CvInteractorType, domain.LabelUnknownParticipant, domain.MIUnknownParticipant); err != nil {
			return nil, err
		}
	}
	if out.BioSource, err = c.organisms.PsiToIntact(it.Organism); err != nil {
		return nil, err
	}
	c.s.cache.Put(key, out)
	return out, nil
}

// IntactToPsi converts an interactor, assigning it a fresh id on first use.
func (c *InteractorConverter) IntactToPsi(i *domain.Interactor) (*psixml.Interactor, error) {
	if i == nil {
		return nil, c.s.failf("missing interactor")
	}
	key := cacheKey("psi-interactor", i.Identity().String())
	srcKey := cacheKey("psi-interactor-src", i.Identity().String())
	if out, ok := cached[*psixml.Interactor](c.s.cache, key); ok {
		if first, ok := cached[*domain.Interactor](c.s.cache, srcKey); ok && first != i {
			if conflicting(first.AC, i.AC) || conflicting(first.UniprotAC(), i.UniprotAC()) {
				defer c.s.enter("interactor[%s]", i.ShortLabel)()
				return nil, c.s.failf("interactors %s and %s share label %q",
					describeInteractor(first), describeInteractor(i), i.ShortLabel)
			}
		}
		return out, nil
	}
	defer c.s.enter("interactor[%s]", i.ShortLabel)()

	out := &psixml.Interactor{ID: c.s.id(), Sequence: i.Sequence}
	var err error
	if out.Names, out.Xref, out.Attributes, err = c.objects.toPsi(&i.AnnotatedObject); err != nil {
		return nil, err
	}
	if out.InteractorType, err = c.terms.IntactToPsi(i.Type); err != nil {
		return nil, err
	}
	if out.Organism, err = c.organisms.IntactToPsi(i.BioSource); err != nil {
		return nil, err
	}
	c.s.cache.Put(key, out)
	c.s.cache.Put(srcKey, i)
	return out, nil
}

func describeInteractor(i *domain.Interactor) string {
	if ac := i.UniprotAC(); ac != "" {
		return ac
	}
	if i.AC != "" {
		return i.AC
	}
	return fmt.Sprintf("%p", i)
}

// conflicting reports whether two accessions are both set and differ.
func conflicting(a, b string) bool {
	return a != "" && b != "" && a != b
}

// fallbackLabel derives a short label from the primary reference, or from
// the kind and id when there is none.
func fallbackLabel(xref *psixml.Xref, kind string, id int) string {
	if xref != nil && xref.PrimaryRef != nil && xref.PrimaryRef.ID != "" {
		return strings.ToLower(xref.PrimaryRef.ID)
	}
	return kind + "-" + strconv.Itoa(id)
}

// FeatureConverter maps participant features.
type FeatureConverter struct {
	s       *session
	terms   *CvConverter
	ranges  *RangeConverter
	objects objectMapper
}

// PsiToIntact converts one feature.
func (c *FeatureConverter) PsiToIntact(f *psixml.Feature) (*domain.Feature, error) {
	defer c.s.enter("feature[%d]", f.ID)()
	out := &domain.Feature{}
	if err := c.objects.toIntact(&out.AnnotatedObject, f.Names, f.Xref, f.Attributes); err != nil {
		return nil, err
	}
	var err error
	if out.Type, err = c.terms.PsiToIntact(domain.CvFeatureType, f.FeatureType); err != nil {
		return nil, err
	}
	if out.DetectionMethod, err = c.terms.PsiToIntact(domain.CvFeatureDetection, f.FeatureDetectionMethod); err != nil {
		return nil, err
	}
	for i, r := range f.Ranges {
		pop := c.s.enter("range[%d]", i)
		rng, err := c.ranges.PsiToIntact(r)
		pop()
		if err != nil {
			return nil, err
		}
		out.Ranges = append(out.Ranges, rng)
	}
	return out, nil
}

// IntactToPsi converts one feature.
func (c *FeatureConverter) IntactToPsi(f *domain.Feature) (*psixml.Feature, error) {
	defer c.s.enter("feature[%s]", f.ShortLabel)()
	out := &psixml.Feature{ID: c.s.id()}
	var err error
	if out.Names, out.Xref, out.Attributes, err = c.objects.toPsi(&f.AnnotatedObject); err != nil {
		return nil, err
	}
	if out.FeatureType, err = c.terms.IntactToPsi(f.Type); err != nil {
		return nil, err
	}
	if out.FeatureDetectionMethod, err = c.terms.IntactToPsi(f.DetectionMethod); err != nil {
		return nil, err
	}
	for _, r := range f.Ranges {
		rng, err := c.ranges.IntactToPsi(r)
		if err != nil {
			return nil, err
		}
		out.Ranges = append(out.Ranges, rng)
	}
	return out, nil
}
