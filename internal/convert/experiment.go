package convert

import (
	"strings"

	"psibridge/pkg/domain"
	"psibridge/pkg/psixml"
)

// ExperimentConverter maps experiment descriptions. Publications are shared
// by PubMed id within a pass.
type ExperimentConverter struct {
	s           *session
	terms       *CvConverter
	organisms   *OrganismConverter
	confidences *ConfidenceConverter
	xrefs       *XrefConverter
	annotations *AnnotationConverter
	objects     objectMapper
}

// PsiToIntact converts an experiment description. Only the first host
// organism is kept.
func (c *ExperimentConverter) PsiToIntact(ex *psixml.ExperimentDescription) (*domain.Experiment, error) {
	if ex == nil {
		return nil, c.s.failf("missing experiment description")
	}
	key := psiNodeKey("experiment", ex.ID, ex)
	if out, ok := cached[*domain.Experiment](c.s.cache, key); ok {
		return out, nil
	}
	defer c.s.enter("experiment[%d]", ex.ID)()

	out := &domain.Experiment{}
	if err := c.objects.toIntact(&out.AnnotatedObject, ex.Names, ex.Xref, ex.Attributes); err != nil {
		return nil, err
	}
	if out.ShortLabel == "" {
		out.ShortLabel = fallbackLabel(nil, "experiment", ex.ID)
	}
	var err error
	if len(ex.HostOrganisms) > 0 {
		if out.HostOrganism, err = c.organisms.PsiToIntact(ex.HostOrganisms[0]); err != nil {
			return nil, err
		}
	}
	if out.DetectionMethod, err = c.terms.PsiToIntact(domain.CvInteractionDetection, ex.InteractionDetectionMethod); err != nil {
		return nil, err
	}
	if out.IdentificationMethod, err = c.terms.PsiToIntact(domain.CvIdentification, ex.ParticipantIdentificationMethod); err != nil {
		return nil, err
	}
	if out.FeatureDetectionMethod, err = c.terms.PsiToIntact(domain.CvFeatureDetection, ex.FeatureDetectionMethod); err != nil {
		return nil, err
	}
	if out.Publication, err = c.publication(ex.Bibref); err != nil {
		return nil, err
	}
	if out.Confidences, err = c.confidences.AllToIntact(ex.Confidences); err != nil {
		return nil, err
	}
	c.s.cache.Put(key, out)
	return out, nil
}

func (c *ExperimentConverter) publication(b *psixml.Bibref) (*domain.Publication, error) {
	if b == nil || (b.Xref == nil && len(b.Attributes) == 0) {
		return nil, nil
	}
	xrefs, err := c.xrefs.AllToIntact(b.Xref)
	if err != nil {
		return nil, err
	}
	label := ""
	for _, x := range xrefs {
		if x.Database.Is(domain.MIPubmed) || strings.EqualFold(x.Database.ShortLabel, "pubmed") {
			label = x.PrimaryID
			break
		}
	}
	if label == "" && len(xrefs) > 0 {
		label = xrefs[0].PrimaryID
	}
	if label == "" {
		label = "unassigned"
	}
	key := cacheKey("publication", label)
	if pub, ok := cached[*domain.Publication](c.s.cache, key); ok {
		return pub, nil
	}
	pub := &domain.Publication{}
	c.s.own(&pub.AnnotatedObject)
	pub.ShortLabel = label
	pub.Xrefs = xrefs
	if pub.Annotations, err = c.annotations.AllToIntact(b.Attributes); err != nil {
		return nil, err
	}
	c.s.cache.Put(key, pub)
	return pub, nil
}

// IntactToPsi converts an experiment, assigning it a fresh id on first use.
func (c *ExperimentConverter) IntactToPsi(ex *domain.Experiment) (*psixml.ExperimentDescription, error) {
	if ex == nil {
		return nil, c.s.failf("missing experiment")
	}
	key := cacheKey("psi-experiment", ex.Identity().String())
	srcKey := cacheKey("psi-experiment-src", ex.Identity().String())
	if out, ok := cached[*psixml.ExperimentDescription](c.s.cache, key); ok {
		if first, ok := cached[*domain.Experiment](c.s.cache, srcKey); ok && first != ex {
			if conflicting(first.AC, ex.AC) || conflicting(publicationLabel(first), publicationLabel(ex)) {
				defer c.s.enter("experiment[%s]", ex.ShortLabel)()
				return nil, c.s.failf("distinct experiments share label %q", ex.ShortLabel)
			}
		}
		return out, nil
	}
	defer c.s.enter("experiment[%s]", ex.ShortLabel)()

	out := &psixml.ExperimentDescription{ID: c.s.id()}
	var err error
	if out.Names, out.Xref, out.Attributes, err = c.objects.toPsi(&ex.AnnotatedObject); err != nil {
		return nil, err
	}
	if ex.HostOrganism != nil {
		host, err := c.organisms.IntactToPsi(ex.HostOrganism)
		if err != nil {
			return nil, err
		}
		out.HostOrganisms = []*psixml.Organism{host}
	}
	if out.InteractionDetectionMethod, err = c.terms.IntactToPsi(ex.DetectionMethod); err != nil {
		return nil, err
	}
	if out.ParticipantIdentificationMethod, err = c.terms.IntactToPsi(ex.IdentificationMethod); err != nil {
		return nil, err
	}
	if out.FeatureDetectionMethod, err = c.terms.IntactToPsi(ex.FeatureDetectionMethod); err != nil {
		return nil, err
	}
	if pub := ex.Publication; pub != nil {
		bib := &psixml.Bibref{}
		if bib.Xref, err = c.xrefs.AllToPsi(pub.Xrefs); err != nil {
			return nil, err
		}
		if bib.Attributes, err = c.annotations.AllToPsi(pub.Annotations); err != nil {
			return nil, err
		}
		if bib.Xref != nil || len(bib.Attributes) > 0 {
			out.Bibref = bib
		}
	}
	if out.Confidences, err = c.confidences.AllToPsi(ex.Confidences); err != nil {
		return nil, err
	}
	c.s.cache.Put(key, out)
	c.s.cache.Put(srcKey, ex)
	return out, nil
}

func publicationLabel(ex *domain.Experiment) string {
	if ex.Publication == nil {
		return ""
	}
	return ex.Publication.ShortLabel
}
