package domain

// Visitor receives every distinct object reachable from an entry. Objects are
// distinct by pointer; an object shared by many interactions is visited once.
// Nil callbacks are skipped.
type Visitor struct {
	Annotated   func(*AnnotatedObject)
	Interaction func(*Interaction)
	Experiment  func(*Experiment)
	Publication func(*Publication)
	Component   func(*Component)
	Interactor  func(*Interactor)
	Feature     func(*Feature)
	BioSource   func(*BioSource)
	CvObject    func(*CvObject)
}

type walker struct {
	v    Visitor
	seen map[any]struct{}
}

// Walk visits the entry graph depth-first: institution, entry annotations,
// then each interaction with its experiments and components.
func (e *IntactEntry) Walk(v Visitor) {
	w := &walker{v: v, seen: make(map[any]struct{})}
	if e.Institution != nil && w.first(e.Institution) {
		w.annotated(&e.Institution.AnnotatedObject)
	}
	for _, a := range e.Annotations {
		w.cv(a.Topic)
	}
	for _, in := range e.Interactions {
		w.interaction(in)
	}
}

func (w *walker) first(p any) bool {
	if _, ok := w.seen[p]; ok {
		return false
	}
	w.seen[p] = struct{}{}
	return true
}

func (w *walker) annotated(a *AnnotatedObject) {
	if w.v.Annotated != nil {
		w.v.Annotated(a)
	}
	for _, x := range a.Xrefs {
		w.cv(x.Database)
		w.cv(x.Qualifier)
	}
	for _, al := range a.Aliases {
		w.cv(al.Type)
	}
	for _, an := range a.Annotations {
		w.cv(an.Topic)
	}
}

func (w *walker) cv(c *CvObject) {
	if c == nil || !w.first(c) {
		return
	}
	if w.v.CvObject != nil {
		w.v.CvObject(c)
	}
	w.annotated(&c.AnnotatedObject)
}

func (w *walker) bioSource(b *BioSource) {
	if b == nil || !w.first(b) {
		return
	}
	if w.v.BioSource != nil {
		w.v.BioSource(b)
	}
	w.annotated(&b.AnnotatedObject)
	w.cv(b.CellType)
	w.cv(b.Tissue)
}

func (w *walker) confidences(cs []Confidence) {
	for _, c := range cs {
		w.cv(c.Type)
	}
}

func (w *walker) parameters(ps []Parameter) {
	for _, p := range ps {
		w.cv(p.Type)
		w.cv(p.Unit)
	}
}

func (w *walker) interaction(in *Interaction) {
	if in == nil || !w.first(in) {
		return
	}
	if w.v.Interaction != nil {
		w.v.Interaction(in)
	}
	w.annotated(&in.AnnotatedObject)
	w.cv(in.Type)
	w.cv(in.InteractorType)
	w.confidences(in.Confidences)
	w.parameters(in.Parameters)
	for _, ex := range in.Experiments {
		w.experiment(ex)
	}
	for _, c := range in.Components {
		w.component(c)
	}
}

func (w *walker) experiment(ex *Experiment) {
	if ex == nil || !w.first(ex) {
		return
	}
	if w.v.Experiment != nil {
		w.v.Experiment(ex)
	}
	w.annotated(&ex.AnnotatedObject)
	w.bioSource(ex.HostOrganism)
	w.cv(ex.DetectionMethod)
	w.cv(ex.IdentificationMethod)
	w.cv(ex.FeatureDetectionMethod)
	w.confidences(ex.Confidences)
	if p := ex.Publication; p != nil && w.first(p) {
		if w.v.Publication != nil {
			w.v.Publication(p)
		}
		w.annotated(&p.AnnotatedObject)
	}
}

func (w *walker) component(c *Component) {
	if c == nil || !w.first(c) {
		return
	}
	if w.v.Component != nil {
		w.v.Component(c)
	}
	w.annotated(&c.AnnotatedObject)
	w.interactor(c.Interactor)
	for _, r := range c.ExperimentalRoles {
		w.cv(r)
	}
	w.cv(c.BiologicalRole)
	for _, m := range c.IdentificationMethods {
		w.cv(m)
	}
	for _, p := range c.ExperimentalPreps {
		w.cv(p)
	}
	w.bioSource(c.ExpressedIn)
	w.confidences(c.Confidences)
	w.parameters(c.Parameters)
	for _, f := range c.Features {
		w.feature(f)
	}
}

func (w *walker) interactor(i *Interactor) {
	if i == nil || !w.first(i) {
		return
	}
	if w.v.Interactor != nil {
		w.v.Interactor(i)
	}
	w.annotated(&i.AnnotatedObject)
	w.cv(i.Type)
	w.bioSource(i.BioSource)
}

func (w *walker) feature(f *Feature) {
	if f == nil || !w.first(f) {
		return
	}
	if w.v.Feature != nil {
		w.v.Feature(f)
	}
	w.annotated(&f.AnnotatedObject)
	w.cv(f.Type)
	w.cv(f.DetectionMethod)
	for _, r := range f.Ranges {
		w.cv(r.FromFuzzyType)
		w.cv(r.ToFuzzyType)
	}
}

// AttachOwner sets the entry institution as owner of every reachable object.
func (e *IntactEntry) AttachOwner() {
	owner := e.Institution
	e.Walk(Visitor{Annotated: func(a *AnnotatedObject) {
		if owner != nil && a != &owner.AnnotatedObject {
			a.Owner = owner
		}
	}})
}
