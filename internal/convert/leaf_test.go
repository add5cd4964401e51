package convert

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psibridge/pkg/domain"
	"psibridge/pkg/psixml"
)

func TestXrefRoundTrip(t *testing.T) {
	r := NewRegistry(DefaultOptions())
	ref := psixml.DbReference{
		Db: "uniprotkb", DbAc: domain.MIUniprot, ID: "P38398", Secondary: "BRCA1_HUMAN", Version: "2024_01",
		RefType: "identity", RefTypeAc: domain.MIIdentity,
	}
	x, err := r.Xrefs.PsiToIntact(ref)
	require.NoError(t, err)
	require.NotNil(t, x.Database)
	assert.Equal(t, domain.CvDatabase, x.Database.Kind)
	assert.Equal(t, "uniprotkb", x.Database.ShortLabel)
	assert.Equal(t, domain.MIIdentity, x.Qualifier.Identifier)

	back, err := r.Xrefs.IntactToPsi(x)
	require.NoError(t, err)
	assert.Equal(t, ref, back)

	again, err := r.Xrefs.PsiToIntact(ref)
	require.NoError(t, err)
	assert.Same(t, x.Database, again.Database, "database term created once per pass")
}

func TestXrefRequiresDatabaseAndID(t *testing.T) {
	r := NewRegistry(DefaultOptions())
	_, err := r.Xrefs.PsiToIntact(psixml.DbReference{ID: "P1"})
	var convErr *ConversionError
	require.True(t, errors.As(err, &convErr))
	assert.Contains(t, convErr.Reason, "no database")

	_, err = r.Xrefs.PsiToIntact(psixml.DbReference{Db: "uniprotkb"})
	require.Error(t, err)

	_, err = r.Xrefs.IntactToPsi(domain.Xref{PrimaryID: "P1"})
	require.True(t, errors.As(err, &convErr))
}

func TestXrefWithoutQualifier(t *testing.T) {
	r := NewRegistry(DefaultOptions())
	x, err := r.Xrefs.PsiToIntact(psixml.DbReference{Db: "go", ID: "GO:0005634"})
	require.NoError(t, err)
	assert.Nil(t, x.Qualifier)
	assert.Equal(t, "", x.Database.Identifier)
	assert.Equal(t, "go", x.Database.ShortLabel)
}

func TestAliasRejectsEmptyValueForEveryType(t *testing.T) {
	types := []struct {
		label, ac string
	}{
		{"gene name", domain.MIGeneName},
		{"gene name synonym", "MI:0302"},
		{"isoform synonym", "MI:0304"},
		{"locus name", "MI:0305"},
		{"orf name", "MI:0306"},
		{"synonym", "MI:1041"},
		{"", ""},
	}
	for _, tc := range types {
		for _, value := range []string{"", "   "} {
			t.Run(tc.label+"/"+value, func(t *testing.T) {
				r := NewRegistry(DefaultOptions())
				_, err := r.Aliases.PsiToIntact(psixml.Alias{Type: tc.label, TypeAc: tc.ac, Value: value})
				var convErr *ConversionError
				require.True(t, errors.As(err, &convErr))
				assert.Contains(t, convErr.Reason, "empty value")

				alias := domain.Alias{Name: value}
				if tc.ac != "" {
					alias.Type, err = r.CvTerms.Term(domain.CvAliasType, tc.label, tc.ac)
					require.NoError(t, err)
				}
				_, err = r.Aliases.IntactToPsi(alias)
				require.True(t, errors.As(err, &convErr))
			})
		}
	}
}

func TestAliasRoundTrip(t *testing.T) {
	r := NewRegistry(DefaultOptions())
	a, err := r.Aliases.PsiToIntact(psixml.Alias{Type: "gene name", TypeAc: domain.MIGeneName, Value: " BRCA1 "})
	require.NoError(t, err)
	assert.Equal(t, "BRCA1", a.Name)
	back, err := r.Aliases.IntactToPsi(a)
	require.NoError(t, err)
	assert.Equal(t, psixml.Alias{Type: "gene name", TypeAc: domain.MIGeneName, Value: "BRCA1"}, back)
}

func TestCvTermsDedupByIdentifier(t *testing.T) {
	r := NewRegistry(DefaultOptions())
	bare, err := r.CvTerms.Term(domain.CvInteractionType, "", domain.MIPhysicalAssoc)
	require.NoError(t, err)
	assert.Equal(t, domain.MIPhysicalAssoc, bare.ShortLabel)

	full := psixml.NewCvType("physical association", domain.MIPhysicalAssoc)
	full.Names.FullName = "physical association"
	full.Names.Aliases = []psixml.Alias{{Type: "synonym", Value: "physical"}}
	full.Xref.SecondaryRefs = []psixml.DbReference{{Db: "pubmed", DbAc: domain.MIPubmed, ID: "14755292", RefType: "primary-reference", RefTypeAc: domain.MIPrimaryReference}}

	got, err := r.CvTerms.PsiToIntact(domain.CvInteractionType, full)
	require.NoError(t, err)
	assert.Same(t, bare, got)
	assert.Equal(t, "physical association", got.ShortLabel, "label taken from the full description")
	assert.Equal(t, "physical association", got.FullName)
	require.Len(t, got.Xrefs, 1, "identity reference is carried by Identifier")
	assert.Equal(t, "14755292", got.Xrefs[0].PrimaryID)
	require.Len(t, got.Aliases, 1)

	again, err := r.CvTerms.PsiToIntact(domain.CvInteractionType, full)
	require.NoError(t, err)
	assert.Same(t, got, again)
	assert.Len(t, again.Xrefs, 1, "populated once")

	other, err := r.CvTerms.PsiToIntact(domain.CvBiologicalRole, psixml.NewCvType("unspecified role", domain.MIUnspecifiedRole))
	require.NoError(t, err)
	exp, err := r.CvTerms.PsiToIntact(domain.CvExperimentalRole, psixml.NewCvType("unspecified role", domain.MIUnspecifiedRole))
	require.NoError(t, err)
	assert.NotSame(t, other, exp, "kinds keep separate instances")

	_, err = r.CvTerms.Term(domain.CvTopic, " ", "")
	require.Error(t, err)

	nilTerm, err := r.CvTerms.PsiToIntact(domain.CvTopic, nil)
	require.NoError(t, err)
	assert.Nil(t, nilTerm)
}

func TestCvTermIntactToPsi(t *testing.T) {
	r := NewRegistry(DefaultOptions())
	term := &domain.CvObject{Kind: domain.CvFeatureType, Identifier: "MOD:00046"}
	term.ShortLabel = "phosphoserine"
	cv, err := r.CvTerms.IntactToPsi(term)
	require.NoError(t, err)
	assert.Equal(t, "phosphoserine", cv.ShortLabel())
	assert.Equal(t, "MOD:00046", cv.Identifier())
	assert.Equal(t, "psi-mod", cv.Xref.PrimaryRef.Db)

	again, err := r.CvTerms.IntactToPsi(term)
	require.NoError(t, err)
	assert.Same(t, cv, again)

	db, ac := databaseOf("MI:0018")
	assert.Equal(t, "psi-mi", db)
	assert.Equal(t, domain.MIPsiMi, ac)
	db, _ = databaseOf("EBI-1")
	assert.Equal(t, "intact", db)
	db, ac = databaseOf("UO:0000062")
	assert.Equal(t, "uo", db)
	assert.Empty(t, ac)
}

func TestRangeFidelity(t *testing.T) {
	r := NewRegistry(DefaultOptions())
	certain := psixml.NewCvType(domain.LabelCertain, domain.MIFuzzyCertain)
	src := psixml.Range{
		StartStatus: certain,
		Begin:       &psixml.Position{Position: 10},
		EndStatus:   certain,
		End:         &psixml.Position{Position: 20},
	}
	rng, err := r.Ranges.PsiToIntact(src)
	require.NoError(t, err)
	assert.EqualValues(t, 10, rng.FromIntervalStart)
	assert.EqualValues(t, 10, rng.FromIntervalEnd)
	assert.EqualValues(t, 20, rng.ToIntervalStart)
	assert.EqualValues(t, 20, rng.ToIntervalEnd)
	assert.Same(t, rng.FromFuzzyType, rng.ToFuzzyType)

	back, err := r.Ranges.IntactToPsi(rng)
	require.NoError(t, err)
	require.NotNil(t, back.Begin)
	require.NotNil(t, back.End)
	assert.EqualValues(t, 10, back.Begin.Position)
	assert.EqualValues(t, 20, back.End.Position)
	assert.Nil(t, back.BeginInterval)
	assert.Nil(t, back.EndInterval)
	assert.Equal(t, domain.MIFuzzyCertain, back.StartStatus.Identifier())
	assert.Equal(t, domain.LabelCertain, back.StartStatus.ShortLabel())
	assert.Equal(t, domain.MIFuzzyCertain, back.EndStatus.Identifier())
	assert.Equal(t, domain.LabelCertain, back.EndStatus.ShortLabel())
}

func TestRangeIntervals(t *testing.T) {
	r := NewRegistry(DefaultOptions())
	src := psixml.Range{
		StartStatus:   psixml.NewCvType("range", domain.MIFuzzyRange),
		BeginInterval: &psixml.Interval{Begin: 8, End: 12},
		EndStatus:     psixml.NewCvType("range", domain.MIFuzzyRange),
		EndInterval:   &psixml.Interval{Begin: 30, End: 30},
		IsLink:        true,
	}
	rng, err := r.Ranges.PsiToIntact(src)
	require.NoError(t, err)
	assert.True(t, rng.Link)

	back, err := r.Ranges.IntactToPsi(rng)
	require.NoError(t, err)
	assert.Equal(t, &psixml.Interval{Begin: 8, End: 12}, back.BeginInterval)
	assert.Nil(t, back.Begin)
	assert.Nil(t, back.EndInterval, "zero-span interval is written as a position")
	assert.Equal(t, &psixml.Position{Position: 30}, back.End)
	assert.True(t, back.IsLink)

	_, err = r.Ranges.PsiToIntact(psixml.Range{BeginInterval: &psixml.Interval{Begin: 9, End: 3}})
	require.Error(t, err)
}

func TestRangeDefaultStatus(t *testing.T) {
	r := NewRegistry(DefaultOptions())
	rng, err := r.Ranges.PsiToIntact(psixml.Range{Begin: &psixml.Position{Position: 5}, End: &psixml.Position{}})
	require.NoError(t, err)
	assert.Equal(t, domain.MIFuzzyCertain, rng.FromFuzzyType.Identifier)
	assert.Equal(t, domain.MIFuzzyUndetermined, rng.ToFuzzyType.Identifier)

	back, err := r.Ranges.IntactToPsi(domain.Range{FromIntervalStart: 3, FromIntervalEnd: 3})
	require.NoError(t, err)
	assert.Equal(t, domain.MIFuzzyCertain, back.StartStatus.Identifier())
	assert.Equal(t, domain.MIFuzzyUndetermined, back.EndStatus.Identifier())
}

func TestAnnotationExclusions(t *testing.T) {
	r := NewRegistry(DefaultOptions())
	internal, err := r.Annotations.PsiToIntact(psixml.Attribute{Name: "remark-internal", Value: "private"})
	require.NoError(t, err)
	comment, err := r.Annotations.PsiToIntact(psixml.Attribute{Name: "comment", NameAc: domain.MIComment, Value: "public"})
	require.NoError(t, err)

	attrs, err := r.Annotations.AllToPsi([]domain.Annotation{internal, comment})
	require.NoError(t, err)
	assert.Equal(t, []psixml.Attribute{{Name: "comment", NameAc: domain.MIComment, Value: "public"}}, attrs)

	byID := NewRegistry(Options{ExcludedAnnotationTopics: []string{domain.MIComment}})
	_, ok, err := byID.Annotations.IntactToPsi(comment)
	require.NoError(t, err)
	assert.False(t, ok)

	none := NewRegistry(Options{})
	attrs, err = none.Annotations.AllToPsi([]domain.Annotation{internal, comment})
	require.NoError(t, err)
	assert.Len(t, attrs, 2)

	_, _, err = none.Annotations.IntactToPsi(domain.Annotation{Text: "orphan"})
	require.Error(t, err)
	_, err = none.Annotations.PsiToIntact(psixml.Attribute{Value: "no name"})
	require.Error(t, err)
}

func TestOrganismSharedByTaxonomy(t *testing.T) {
	r := NewRegistry(DefaultOptions())
	a, err := r.Organisms.PsiToIntact(human())
	require.NoError(t, err)
	b, err := r.Organisms.PsiToIntact(&psixml.Organism{NcbiTaxID: "9606"})
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, "human", a.ShortLabel)

	hela, err := r.Organisms.PsiToIntact(&psixml.Organism{NcbiTaxID: "9606", CellType: psixml.NewCvType("hela", "BTO:0000567")})
	require.NoError(t, err)
	assert.NotSame(t, a, hela)
	assert.Equal(t, domain.CvCellType, hela.CellType.Kind)

	_, err = r.Organisms.PsiToIntact(&psixml.Organism{Names: &psixml.Names{ShortLabel: "nobody"}})
	require.Error(t, err)

	o, err := r.Organisms.IntactToPsi(a)
	require.NoError(t, err)
	assert.Equal(t, "9606", o.NcbiTaxID)
	assert.Equal(t, "Homo sapiens", o.Names.FullName)
	o2, err := r.Organisms.IntactToPsi(a)
	require.NoError(t, err)
	assert.Same(t, o, o2)
}

func TestConfidenceAndParameter(t *testing.T) {
	r := NewRegistry(DefaultOptions())
	conf, err := r.Confidences.PsiToIntact(psixml.Confidence{Unit: psixml.NewCvType("author-score", "MI:1221"), Value: " high "})
	require.NoError(t, err)
	assert.Equal(t, "high", conf.Value)
	assert.Equal(t, domain.CvConfidenceType, conf.Type.Kind)
	back, err := r.Confidences.IntactToPsi(conf)
	require.NoError(t, err)
	assert.Equal(t, "MI:1221", back.Unit.Identifier())

	_, err = r.Confidences.PsiToIntact(psixml.Confidence{Value: "1"})
	require.Error(t, err)
	_, err = r.Confidences.PsiToIntact(psixml.Confidence{Unit: psixml.NewCvType("x", ""), Value: ""})
	require.Error(t, err)
	_, err = r.Confidences.IntactToPsi(domain.Confidence{Value: "1"})
	require.Error(t, err)

	p, err := r.Parameters.PsiToIntact(psixml.Parameter{Term: "kd", TermAc: "MI:0646", Factor: 5, Exponent: -6})
	require.NoError(t, err)
	assert.Equal(t, 10, p.Base)
	assert.Nil(t, p.Unit)
	pp, err := r.Parameters.IntactToPsi(p)
	require.NoError(t, err)
	assert.Equal(t, psixml.Parameter{Term: "kd", TermAc: "MI:0646", Base: 10, Exponent: -6, Factor: 5}, pp)

	_, err = r.Parameters.PsiToIntact(psixml.Parameter{Factor: 1})
	require.Error(t, err)
	_, err = r.Parameters.IntactToPsi(domain.Parameter{Factor: 1})
	require.Error(t, err)
}
