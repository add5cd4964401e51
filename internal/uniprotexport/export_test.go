package uniprotexport

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psibridge/pkg/domain"
)

func cv(kind domain.CvKind, label, id string) *domain.CvObject {
	c := &domain.CvObject{Kind: kind, Identifier: id}
	c.ShortLabel = label
	return c
}

var (
	uniprotDB = cv(domain.CvDatabase, "uniprotkb", domain.MIUniprot)
	pubmedDB  = cv(domain.CvDatabase, "pubmed", domain.MIPubmed)
	identity  = cv(domain.CvXrefQualifier, "identity", domain.MIIdentity)
	primary   = cv(domain.CvXrefQualifier, "primary-reference", domain.MIPrimaryReference)
	geneName  = cv(domain.CvAliasType, "gene name", domain.MIGeneName)
	bait      = cv(domain.CvExperimentalRole, "bait", domain.MIBait)
	prey      = cv(domain.CvExperimentalRole, "prey", domain.MIPrey)
	human     = &domain.BioSource{TaxID: "9606"}
)

func newProtein(label, ac, gene, intactAC string) *domain.Interactor {
	i := &domain.Interactor{BioSource: human}
	i.ShortLabel = label
	i.AC = intactAC
	if ac != "" {
		i.Xrefs = []domain.Xref{{Database: uniprotDB, Qualifier: identity, PrimaryID: ac}}
	}
	if gene != "" {
		i.Aliases = []domain.Alias{{Type: geneName, Name: gene}}
	}
	return i
}

func experiment(label, pmid string) *domain.Experiment {
	pub := &domain.Publication{}
	pub.ShortLabel = pmid
	pub.Xrefs = []domain.Xref{{Database: pubmedDB, Qualifier: primary, PrimaryID: pmid}}
	ex := &domain.Experiment{Publication: pub}
	ex.ShortLabel = label
	return ex
}

func component(it *domain.Interactor, roles ...*domain.CvObject) *domain.Component {
	return &domain.Component{Interactor: it, ExperimentalRoles: roles}
}

func interaction(ac string, ex *domain.Experiment, comps ...*domain.Component) *domain.Interaction {
	in := &domain.Interaction{Experiments: []*domain.Experiment{ex}, Components: comps}
	in.AC = ac
	in.ShortLabel = strings.ToLower(ac)
	return in
}

var (
	brca1 = newProtein("brca1_human", "P38398", "BRCA1", "EBI-349905")
	bard1 = newProtein("bard1_human", "Q99728", "BARD1", "EBI-473181")
	tp53  = newProtein("p53_human", "P04637", "TP53", "EBI-366083")
	iso   = newProtein("brca1_human-2", "P38398-2", "BRCA1", "EBI-1000")
	drug  = newProtein("olaparib", "", "", "EBI-9999")
)

func TestMasterAccession(t *testing.T) {
	cases := map[string]string{
		"P12345":                "P12345",
		"P12345-2":              "P12345",
		"P12345-PRO_0000012345": "P12345",
		" Q9Y6K9 ":              "Q9Y6K9",
		"":                      "",
	}
	for in, want := range cases {
		assert.Equal(t, want, MasterAccession(in), in)
	}
}

func TestClassify(t *testing.T) {
	ex := experiment("wu-1996-1", "8944023")
	negative := interaction("EBI-5", ex, component(brca1), component(bard1))
	negative.Negative = true
	entry := &domain.IntactEntry{Interactions: []*domain.Interaction{
		interaction("EBI-1", ex, component(brca1, bait), component(bard1, prey)),
		interaction("EBI-2", ex, component(tp53)),
		interaction("EBI-3", ex, component(tp53, prey), component(brca1, bait), component(bard1, prey)),
		interaction("EBI-4", ex, component(tp53), component(brca1), component(bard1)),
		negative,
		interaction("EBI-6", ex, component(brca1), component(drug)),
	}}

	bins := Classify([]*domain.IntactEntry{entry, nil})
	require.Len(t, bins, 6)

	assert.Equal(t, "P38398", bins[0].A.Accession)
	assert.Equal(t, "Q99728", bins[0].B.Accession)
	assert.Equal(t, "BARD1", bins[0].B.GeneName)
	assert.Equal(t, "EBI-1", bins[0].Interaction)
	assert.Equal(t, []string{"8944023"}, bins[0].PubmedIDs)
	assert.Equal(t, []string{"wu-1996-1"}, bins[0].Experiments)
	assert.False(t, bins[0].Expanded)

	assert.True(t, bins[1].Self())
	assert.False(t, bins[1].Expanded)

	for _, b := range bins[2:4] {
		assert.True(t, b.Expanded)
		assert.Equal(t, "P38398", b.A.Accession, "spoke centred on the bait")
	}
	assert.Equal(t, "P04637", bins[2].B.Accession)
	assert.Equal(t, "Q99728", bins[3].B.Accession)

	for _, b := range bins[4:6] {
		assert.Equal(t, "Q99728", b.A.Accession, "bard1_human sorts first without a bait")
		assert.True(t, b.Expanded)
	}
}

func TestWriteCCLines(t *testing.T) {
	ex1 := experiment("wu-1996-1", "8944023")
	ex2 := experiment("meza-1999-1", "10026184")
	bins := Classify([]*domain.IntactEntry{{Interactions: []*domain.Interaction{
		interaction("EBI-1", ex1, component(brca1, bait), component(bard1, prey)),
		interaction("EBI-2", ex2, component(brca1, bait), component(bard1, prey)),
		interaction("EBI-3", ex1, component(bard1, bait), component(tp53, prey), component(iso, prey)),
	}}})

	var buf bytes.Buffer
	require.NoError(t, WriteCCLines(&buf, bins, Options{}))
	assert.Equal(t, strings.Join([]string{
		"AC   P38398;",
		"CC   -!- INTERACTION:",
		"CC       P38398; Q99728: BARD1; NbExp=2; IntAct=EBI-349905, EBI-473181;",
		"//",
		"AC   Q99728;",
		"CC   -!- INTERACTION:",
		"CC       Q99728; P38398: BRCA1; NbExp=2; IntAct=EBI-473181, EBI-349905;",
		"//",
		"",
	}, "\n"), buf.String())

	buf.Reset()
	require.NoError(t, WriteCCLines(&buf, bins, Options{IncludeSpokeExpanded: true}))
	out := buf.String()
	assert.Contains(t, out, "CC       Q99728; P04637: TP53; NbExp=1; IntAct=EBI-473181, EBI-366083;")
	assert.Contains(t, out, "CC       Q99728; P38398-2: BRCA1; NbExp=1; IntAct=EBI-473181, EBI-1000;")
	assert.Contains(t, out, "CC       P38398-2; Q99728: BARD1; NbExp=1; IntAct=EBI-1000, EBI-473181;")
	assert.Contains(t, out, "AC   P04637;")
	assert.Equal(t, 3, strings.Count(out, "-!- INTERACTION:"), "isoform grouped under its master")
}

func TestWriteCCLinesSelfInteraction(t *testing.T) {
	bins := Classify([]*domain.IntactEntry{{Interactions: []*domain.Interaction{
		interaction("EBI-2", experiment("x-2001-1", "1"), component(tp53)),
	}}})
	var buf bytes.Buffer
	require.NoError(t, WriteCCLines(&buf, bins, Options{}))
	assert.Equal(t, 1, strings.Count(buf.String(), "CC       P04637; P04637: TP53; NbExp=1;"))
}

func TestWriteGOLines(t *testing.T) {
	bins := Classify([]*domain.IntactEntry{{Interactions: []*domain.Interaction{
		interaction("EBI-1", experiment("wu-1996-1", "8944023"), component(brca1, bait), component(bard1, prey)),
		interaction("EBI-2", experiment("x-2001-1", "11283351"), component(tp53)),
		interaction("EBI-3", experiment("y-2002-1", "12000000"), component(tp53), component(brca1), component(bard1)),
		interaction("EBI-4", experiment("nopub", ""), component(iso), component(bard1)),
	}}})
	opts := Options{Date: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)}

	var buf bytes.Buffer
	require.NoError(t, WriteGOLines(&buf, bins, opts))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "!gaf-version: 2.2", lines[0])
	assert.Equal(t,
		"UniProtKB\tP04637\tTP53\tenables\tGO:0042802\tPMID:11283351\tIPI\tUniProtKB:P04637\tF\t\t\tprotein\ttaxon:9606\t20240315\tIntAct\t\t",
		lines[1])
	assert.Equal(t,
		"UniProtKB\tP38398\tBRCA1\tenables\tGO:0005515\tPMID:8944023\tIPI\tUniProtKB:Q99728\tF\t\t\tprotein\ttaxon:9606\t20240315\tIntAct\t\t",
		lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "UniProtKB\tQ99728\tBARD1\tenables\tGO:0005515\tPMID:8944023\tIPI\tUniProtKB:P38398\t"))

	buf.Reset()
	require.NoError(t, WriteGOLines(&buf, bins, Options{IncludeSpokeExpanded: true, AssignedBy: "MINT", Date: opts.Date}))
	assert.Equal(t, 8, strings.Count(buf.String(), "\n"), "header plus both directions of two expanded pairs")
	assert.Contains(t, buf.String(), "\tMINT\t")
}

func TestGafRowIsoform(t *testing.T) {
	row := gafRow(Protein{Accession: "P38398-2", TaxID: "9606"}, Protein{Accession: "Q99728"}, "1", Options{Date: time.Unix(0, 0).UTC()})
	require.Len(t, row, 17)
	assert.Equal(t, "P38398", row[1])
	assert.Equal(t, "P38398", row[2], "symbol falls back to the accession")
	assert.Equal(t, "UniProtKB:P38398-2", row[16])
	assert.Equal(t, "19700101", row[13])
}
