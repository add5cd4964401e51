package convert

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"psibridge/pkg/domain"
	"psibridge/pkg/psixml"
)

const compactFixture = "../../pkg/psixml/testdata/compact.xml"

func loadFixture(t *testing.T) *psixml.Entry {
	t.Helper()
	f, err := os.Open(compactFixture)
	require.NoError(t, err)
	defer f.Close()
	set, err := psixml.Decode(f)
	require.NoError(t, err)
	require.Len(t, set.Entries, 1)
	return set.Entries[0]
}

func identityRef(db, dbAc, id string) psixml.DbReference {
	return psixml.DbReference{Db: db, DbAc: dbAc, ID: id, RefType: "identity", RefTypeAc: domain.MIIdentity}
}

func human() *psixml.Organism {
	return &psixml.Organism{NcbiTaxID: "9606", Names: &psixml.Names{ShortLabel: "human", FullName: "Homo sapiens"}}
}

func psiProtein(id int, label, ac string) *psixml.Interactor {
	return &psixml.Interactor{
		ID:             id,
		Names:          &psixml.Names{ShortLabel: label},
		Xref:           psixml.NewXref([]psixml.DbReference{identityRef("uniprotkb", domain.MIUniprot, ac)}),
		InteractorType: psixml.NewCvType("protein", domain.MIProtein),
		Organism:       human(),
	}
}

func psiExperiment(id int, label, pmid string) *psixml.ExperimentDescription {
	return &psixml.ExperimentDescription{
		ID:    id,
		Names: &psixml.Names{ShortLabel: label},
		Bibref: &psixml.Bibref{Xref: psixml.NewXref([]psixml.DbReference{{
			Db: "pubmed", DbAc: domain.MIPubmed, ID: pmid,
			RefType: "primary-reference", RefTypeAc: domain.MIPrimaryReference,
		}})},
		HostOrganisms:              []*psixml.Organism{{NcbiTaxID: "9606"}},
		InteractionDetectionMethod: psixml.NewCvType("two hybrid", "MI:0018"),
	}
}

func psiInteraction(id int, label string, ex *psixml.ExperimentDescription, interactors ...*psixml.Interactor) *psixml.Interaction {
	in := &psixml.Interaction{
		ID:               id,
		Names:            &psixml.Names{ShortLabel: label},
		Experiments:      []*psixml.ExperimentDescription{ex},
		InteractionTypes: []*psixml.CvType{psixml.NewCvType("physical association", domain.MIPhysicalAssoc)},
	}
	for i, it := range interactors {
		in.Participants = append(in.Participants, &psixml.Participant{ID: id*10 + i + 1, Interactor: it})
	}
	return in
}

func psiSource() *psixml.Source {
	return &psixml.Source{
		ReleaseDate: "2024-03-15",
		Names:       &psixml.Names{ShortLabel: "IntAct"},
		Xref:        psixml.NewXref([]psixml.DbReference{identityRef("psi-mi", domain.MIPsiMi, domain.MIIntact)}),
	}
}

type xrefTriple struct {
	id, db, qualifier string
}

// objectXrefs collects the cross-references of every non-vocabulary node of
// an entry.
func objectXrefs(e *psixml.Entry) map[xrefTriple]struct{} {
	out := make(map[xrefTriple]struct{})
	add := func(x *psixml.Xref) {
		for _, r := range x.All() {
			out[xrefTriple{r.ID, r.Db, r.RefType}] = struct{}{}
		}
	}
	if e.Source != nil {
		add(e.Source.Xref)
	}
	for _, it := range e.Interactors {
		add(it.Xref)
	}
	for _, ex := range e.Experiments {
		add(ex.Xref)
		if ex.Bibref != nil {
			add(ex.Bibref.Xref)
		}
	}
	for _, in := range e.Interactions {
		add(in.Xref)
		for _, ex := range in.Experiments {
			add(ex.Xref)
			if ex.Bibref != nil {
				add(ex.Bibref.Xref)
			}
		}
		for _, p := range in.Participants {
			add(p.Xref)
			if p.Interactor != nil {
				add(p.Interactor.Xref)
			}
			for _, f := range p.Features {
				add(f.Xref)
			}
		}
	}
	return out
}
