package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"psibridge/pkg/domain"
)

func TestInteractionShortLabel(t *testing.T) {
	bait := cv(domain.CvExperimentalRole, "bait", domain.MIBait)
	brca1 := newProtein("brca1_human", "P38398", "BRCA1", nil)
	bard1 := newProtein("bard1_human", "Q99728", "BARD1", nil)
	tp53 := newProtein("p53_human", "P04637", "", nil)
	long1 := newProtein("ubiquitin_carboxyl_hydrolase", "", "", nil)
	long2 := newProtein("serine_threonine_kinase", "", "", nil)

	cases := []struct {
		name string
		in   *domain.Interaction
		want string
	}{
		{"bait first", newInteraction("x", newComponent(bard1), newComponent(brca1, bait)), "brca1-bard1"},
		{"alphabetical without bait", newInteraction("x", newComponent(tp53), newComponent(brca1)), "brca1-p53_human"},
		{"then first other component", newInteraction("x", newComponent(tp53), newComponent(bard1), newComponent(brca1)), "bard1-p53_human"},
		{"single component", newInteraction("x", newComponent(tp53)), "p53_human"},
		{"no components keeps label", newInteraction("Kept-Label"), "kept-label"},
		{"short part keeps its length", newInteraction("x", newComponent(brca1, bait), newComponent(long1)), "brca1-ubiquitin_carb"},
		{"both parts cut", newInteraction("x", newComponent(long2, bait), newComponent(long1)), "serine_th-ubiquitin_"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := InteractionShortLabel(tc.in)
			assert.Equal(t, tc.want, got)
			assert.LessOrEqual(t, len(got), MaxShortLabel)
		})
	}
}

func TestJoinParts(t *testing.T) {
	assert.Equal(t, "abc-def", joinParts("abc", "def", 20))
	assert.Equal(t, "aaaaaaaaaaaaaaaa-bbb", joinParts("aaaaaaaaaaaaaaaaaaaaaa", "bbb", 20))
	assert.Equal(t, "aaaaaaaaa-bbbbbbbbbb", joinParts("aaaaaaaaaaaa", "bbbbbbbbbbbb", 20))
}

func TestRelabelInteractionsMakesLabelsUnique(t *testing.T) {
	brca1 := newProtein("brca1_human", "P38398", "BRCA1", nil)
	bard1 := newProtein("bard1_human", "Q99728", "BARD1", nil)
	long1 := newProtein("ubiquitin_carboxyl_hydrolase", "", "", nil)
	long2 := newProtein("serine_threonine_kinase", "", "", nil)
	ins := []*domain.Interaction{
		newInteraction("bard1-brca1", newComponent(bard1), newComponent(brca1)),
		newInteraction("old", newComponent(brca1), newComponent(bard1)),
		newInteraction("old", newComponent(bard1), newComponent(brca1)),
		newInteraction("old", newComponent(long2), newComponent(long1)),
		newInteraction("old", newComponent(long1), newComponent(long2)),
		nil,
	}
	changed := RelabelInteractions(ins)
	assert.Equal(t, 4, changed)
	assert.Equal(t, "bard1-brca1", ins[0].ShortLabel)
	assert.Equal(t, "bard1-brca1-2", ins[1].ShortLabel)
	assert.Equal(t, "bard1-brca1-3", ins[2].ShortLabel)
	assert.Equal(t, "serine_th-ubiquitin_", ins[3].ShortLabel)
	assert.Equal(t, "serine_th-ubiquiti-2", ins[4].ShortLabel)
}
