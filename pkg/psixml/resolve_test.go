package psixml

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCompactEntry(t *testing.T) {
	e := loadCompact(t).Entries[0]
	assert.Equal(t, 1, e.DistinctExperiments())
	assert.Equal(t, 2, e.DistinctInteractors())

	require.NoError(t, e.Resolve())
	in := e.Interactions[0]
	assert.Empty(t, in.ExperimentRefs)
	require.Len(t, in.Experiments, 1)
	assert.Same(t, e.Experiments[0], in.Experiments[0])
	assert.Same(t, e.Interactors[0], in.Participants[0].Interactor)
	assert.Same(t, e.Interactors[1], in.Participants[1].Interactor)
	assert.Zero(t, in.Participants[0].InteractorRef)

	require.NoError(t, e.Resolve(), "second pass is a no-op")
	assert.Len(t, in.Experiments, 1)
	assert.Equal(t, 1, e.DistinctExperiments())
	assert.Equal(t, 2, e.DistinctInteractors())
}

func TestResolveCollapsesRepeatedInlineDescriptions(t *testing.T) {
	exA := &ExperimentDescription{ID: 1, Names: &Names{ShortLabel: "exp"}}
	exB := &ExperimentDescription{ID: 1, Names: &Names{ShortLabel: "exp"}}
	itA := &Interactor{ID: 2, Names: &Names{ShortLabel: "p1"}}
	itB := &Interactor{ID: 2, Names: &Names{ShortLabel: "p1"}}
	anon := &Interactor{Names: &Names{ShortLabel: "anon"}}
	e := &Entry{Interactions: []*Interaction{
		{ID: 10, Experiments: []*ExperimentDescription{exA}, Participants: []*Participant{{ID: 11, Interactor: itA}}},
		{ID: 12, Experiments: []*ExperimentDescription{exB}, Participants: []*Participant{{ID: 13, Interactor: itB}, {ID: 14, Interactor: anon}}},
	}}
	assert.Equal(t, 1, e.DistinctExperiments())
	assert.Equal(t, 2, e.DistinctInteractors())

	require.NoError(t, e.Resolve())
	assert.Same(t, exA, e.Interactions[1].Experiments[0])
	assert.Same(t, itA, e.Interactions[1].Participants[0].Interactor)
	assert.Same(t, anon, e.Interactions[1].Participants[1].Interactor)
	assert.Equal(t, 2, e.CountInteractions())
}

func TestResolveDanglingReferences(t *testing.T) {
	e := &Entry{Interactions: []*Interaction{{ID: 3, ExperimentRefs: []int{9}}}}
	err := e.Resolve()
	var refErr *RefError
	require.True(t, errors.As(err, &refErr))
	assert.Equal(t, RefError{Kind: "experiment", Ref: 9, Interaction: 3}, *refErr)
	assert.Contains(t, err.Error(), "unknown experiment 9")

	e = &Entry{Interactions: []*Interaction{{ID: 4, Participants: []*Participant{{InteractorRef: 7}}}}}
	err = e.Resolve()
	require.True(t, errors.As(err, &refErr))
	assert.Equal(t, "interactor", refErr.Kind)
}

func TestNewIndexLeavesEntryUntouched(t *testing.T) {
	e := loadCompact(t).Entries[0]
	dup := &Interactor{ID: e.Interactors[0].ID}
	e.Interactors = append(e.Interactors, dup, nil)

	x := NewIndex(e)
	require.Len(t, x.Experiments, 1)
	require.Len(t, x.Interactors, 2)
	assert.Same(t, e.Interactors[0], x.Interactors[e.Interactors[0].ID])
	assert.NotEmpty(t, e.Interactions[0].ExperimentRefs)
	assert.NotZero(t, e.Interactions[0].Participants[0].InteractorRef)
}
