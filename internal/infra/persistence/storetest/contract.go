// Package storetest holds the behaviour every domain.EntryStore backend
// must share.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psibridge/pkg/domain"
)

// SampleEntry builds a small entry with one interaction between two
// interactors sharing an organism.
func SampleEntry(label string) *domain.IntactEntry {
	inst := &domain.Institution{}
	inst.ShortLabel = "intact"
	human := &domain.BioSource{TaxID: "9606"}
	human.ShortLabel = "human"
	protein := &domain.CvObject{Kind: domain.CvInteractorType, Identifier: domain.MIProtein}
	protein.ShortLabel = "protein"

	a := &domain.Interactor{Type: protein, BioSource: human}
	a.ShortLabel = "brca1_human"
	b := &domain.Interactor{Type: protein, BioSource: human}
	b.ShortLabel = "bard1_human"
	ex := &domain.Experiment{HostOrganism: human}
	ex.ShortLabel = "wu-2024-1"
	in := &domain.Interaction{
		Experiments: []*domain.Experiment{ex},
		Components:  []*domain.Component{{Interactor: a}, {Interactor: b}},
	}
	in.ShortLabel = label
	entry := &domain.IntactEntry{Institution: inst, Interactions: []*domain.Interaction{in}}
	entry.AttachOwner()
	return entry
}

// Run exercises store, which must start empty.
func Run(t *testing.T, store domain.EntryStore) {
	t.Helper()
	ctx := context.Background()

	created := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, domain.EntryRecord{ID: "b", SourceKey: "sources/b/x.xml", Entry: SampleEntry("brca1-bard1"), CreatedAt: created}))
	require.NoError(t, store.Save(ctx, domain.EntryRecord{ID: "a", Label: "second", Entry: SampleEntry("tp53-mdm2"), CreatedAt: created.Add(time.Hour)}))

	got, err := store.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "intact/brca1-bard1", got.Label)
	assert.Equal(t, "sources/b/x.xml", got.SourceKey)
	assert.True(t, got.CreatedAt.Equal(created))
	require.Len(t, got.Entry.Interactions, 1)
	comps := got.Entry.Interactions[0].Components
	assert.Equal(t, "brca1_human", comps[0].Interactor.ShortLabel)
	assert.Same(t, got.Entry.Institution, comps[0].Interactor.Owner)

	// Callers get copies.
	got.Entry.Interactions[0].ShortLabel = "mutated"
	again, err := store.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "brca1-bard1", again.Entry.Interactions[0].ShortLabel)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)
	assert.Equal(t, "a", list[1].ID)
	assert.Equal(t, 1, list[0].Interactions)
	assert.Equal(t, 1, list[0].Experiments)
	assert.Equal(t, 2, list[0].Interactors)

	// Replacing keeps the creation time.
	require.NoError(t, store.Save(ctx, domain.EntryRecord{ID: "b", Label: "renamed", Entry: SampleEntry("brca1-bard1-2")}))
	replaced, err := store.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "renamed", replaced.Label)
	assert.True(t, replaced.CreatedAt.Equal(created))
	assert.False(t, replaced.UpdatedAt.IsZero())
	assert.Equal(t, "brca1-bard1-2", replaced.Entry.Interactions[0].ShortLabel)

	require.NoError(t, store.Delete(ctx, "b"))
	_, err = store.Get(ctx, "b")
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "b"), domain.ErrEntryNotFound)

	list, err = store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.Error(t, store.Save(ctx, domain.EntryRecord{Entry: SampleEntry("x")}), "empty id")
	assert.Error(t, store.Save(ctx, domain.EntryRecord{ID: "nil"}), "nil entry")
}
