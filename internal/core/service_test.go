package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psibridge/internal/blob"
	"psibridge/internal/enrich"
	"psibridge/internal/infra/persistence/memory"
	"psibridge/pkg/domain"
	"psibridge/pkg/psixml"
)

const fixturePath = "../../pkg/psixml/testdata/compact.xml"

func fixtureBytes(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(fixturePath)
	require.NoError(t, err)
	return data
}

// twoEntryDocument repeats the fixture entry in one entry set.
func twoEntryDocument(t *testing.T) []byte {
	t.Helper()
	var entries []*psixml.Entry
	for i := 0; i < 2; i++ {
		set, err := psixml.Decode(bytes.NewReader(fixtureBytes(t)))
		require.NoError(t, err)
		entries = append(entries, set.Entries...)
	}
	var buf bytes.Buffer
	require.NoError(t, psixml.Encode(&buf, psixml.NewEntrySet(entries...)))
	return buf.Bytes()
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

var fixedNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestService(opts ...ServiceOption) *Service {
	base := []ServiceOption{WithIDGenerator(sequentialIDs()), WithClock(ClockFunc(func() time.Time { return fixedNow }))}
	return NewInMemoryService(append(base, opts...)...)
}

func TestImportXMLStoresEntryAndSource(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	got, err := svc.ImportXML(ctx, "in/compact.xml", bytes.NewReader(fixtureBytes(t)))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "id-1", got[0].ID)
	assert.Equal(t, "IntAct/brca1-bard1", got[0].Label)
	assert.Equal(t, "sources/id-1/compact.xml", got[0].SourceKey)
	assert.Equal(t, 1, got[0].Interactions)
	assert.Equal(t, 1, got[0].Experiments)
	assert.Equal(t, 2, got[0].Interactors)
	assert.Equal(t, fixedNow, got[0].CreatedAt)

	info, err := svc.Blobs().Head(ctx, got[0].SourceKey)
	require.NoError(t, err)
	assert.Equal(t, blob.ContentTypeXML, info.ContentType)
	assert.Equal(t, "in/compact.xml", info.Metadata[blob.MetaSource])

	listed, err := svc.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "id-1", listed[0].ID)

	rec, err := svc.GetEntry(ctx, "id-1")
	require.NoError(t, err)
	require.Len(t, rec.Entry.Interactions, 1)
	assert.Equal(t, "brca1-bard1", rec.Entry.Interactions[0].ShortLabel)
}

func TestImportXMLMultipleEntriesShareSource(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	got, err := svc.ImportXML(ctx, "batch.xml", bytes.NewReader(twoEntryDocument(t)))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "id-1", got[0].ID)
	assert.Equal(t, "id-2", got[1].ID)
	assert.Equal(t, got[0].SourceKey, got[1].SourceKey)

	sources, err := svc.Blobs().List(ctx, blob.SourcesPrefix)
	require.NoError(t, err)
	assert.Len(t, sources, 1)
}

func TestImportXMLRejectsInvalidDocuments(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	_, err := svc.ImportXML(ctx, "broken.xml", strings.NewReader("<entrySet><entry>"))
	require.Error(t, err)

	_, err = svc.ImportXML(ctx, "empty.xml", strings.NewReader(`<entrySet xmlns="net:sf:psidev:mi" level="2" version="5"/>`))
	require.ErrorIs(t, err, ErrEmptyDocument)

	dangling := strings.Replace(string(fixtureBytes(t)), "<interactorRef>3</interactorRef>", "<interactorRef>99</interactorRef>", 1)
	_, err = svc.ImportXML(ctx, "dangling.xml", strings.NewReader(dangling))
	var refErr *psixml.RefError
	require.True(t, errors.As(err, &refErr), "got %v", err)
	assert.Equal(t, 99, refErr.Ref)

	blobs, err := svc.Blobs().List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, blobs)
	entries, err := svc.ListEntries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

type failingSaveStore struct {
	*memory.Store
	failAfter int
	saves     int
}

func (s *failingSaveStore) Save(ctx context.Context, rec domain.EntryRecord) error {
	s.saves++
	if s.saves > s.failAfter {
		return errors.New("disk full")
	}
	return s.Store.Save(ctx, rec)
}

func TestImportXMLRollsBackOnSaveFailure(t *testing.T) {
	ctx := context.Background()
	store := &failingSaveStore{Store: memory.NewStore(), failAfter: 1}
	svc := NewService(store, blob.NewMemory(), WithIDGenerator(sequentialIDs()))

	_, err := svc.ImportXML(ctx, "batch.xml", bytes.NewReader(twoEntryDocument(t)))
	require.ErrorContains(t, err, "disk full")

	entries, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
	blobs, err := svc.Blobs().List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, blobs)
}

func TestExportXML(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	_, err := svc.ImportXML(ctx, "compact.xml", bytes.NewReader(fixtureBytes(t)))
	require.NoError(t, err)

	var compact, expanded bytes.Buffer
	info, err := svc.ExportXML(ctx, "id-1", true, &compact)
	require.NoError(t, err)
	assert.Equal(t, "exports/id-1/compact.xml", info.Key)
	assert.Contains(t, compact.String(), "<interactorRef>")
	assert.Contains(t, compact.String(), "<interactorList>")

	info, err = svc.ExportXML(ctx, "id-1", false, &expanded)
	require.NoError(t, err)
	assert.Equal(t, "exports/id-1/expanded.xml", info.Key)
	assert.NotContains(t, expanded.String(), "<interactorRef>")

	// Exporting again replaces the stored artifact.
	_, err = svc.ExportXML(ctx, "id-1", true, nil)
	require.NoError(t, err)

	// The exported document imports back to an equivalent entry.
	again, err := svc.ImportXML(ctx, "roundtrip.xml", bytes.NewReader(compact.Bytes()))
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, "IntAct/brca1-bard1", again[0].Label)
	assert.Equal(t, 2, again[0].Interactors)

	_, err = svc.ExportXML(ctx, "missing", false, nil)
	require.ErrorIs(t, err, domain.ErrEntryNotFound)
	var nf ErrNotFound
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, EntityEntry, nf.Entity)
}

func TestDeleteEntryRemovesArtifacts(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	got, err := svc.ImportXML(ctx, "batch.xml", bytes.NewReader(twoEntryDocument(t)))
	require.NoError(t, err)
	sourceKey := got[0].SourceKey
	_, err = svc.ExportXML(ctx, "id-1", true, nil)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteEntry(ctx, "id-1"))
	_, err = svc.Blobs().Head(ctx, blob.ExportKey("id-1", true))
	require.ErrorIs(t, err, blob.ErrNotFound)
	_, err = svc.Blobs().Head(ctx, sourceKey)
	require.NoError(t, err, "source still referenced by id-2")

	require.NoError(t, svc.DeleteEntry(ctx, "id-2"))
	_, err = svc.Blobs().Head(ctx, sourceKey)
	require.ErrorIs(t, err, blob.ErrNotFound)

	err = svc.DeleteEntry(ctx, "id-1")
	require.ErrorIs(t, err, domain.ErrEntryNotFound)
}

func TestEnrichEntry(t *testing.T) {
	ctx := context.Background()
	fetcher := &enrich.StaticFetcher{Proteins: map[string]enrich.ProteinRecord{
		"Q99728": {Accession: "Q99728", EntryName: "BARD1_HUMAN", FullName: "BRCA1-associated RING domain protein 1"},
	}}
	enricher := enrich.New(enrich.Config{UpdateProteins: true}, fetcher.Fetchers())
	svc := newTestService(WithEnricher(enricher))
	_, err := svc.ImportXML(ctx, "compact.xml", bytes.NewReader(fixtureBytes(t)))
	require.NoError(t, err)
	_, err = svc.ExportXML(ctx, "id-1", false, nil)
	require.NoError(t, err)

	report, err := svc.EnrichEntry(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Proteins)
	assert.Equal(t, 1, report.Missing, "P38398 has no record")

	rec, err := svc.GetEntry(ctx, "id-1")
	require.NoError(t, err)
	var fullName string
	for _, it := range rec.Entry.Interactors() {
		if it.UniprotAC() == "Q99728" {
			fullName = it.FullName
		}
	}
	assert.Equal(t, "BRCA1-associated RING domain protein 1", fullName)
	_, err = svc.Blobs().Head(ctx, blob.ExportKey("id-1", false))
	require.ErrorIs(t, err, blob.ErrNotFound, "stale export removed")

	report, err = svc.EnrichEntry(ctx, "id-1")
	require.NoError(t, err)
	assert.False(t, report.Changed())
}

func TestEnrichEntryRequiresEnricher(t *testing.T) {
	svc := newTestService()
	_, err := svc.EnrichEntry(context.Background(), "id-1")
	require.ErrorIs(t, err, ErrEnrichmentDisabled)
}

func TestExportUniprot(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	_, err := svc.ImportXML(ctx, "compact.xml", bytes.NewReader(fixtureBytes(t)))
	require.NoError(t, err)

	var cc, gaf bytes.Buffer
	res, err := svc.ExportUniprot(ctx, nil, &cc, &gaf)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Entries)
	assert.Equal(t, 1, res.Pairs)
	assert.Equal(t, "uniprot/20240315T120000Z/interactions.cc", res.CCKey)
	assert.Equal(t, "uniprot/20240315T120000Z/interactions.gaf", res.GAFKey)

	assert.Contains(t, cc.String(), "AC   P38398;")
	assert.Contains(t, cc.String(), "CC       P38398; Q99728: BARD1; NbExp=1;")
	assert.True(t, strings.HasPrefix(gaf.String(), "!gaf-version: 2.2\n"))
	assert.Contains(t, gaf.String(), "GO:0005515\tPMID:8944023\tIPI\tUniProtKB:Q99728")
	assert.Contains(t, gaf.String(), "\t20240315\tIntAct\t")

	_, body, err := svc.Blobs().Get(ctx, res.GAFKey)
	require.NoError(t, err)
	defer body.Close()
	var stored bytes.Buffer
	_, err = stored.ReadFrom(body)
	require.NoError(t, err)
	assert.Equal(t, gaf.String(), stored.String())

	_, err = svc.ExportUniprot(ctx, []string{"missing"}, nil, nil)
	require.ErrorIs(t, err, domain.ErrEntryNotFound)
}

func TestOpenEntryStore(t *testing.T) {
	store, err := OpenEntryStore(StorageConfig{Driver: StorageMemory})
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, store)

	path := t.TempDir() + "/entries.db"
	store, err = OpenEntryStore(StorageConfig{Driver: StorageSQLite, SQLitePath: path})
	require.NoError(t, err)
	svc := NewService(store, blob.NewMemory())
	require.NoError(t, svc.Close())

	_, err = OpenEntryStore(StorageConfig{Driver: "bolt"})
	require.ErrorContains(t, err, "unknown storage driver bolt")
}

func TestErrNotFoundMatchesSentinels(t *testing.T) {
	assert.ErrorIs(t, ErrNotFound{Entity: EntityEntry, ID: "x"}, domain.ErrEntryNotFound)
	assert.NotErrorIs(t, ErrNotFound{Entity: EntityEntry, ID: "x"}, blob.ErrNotFound)
	assert.ErrorIs(t, ErrNotFound{Entity: EntityBlob, ID: "k"}, blob.ErrNotFound)
	assert.Equal(t, "entry x not found", ErrNotFound{Entity: EntityEntry, ID: "x"}.Error())
}
