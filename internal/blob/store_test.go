package blob_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psibridge/internal/blob"
)

func openStores(t *testing.T) map[string]blob.Store {
	t.Helper()
	ctx := context.Background()
	fsStore, err := blob.Open(ctx, blob.Config{Driver: blob.DriverFilesystem, FSRoot: t.TempDir()})
	require.NoError(t, err)
	memStore, err := blob.Open(ctx, blob.Config{Driver: blob.DriverMemory})
	require.NoError(t, err)
	s3Store, err := blob.Open(ctx, blob.Config{Driver: blob.DriverS3, S3: blob.S3Config{
		Bucket:          "psi",
		Prefix:          "tenant",
		Endpoint:        "https://s3.test.local",
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
		PathStyle:       true,
		HTTPClient:      &http.Client{Transport: newFakeS3()},
	}})
	require.NoError(t, err)
	return map[string]blob.Store{"fs": fsStore, "memory": memStore, "s3": s3Store}
}

func TestStoreContract(t *testing.T) {
	const doc = `<entrySet level="2" version="5"/>`
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			key := blob.SourceKey("e1", "data/brca1.xml")
			meta := map[string]string{blob.MetaEntryID: "e1"}

			info, err := store.Put(ctx, key, strings.NewReader(doc), blob.PutOptions{ContentType: blob.ContentTypeXML, Metadata: meta})
			require.NoError(t, err)
			assert.Equal(t, "sources/e1/brca1.xml", info.Key)
			assert.Equal(t, int64(len(doc)), info.Size)
			meta[blob.MetaEntryID] = "mutated"

			_, err = store.Put(ctx, key, strings.NewReader("other"), blob.PutOptions{})
			assert.ErrorIs(t, err, blob.ErrExists)

			got, rc, err := store.Get(ctx, key)
			require.NoError(t, err)
			body, err := io.ReadAll(rc)
			require.NoError(t, err)
			require.NoError(t, rc.Close())
			assert.Equal(t, doc, string(body))
			assert.Equal(t, blob.ContentTypeXML, got.ContentType)
			assert.Equal(t, "e1", got.Metadata[blob.MetaEntryID])

			_, err = store.Put(ctx, key, strings.NewReader("<entrySet/>"), blob.PutOptions{ContentType: blob.ContentTypeXML, Overwrite: true})
			require.NoError(t, err)
			head, err := store.Head(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, int64(len("<entrySet/>")), head.Size)

			_, err = store.Put(ctx, blob.ExportKey("e1", true), strings.NewReader(doc), blob.PutOptions{})
			require.NoError(t, err)
			_, err = store.Put(ctx, blob.SourceKey("e2", "x.xml"), strings.NewReader(doc), blob.PutOptions{})
			require.NoError(t, err)

			list, err := store.List(ctx, blob.SourcesPrefix)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "sources/e1/brca1.xml", list[0].Key)
			assert.Equal(t, "sources/e2/x.xml", list[1].Key)

			all, err := store.List(ctx, "")
			require.NoError(t, err)
			assert.Len(t, all, 3)

			ok, err := store.Delete(ctx, key)
			require.NoError(t, err)
			assert.True(t, ok)
			ok, err = store.Delete(ctx, key)
			require.NoError(t, err)
			assert.False(t, ok)

			_, err = store.Head(ctx, key)
			assert.ErrorIs(t, err, blob.ErrNotFound)
			_, _, err = store.Get(ctx, key)
			assert.ErrorIs(t, err, blob.ErrNotFound)
		})
	}
}

func TestStoresRejectEscapingKeys(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, key := range []string{"", "  ", "/abs.xml", "../up.xml", "a/../../b"} {
				_, err := store.Put(ctx, key, strings.NewReader("x"), blob.PutOptions{})
				assert.Error(t, err, key)
			}
		})
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := blob.Open(context.Background(), blob.Config{Driver: "tape"})
	assert.ErrorContains(t, err, "unknown blob driver tape")
}

func TestOpenDefaultsToFilesystem(t *testing.T) {
	store, err := blob.Open(context.Background(), blob.Config{FSRoot: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, blob.DriverFilesystem, store.Driver())
}

func TestOpenS3RequiresBucket(t *testing.T) {
	_, err := blob.Open(context.Background(), blob.Config{Driver: blob.DriverS3})
	assert.ErrorContains(t, err, "bucket")
}

func TestKeyLayout(t *testing.T) {
	assert.Equal(t, "sources/e1/brca1.xml", blob.SourceKey("e1", "/data/in/brca1.xml"))
	assert.Equal(t, "sources/e1/brca1.xml", blob.SourceKey("e1", `C:\data\brca1.xml`))
	assert.Equal(t, "sources/e1/entry.xml", blob.SourceKey("e1", ""))
	assert.Equal(t, "exports/e1/compact.xml", blob.ExportKey("e1", true))
	assert.Equal(t, "exports/e1/expanded.xml", blob.ExportKey("e1", false))
	at := time.Date(2024, 3, 15, 10, 15, 0, 0, time.FixedZone("CET", 3600))
	assert.Equal(t, "uniprot/20240315T091500Z/cc.txt", blob.UniprotKey(at, "cc.txt"))
}
