package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psibridge/internal/infra/persistence/postgres/testutil"
	"psibridge/internal/infra/persistence/storetest"
	"psibridge/pkg/domain"
)

func openStub(t *testing.T) (*Store, *testutil.StubConn) {
	t.Helper()
	db, conn := testutil.NewStubDB()
	restore := OverrideSQLOpen(func(driverName, dsn string) (*sql.DB, error) {
		assert.Equal(t, "pgx", driverName)
		return db, nil
	})
	t.Cleanup(restore)
	s, err := NewStore("")
	require.NoError(t, err)
	return s, conn
}

func TestStoreContract(t *testing.T) {
	s, _ := openStub(t)
	storetest.Run(t, s)
}

func TestSaveWritesThrough(t *testing.T) {
	s, conn := openStub(t)
	created := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Save(context.Background(), domain.EntryRecord{ID: "e1", Entry: storetest.SampleEntry("x"), CreatedAt: created}))

	rows := conn.Rows("entries")
	require.Len(t, rows, 1)
	assert.Equal(t, "e1", rows[0]["id"])
	assert.Equal(t, "intact/x", rows[0]["label"])
	assert.Equal(t, created, rows[0]["created_at"])
	assert.Contains(t, string(rows[0]["payload"].([]byte)), `"shortLabel":"x"`)

	require.NoError(t, s.Delete(context.Background(), "e1"))
	assert.Empty(t, conn.Rows("entries"))
	assert.Contains(t, conn.Execs[0], "CREATE TABLE IF NOT EXISTS entries")
}

func TestHydratesFromExistingRows(t *testing.T) {
	db, conn := testutil.NewStubDB()
	first := OverrideSQLOpen(func(string, string) (*sql.DB, error) { return db, nil })
	s, err := NewStore("postgres://stub")
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background(), domain.EntryRecord{ID: "e1", Entry: storetest.SampleEntry("brca1-bard1")}))
	first()

	restore := OverrideSQLOpen(func(string, string) (*sql.DB, error) { return db, nil })
	t.Cleanup(restore)
	reopened, err := NewStore("postgres://stub")
	require.NoError(t, err)
	rec, err := reopened.Get(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, "brca1-bard1", rec.Entry.Interactions[0].ShortLabel)
	assert.Len(t, conn.Rows("entries"), 1)
}

func TestFailures(t *testing.T) {
	t.Run("open", func(t *testing.T) {
		t.Cleanup(OverrideSQLOpen(func(string, string) (*sql.DB, error) { return nil, errors.New("boom") }))
		_, err := NewStore("")
		assert.ErrorContains(t, err, "open postgres: boom")
	})
	t.Run("ping", func(t *testing.T) {
		db, conn := testutil.NewStubDB()
		conn.FailPing = true
		t.Cleanup(OverrideSQLOpen(func(string, string) (*sql.DB, error) { return db, nil }))
		_, err := NewStore("")
		assert.ErrorContains(t, err, "ping postgres")
	})
	t.Run("schema", func(t *testing.T) {
		db, conn := testutil.NewStubDB()
		conn.FailExec = true
		t.Cleanup(OverrideSQLOpen(func(string, string) (*sql.DB, error) { return db, nil }))
		_, err := NewStore("")
		assert.ErrorContains(t, err, "ensure entries table")
	})
	t.Run("load", func(t *testing.T) {
		db, conn := testutil.NewStubDB()
		conn.FailTables = map[string]bool{"entries": true}
		t.Cleanup(OverrideSQLOpen(func(string, string) (*sql.DB, error) { return db, nil }))
		_, err := NewStore("")
		assert.ErrorContains(t, err, "select entries")
	})
	t.Run("commit", func(t *testing.T) {
		s, conn := openStub(t)
		conn.FailCommit = true
		err := s.Save(context.Background(), domain.EntryRecord{ID: "e", Entry: storetest.SampleEntry("x")})
		assert.ErrorContains(t, err, "commit")
		assert.False(t, s.Has("e"))
	})
	t.Run("begin", func(t *testing.T) {
		s, conn := openStub(t)
		conn.FailBegin = true
		err := s.Save(context.Background(), domain.EntryRecord{ID: "e", Entry: storetest.SampleEntry("x")})
		assert.ErrorContains(t, err, "begin tx")
	})
}
