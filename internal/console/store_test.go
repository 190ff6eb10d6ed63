package console

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
	})

	s, err := NewStoreWithDB(db)
	require.NoError(t, err)
	return s
}

func TestStore_GrantAndAllows(t *testing.T) {
	s := newTestStore(t)

	ok, err := s.Allows("alice", "ordersh.ban")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Grant("alice", "ordersh.ban"))

	ok, err = s.Allows("alice", "ordersh.ban")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.Allows("bob", "ordersh.ban")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStore_Grant_Idempotent(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Grant("alice", "ordersh.ban"))
	require.NoError(t, s.Grant("alice", "ordersh.ban"))

	perms, err := s.Permissions("alice")
	require.NoError(t, err)
	require.Equal(t, []string{"ordersh.ban"}, perms)
}

func TestStore_WildcardActor(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Grant("*", "ordersh.version"))

	ok, err := s.Allows("anyone", "ordersh.version")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestStore_Revoke(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Grant("alice", "ordersh.ban"))
	require.NoError(t, s.Revoke("alice", "ordersh.ban"))

	ok, err := s.Allows("alice", "ordersh.ban")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStore_Permissions_Sorted(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Grant("alice", "ordersh.tp"))
	require.NoError(t, s.Grant("alice", "ordersh.ban"))
	require.NoError(t, s.Grant("alice", "ordersh.give"))

	perms, err := s.Permissions("alice")
	require.NoError(t, err)
	require.Equal(t, []string{"ordersh.ban", "ordersh.give", "ordersh.tp"}, perms)
}

func TestStore_RecordAndRecent(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Record("alice", "version", "ok"))
	require.NoError(t, s.Record("alice", "ban Steve", "ok"))
	require.NoError(t, s.Record("bob", "give Steve dirt", "missing permission"))

	entries, err := s.Recent(2)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	require.Equal(t, "give Steve dirt", entries[0].Line)
	require.Equal(t, "bob", entries[0].Actor)
	require.Equal(t, "ban Steve", entries[1].Line)
	require.WithinDuration(t, time.Now(), entries[0].ExecutedAt, time.Minute)
}

func TestStore_PurgeBefore(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Record("alice", "version", "ok"))
	require.NoError(t, s.Record("alice", "help", "ok"))

	// Everything is newer than an hour ago.
	deleted, err := s.PurgeBefore(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Zero(t, deleted)

	deleted, err = s.PurgeBefore(time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 2, deleted)

	entries, err := s.Recent(10)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestStore_MigrationsAreIdempotent(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, migrate(s.DB()))
}
