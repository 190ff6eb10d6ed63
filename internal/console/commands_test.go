package console

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/helmcrest/dispatch"
)

func newTestShell(t *testing.T, grants ...string) (*dispatch.Manager[*Session], *Session) {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store, err := NewStoreWithDB(db)
	require.NoError(t, err)
	for _, g := range grants {
		require.NoError(t, store.Grant("tester", g))
	}

	logger := log.NewWithOptions(io.Discard, log.Options{})
	manager, err := NewManager(store, logger)
	require.NoError(t, err)

	return manager, NewSession("tester", store, logger)
}

func run(t *testing.T, m *dispatch.Manager[*Session], s *Session, line string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	s.Out = &buf
	res := m.Execute(context.Background(), s, line)
	return buf.String(), res.Err
}

func TestCommands_Version(t *testing.T) {
	m, s := newTestShell(t)

	out, err := run(t, m, s, "version")
	require.NoError(t, err)
	require.Contains(t, out, "ordersh")
}

func TestCommands_BanRequiresPermission(t *testing.T) {
	m, s := newTestShell(t)

	_, err := run(t, m, s, "ban Steve")
	var denied *dispatch.NoPermissionError
	require.ErrorAs(t, err, &denied)
}

func TestCommands_BanWithFlags(t *testing.T) {
	m, s := newTestShell(t, "ordersh.ban")

	out, err := run(t, m, s, `ban Steve "stealing diamonds" --duration 2h --silent`)
	require.NoError(t, err)
	require.Contains(t, out, "banned Steve for 2h0m0s: stealing diamonds")
	require.NotContains(t, out, "broadcast")
}

func TestCommands_GiveDefaultsAmount(t *testing.T) {
	m, s := newTestShell(t, "ordersh.give")

	out, err := run(t, m, s, `give Alyx "iron sword"`)
	require.NoError(t, err)
	require.Contains(t, out, "gave 1 x iron sword to Alyx")

	out, err = run(t, m, s, "give Alyx dirt 64")
	require.NoError(t, err)
	require.Contains(t, out, "gave 64 x dirt to Alyx")

	_, err = run(t, m, s, "give Alyx dirt 65")
	require.Error(t, err)
}

func TestCommands_MessageAliases(t *testing.T) {
	m, s := newTestShell(t)

	for _, alias := range []string{"msg", "tell", "w"} {
		out, err := run(t, m, s, alias+" Chell hello there")
		require.NoError(t, err)
		require.Contains(t, out, "[tester -> Chell] hello there")
	}
}

func TestCommands_PermsRoundTrip(t *testing.T) {
	m, s := newTestShell(t, "ordersh.admin")

	_, err := run(t, m, s, "perms grant bob ordersh.tp")
	require.NoError(t, err)

	out, err := run(t, m, s, "perms list bob")
	require.NoError(t, err)
	require.Contains(t, out, "ordersh.tp")

	_, err = run(t, m, s, "perms revoke bob ordersh.tp")
	require.NoError(t, err)

	out, err = run(t, m, s, "perms list bob")
	require.NoError(t, err)
	require.Contains(t, out, "holds no permissions")
}

func TestCommands_HistoryReadsAuditLog(t *testing.T) {
	m, s := newTestShell(t)
	require.NoError(t, s.store.Record("tester", "version", "ok"))

	out, err := run(t, m, s, "history 5")
	require.NoError(t, err)
	require.Contains(t, out, `"version"`)
}

func TestCommands_PurgeDryRunByDefault(t *testing.T) {
	m, s := newTestShell(t, "ordersh.admin")
	require.NoError(t, s.store.Record("tester", "version", "ok"))

	out, err := run(t, m, s, "purge --older-than 0s")
	require.NoError(t, err)
	require.Contains(t, out, "--force to proceed")

	entries, err := s.store.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestCommands_UnknownCommandSuggests(t *testing.T) {
	m, s := newTestShell(t)

	_, err := run(t, m, s, "versoin")
	var unknown *dispatch.NoSuchCommandError
	require.True(t, errors.As(err, &unknown))
	require.Contains(t, unknown.Suggestions, "version")
}

func TestCommands_ShutdownRequestsQuit(t *testing.T) {
	m, s := newTestShell(t)

	_, err := run(t, m, s, "exit")
	require.NoError(t, err)
	require.True(t, s.QuitRequested())
}

func TestCommands_HelpListsSyntax(t *testing.T) {
	m, s := newTestShell(t)

	out, err := run(t, m, s, "help")
	require.NoError(t, err)
	require.Contains(t, out, "ban <player> [reason]")
	require.Contains(t, out, "Print the shell version.")
}

func TestCommands_PlayerCompletion(t *testing.T) {
	m, s := newTestShell(t)

	suggestions := m.Suggest(context.Background(), s, "msg Ch")
	require.Len(t, suggestions, 1)
	require.Equal(t, "Chell", suggestions[0].Text)
}
