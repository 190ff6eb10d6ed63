package dispatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContext_StoreAndTypedGet(t *testing.T) {
	cctx := NewContext(context.Background(), "sender", "ban Steve", false)

	cctx.Set("player", "Steve")
	cctx.Set("days", 7)

	player, ok := Get[string](cctx, "player")
	require.True(t, ok)
	require.Equal(t, "Steve", player)

	days, ok := Get[int](cctx, "days")
	require.True(t, ok)
	require.Equal(t, 7, days)

	_, ok = Get[int](cctx, "player")
	require.False(t, ok, "wrong type assertion misses")

	require.Equal(t, "none", GetOr(cctx, "reason", "none"))
}

func TestContext_OverwritePanics(t *testing.T) {
	cctx := NewContext(context.Background(), "sender", "", false)
	cctx.Set("key", 1)

	require.Panics(t, func() { cctx.Set("key", 2) })
}

func TestContext_RawInputSnapshotIsStable(t *testing.T) {
	cctx := NewContext(context.Background(), "sender", "ban Steve", false)

	first := cctx.RawInput()
	first.ReadString()
	first.ReadString()

	second := cctx.RawInput()
	require.Equal(t, "ban", second.PeekString())
}

func TestContext_SuggestionsFlagAndSender(t *testing.T) {
	cctx := NewContext(context.Background(), "console", "", true)
	require.True(t, cctx.IsSuggestions())
	require.Equal(t, "console", cctx.Sender())
	require.NotNil(t, cctx.Context())
}

func TestContext_FlagsEmptyByDefault(t *testing.T) {
	cctx := NewContext(context.Background(), "sender", "", false)
	require.NotNil(t, cctx.Flags())
	require.False(t, cctx.Flags().Has("verbose"))
}
