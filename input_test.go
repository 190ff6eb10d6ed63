package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInput_TokenWalk(t *testing.T) {
	in := NewInput("foo bar baz")

	require.True(t, in.HasRemainingInput())
	require.Equal(t, 3, in.RemainingTokens())
	require.Equal(t, "foo", in.PeekString())
	require.Equal(t, "foo", in.ReadString())

	require.Equal(t, "bar baz", in.RemainingInput())
	require.Equal(t, "bar", in.ReadString())
	require.Equal(t, "baz", in.ReadString())
	require.False(t, in.HasRemainingInput())
	require.Equal(t, 0, in.RemainingTokens())
	require.Equal(t, "", in.ReadString())
}

func TestInput_TrailingSpaceYieldsEmptyToken(t *testing.T) {
	in := NewInput("give ")

	require.Equal(t, "give", in.ReadString())
	require.True(t, in.HasRemainingInput(), "trailing space leaves an empty token")
	require.Equal(t, 1, in.RemainingTokens())
	require.Equal(t, "", in.PeekString())

	require.Equal(t, "", in.ReadString())
	require.False(t, in.HasRemainingInput())
}

func TestInput_EmptyStringIsSingleEmptyToken(t *testing.T) {
	in := NewInput("")
	require.True(t, in.HasRemainingInput())
	require.True(t, in.exhaustedForParse())
	require.Equal(t, 1, in.RemainingTokens())
}

func TestInput_Difference(t *testing.T) {
	in := NewInput("tp 10 20 30")
	in.ReadString()

	snapshot := in.Clone()
	in.ReadString()
	in.ReadString()

	require.Equal(t, "10 20", snapshot.Difference(in))
}

func TestInput_ReadRemaining(t *testing.T) {
	in := NewInput("msg Steve hello there")
	in.ReadString()
	in.ReadString()

	require.Equal(t, "hello there", in.ReadRemaining())
	require.False(t, in.HasRemainingInput())
}

func TestInput_ReadRaw(t *testing.T) {
	in := NewInput(`"iron sword" 5`)

	require.Equal(t, `"iron sword"`, in.ReadRaw(12))
	require.Equal(t, "5", in.PeekString())
}

func TestInput_CloneIsIndependent(t *testing.T) {
	in := NewInput("a b")
	clone := in.Clone()
	in.ReadString()

	require.Equal(t, "a", clone.PeekString())
	require.Equal(t, "b", in.PeekString())
}
