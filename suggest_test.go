package dispatch

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func texts(suggestions []Suggestion) []string {
	out := make([]string, len(suggestions))
	for i, s := range suggestions {
		out[i] = s.Text
	}
	return out
}

func TestSuggest_LiteralPrefixFilter(t *testing.T) {
	m := newTestManager()
	require.NoError(t, m.Register(NewCommand[*testSender]("give").HandlerFunc(noopHandler)))
	require.NoError(t, m.Register(NewCommand[*testSender]("gift").HandlerFunc(noopHandler)))

	sender := senderWith()
	require.ElementsMatch(t, []string{"give", "gift"}, texts(m.Suggest(context.Background(), sender, "gi")))
	require.ElementsMatch(t, []string{"give"}, texts(m.Suggest(context.Background(), sender, "giv")))
}

func TestSuggest_EmptyInputListsRoots(t *testing.T) {
	m := newTestManager()
	require.NoError(t, m.Register(NewCommand[*testSender]("ban").HandlerFunc(noopHandler)))
	require.NoError(t, m.Register(NewCommand[*testSender]("give").HandlerFunc(noopHandler)))

	got := texts(m.Suggest(context.Background(), senderWith(), ""))
	require.ElementsMatch(t, []string{"ban", "give"}, got)
}

func TestSuggest_VariableProviderAfterCompleteToken(t *testing.T) {
	players := RequiredComponent("player", strArg()).
		WithSuggestions(func(_ *Context[*testSender], partial string) []Suggestion {
			var out []Suggestion
			for _, name := range []string{"Steve", "Alex"} {
				if PrefixFilter(partial, name) {
					out = append(out, SimpleSuggestion(name))
				}
			}
			return out
		})

	m := newTestManager()
	require.NoError(t, m.Register(
		NewCommand[*testSender]("ban").Component(players).HandlerFunc(noopHandler),
	))

	got := texts(m.Suggest(context.Background(), senderWith(), "ban "))
	require.ElementsMatch(t, []string{"Steve", "Alex"}, got)

	got = texts(m.Suggest(context.Background(), senderWith(), "ban St"))
	require.ElementsMatch(t, []string{"Steve"}, got)
}

// coordsArg consumes three integer tokens and completes each of them with a
// relative-position marker.
type coordsArg struct{}

func (coordsArg) Parse(_ *Context[*testSender], in *Input) (any, error) {
	out := make([]int, 3)
	for i := range out {
		n, err := strconv.Atoi(in.PeekString())
		if err != nil {
			return nil, err
		}
		in.ReadString()
		out[i] = n
	}
	return out, nil
}

func (coordsArg) RequestedArgumentCount() int { return 3 }

func (coordsArg) Suggestions(_ *Context[*testSender], partial string) []Suggestion {
	if PrefixFilter(partial, "~") {
		return []Suggestion{SimpleSuggestion("~")}
	}
	return nil
}

func TestSuggest_MultiTokenParserMidComponent(t *testing.T) {
	m := newTestManager()
	require.NoError(t, m.Register(
		NewCommand[*testSender]("tp").Required("pos", coordsArg{}).HandlerFunc(noopHandler),
	))

	// the third coordinate is still being typed, so the position parser
	// owns the completion even though a full parse would fail here
	got := texts(m.Suggest(context.Background(), senderWith(), "tp 1 2 "))
	require.ElementsMatch(t, []string{"~"}, got)
}

func TestSuggest_FailedBranchContributesNothing(t *testing.T) {
	m := newTestManager()
	require.NoError(t, m.Register(
		NewCommand[*testSender]("give").
			Required("amount", intArg()).
			Component(RequiredComponent("item", strArg()).
				WithSuggestions(func(_ *Context[*testSender], _ string) []Suggestion {
					return SuggestionsOf("sword", "shield")
				})).
			HandlerFunc(noopHandler),
	))

	// "abc" does not parse as amount, so the item provider is unreachable
	got := m.Suggest(context.Background(), senderWith(), "give abc ")
	require.Empty(t, got)

	got = m.Suggest(context.Background(), senderWith(), "give 5 ")
	require.ElementsMatch(t, []string{"shield", "sword"}, texts(got))
}

func TestSuggest_PermissionGatedBranchHidden(t *testing.T) {
	m := newTestManager()
	require.NoError(t, m.Register(
		NewCommand[*testSender]("shutdown").Permission(PermissionOf("admin")).HandlerFunc(noopHandler),
	))
	require.NoError(t, m.Register(NewCommand[*testSender]("status").HandlerFunc(noopHandler)))

	got := texts(m.Suggest(context.Background(), senderWith(), "s"))
	require.ElementsMatch(t, []string{"status"}, got)

	got = texts(m.Suggest(context.Background(), senderWith("admin"), "s"))
	require.ElementsMatch(t, []string{"status", "shutdown"}, got)
}

func TestSuggest_MidChainLiterals(t *testing.T) {
	m := newTestManager()
	require.NoError(t, m.Register(
		NewCommand[*testSender]("config").Literal("set").Required("key", strArg()).HandlerFunc(noopHandler),
	))
	require.NoError(t, m.Register(
		NewCommand[*testSender]("config").Literal("get").Required("key", strArg()).HandlerFunc(noopHandler),
	))

	got := texts(m.Suggest(context.Background(), senderWith(), "config "))
	require.ElementsMatch(t, []string{"set", "get"}, got)

	got = texts(m.Suggest(context.Background(), senderWith(), "config s"))
	require.ElementsMatch(t, []string{"set"}, got)
}

func TestSuggest_FlagNames(t *testing.T) {
	m := newTestManager()
	require.NoError(t, m.Register(
		NewCommand[*testSender]("purge").
			Required("channel", strArg()).
			Flag(FlagDefinition[*testSender]{Name: "days", Parser: intArg()}).
			Flag(FlagDefinition[*testSender]{Name: "force", Aliases: []string{"f"}}).
			HandlerFunc(noopHandler),
	))

	got := texts(m.Suggest(context.Background(), senderWith(), "purge general --"))
	require.ElementsMatch(t, []string{"--days", "--force"}, got)

	got = texts(m.Suggest(context.Background(), senderWith(), "purge general --f"))
	require.ElementsMatch(t, []string{"--force"}, got)

	// a consumed presence flag keeps the remaining names on offer
	got = texts(m.Suggest(context.Background(), senderWith(), "purge general --force --"))
	require.Contains(t, got, "--days")
}

func TestSuggest_FlagValueDelegatesToParser(t *testing.T) {
	severity := suggestingParser{values: []string{"low", "high"}}
	m := newTestManager()
	require.NoError(t, m.Register(
		NewCommand[*testSender]("alert").
			Flag(FlagDefinition[*testSender]{Name: "severity", Parser: severity}).
			HandlerFunc(noopHandler),
	))

	got := texts(m.Suggest(context.Background(), senderWith(), "alert --severity "))
	require.ElementsMatch(t, []string{"low", "high"}, got)
}

func TestSuggest_ContainsFilterOption(t *testing.T) {
	m := newTestManager(WithSuggestionFilter[*testSender](ContainsFilter))
	require.NoError(t, m.Register(NewCommand[*testSender]("teleport").HandlerFunc(noopHandler)))

	got := texts(m.Suggest(context.Background(), senderWith(), "port"))
	require.ElementsMatch(t, []string{"teleport"}, got)
}

// suggestingParser accepts any token and proposes its fixed values.
type suggestingParser struct {
	values []string
}

func (p suggestingParser) Parse(_ *Context[*testSender], in *Input) (any, error) {
	return in.ReadString(), nil
}

func (p suggestingParser) Suggestions(_ *Context[*testSender], partial string) []Suggestion {
	var out []Suggestion
	for _, v := range p.values {
		if PrefixFilter(partial, v) {
			out = append(out, SimpleSuggestion(v))
		}
	}
	return out
}
