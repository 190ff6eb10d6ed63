package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuilder_EachStepReturnsNewValue(t *testing.T) {
	base := NewCommand[*testSender]("config").HandlerFunc(noopHandler)

	setBranch := base.Literal("set").Required("key", strArg())
	getBranch := base.Literal("get").Required("key", strArg())

	set, err := setBranch.Build()
	require.NoError(t, err)
	get, err := getBranch.Build()
	require.NoError(t, err)

	require.Len(t, set.Components(), 3)
	require.Len(t, get.Components(), 3)
	require.Equal(t, "set", set.Components()[1].Name())
	require.Equal(t, "get", get.Components()[1].Name(), "branching from a shared prefix must not cross-contaminate")

	// the original builder is untouched
	cmd, err := base.Build()
	require.NoError(t, err)
	require.Len(t, cmd.Components(), 1)
}

func TestBuilder_Validation(t *testing.T) {
	cases := []struct {
		name    string
		builder *CommandBuilder[*testSender]
	}{
		{
			name:    "no handler",
			builder: NewCommand[*testSender]("ban").Required("player", strArg()),
		},
		{
			name: "required after optional",
			builder: NewCommand[*testSender]("give").
				Optional("amount", intArg()).
				Required("item", strArg()).
				HandlerFunc(noopHandler),
		},
		{
			name: "duplicate argument name",
			builder: NewCommand[*testSender]("tp").
				Required("x", intArg()).
				Required("x", intArg()).
				HandlerFunc(noopHandler),
		},
		{
			name: "variable without parser",
			builder: NewCommand[*testSender]("ban").
				Component(RequiredComponent[*testSender]("player", nil)).
				HandlerFunc(noopHandler),
		},
		{
			name: "flag colliding with argument",
			builder: NewCommand[*testSender]("purge").
				Required("days", intArg()).
				Flag(FlagDefinition[*testSender]{Name: "days"}).
				HandlerFunc(noopHandler),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.builder.Build()
			require.Error(t, err)
			var regErr *RegistrationError
			require.ErrorAs(t, err, &regErr)
		})
	}
}

func TestBuilder_MetaAndSyntax(t *testing.T) {
	cmd, err := NewCommand[*testSender]("ban", "banish").
		Required("player", strArg()).
		OptionalWithDefault("reason", strArg(), "no reason").
		Flag(FlagDefinition[*testSender]{Name: "silent", Aliases: []string{"s"}}).
		Description("Ban a player").
		Hidden().
		HandlerFunc(noopHandler).
		Build()
	require.NoError(t, err)

	desc, ok := cmd.Meta(MetaDescription)
	require.True(t, ok)
	require.Equal(t, "Ban a player", desc)

	_, hidden := cmd.Meta(MetaHidden)
	require.True(t, hidden)

	require.Equal(t, "ban <player> [reason] [--silent]", cmd.Syntax())
	require.Equal(t, "ban", cmd.Name())
}

func TestComponent_WithPreprocessorCopies(t *testing.T) {
	base := RequiredComponent("player", strArg())
	modified := base.WithPreprocessor(func(_ *Context[*testSender], _ *Input) error { return nil })

	require.Empty(t, base.preprocessors)
	require.Len(t, modified.preprocessors, 1)
}
