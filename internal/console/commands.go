package console

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/helmcrest/dispatch"
	"github.com/helmcrest/dispatch/parsers"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// Session is the command sender for the shell. One session lives for the
// whole program run; Out is swapped per command by the shell loop.
type Session struct {
	Actor string
	Out   io.Writer

	store  *Store
	logger *log.Logger

	quitRequested bool
}

// NewSession creates a session for an actor backed by the given store.
func NewSession(actor string, store *Store, logger *log.Logger) *Session {
	return &Session{Actor: actor, Out: io.Discard, store: store, logger: logger}
}

// QuitRequested reports whether a handler asked the shell to exit.
func (s *Session) QuitRequested() bool { return s.quitRequested }

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.Out, format+"\n", args...)
}

// knownPlayers is the completion roster for <player> arguments. A real host
// would feed this from its presence system.
var knownPlayers = []string{"Alyx", "Barney", "Chell", "Gordon", "Steve"}

func suggestPlayers[C any](_ *dispatch.Context[C], partial string) []dispatch.Suggestion {
	var out []dispatch.Suggestion
	for _, p := range knownPlayers {
		if dispatch.PrefixFilter(partial, p) {
			out = append(out, dispatch.SimpleSuggestion(p))
		}
	}
	return out
}

// NewManager builds the dispatch manager with the full demo command set
// registered. Permission checks resolve against the store's grant table.
func NewManager(store *Store, logger *log.Logger) (*dispatch.Manager[*Session], error) {
	m := dispatch.NewManager(
		dispatch.WithPermissionChecker(func(s *Session, permission string) bool {
			ok, err := s.store.Allows(s.Actor, permission)
			if err != nil {
				logger.Error("permission lookup failed", "actor", s.Actor, "permission", permission, "err", err)
				return false
			}
			return ok
		}),
		dispatch.WithSynchronizedExecution[*Session](),
	)

	for _, b := range commandSet(m) {
		if err := m.Register(b); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func commandSet(m *dispatch.Manager[*Session]) []*dispatch.CommandBuilder[*Session] {
	player := dispatch.RequiredComponent("player", parsers.String[*Session](parsers.Single)).
		WithSuggestions(suggestPlayers[*Session])

	return []*dispatch.CommandBuilder[*Session]{
		dispatch.NewCommand[*Session]("version").
			Description("Print the shell version.").
			HandlerFunc(func(cctx *dispatch.Context[*Session]) error {
				cctx.Sender().printf("ordersh %s", Version)
				return nil
			}),

		dispatch.NewCommand[*Session]("ban").
			Description("Ban a player, optionally for a limited duration.").
			Permission(dispatch.PermissionOf("ordersh.ban")).
			Component(player).
			Optional("reason", parsers.String[*Session](parsers.Quoted)).
			Flag(dispatch.FlagDefinition[*Session]{
				Name:        "silent",
				Aliases:     []string{"s"},
				Description: "Suppress the broadcast message.",
			}).
			Flag(dispatch.FlagDefinition[*Session]{
				Name:        "duration",
				Aliases:     []string{"d"},
				Description: "Ban length, e.g. 2h or 7d.",
				Parser:      parsers.Duration[*Session](),
			}).
			HandlerFunc(banHandler),

		dispatch.NewCommand[*Session]("give").
			Description("Give an item to a player.").
			Permission(dispatch.PermissionOf("ordersh.give")).
			Component(player).
			Required("item", parsers.String[*Session](parsers.Quoted)).
			OptionalWithDefault("amount", parsers.IntegerRange[*Session](1, 64), int64(1)).
			HandlerFunc(func(cctx *dispatch.Context[*Session]) error {
				s := cctx.Sender()
				target := dispatch.GetOr(cctx, "player", "")
				item := dispatch.GetOr(cctx, "item", "")
				amount := dispatch.GetOr(cctx, "amount", int64(1))
				s.printf("gave %d x %s to %s", amount, item, target)
				return nil
			}),

		dispatch.NewCommand[*Session]("tp").
			Description("Teleport a player to coordinates.").
			Permission(dispatch.PermissionOf("ordersh.tp")).
			Component(player).
			Required("x", parsers.Float[*Session]()).
			Required("y", parsers.Float[*Session]()).
			Required("z", parsers.Float[*Session]()).
			HandlerFunc(func(cctx *dispatch.Context[*Session]) error {
				s := cctx.Sender()
				target := dispatch.GetOr(cctx, "player", "")
				x := dispatch.GetOr(cctx, "x", 0.0)
				y := dispatch.GetOr(cctx, "y", 0.0)
				z := dispatch.GetOr(cctx, "z", 0.0)
				s.printf("teleported %s to %.1f %.1f %.1f", target, x, y, z)
				return nil
			}),

		dispatch.NewCommand[*Session]("msg", "tell", "w").
			Description("Send a private message.").
			Component(player).
			Required("message", parsers.String[*Session](parsers.Greedy)).
			HandlerFunc(func(cctx *dispatch.Context[*Session]) error {
				s := cctx.Sender()
				target := dispatch.GetOr(cctx, "player", "")
				message := dispatch.GetOr(cctx, "message", "")
				s.printf("[%s -> %s] %s", s.Actor, target, message)
				return nil
			}),

		dispatch.NewCommand[*Session]("perms").
			Description("Grant a permission to an actor.").
			Permission(dispatch.PermissionOf("ordersh.admin")).
			Literal("grant").
			Required("actor", parsers.String[*Session](parsers.Single)).
			Required("permission", parsers.String[*Session](parsers.Single)).
			HandlerFunc(func(cctx *dispatch.Context[*Session]) error {
				s := cctx.Sender()
				actor := dispatch.GetOr(cctx, "actor", "")
				permission := dispatch.GetOr(cctx, "permission", "")
				if err := s.store.Grant(actor, permission); err != nil {
					return err
				}
				s.printf("granted %s to %s", permission, actor)
				return nil
			}),

		dispatch.NewCommand[*Session]("perms").
			Description("Revoke a permission from an actor.").
			Permission(dispatch.PermissionOf("ordersh.admin")).
			Literal("revoke").
			Required("actor", parsers.String[*Session](parsers.Single)).
			Required("permission", parsers.String[*Session](parsers.Single)).
			HandlerFunc(func(cctx *dispatch.Context[*Session]) error {
				s := cctx.Sender()
				actor := dispatch.GetOr(cctx, "actor", "")
				permission := dispatch.GetOr(cctx, "permission", "")
				if err := s.store.Revoke(actor, permission); err != nil {
					return err
				}
				s.printf("revoked %s from %s", permission, actor)
				return nil
			}),

		dispatch.NewCommand[*Session]("perms").
			Description("List an actor's permissions.").
			Permission(dispatch.PermissionOf("ordersh.admin")).
			Literal("list").
			Required("actor", parsers.String[*Session](parsers.Single)).
			HandlerFunc(func(cctx *dispatch.Context[*Session]) error {
				s := cctx.Sender()
				actor := dispatch.GetOr(cctx, "actor", "")
				perms, err := s.store.Permissions(actor)
				if err != nil {
					return err
				}
				if len(perms) == 0 {
					s.printf("%s holds no permissions", actor)
					return nil
				}
				for _, p := range perms {
					s.printf("  %s", p)
				}
				return nil
			}),

		dispatch.NewCommand[*Session]("history").
			Description("Show recently executed command lines.").
			OptionalWithDefault("limit", parsers.IntegerRange[*Session](1, 1000), int64(10)).
			HandlerFunc(func(cctx *dispatch.Context[*Session]) error {
				s := cctx.Sender()
				limit := dispatch.GetOr(cctx, "limit", int64(10))
				entries, err := s.store.Recent(int(limit))
				if err != nil {
					return err
				}
				for _, e := range entries {
					s.printf("%s  %-10s %-30q %s",
						e.ExecutedAt.Local().Format("15:04:05"), e.Actor, e.Line, e.Outcome)
				}
				return nil
			}),

		dispatch.NewCommand[*Session]("purge").
			Description("Delete old audit log entries.").
			Permission(dispatch.PermissionOf("ordersh.admin")).
			Flag(dispatch.FlagDefinition[*Session]{
				Name:        "older-than",
				Aliases:     []string{"o"},
				Description: "Only delete entries older than this, e.g. 720h.",
				Parser:      parsers.Duration[*Session](),
			}).
			Flag(dispatch.FlagDefinition[*Session]{
				Name:        "force",
				Aliases:     []string{"f"},
				Description: "Skip the dry run and actually delete.",
			}).
			HandlerFunc(purgeHandler),

		dispatch.NewCommand[*Session]("help").
			Description("List available commands.").
			HandlerFunc(func(cctx *dispatch.Context[*Session]) error {
				return printHelp(cctx.Sender(), m)
			}),

		dispatch.NewCommand[*Session]("shutdown", "exit", "quit").
			Description("Leave the shell.").
			HandlerFunc(func(cctx *dispatch.Context[*Session]) error {
				s := cctx.Sender()
				s.quitRequested = true
				s.printf("bye")
				return nil
			}),
	}
}

func banHandler(cctx *dispatch.Context[*Session]) error {
	s := cctx.Sender()
	target := dispatch.GetOr(cctx, "player", "")
	reason := dispatch.GetOr(cctx, "reason", "no reason given")
	flags := cctx.Flags()

	verdict := "permanently"
	if d := flags.Duration("duration", 0); d > 0 {
		verdict = "for " + d.String()
	}
	s.printf("banned %s %s: %s", target, verdict, reason)
	if !flags.Has("silent") {
		s.printf("(broadcast) %s was banned by %s", target, s.Actor)
	}
	s.logger.Info("player banned", "actor", s.Actor, "target", target, "reason", reason)
	return nil
}

func purgeHandler(cctx *dispatch.Context[*Session]) error {
	s := cctx.Sender()
	flags := cctx.Flags()

	cutoff := time.Now().Add(-flags.Duration("older-than", 0))
	if !flags.Has("force") {
		entries, err := s.store.Recent(1000)
		if err != nil {
			return err
		}
		var n int
		for _, e := range entries {
			if e.ExecutedAt.Before(cutoff) {
				n++
			}
		}
		s.printf("would delete %d entries; pass --force to proceed", n)
		return nil
	}

	deleted, err := s.store.PurgeBefore(cutoff)
	if err != nil {
		return err
	}
	s.printf("deleted %d audit entries", deleted)
	return nil
}

func printHelp(s *Session, m *dispatch.Manager[*Session]) error {
	type row struct{ syntax, desc string }
	var rows []row
	for _, cmd := range m.Tree().Commands() {
		if _, hidden := cmd.Meta(dispatch.MetaHidden); hidden {
			continue
		}
		desc, _ := cmd.Meta(dispatch.MetaDescription)
		rows = append(rows, row{cmd.Syntax(), desc})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].syntax < rows[j].syntax })

	width := 0
	for _, r := range rows {
		if len(r.syntax) > width {
			width = len(r.syntax)
		}
	}
	for _, r := range rows {
		s.printf("  %s%s  %s", r.syntax, strings.Repeat(" ", width-len(r.syntax)), r.desc)
	}
	return nil
}
