package dispatch

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRegistrationClosed is returned when a command is inserted after the
// tree has been frozen by the first execution or suggestion pass.
var ErrRegistrationClosed = errors.New("dispatch: command registration is closed")

// ErrExecutionInterrupted is returned by a postprocessor to stop the
// pipeline without reporting a failure to the sender.
var ErrExecutionInterrupted = errors.New("dispatch: execution interrupted")

// AmbiguityError is raised at insertion time when two sibling components
// cannot be statically disambiguated. It is never produced during parsing.
type AmbiguityError struct {
	Component string
	Conflict  string
	Reason    string
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("dispatch: ambiguous registration of %q against sibling %q: %s",
		e.Component, e.Conflict, e.Reason)
}

// RegistrationError wraps structural problems detected while inserting a
// command, other than sibling ambiguity.
type RegistrationError struct {
	Command string
	Reason  string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("dispatch: cannot register %q: %s", e.Command, e.Reason)
}

// NoSuchCommandError reports that input did not match any literal at the
// root or at some depth. Suggestions carries "did you mean" candidates.
type NoSuchCommandError struct {
	Token       string
	Suggestions []string
}

func (e *NoSuchCommandError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("dispatch: unknown command %q", e.Token)
	}
	return fmt.Sprintf("dispatch: unknown command %q (did you mean %s?)",
		e.Token, strings.Join(e.Suggestions, ", "))
}

// InvalidSyntaxError reports that input ran out before reaching a command,
// naming the syntax that was expected next.
type InvalidSyntaxError struct {
	Syntax string
}

func (e *InvalidSyntaxError) Error() string {
	return fmt.Sprintf("dispatch: invalid command syntax, expected %s", e.Syntax)
}

// ArgumentParseError wraps a parser rejection. Consumed holds the input the
// parser examined before failing.
type ArgumentParseError struct {
	Component string
	Consumed  string
	Cause     error
}

func (e *ArgumentParseError) Error() string {
	return fmt.Sprintf("dispatch: invalid value for argument %q: %v", e.Component, e.Cause)
}

func (e *ArgumentParseError) Unwrap() error { return e.Cause }

// UnknownFlagError reports a token with a flag prefix that matches no
// registered flag.
type UnknownFlagError struct {
	Flag string
}

func (e *UnknownFlagError) Error() string {
	return fmt.Sprintf("dispatch: unknown flag %q", e.Flag)
}

// TooManyArgumentsError reports unconsumed tokens after a complete match.
type TooManyArgumentsError struct {
	Syntax    string
	Remaining string
}

func (e *TooManyArgumentsError) Error() string {
	return fmt.Sprintf("dispatch: too many arguments, %q left over after %s", e.Remaining, e.Syntax)
}

// NoPermissionError reports a failed permission check at a terminal node.
// When intermediary permission enforcement is enabled the tree produces a
// NoSuchCommandError instead, so the sender cannot probe for gated commands.
type NoPermissionError struct {
	Permission Permission
	Syntax     string
}

func (e *NoPermissionError) Error() string {
	return fmt.Sprintf("dispatch: missing permission %s for %s", e.Permission, e.Syntax)
}

// CommandExecutionError wraps an error or panic escaping an execution
// handler. The original cause is preserved and retrievable via Unwrap.
type CommandExecutionError struct {
	Cause error
}

func (e *CommandExecutionError) Error() string {
	return fmt.Sprintf("dispatch: command execution failed: %v", e.Cause)
}

func (e *CommandExecutionError) Unwrap() error { return e.Cause }
