package dispatch

import "fmt"

// ExecutionHandler runs the matched command against a populated context.
type ExecutionHandler[C any] interface {
	Execute(cctx *Context[C]) error
}

// ExecutionHandlerFunc adapts a plain function to ExecutionHandler.
type ExecutionHandlerFunc[C any] func(cctx *Context[C]) error

func (f ExecutionHandlerFunc[C]) Execute(cctx *Context[C]) error {
	return f(cctx)
}

// FutureExecutionHandler is implemented by handlers that complete
// asynchronously. The coordinator awaits the returned channel; when
// synchronized execution is enabled, the execution permit is held until the
// channel delivers.
type FutureExecutionHandler[C any] interface {
	ExecuteFuture(cctx *Context[C]) <-chan error
}

// Well-known meta keys.
const (
	MetaDescription = "description"
	MetaHidden      = "hidden"
)

// Command is one fully specified path through the tree: an ordered
// component sequence, a permission, an execution handler, and an immutable
// meta map. Commands are immutable after insertion.
type Command[C any] struct {
	components []Component[C]
	flags      []FlagDefinition[C]
	permission Permission
	handler    ExecutionHandler[C]
	meta       map[string]string
}

// Components returns the ordered component sequence, excluding the implicit
// flag collector.
func (c *Command[C]) Components() []Component[C] { return c.components }

// FlagDefinitions returns the command's declared flags.
func (c *Command[C]) FlagDefinitions() []FlagDefinition[C] { return c.flags }

// Permission returns the command's permission; may be nil.
func (c *Command[C]) Permission() Permission { return c.permission }

// Handler returns the execution handler.
func (c *Command[C]) Handler() ExecutionHandler[C] { return c.handler }

// Name returns the root literal keyword.
func (c *Command[C]) Name() string { return c.components[0].Name() }

// Meta looks up a metadata value.
func (c *Command[C]) Meta(key string) (string, bool) {
	v, ok := c.meta[key]
	return v, ok
}

// Syntax renders the command in canonical form, e.g.
// "ban <player> [reason] [--silent]".
func (c *Command[C]) Syntax() string {
	return renderSyntax(c.components, c.flags)
}

// CommandBuilder assembles a Command step by step. Every builder call
// returns a new builder value; a builder held by the caller is never
// mutated, so partial chains can be reused as templates.
type CommandBuilder[C any] struct {
	components []Component[C]
	flags      []FlagDefinition[C]
	permission Permission
	handler    ExecutionHandler[C]
	meta       map[string]string
}

// NewCommand starts a builder rooted at a literal keyword.
func NewCommand[C any](name string, aliases ...string) *CommandBuilder[C] {
	b := &CommandBuilder[C]{}
	return b.Component(LiteralComponent[C](name, aliases...))
}

func (b *CommandBuilder[C]) clone() *CommandBuilder[C] {
	nb := &CommandBuilder[C]{
		components: make([]Component[C], len(b.components)),
		flags:      make([]FlagDefinition[C], len(b.flags)),
		permission: b.permission,
		handler:    b.handler,
		meta:       make(map[string]string, len(b.meta)),
	}
	copy(nb.components, b.components)
	copy(nb.flags, b.flags)
	for k, v := range b.meta {
		nb.meta[k] = v
	}
	return nb
}

// Component appends an arbitrary component.
func (b *CommandBuilder[C]) Component(c Component[C]) *CommandBuilder[C] {
	nb := b.clone()
	nb.components = append(nb.components, c)
	return nb
}

// Literal appends a fixed keyword.
func (b *CommandBuilder[C]) Literal(name string, aliases ...string) *CommandBuilder[C] {
	return b.Component(LiteralComponent[C](name, aliases...))
}

// Required appends a required variable argument.
func (b *CommandBuilder[C]) Required(name string, parser ArgumentParser[C]) *CommandBuilder[C] {
	return b.Component(RequiredComponent(name, parser))
}

// Optional appends an optional variable argument with no default.
func (b *CommandBuilder[C]) Optional(name string, parser ArgumentParser[C]) *CommandBuilder[C] {
	return b.Component(OptionalComponent(name, parser))
}

// OptionalWithDefault appends an optional variable argument whose default is
// stored when the sender omits it.
func (b *CommandBuilder[C]) OptionalWithDefault(name string, parser ArgumentParser[C], def any) *CommandBuilder[C] {
	return b.Component(OptionalComponentWithDefault(name, parser, def))
}

// Flag declares a named switch the sender may pass in any order after the
// positional arguments.
func (b *CommandBuilder[C]) Flag(def FlagDefinition[C]) *CommandBuilder[C] {
	nb := b.clone()
	nb.flags = append(nb.flags, def)
	return nb
}

// Permission sets the permission required to execute (and see) the command.
func (b *CommandBuilder[C]) Permission(p Permission) *CommandBuilder[C] {
	nb := b.clone()
	nb.permission = p
	return nb
}

// Handler sets the execution handler.
func (b *CommandBuilder[C]) Handler(h ExecutionHandler[C]) *CommandBuilder[C] {
	nb := b.clone()
	nb.handler = h
	return nb
}

// HandlerFunc sets a plain function as the execution handler.
func (b *CommandBuilder[C]) HandlerFunc(f func(cctx *Context[C]) error) *CommandBuilder[C] {
	return b.Handler(ExecutionHandlerFunc[C](f))
}

// Meta attaches a metadata entry.
func (b *CommandBuilder[C]) Meta(key, value string) *CommandBuilder[C] {
	nb := b.clone()
	nb.meta[key] = value
	return nb
}

// Description attaches the well-known description meta entry.
func (b *CommandBuilder[C]) Description(text string) *CommandBuilder[C] {
	return b.Meta(MetaDescription, text)
}

// Hidden marks the command as hidden from help listings.
func (b *CommandBuilder[C]) Hidden() *CommandBuilder[C] {
	return b.Meta(MetaHidden, "true")
}

// Build validates the component sequence and produces an immutable Command.
func (b *CommandBuilder[C]) Build() (*Command[C], error) {
	if len(b.components) == 0 {
		return nil, &RegistrationError{Command: "<empty>", Reason: "a command needs at least one component"}
	}
	name := b.components[0].Name()
	if b.handler == nil {
		return nil, &RegistrationError{Command: name, Reason: "a command needs an execution handler"}
	}
	if b.components[0].Kind() != KindLiteral {
		return nil, &RegistrationError{Command: name, Reason: "the first component must be a literal"}
	}
	seen := make(map[string]bool, len(b.components))
	optionalSeen := false
	for _, comp := range b.components {
		if comp.Kind() == KindFlag {
			return nil, &RegistrationError{Command: name, Reason: "flags must be declared via Flag, not as components"}
		}
		if comp.isVariable() {
			if comp.Parser() == nil {
				return nil, &RegistrationError{Command: name,
					Reason: fmt.Sprintf("variable argument %q has no parser", comp.Name())}
			}
			if seen[comp.Name()] {
				return nil, &RegistrationError{Command: name,
					Reason: fmt.Sprintf("duplicate argument name %q", comp.Name())}
			}
			seen[comp.Name()] = true
		}
		if comp.Kind() == KindOptionalVariable {
			optionalSeen = true
		} else if optionalSeen {
			return nil, &RegistrationError{Command: name,
				Reason: fmt.Sprintf("required component %q follows an optional one", comp.Name())}
		}
	}
	for i := range b.flags {
		if b.flags[i].Name == "" {
			return nil, &RegistrationError{Command: name, Reason: "flag with empty name"}
		}
		if seen[b.flags[i].Name] {
			return nil, &RegistrationError{Command: name,
				Reason: fmt.Sprintf("flag %q collides with an argument name", b.flags[i].Name)}
		}
		seen[b.flags[i].Name] = true
	}
	cmd := &Command[C]{
		components: make([]Component[C], len(b.components)),
		flags:      make([]FlagDefinition[C], len(b.flags)),
		permission: b.permission,
		handler:    b.handler,
		meta:       make(map[string]string, len(b.meta)),
	}
	copy(cmd.components, b.components)
	copy(cmd.flags, b.flags)
	for k, v := range b.meta {
		cmd.meta[k] = v
	}
	return cmd, nil
}
