package dispatch

// ComponentKind discriminates the variants of a command component. The tree
// dispatches on it with exhaustive switches rather than virtual methods.
type ComponentKind int

const (
	KindLiteral ComponentKind = iota
	KindRequiredVariable
	KindOptionalVariable
	KindFlag
)

func (k ComponentKind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindRequiredVariable:
		return "required"
	case KindOptionalVariable:
		return "optional"
	case KindFlag:
		return "flag"
	default:
		return "unknown"
	}
}

// Preprocessor runs before a component's parser and may short-circuit the
// attempt with a rejection.
type Preprocessor[C any] func(cctx *Context[C], in *Input) error

// FlagDefinition describes one named, positionally independent switch
// (--name or -alias). A nil Parser makes it a presence flag.
type FlagDefinition[C any] struct {
	Name        string
	Aliases     []string
	Description string
	Parser      ArgumentParser[C]
}

// Component is one node's worth of matching logic: a literal keyword, a
// typed variable argument, or a collector for trailing flags. Components
// are values; the With* methods return modified copies.
type Component[C any] struct {
	name          string
	kind          ComponentKind
	aliases       []string
	parser        ArgumentParser[C]
	defaultValue  any
	hasDefault    bool
	suggestions   SuggestionProviderFunc[C]
	preprocessors []Preprocessor[C]
	flags         []FlagDefinition[C]
}

// LiteralComponent builds a fixed-keyword component.
func LiteralComponent[C any](name string, aliases ...string) Component[C] {
	return Component[C]{name: name, kind: KindLiteral, aliases: aliases}
}

// RequiredComponent builds a variable component that must be present.
func RequiredComponent[C any](name string, parser ArgumentParser[C]) Component[C] {
	return Component[C]{name: name, kind: KindRequiredVariable, parser: parser}
}

// OptionalComponent builds a variable component that may be absent. The
// context will hold no value for it when the sender omits it.
func OptionalComponent[C any](name string, parser ArgumentParser[C]) Component[C] {
	return Component[C]{name: name, kind: KindOptionalVariable, parser: parser}
}

// OptionalComponentWithDefault builds an optional variable component whose
// default value is stored in the context when the sender omits it.
func OptionalComponentWithDefault[C any](name string, parser ArgumentParser[C], def any) Component[C] {
	return Component[C]{
		name: name, kind: KindOptionalVariable, parser: parser,
		defaultValue: def, hasDefault: true,
	}
}

// flagComponent aggregates a command's flag definitions into the single
// trailing collector node the tree scans out of positional order.
func flagComponent[C any](flags []FlagDefinition[C]) Component[C] {
	return Component[C]{name: "flags", kind: KindFlag, flags: flags}
}

// WithSuggestions overrides the component's suggestion source.
func (c Component[C]) WithSuggestions(provider SuggestionProviderFunc[C]) Component[C] {
	c.suggestions = provider
	return c
}

// WithPreprocessor appends a preprocessor, preserving order.
func (c Component[C]) WithPreprocessor(pre Preprocessor[C]) Component[C] {
	pres := make([]Preprocessor[C], len(c.preprocessors), len(c.preprocessors)+1)
	copy(pres, c.preprocessors)
	c.preprocessors = append(pres, pre)
	return c
}

// Name returns the literal keyword or the argument name.
func (c Component[C]) Name() string { return c.name }

// Kind returns the component variant.
func (c Component[C]) Kind() ComponentKind { return c.kind }

// Aliases returns the literal's alternative keywords.
func (c Component[C]) Aliases() []string { return c.aliases }

// Parser returns the argument parser backing a variable component.
func (c Component[C]) Parser() ArgumentParser[C] { return c.parser }

// DefaultValue returns the declared default, if any.
func (c Component[C]) DefaultValue() (any, bool) { return c.defaultValue, c.hasDefault }

// Flags returns the definitions carried by a flag collector.
func (c Component[C]) Flags() []FlagDefinition[C] { return c.flags }

func (c Component[C]) isVariable() bool {
	return c.kind == KindRequiredVariable || c.kind == KindOptionalVariable
}

// matchesLiteral compares a token case-sensitively against the literal's
// name and aliases.
func (c Component[C]) matchesLiteral(tok string) bool {
	if c.kind != KindLiteral {
		return false
	}
	if tok == c.name {
		return true
	}
	for _, a := range c.aliases {
		if tok == a {
			return true
		}
	}
	return false
}

// sharesLiteralToken reports whether two literal components could both
// match some token, which makes them ambiguous siblings.
func (c Component[C]) sharesLiteralToken(other Component[C]) bool {
	mine := append([]string{c.name}, c.aliases...)
	theirs := append([]string{other.name}, other.aliases...)
	for _, m := range mine {
		for _, t := range theirs {
			if m == t {
				return true
			}
		}
	}
	return false
}

// runPreprocessors applies the component's preprocessors in order, stopping
// at the first rejection.
func (c Component[C]) runPreprocessors(cctx *Context[C], in *Input) error {
	for _, pre := range c.preprocessors {
		if err := pre(cctx, in); err != nil {
			return err
		}
	}
	return nil
}

// suggestionsFor resolves the component's completion candidates: the
// explicit provider wins, then a Suggester parser, then nothing.
func (c Component[C]) suggestionsFor(cctx *Context[C], partial string) []Suggestion {
	if c.suggestions != nil {
		return c.suggestions(cctx, partial)
	}
	if s, ok := c.parser.(Suggester[C]); ok {
		return s.Suggestions(cctx, partial)
	}
	return nil
}

// findFlag resolves a long flag name to its definition.
func (c Component[C]) findFlag(name string) *FlagDefinition[C] {
	for i := range c.flags {
		if c.flags[i].Name == name {
			return &c.flags[i]
		}
	}
	return nil
}

// findFlagAlias resolves a short alias to its definition.
func (c Component[C]) findFlagAlias(alias string) *FlagDefinition[C] {
	for i := range c.flags {
		for _, a := range c.flags[i].Aliases {
			if a == alias {
				return &c.flags[i]
			}
		}
	}
	return nil
}
