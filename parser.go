package dispatch

// ArgumentParser turns remaining input into a typed value. Ordinary parse
// failures are returned as error values, never panics; the tree captures
// them and ranks competing failures across sibling branches.
//
// Parsers must be stateless: one parser instance is shared across
// concurrent invocations with distinct contexts.
//
// A parser consumes zero or more tokens from the input on success. The tree
// snapshots and restores the cursor around failed attempts, so a parser may
// consume before discovering a failure.
type ArgumentParser[C any] interface {
	Parse(cctx *Context[C], in *Input) (any, error)
}

// ParserFunc adapts a plain function to the ArgumentParser interface.
type ParserFunc[C any] func(cctx *Context[C], in *Input) (any, error)

func (f ParserFunc[C]) Parse(cctx *Context[C], in *Input) (any, error) {
	return f(cctx, in)
}

// ParseResult is the value-carrying outcome of an asynchronous parse.
type ParseResult struct {
	Value any
	Err   error
}

// FutureParser is implemented by parsers that complete asynchronously, for
// example while awaiting a cross-thread platform lookup. The tree receives
// from the returned channel before touching any later component, so
// left-to-right consumption order holds even under asynchronous parsers.
type FutureParser[C any] interface {
	ParseFuture(cctx *Context[C], in *Input) <-chan ParseResult
}

// Suggester is implemented by parsers that can propose completions for a
// partially typed token. It is only consulted during a suggestions pass and
// must tolerate unparsable partial input without error.
type Suggester[C any] interface {
	Suggestions(cctx *Context[C], partial string) []Suggestion
}

// MultiTokenParser is implemented by parsers that consume a fixed number of
// tokens greater than one. The count is advisory; the authoritative contract
// is how far the parser advances the input cursor.
type MultiTokenParser interface {
	RequestedArgumentCount() int
}

// SuggestionProviderFunc supplies completions for a component, overriding
// whatever its parser would suggest.
type SuggestionProviderFunc[C any] func(cctx *Context[C], partial string) []Suggestion

// parseComponent runs a component's parser, honoring the asynchronous
// variant when implemented.
func parseComponent[C any](cctx *Context[C], in *Input, parser ArgumentParser[C]) (any, error) {
	if fp, ok := parser.(FutureParser[C]); ok {
		res := <-fp.ParseFuture(cctx, in)
		return res.Value, res.Err
	}
	return parser.Parse(cctx, in)
}
