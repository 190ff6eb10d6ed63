package parsers

import (
	"fmt"
	"strings"

	"github.com/helmcrest/dispatch"
)

// StringMode selects how much input a string parser consumes.
type StringMode int

const (
	// Single consumes exactly one whitespace-delimited token.
	Single StringMode = iota
	// Greedy consumes everything that remains on the line.
	Greedy
	// Quoted consumes one token, or a double-quoted span of raw input.
	Quoted
)

type stringParser[C any] struct {
	mode StringMode
}

// String parses string arguments in the given mode.
func String[C any](mode StringMode) dispatch.ArgumentParser[C] {
	return stringParser[C]{mode: mode}
}

func (p stringParser[C]) Parse(_ *dispatch.Context[C], in *dispatch.Input) (any, error) {
	switch p.mode {
	case Greedy:
		rest := in.ReadRemaining()
		if rest == "" {
			return nil, fmt.Errorf("expected text")
		}
		return rest, nil
	case Quoted:
		return parseQuoted(in)
	default:
		tok := in.ReadString()
		if tok == "" {
			return nil, fmt.Errorf("expected a string")
		}
		return tok, nil
	}
}

// parseQuoted consumes a double-quoted span verbatim, or falls back to a
// single token when the input does not start with a quote.
func parseQuoted(in *dispatch.Input) (any, error) {
	rest := in.RemainingInput()
	if !strings.HasPrefix(rest, `"`) {
		tok := in.ReadString()
		if tok == "" {
			return nil, fmt.Errorf("expected a string")
		}
		return tok, nil
	}
	closing := strings.IndexByte(rest[1:], '"')
	if closing < 0 {
		return nil, fmt.Errorf("unterminated quoted string")
	}
	in.ReadRaw(closing + 2)
	return rest[1 : closing+1], nil
}

type enumParser[C any] struct {
	values []string
}

// Enum parses one token against a fixed set of values, case-sensitively,
// and suggests the values during completion.
func Enum[C any](values ...string) dispatch.ArgumentParser[C] {
	return enumParser[C]{values: values}
}

func (p enumParser[C]) Parse(_ *dispatch.Context[C], in *dispatch.Input) (any, error) {
	tok := in.ReadString()
	for _, v := range p.values {
		if tok == v {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%q is not one of %s", tok, strings.Join(p.values, ", "))
}

func (p enumParser[C]) Suggestions(_ *dispatch.Context[C], partial string) []dispatch.Suggestion {
	var out []dispatch.Suggestion
	for _, v := range p.values {
		if dispatch.PrefixFilter(partial, v) {
			out = append(out, dispatch.SimpleSuggestion(v))
		}
	}
	return out
}
