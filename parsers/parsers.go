// Package parsers provides the standard argument parsers for the dispatch
// framework: numbers, booleans, strings in their single/greedy/quoted
// flavors, enums, durations, and UUIDs. All parsers are stateless and safe
// to share across commands and concurrent invocations.
package parsers

import (
	"fmt"
	"math"
	"strconv"

	"github.com/helmcrest/dispatch"
)

type intParser[C any] struct {
	min, max int64
}

// Integer parses a single token as an int64.
func Integer[C any]() dispatch.ArgumentParser[C] {
	return intParser[C]{min: math.MinInt64, max: math.MaxInt64}
}

// IntegerRange parses a single token as an int64 within [min, max].
func IntegerRange[C any](min, max int64) dispatch.ArgumentParser[C] {
	return intParser[C]{min: min, max: max}
}

func (p intParser[C]) Parse(_ *dispatch.Context[C], in *dispatch.Input) (any, error) {
	tok := in.ReadString()
	if tok == "" {
		return nil, fmt.Errorf("expected an integer")
	}
	n, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%q is not an integer", tok)
	}
	if n < p.min || n > p.max {
		return nil, fmt.Errorf("%d is outside the range %d..%d", n, p.min, p.max)
	}
	return n, nil
}

type floatParser[C any] struct{}

// Float parses a single token as a float64.
func Float[C any]() dispatch.ArgumentParser[C] {
	return floatParser[C]{}
}

func (floatParser[C]) Parse(_ *dispatch.Context[C], in *dispatch.Input) (any, error) {
	tok := in.ReadString()
	if tok == "" {
		return nil, fmt.Errorf("expected a number")
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return nil, fmt.Errorf("%q is not a number", tok)
	}
	return f, nil
}

type boolParser[C any] struct{}

// Bool parses true/false and the usual abbreviations.
func Bool[C any]() dispatch.ArgumentParser[C] {
	return boolParser[C]{}
}

func (boolParser[C]) Parse(_ *dispatch.Context[C], in *dispatch.Input) (any, error) {
	tok := in.ReadString()
	switch tok {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	default:
		return nil, fmt.Errorf("%q is not a boolean", tok)
	}
}

func (boolParser[C]) Suggestions(_ *dispatch.Context[C], partial string) []dispatch.Suggestion {
	var out []dispatch.Suggestion
	for _, cand := range []string{"true", "false"} {
		if dispatch.PrefixFilter(partial, cand) {
			out = append(out, dispatch.SimpleSuggestion(cand))
		}
	}
	return out
}
