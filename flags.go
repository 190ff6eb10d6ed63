package dispatch

import (
	"fmt"
	"strings"
	"time"
)

var emptyFlags = &ParsedFlags{}

// ParsedFlags provides typed access to the flag values parsed for one
// invocation.
type ParsedFlags struct {
	values map[string]any
}

func newParsedFlags() *ParsedFlags {
	return &ParsedFlags{values: make(map[string]any)}
}

func (f *ParsedFlags) set(name string, value any) {
	f.values[name] = value
}

// Has reports whether the flag was present.
func (f *ParsedFlags) Has(name string) bool {
	_, ok := f.values[name]
	return ok
}

// Value returns the raw parsed value of a flag.
func (f *ParsedFlags) Value(name string) (any, bool) {
	v, ok := f.values[name]
	return v, ok
}

// String returns the flag's value as a string, or defaultVal when absent or
// not a string.
func (f *ParsedFlags) String(name, defaultVal string) string {
	if v, ok := f.values[name].(string); ok {
		return v
	}
	return defaultVal
}

// Int returns the flag's value as an int, widening from the integer types
// the standard parsers produce, or defaultVal when absent.
func (f *ParsedFlags) Int(name string, defaultVal int) int {
	switch v := f.values[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	default:
		return defaultVal
	}
}

// Duration returns the flag's value as a time.Duration, or defaultVal when
// absent.
func (f *ParsedFlags) Duration(name string, defaultVal time.Duration) time.Duration {
	if v, ok := f.values[name].(time.Duration); ok {
		return v
	}
	return defaultVal
}

// parseFlags scans the remaining tokens for recognized --name/-alias
// markers, letting each valued flag consume its own tokens through its
// parser. Token order among flags is free; anything that is not flag syntax
// is an error.
func parseFlags[C any](cctx *Context[C], in *Input, comp Component[C]) (*ParsedFlags, error) {
	pf := newParsedFlags()
	for in.HasRemainingInput() {
		if in.onlyTrailingTokenLeft() {
			in.ReadString()
			break
		}
		tok := in.PeekString()
		switch {
		case strings.HasPrefix(tok, "--"):
			in.ReadString()
			name := strings.TrimPrefix(tok, "--")
			var inline string
			hasInline := false
			if idx := strings.IndexByte(name, '='); idx >= 0 {
				inline = name[idx+1:]
				name = name[:idx]
				hasInline = true
			}
			def := comp.findFlag(name)
			if def == nil {
				return nil, &UnknownFlagError{Flag: "--" + name}
			}
			if err := consumeFlagValue(cctx, in, pf, def, inline, hasInline); err != nil {
				return nil, err
			}
		case strings.HasPrefix(tok, "-") && len(tok) > 1:
			in.ReadString()
			alias := strings.TrimPrefix(tok, "-")
			if def := comp.findFlagAlias(alias); def != nil {
				if err := consumeFlagValue(cctx, in, pf, def, "", false); err != nil {
					return nil, err
				}
				continue
			}
			// a cluster of single-character presence aliases, e.g. -sv
			for _, r := range alias {
				def := comp.findFlagAlias(string(r))
				if def == nil || def.Parser != nil {
					return nil, &UnknownFlagError{Flag: "-" + string(r)}
				}
				if pf.Has(def.Name) {
					return nil, &ArgumentParseError{
						Component: def.Name,
						Cause:     fmt.Errorf("flag --%s given more than once", def.Name),
					}
				}
				pf.set(def.Name, true)
			}
		default:
			return nil, &ArgumentParseError{
				Component: comp.Name(),
				Cause:     fmt.Errorf("expected a flag, found %q", tok),
			}
		}
	}
	return pf, nil
}

// consumeFlagValue parses a flag's value from an inline =value, from the
// following tokens, or records presence for parserless flags.
func consumeFlagValue[C any](cctx *Context[C], in *Input, pf *ParsedFlags, def *FlagDefinition[C], inline string, hasInline bool) error {
	if pf.Has(def.Name) {
		return &ArgumentParseError{
			Component: def.Name,
			Cause:     fmt.Errorf("flag --%s given more than once", def.Name),
		}
	}
	if def.Parser == nil {
		if hasInline {
			return &ArgumentParseError{
				Component: def.Name,
				Cause:     fmt.Errorf("flag --%s takes no value", def.Name),
			}
		}
		pf.set(def.Name, true)
		return nil
	}
	src := in
	if hasInline {
		src = NewInput(inline)
	} else if in.exhaustedForParse() {
		return &ArgumentParseError{
			Component: def.Name,
			Cause:     fmt.Errorf("flag --%s requires a value", def.Name),
		}
	}
	before := src.Clone()
	val, err := parseComponent(cctx, src, def.Parser)
	if err != nil {
		return &ArgumentParseError{
			Component: def.Name,
			Consumed:  before.Difference(src),
			Cause:     err,
		}
	}
	pf.set(def.Name, val)
	return nil
}
