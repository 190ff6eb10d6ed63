package dispatch

import "strings"

// Input is a cursor over a raw command line. Tokens are separated by single
// spaces; a trailing space yields one trailing empty token so that a
// suggestions pass can complete the "next" argument.
//
// The zero cursor sits before the first token. Reading past the final token
// marks the input as fully consumed.
type Input struct {
	raw    string
	cursor int
}

// NewInput wraps a raw command line in a fresh cursor.
func NewInput(raw string) *Input {
	return &Input{raw: raw}
}

// Raw returns the original string the cursor was created from.
func (i *Input) Raw() string {
	return i.raw
}

// Cursor returns the byte offset of the next unread token.
func (i *Input) Cursor() int {
	if i.cursor > len(i.raw) {
		return len(i.raw)
	}
	return i.cursor
}

// HasRemainingInput reports whether at least one token (possibly the trailing
// empty token) has not been consumed yet.
func (i *Input) HasRemainingInput() bool {
	return i.cursor <= len(i.raw)
}

// RemainingInput returns the unconsumed portion of the raw string.
func (i *Input) RemainingInput() string {
	if i.cursor >= len(i.raw) {
		return ""
	}
	return i.raw[i.cursor:]
}

// RemainingTokens counts the tokens that have not been consumed, including a
// trailing empty token left by a trailing space.
func (i *Input) RemainingTokens() int {
	if !i.HasRemainingInput() {
		return 0
	}
	return strings.Count(i.RemainingInput(), " ") + 1
}

// PeekString returns the next token without consuming it.
func (i *Input) PeekString() string {
	if i.cursor >= len(i.raw) {
		return ""
	}
	rest := i.raw[i.cursor:]
	if idx := strings.IndexByte(rest, ' '); idx >= 0 {
		return rest[:idx]
	}
	return rest
}

// ReadString consumes the next token and its separator, returning the token.
// Reading when no token remains returns the empty string.
func (i *Input) ReadString() string {
	tok := i.PeekString()
	if i.cursor >= len(i.raw) {
		// consume the trailing empty token, if any
		i.cursor = len(i.raw) + 1
		return tok
	}
	i.cursor += len(tok)
	if i.cursor < len(i.raw) && i.raw[i.cursor] == ' ' {
		i.cursor++
	} else {
		i.cursor = len(i.raw) + 1
	}
	return tok
}

// ReadRemaining consumes everything that is left and returns it verbatim.
// Used by greedy parsers that swallow the rest of the line.
func (i *Input) ReadRemaining() string {
	rest := i.RemainingInput()
	i.cursor = len(i.raw) + 1
	return rest
}

// ReadRaw consumes n bytes of the remaining input plus at most one following
// separator. Used by parsers that consume variable-width input themselves,
// such as quoted strings.
func (i *Input) ReadRaw(n int) string {
	rest := i.RemainingInput()
	if n > len(rest) {
		n = len(rest)
	}
	out := rest[:n]
	i.cursor += n
	if i.cursor < len(i.raw) && i.raw[i.cursor] == ' ' {
		i.cursor++
	} else if i.cursor >= len(i.raw) {
		i.cursor = len(i.raw) + 1
	}
	return out
}

// Difference returns the substring consumed between this snapshot and a later
// cursor state over the same raw string. It recovers exactly the text a
// parser examined.
func (i *Input) Difference(later *Input) string {
	from := i.Cursor()
	to := later.Cursor()
	if from > to {
		from, to = to, from
	}
	return i.raw[from:to]
}

// Clone returns an independent copy of the cursor state.
func (i *Input) Clone() *Input {
	c := *i
	return &c
}

// onlyTrailingTokenLeft reports whether the sole unconsumed token is the
// empty token produced by a trailing space. An execution parse treats this
// state as exhausted; a suggestions pass treats it as the completion target.
func (i *Input) onlyTrailingTokenLeft() bool {
	return i.HasRemainingInput() && i.RemainingTokens() == 1 && i.PeekString() == ""
}

// exhaustedForParse reports whether an execution parse should consider the
// input fully consumed.
func (i *Input) exhaustedForParse() bool {
	return !i.HasRemainingInput() || i.onlyTrailingTokenLeft()
}
