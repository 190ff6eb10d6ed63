package dispatch

import (
	"context"
	"fmt"
)

// internal store keys.
const keyFlags = "__flags__"

// Context is the per-invocation state bag: the sender, parsed argument
// values keyed by component name, and bookkeeping such as the raw input
// snapshot. A fresh Context is created for every invocation and discarded
// once the handler completes, so it needs no locking.
type Context[C any] struct {
	ctx         context.Context
	sender      C
	suggestions bool
	rawInput    *Input
	store       map[string]any
}

// NewContext creates a per-invocation context. suggestions marks a
// parse-for-completion pass; some parsers tolerate partial trailing input
// only in that mode.
func NewContext[C any](ctx context.Context, sender C, rawInput string, suggestions bool) *Context[C] {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Context[C]{
		ctx:         ctx,
		sender:      sender,
		suggestions: suggestions,
		rawInput:    NewInput(rawInput),
		store:       make(map[string]any),
	}
}

// Context returns the invocation's context.Context, for parsers and
// handlers that block.
func (c *Context[C]) Context() context.Context { return c.ctx }

// Sender returns the opaque sender this invocation runs for.
func (c *Context[C]) Sender() C { return c.sender }

// IsSuggestions reports whether this is a parse-for-completion pass.
func (c *Context[C]) IsSuggestions() bool { return c.suggestions }

// RawInput returns a copy of the original token/cursor state.
func (c *Context[C]) RawInput() *Input { return c.rawInput.Clone() }

// Set stores a value under a key. A value, once stored, is immutable for
// the life of the context: overwriting is programmer misuse and panics.
func (c *Context[C]) Set(key string, value any) {
	if _, exists := c.store[key]; exists {
		panic(fmt.Sprintf("dispatch: context key %q already set", key))
	}
	c.store[key] = value
}

// Contains reports whether a value is stored under key.
func (c *Context[C]) Contains(key string) bool {
	_, ok := c.store[key]
	return ok
}

// Value returns the raw stored value.
func (c *Context[C]) Value(key string) (any, bool) {
	v, ok := c.store[key]
	return v, ok
}

// ValueOr returns the stored value or a fallback.
func (c *Context[C]) ValueOr(key string, fallback any) any {
	if v, ok := c.store[key]; ok {
		return v
	}
	return fallback
}

// Flags returns typed access to the flag values parsed for this invocation.
// Always non-nil; empty when the command declared no flags.
func (c *Context[C]) Flags() *ParsedFlags {
	if v, ok := c.store[keyFlags]; ok {
		return v.(*ParsedFlags)
	}
	return emptyFlags
}

// set stores a value, overwriting silently. The tree uses it while
// backtracking across branches; within one successful parse every key is
// still written at most once.
func (c *Context[C]) set(key string, value any) {
	c.store[key] = value
}

// Get returns the value stored under key, asserted to T.
func Get[T any, C any](c *Context[C], key string) (T, bool) {
	var zero T
	v, ok := c.store[key]
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// GetOr returns the value stored under key, or fallback when absent or of
// the wrong type.
func GetOr[T any, C any](c *Context[C], key string, fallback T) T {
	if v, ok := Get[T](c, key); ok {
		return v
	}
	return fallback
}
