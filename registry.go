package dispatch

import (
	"fmt"
	"sort"
	"sync"
)

// ParserRegistry maps names to shared argument parsers. It replaces the
// ambient/static registries of other command frameworks: construct it once
// at startup, populate it, and pass it by reference to whatever builds
// commands. Read-mostly after initial configuration.
type ParserRegistry[C any] struct {
	mu      sync.RWMutex
	parsers map[string]ArgumentParser[C]
}

// NewParserRegistry creates an empty registry.
func NewParserRegistry[C any]() *ParserRegistry[C] {
	return &ParserRegistry[C]{parsers: make(map[string]ArgumentParser[C])}
}

// RegisterParser adds a named parser. Registering the same name twice is an
// error; parsers are meant to be configured once.
func (r *ParserRegistry[C]) RegisterParser(name string, p ArgumentParser[C]) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.parsers[name]; exists {
		return fmt.Errorf("dispatch: parser %q already registered", name)
	}
	r.parsers[name] = p
	return nil
}

// Parser looks up a parser by name.
func (r *ParserRegistry[C]) Parser(name string) (ArgumentParser[C], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.parsers[name]
	return p, ok
}

// Names lists the registered parser names, sorted.
func (r *ParserRegistry[C]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.parsers))
	for name := range r.parsers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
