package dispatch

import (
	"strings"
	"sync"
)

// treeNode is one node of the command trie. The synthetic root carries no
// component. Children keep insertion order; literals are tried before
// variables at each depth regardless of that order.
type treeNode[C any] struct {
	component *Component[C]
	parent    *treeNode[C]
	children  []*treeNode[C]
	owner     *Command[C]
}

func (n *treeNode[C]) addChild(comp Component[C]) *treeNode[C] {
	child := &treeNode[C]{component: &comp, parent: n}
	n.children = append(n.children, child)
	return child
}

func (n *treeNode[C]) removeChild(child *treeNode[C]) {
	for i, ch := range n.children {
		if ch == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}

func (n *treeNode[C]) flagChild() *treeNode[C] {
	for _, ch := range n.children {
		if ch.component.Kind() == KindFlag {
			return ch
		}
	}
	return nil
}

// Tree is the trie of all registered commands. It is mutated only during
// the registration phase; once the owning manager freezes registration,
// concurrent parse and suggestion passes are safe without locks.
type Tree[C any] struct {
	mu      sync.Mutex
	root    *treeNode[C]
	manager *Manager[C]
}

func newTree[C any](manager *Manager[C]) *Tree[C] {
	return &Tree[C]{root: &treeNode[C]{}, manager: manager}
}

// RootLiterals returns the names of the root-level keywords.
func (t *Tree[C]) RootLiterals() []string {
	var out []string
	for _, ch := range t.root.children {
		if ch.component.Kind() == KindLiteral {
			out = append(out, ch.component.Name())
		}
	}
	return out
}

// Commands collects every registered command, depth-first.
func (t *Tree[C]) Commands() []*Command[C] {
	var out []*Command[C]
	var walk func(n *treeNode[C])
	walk = func(n *treeNode[C]) {
		if n.owner != nil {
			out = append(out, n.owner)
		}
		for _, ch := range n.children {
			walk(ch)
		}
	}
	walk(t.root)
	return out
}

// insert adds a command's component chain to the trie. Structural conflicts
// with existing siblings are detected here and reported as errors; nothing
// is attached when validation fails.
func (t *Tree[C]) insert(cmd *Command[C]) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	// validation pass: walk the existing trie without mutating it
	node := t.root
	diverged := false
	for _, comp := range cmd.components {
		if diverged {
			continue
		}
		existing, err := findChild(node, comp)
		if err != nil {
			return err
		}
		if existing == nil {
			diverged = true
			continue
		}
		node = existing
	}
	if !diverged {
		terminal := node
		if len(cmd.flags) > 0 {
			if fc := terminal.flagChild(); fc != nil {
				terminal = fc
			} else {
				terminal = nil
			}
		}
		if terminal != nil && terminal.owner != nil {
			return &RegistrationError{
				Command: cmd.Name(),
				Reason:  "a command with the same component chain is already registered",
			}
		}
	}

	// attach pass
	node = t.root
	for _, comp := range cmd.components {
		existing, _ := findChild(node, comp)
		if existing == nil {
			existing = node.addChild(comp)
		} else if comp.Kind() == KindLiteral {
			mergeAliases(existing, comp)
		}
		node = existing
	}
	if len(cmd.flags) > 0 {
		fc := node.flagChild()
		if fc == nil {
			fc = node.addChild(flagComponent(cmd.flags))
		} else {
			mergeFlags(fc, cmd.flags)
		}
		node = fc
	}
	node.owner = cmd
	return nil
}

// delete removes a command and prunes every node exclusively reachable
// through it.
func (t *Tree[C]) delete(cmd *Command[C]) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	node := t.findTerminal(cmd)
	if node == nil || node.owner != cmd {
		return &RegistrationError{Command: cmd.Name(), Reason: "command is not registered"}
	}
	node.owner = nil
	for node != nil && node.parent != nil && node.owner == nil && len(node.children) == 0 {
		parent := node.parent
		parent.removeChild(node)
		node = parent
	}
	return nil
}

func (t *Tree[C]) findTerminal(cmd *Command[C]) *treeNode[C] {
	node := t.root
	for _, comp := range cmd.components {
		var next *treeNode[C]
		for _, ch := range node.children {
			c := *ch.component
			if c.Kind() == comp.Kind() && c.Name() == comp.Name() {
				next = ch
				break
			}
		}
		if next == nil {
			return nil
		}
		node = next
	}
	if len(cmd.flags) > 0 {
		return node.flagChild()
	}
	return node
}

// findChild locates the sibling a component merges into, or nil when a new
// node may be attached. Ambiguous sibling sets are insertion-time errors.
func findChild[C any](parent *treeNode[C], comp Component[C]) (*treeNode[C], error) {
	switch comp.Kind() {
	case KindLiteral:
		// every sibling is checked even after a name match so that a new
		// alias cannot collide with a different literal sibling
		var match *treeNode[C]
		for _, ch := range parent.children {
			c := *ch.component
			if c.Kind() != KindLiteral {
				continue
			}
			if c.Name() == comp.Name() {
				match = ch
				continue
			}
			if c.sharesLiteralToken(comp) {
				return nil, &AmbiguityError{
					Component: comp.Name(),
					Conflict:  c.Name(),
					Reason:    "literal siblings share a name or alias",
				}
			}
		}
		return match, nil
	case KindRequiredVariable, KindOptionalVariable:
		for _, ch := range parent.children {
			c := *ch.component
			if !c.isVariable() {
				continue
			}
			if c.Name() == comp.Name() && c.Kind() == comp.Kind() {
				// merged; the existing node's parser stays authoritative
				return ch, nil
			}
			return nil, &AmbiguityError{
				Component: comp.Name(),
				Conflict:  c.Name(),
				Reason:    "two variable arguments at the same depth cannot be disambiguated",
			}
		}
		return nil, nil
	default:
		return nil, nil
	}
}

func mergeAliases[C any](node *treeNode[C], comp Component[C]) {
	for _, alias := range comp.Aliases() {
		if !node.component.matchesLiteral(alias) {
			node.component.aliases = append(node.component.aliases, alias)
		}
	}
}

func mergeFlags[C any](node *treeNode[C], flags []FlagDefinition[C]) {
	for _, def := range flags {
		if node.component.findFlag(def.Name) == nil {
			node.component.flags = append(node.component.flags, def)
		}
	}
}

// parseFailure is a candidate diagnostic captured while trying a branch.
// The deepest failure, i.e. the branch that matched the most components and
// consumed the most input before failing, is the one surfaced to the
// caller. Ties keep the earliest-recorded failure, which follows
// registration order.
type parseFailure struct {
	err      error
	depth    int
	consumed int
}

func (f *parseFailure) betterThan(o *parseFailure) bool {
	if o == nil {
		return true
	}
	if f.depth != o.depth {
		return f.depth > o.depth
	}
	return f.consumed > o.consumed
}

type parseState[C any] struct {
	cctx *Context[C]
	best *parseFailure
}

func (s *parseState[C]) record(err error, depth, consumed int) {
	f := &parseFailure{err: err, depth: depth, consumed: consumed}
	if f.betterThan(s.best) {
		s.best = f
	}
}

// Parse walks the trie depth-first against the input. On a match it returns
// the owning command with the context populated; otherwise it returns the
// best-ranked failure across all attempted branches. Parse failures are
// carried as values throughout, never as panics.
func (t *Tree[C]) Parse(cctx *Context[C], in *Input) (*Command[C], error) {
	if in.exhaustedForParse() {
		return nil, t.noSuchCommand(cctx, "")
	}
	st := &parseState[C]{cctx: cctx}
	if cmd, ok := t.parseChildren(st, in, t.root, 0); ok {
		return cmd, nil
	}
	if st.best != nil {
		return nil, st.best.err
	}
	return nil, t.noSuchCommand(cctx, in.PeekString())
}

// noSuchCommand builds the unknown-command diagnostic. Did-you-mean
// candidates pass the same permission check as tab completion, so the error
// never names a command the sender cannot see.
func (t *Tree[C]) noSuchCommand(cctx *Context[C], tok string) error {
	var names []string
	for _, ch := range t.root.children {
		if ch.component.Kind() == KindLiteral && t.accessible(cctx, ch) {
			names = append(names, ch.component.Name())
		}
	}
	return &NoSuchCommandError{Token: tok, Suggestions: similarCommands(tok, names)}
}

// parseChildren tries the node's children against the remaining input:
// literals first, so unambiguous keyword dispatch never pays argument
// parsing cost, then variables in registration order, then the flag
// collector. The input must not be exhausted on entry.
func (t *Tree[C]) parseChildren(st *parseState[C], in *Input, node *treeNode[C], depth int) (*Command[C], bool) {
	for _, child := range node.children {
		comp := *child.component
		if comp.Kind() != KindLiteral || !comp.matchesLiteral(in.PeekString()) {
			continue
		}
		saved := *in
		in.ReadString()
		if cmd, ok := t.descend(st, in, child, depth+1); ok {
			return cmd, true
		}
		*in = saved
	}
	for _, child := range node.children {
		comp := *child.component
		if !comp.isVariable() {
			continue
		}
		saved := *in
		if err := comp.runPreprocessors(st.cctx, in); err != nil {
			st.record(&ArgumentParseError{Component: comp.Name(), Cause: err}, depth, saved.Cursor())
			*in = saved
			continue
		}
		before := in.Clone()
		val, err := parseComponent(st.cctx, in, comp.Parser())
		if err != nil {
			st.record(&ArgumentParseError{
				Component: comp.Name(),
				Consumed:  before.Difference(in),
				Cause:     err,
			}, depth, max(in.Cursor(), saved.Cursor()))
			*in = saved
			continue
		}
		st.cctx.set(comp.Name(), val)
		if cmd, ok := t.descend(st, in, child, depth+1); ok {
			return cmd, true
		}
		*in = saved
	}
	for _, child := range node.children {
		comp := *child.component
		if comp.Kind() != KindFlag {
			continue
		}
		saved := *in
		pf, err := parseFlags(st.cctx, in, comp)
		if err != nil {
			st.record(err, depth, in.Cursor())
			*in = saved
			continue
		}
		st.cctx.set(keyFlags, pf)
		if cmd, ok := t.descend(st, in, child, depth+1); ok {
			return cmd, true
		}
		*in = saved
	}
	if node.owner != nil {
		st.record(&TooManyArgumentsError{
			Syntax:    node.owner.Syntax(),
			Remaining: in.RemainingInput(),
		}, depth, in.Cursor())
	} else if depth > 0 {
		st.record(&InvalidSyntaxError{Syntax: nodeSyntax(node)}, depth, in.Cursor())
	}
	return nil, false
}

// descend continues below a node whose component just consumed input.
func (t *Tree[C]) descend(st *parseState[C], in *Input, node *treeNode[C], depth int) (*Command[C], bool) {
	if in.exhaustedForParse() {
		if in.HasRemainingInput() {
			in.ReadString() // swallow the trailing empty token
		}
		if node.owner != nil {
			if err := t.checkAccess(st.cctx, node.owner); err != nil {
				st.record(err, depth, in.Cursor())
				return nil, false
			}
			return node.owner, true
		}
		return t.completeWithDefaults(st, node, depth, in.Cursor())
	}
	return t.parseChildren(st, in, node, depth)
}

// completeWithDefaults finishes a parse whose input ran out before an
// owning node, by walking any chain of optional or flag components and
// storing their declared defaults. Commands with required components left
// unfilled fail with the expected syntax.
func (t *Tree[C]) completeWithDefaults(st *parseState[C], node *treeNode[C], depth, consumed int) (*Command[C], bool) {
	cur := node
	for cur.owner == nil {
		var next *treeNode[C]
		for _, child := range cur.children {
			k := child.component.Kind()
			if k == KindOptionalVariable || k == KindFlag {
				next = child
				break
			}
		}
		if next == nil {
			st.record(&InvalidSyntaxError{Syntax: nodeSyntax(cur)}, depth, consumed)
			return nil, false
		}
		comp := *next.component
		if def, ok := comp.DefaultValue(); ok {
			st.cctx.set(comp.Name(), def)
		}
		if comp.Kind() == KindFlag && !st.cctx.Contains(keyFlags) {
			st.cctx.set(keyFlags, newParsedFlags())
		}
		cur = next
		depth++
	}
	if err := t.checkAccess(st.cctx, cur.owner); err != nil {
		st.record(err, depth, consumed)
		return nil, false
	}
	return cur.owner, true
}

// checkAccess evaluates a command's permission for the sender. With
// intermediary permission enforcement on, a denial is reported as the same
// error class as an unknown command.
func (t *Tree[C]) checkAccess(cctx *Context[C], cmd *Command[C]) error {
	m := t.manager
	if m == nil || m.hasPermission(cctx.Sender(), cmd.Permission()) {
		return nil
	}
	if m.enforceIntermediaryPermissions {
		return t.noSuchCommand(cctx, cctx.RawInput().PeekString())
	}
	return &NoPermissionError{Permission: cmd.Permission(), Syntax: cmd.Syntax()}
}

func (t *Tree[C]) filter() SuggestionFilter {
	if t.manager != nil && t.manager.suggestionFilter != nil {
		return t.manager.suggestionFilter
	}
	return PrefixFilter
}

// accessible reports whether any command at or below the node passes the
// sender's permission check. Gated branches never contribute suggestions.
func (t *Tree[C]) accessible(cctx *Context[C], node *treeNode[C]) bool {
	if t.manager == nil {
		return true
	}
	if node.owner != nil && t.manager.hasPermission(cctx.Sender(), node.owner.Permission()) {
		return true
	}
	for _, ch := range node.children {
		if t.accessible(cctx, ch) {
			return true
		}
	}
	return false
}

// Suggestions mirrors the parse walk but never fails terminally: every
// branch still reachable with the already-consumed prefix contributes
// candidates for the token being completed.
func (t *Tree[C]) Suggestions(cctx *Context[C], in *Input) []Suggestion {
	return sortAndDedupe(t.suggestChildren(cctx, in, t.root))
}

func (t *Tree[C]) suggestChildren(cctx *Context[C], in *Input, node *treeNode[C]) []Suggestion {
	var out []Suggestion
	if in.RemainingTokens() > 1 {
		// the current token is complete; only branches that can consume it
		// stay viable
		for _, child := range node.children {
			if !t.accessible(cctx, child) {
				continue
			}
			comp := *child.component
			switch {
			case comp.Kind() == KindLiteral:
				if comp.matchesLiteral(in.PeekString()) {
					sub := in.Clone()
					sub.ReadString()
					out = append(out, t.suggestChildren(cctx, sub, child)...)
				}
			case comp.isVariable():
				// a multi-token parser still owns the token being completed
				// while fewer tokens remain than it requests
				if mt, ok := comp.Parser().(MultiTokenParser); ok && in.RemainingTokens() <= mt.RequestedArgumentCount() {
					out = append(out, comp.suggestionsFor(cctx, lastToken(in))...)
					continue
				}
				sub := in.Clone()
				if err := comp.runPreprocessors(cctx, sub); err != nil {
					continue
				}
				val, err := parseComponent(cctx, sub, comp.Parser())
				if err != nil {
					continue
				}
				cctx.set(comp.Name(), val)
				out = append(out, t.suggestChildren(cctx, sub, child)...)
			case comp.Kind() == KindFlag:
				out = append(out, t.suggestFlags(cctx, in.Clone(), comp)...)
			}
		}
		return out
	}
	partial := in.PeekString()
	for _, child := range node.children {
		if !t.accessible(cctx, child) {
			continue
		}
		comp := *child.component
		switch {
		case comp.Kind() == KindLiteral:
			for _, cand := range append([]string{comp.Name()}, comp.Aliases()...) {
				if t.filter()(partial, cand) {
					out = append(out, Suggestion{Text: cand})
				}
			}
		case comp.isVariable():
			out = append(out, comp.suggestionsFor(cctx, partial)...)
		case comp.Kind() == KindFlag:
			out = append(out, t.suggestFlags(cctx, in.Clone(), comp)...)
		}
	}
	return out
}

// lastToken returns the final remaining token, the one the sender is still
// typing, without consuming from the caller's cursor.
func lastToken(in *Input) string {
	sub := in.Clone()
	for sub.RemainingTokens() > 1 {
		sub.ReadString()
	}
	return sub.PeekString()
}

// suggestFlags replays any complete flag tokens, then offers flag names, or
// delegates to the value parser's suggestions when the partial token
// completes a valued flag.
func (t *Tree[C]) suggestFlags(cctx *Context[C], in *Input, comp Component[C]) []Suggestion {
	for in.RemainingTokens() > 1 {
		tok := in.ReadString()
		def, valued, viable := resolveFlagToken(comp, tok)
		if !viable {
			return nil
		}
		if def != nil && valued {
			if in.RemainingTokens() > 1 {
				in.ReadString()
				continue
			}
			// completing the flag's value
			if s, ok := def.Parser.(Suggester[C]); ok {
				return s.Suggestions(cctx, in.PeekString())
			}
			return nil
		}
	}
	partial := in.PeekString()
	var out []Suggestion
	for _, def := range comp.Flags() {
		if cand := "--" + def.Name; t.filter()(partial, cand) {
			out = append(out, Suggestion{Text: cand, Tooltip: def.Description})
		}
		if partial == "" {
			continue // offer only long forms until a dash is typed
		}
		for _, a := range def.Aliases {
			if cand := "-" + a; t.filter()(partial, cand) {
				out = append(out, Suggestion{Text: cand})
			}
		}
	}
	return out
}

// resolveFlagToken classifies one complete token inside a flag sequence.
// valued reports that the flag still expects a value from the input; viable
// is false when the token rules the flag branch out entirely.
func resolveFlagToken[C any](comp Component[C], tok string) (def *FlagDefinition[C], valued, viable bool) {
	switch {
	case len(tok) > 2 && tok[0] == '-' && tok[1] == '-':
		name := tok[2:]
		inline := false
		if idx := strings.IndexByte(name, '='); idx >= 0 {
			name = name[:idx]
			inline = true
		}
		def = comp.findFlag(name)
		if def == nil {
			return nil, false, false
		}
		return def, def.Parser != nil && !inline, true
	case len(tok) > 1 && tok[0] == '-':
		alias := tok[1:]
		if def = comp.findFlagAlias(alias); def != nil {
			return def, def.Parser != nil, true
		}
		for _, r := range alias {
			d := comp.findFlagAlias(string(r))
			if d == nil || d.Parser != nil {
				return nil, false, false
			}
		}
		return nil, false, true
	default:
		return nil, false, false
	}
}
