package dispatch

import (
	"fmt"
	"strconv"
)

// testSender is the opaque sender used across the package tests.
type testSender struct {
	name  string
	perms map[string]bool
}

func senderWith(perms ...string) *testSender {
	s := &testSender{name: "tester", perms: make(map[string]bool)}
	for _, p := range perms {
		s.perms[p] = true
	}
	return s
}

func newTestManager(opts ...Option[*testSender]) *Manager[*testSender] {
	base := []Option[*testSender]{
		WithPermissionChecker[*testSender](func(s *testSender, perm string) bool {
			return s != nil && s.perms[perm]
		}),
	}
	return NewManager(append(base, opts...)...)
}

// intArg parses one token as an int.
func intArg() ArgumentParser[*testSender] {
	return ParserFunc[*testSender](func(_ *Context[*testSender], in *Input) (any, error) {
		tok := in.ReadString()
		n, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", tok)
		}
		return n, nil
	})
}

// strArg parses one non-empty token as a string.
func strArg() ArgumentParser[*testSender] {
	return ParserFunc[*testSender](func(_ *Context[*testSender], in *Input) (any, error) {
		tok := in.ReadString()
		if tok == "" {
			return nil, fmt.Errorf("expected a value")
		}
		return tok, nil
	})
}

// noopHandler ignores the invocation.
func noopHandler(_ *Context[*testSender]) error { return nil }
