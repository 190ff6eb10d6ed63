package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPermission_Leaves(t *testing.T) {
	m := newTestManager()
	admin := senderWith("admin")
	guest := senderWith()

	require.True(t, m.HasPermission(admin, PermissionOf("admin")))
	require.False(t, m.HasPermission(guest, PermissionOf("admin")))
	require.True(t, m.HasPermission(guest, EmptyPermission))
	require.True(t, m.HasPermission(guest, nil))
}

func TestPermission_Combinators(t *testing.T) {
	m := newTestManager()
	mod := senderWith("mod")
	both := senderWith("mod", "admin")

	anyOf := AnyOf(PermissionOf("admin"), PermissionOf("mod"))
	allOf := AllOf(PermissionOf("admin"), PermissionOf("mod"))

	require.True(t, m.HasPermission(mod, anyOf))
	require.False(t, m.HasPermission(mod, allOf))
	require.True(t, m.HasPermission(both, allOf))
}

func TestPermission_ShortCircuit(t *testing.T) {
	calls := 0
	m := NewManager(WithPermissionChecker[*testSender](func(_ *testSender, _ string) bool {
		calls++
		return true
	}))

	m.HasPermission(senderWith(), AnyOf(PermissionOf("a"), PermissionOf("b")))
	require.Equal(t, 1, calls, "OR stops at the first success")

	calls = 0
	deny := NewManager(WithPermissionChecker[*testSender](func(_ *testSender, _ string) bool {
		calls++
		return false
	}))
	deny.HasPermission(senderWith(), AllOf(PermissionOf("a"), PermissionOf("b")))
	require.Equal(t, 1, calls, "AND stops at the first failure")
}

func TestPermission_Predicate(t *testing.T) {
	m := newTestManager()
	named := PredicatePermission(func(s *testSender) bool { return s.name == "tester" })

	require.True(t, m.HasPermission(senderWith(), named))

	other := &testSender{name: "someone-else"}
	require.False(t, m.HasPermission(other, named))
}
