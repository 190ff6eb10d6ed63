package dispatch

import "strings"

// Permission gates a command behind the host's permission system. Leaf
// permissions are plain strings resolved through the manager's
// PermissionChecker; combinators compose them with short-circuit
// evaluation. A nil or empty permission allows every sender.
type Permission interface {
	permission()
	String() string
}

// PermissionChecker resolves a leaf permission string for a sender. The
// host supplies it; the core never interprets permission strings itself.
type PermissionChecker[C any] func(sender C, permission string) bool

type stringPermission string

func (stringPermission) permission()      {}
func (p stringPermission) String() string { return string(p) }

// PermissionOf wraps a permission string. The empty string allows everyone.
func PermissionOf(node string) Permission {
	return stringPermission(node)
}

// EmptyPermission allows every sender.
var EmptyPermission Permission = stringPermission("")

type andPermission []Permission

func (andPermission) permission() {}
func (p andPermission) String() string {
	return "(" + joinPermissions([]Permission(p), " & ") + ")"
}

// AllOf requires every given permission.
func AllOf(perms ...Permission) Permission {
	return andPermission(perms)
}

type orPermission []Permission

func (orPermission) permission() {}
func (p orPermission) String() string {
	return "(" + joinPermissions([]Permission(p), " | ") + ")"
}

// AnyOf requires at least one of the given permissions.
func AnyOf(perms ...Permission) Permission {
	return orPermission(perms)
}

type predicatePermission[C any] struct {
	fn func(sender C) bool
}

func (predicatePermission[C]) permission()    {}
func (predicatePermission[C]) String() string { return "<predicate>" }

// PredicatePermission wraps an arbitrary sender predicate as a Permission.
// The predicate must be bound to the same sender type as the manager that
// evaluates it.
func PredicatePermission[C any](fn func(sender C) bool) Permission {
	return predicatePermission[C]{fn: fn}
}

func joinPermissions(perms []Permission, sep string) string {
	parts := make([]string, len(perms))
	for i, p := range perms {
		parts[i] = p.String()
	}
	return strings.Join(parts, sep)
}

// hasPermission evaluates a permission tree for a sender, short-circuiting
// combinators. Leaf strings delegate to the checker; a nil checker allows
// everything.
func hasPermission[C any](sender C, p Permission, checker PermissionChecker[C]) bool {
	switch v := p.(type) {
	case nil:
		return true
	case stringPermission:
		if v == "" {
			return true
		}
		if checker == nil {
			return true
		}
		return checker(sender, string(v))
	case andPermission:
		for _, sub := range v {
			if !hasPermission(sender, sub, checker) {
				return false
			}
		}
		return true
	case orPermission:
		for _, sub := range v {
			if hasPermission(sender, sub, checker) {
				return true
			}
		}
		return len(v) == 0
	case predicatePermission[C]:
		return v.fn(sender)
	default:
		return false
	}
}
