// Package access implements the authorization and field-visibility rules that
// gate every route and redact protected records.
package access

import (
	"backoffice-api/internal/catalog"
	"backoffice-api/internal/domain"
)

// Decision is the outcome of a route guard.
type Decision int

const (
	Allow Decision = iota
	DenyUnauthenticated
	DenyUnauthorized
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyUnauthenticated:
		return "deny_unauthenticated"
	case DenyUnauthorized:
		return "deny_unauthorized"
	default:
		return "unknown"
	}
}

// Authorizer evaluates role and permission requirements against a principal.
// The zero value matches literal role keys.
type Authorizer struct {
	hierarchy *catalog.Hierarchy
}

type Option func(*Authorizer)

// WithHierarchy makes RequireAnyRole expand the principal's roles through h
// before matching, so a senior role satisfies requirements on the roles it
// implies.
func WithHierarchy(h catalog.Hierarchy) Option {
	return func(a *Authorizer) { a.hierarchy = &h }
}

func NewAuthorizer(opts ...Option) Authorizer {
	var a Authorizer
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

// ExpandsHierarchy reports whether role checks use hierarchy closure.
func (a Authorizer) ExpandsHierarchy() bool { return a.hierarchy != nil }

// RequireAnyRole allows p when it holds at least one of required. A missing
// principal is always DenyUnauthenticated, whatever required contains.
func (a Authorizer) RequireAnyRole(p *domain.Principal, required ...string) Decision {
	if p == nil {
		return DenyUnauthenticated
	}
	held := p.Roles
	if a.hierarchy != nil {
		held = a.hierarchy.Expand(held)
	}
	if intersects(held, required) {
		return Allow
	}
	return DenyUnauthorized
}

// RequireAnyPermission allows p when its flattened permission set contains at
// least one of required.
func (a Authorizer) RequireAnyPermission(p *domain.Principal, required ...string) Decision {
	if p == nil {
		return DenyUnauthenticated
	}
	if intersects(p.Permissions, required) {
		return Allow
	}
	return DenyUnauthorized
}

func intersects(held, required []string) bool {
	if len(held) == 0 || len(required) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(held))
	for _, h := range held {
		set[h] = struct{}{}
	}
	for _, r := range required {
		if _, ok := set[r]; ok {
			return true
		}
	}
	return false
}
