package access

import (
	"slices"

	"backoffice-api/internal/domain"
)

var (
	// PrivilegedRoles may see contract compensation fields.
	PrivilegedRoles = []string{domain.RoleAdmin, domain.RoleCEO, domain.RoleCFO, domain.RoleHRManager}
	// SelfScopedRoles only see records they own.
	SelfScopedRoles = []string{domain.RoleEmployee, domain.RoleEngineer}
)

func CanViewRestricted(viewerRoles []string) bool {
	return intersects(viewerRoles, PrivilegedRoles)
}

// Sanitize returns c unchanged for privileged viewers and a copy without
// BasicSalary and Allowances otherwise.
func Sanitize(c domain.Contract, viewerRoles []string) domain.Contract {
	if CanViewRestricted(viewerRoles) {
		return c
	}
	c.BasicSalary = nil
	c.Allowances = nil
	return c
}

func SanitizeAll(contracts []domain.Contract, viewerRoles []string) []domain.Contract {
	out := make([]domain.Contract, len(contracts))
	for i, c := range contracts {
		out[i] = Sanitize(c, viewerRoles)
	}
	return out
}

// IsSelfScoped reports whether roles holds nothing beyond the self-scoped set.
// A principal without roles is treated as self-scoped.
func IsSelfScoped(roles []string) bool {
	for _, r := range roles {
		if !slices.Contains(SelfScopedRoles, r) {
			return false
		}
	}
	return true
}

// OwnerScope returns the owner filter to apply for p.
func OwnerScope(p domain.Principal) (owner string, scoped bool) {
	if IsSelfScoped(p.Roles) {
		return p.Subject, true
	}
	return "", false
}

// FilterOwned drops records that p does not own when p is self-scoped.
func FilterOwned[T any](records []T, p domain.Principal, ownerOf func(T) string) []T {
	owner, scoped := OwnerScope(p)
	if !scoped {
		return records
	}
	out := make([]T, 0, len(records))
	for _, r := range records {
		if ownerOf(r) == owner {
			out = append(out, r)
		}
	}
	return out
}

// VisibleTo reports whether a single record owned by owner may be shown to p.
func VisibleTo(p domain.Principal, owner string) bool {
	scope, scoped := OwnerScope(p)
	return !scoped || scope == owner
}
