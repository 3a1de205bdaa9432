package catalog

import (
	"slices"
	"sort"
)

// Hierarchy is the static "role implies roles" table. It is reference data:
// route guards match literal role keys unless expansion is switched on.
type Hierarchy struct {
	implies map[string][]string
}

// Implies reports the roles implied by role, including role itself. Unknown
// roles imply only themselves.
func (h Hierarchy) Implies(role string) []string {
	if implied, ok := h.implies[role]; ok {
		return slices.Clone(implied)
	}
	return []string{role}
}

// Expand returns the sorted union of the roles implied by every given role.
func (h Hierarchy) Expand(roles []string) []string {
	set := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		for _, implied := range h.Implies(r) {
			set[implied] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for r := range set {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// Table exposes a copy of the implication table for display.
func (h Hierarchy) Table() map[string][]string {
	out := make(map[string][]string, len(h.implies))
	for k, v := range h.implies {
		out[k] = slices.Clone(v)
	}
	return out
}
