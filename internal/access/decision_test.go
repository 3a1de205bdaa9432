package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"backoffice-api/internal/catalog"
	"backoffice-api/internal/domain"
)

func principal(roles ...string) *domain.Principal {
	return &domain.Principal{Subject: "u-1", Roles: roles}
}

func TestRequireAnyRole(t *testing.T) {
	a := NewAuthorizer()

	tests := []struct {
		name     string
		p        *domain.Principal
		required []string
		want     Decision
	}{
		{"no principal", nil, []string{domain.RoleAdmin}, DenyUnauthenticated},
		{"no principal and nothing required", nil, nil, DenyUnauthenticated},
		{"direct match", principal(domain.RoleHRManager), []string{domain.RoleAdmin, domain.RoleHRManager}, Allow},
		{"no overlap", principal(domain.RoleEmployee), []string{domain.RoleAdmin, domain.RoleHRManager}, DenyUnauthorized},
		{"empty required set", principal(domain.RoleAdmin), nil, DenyUnauthorized},
		{"principal without roles", principal(), []string{domain.RoleEmployee}, DenyUnauthorized},
		{"literal matching ignores hierarchy", principal(domain.RoleAdmin), []string{domain.RoleEmployee}, DenyUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.RequireAnyRole(tt.p, tt.required...))
		})
	}
}

func TestRequireAnyRole_WithHierarchy(t *testing.T) {
	a := NewAuthorizer(WithHierarchy(catalog.Default().Hierarchy()))

	assert.True(t, a.ExpandsHierarchy())
	assert.Equal(t, Allow, a.RequireAnyRole(principal(domain.RoleAdmin), domain.RoleEmployee))
	assert.Equal(t, Allow, a.RequireAnyRole(principal(domain.RoleHRManager), domain.RoleSupervisor))
	assert.Equal(t, DenyUnauthorized, a.RequireAnyRole(principal(domain.RoleEngineer), domain.RoleSupervisor))
	assert.Equal(t, DenyUnauthenticated, a.RequireAnyRole(nil, domain.RoleEmployee))
}

func TestRequireAnyPermission(t *testing.T) {
	a := NewAuthorizer()
	hr := &domain.Principal{
		Subject:     "hr-1",
		Roles:       []string{domain.RoleHRManager},
		Permissions: []string{domain.PermViewEmployees, domain.PermEditEmployees},
	}

	assert.Equal(t, Allow, a.RequireAnyPermission(hr, domain.PermManageRoles, domain.PermEditEmployees))
	assert.Equal(t, DenyUnauthorized, a.RequireAnyPermission(hr, domain.PermManageRoles))
	assert.Equal(t, DenyUnauthorized, a.RequireAnyPermission(hr))
	assert.Equal(t, DenyUnauthenticated, a.RequireAnyPermission(nil, domain.PermManageRoles))
}

func TestRequireAnyRole_IsDeterministic(t *testing.T) {
	a := NewAuthorizer()
	p := principal(domain.RoleSupervisor, domain.RoleEmployee)
	first := a.RequireAnyRole(p, domain.RoleSupervisor)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, a.RequireAnyRole(p, domain.RoleSupervisor))
	}
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "allow", Allow.String())
	assert.Equal(t, "deny_unauthenticated", DenyUnauthenticated.String())
	assert.Equal(t, "deny_unauthorized", DenyUnauthorized.String())
	assert.Equal(t, "unknown", Decision(42).String())
}
