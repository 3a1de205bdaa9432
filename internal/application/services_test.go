package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"backoffice-api/internal/catalog"
	"backoffice-api/internal/domain"
)

func newCatalogService(repo *catalogRepoMock) *CatalogService {
	return NewCatalogService(repo, catalog.Default().Hierarchy(), nopLogger{})
}

func TestCatalogService_CreateRole(t *testing.T) {
	repo := new(catalogRepoMock)
	svc := newCatalogService(repo)

	repo.On("CreateRole", mock.Anything, mock.MatchedBy(func(r domain.Role) bool {
		return r.Key == "site_manager" && !r.CreatedAt.IsZero() &&
			assert.ObjectsAreEqual([]string{"approve_leave", "view_contracts"}, r.Permissions)
	})).Return(nil)

	role, err := svc.CreateRole(context.Background(), domain.Role{
		Key:         "site_manager",
		Name:        "Site Manager",
		Permissions: []string{"view_contracts", "approve_leave", "view_contracts"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"approve_leave", "view_contracts"}, role.Permissions)
	repo.AssertExpectations(t)
}

func TestCatalogService_CreateRoleInvalidInput(t *testing.T) {
	svc := newCatalogService(new(catalogRepoMock))

	for _, role := range []domain.Role{
		{Key: "", Name: "x"},
		{Key: "Site Manager", Name: "x"},
		{Key: "ok", Name: " "},
		{Key: "ok", Name: "x", Permissions: []string{"Bad-Key"}},
	} {
		_, err := svc.CreateRole(context.Background(), role)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, role.Key)
	}
}

func TestCatalogService_ReplacePermissionsReturnsStoredSet(t *testing.T) {
	repo := new(catalogRepoMock)
	svc := newCatalogService(repo)

	repo.On("ReplaceRolePermissions", mock.Anything, "site_manager", []string{"view_reports"}).Return(nil)
	repo.On("RolePermissions", mock.Anything, "site_manager").Return([]string{"view_reports"}, nil)

	got, err := svc.ReplacePermissions(context.Background(), "site_manager", []string{"view_reports"})
	require.NoError(t, err)
	assert.Equal(t, []string{"view_reports"}, got)
}

func TestCatalogService_ReplacePermissionsPropagatesNotFound(t *testing.T) {
	repo := new(catalogRepoMock)
	svc := newCatalogService(repo)
	repo.On("ReplaceRolePermissions", mock.Anything, "ghost", []string{}).Return(domain.ErrNotFound)

	_, err := svc.ReplacePermissions(context.Background(), "ghost", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	repo.AssertNotCalled(t, "RolePermissions", mock.Anything, mock.Anything)
}

func TestCatalogService_CreatePermission(t *testing.T) {
	repo := new(catalogRepoMock)
	svc := newCatalogService(repo)
	repo.On("CreatePermission", mock.Anything, mock.MatchedBy(func(p domain.Permission) bool {
		return p.Key == "export_reports" && !p.CreatedAt.IsZero()
	})).Return(nil)

	_, err := svc.CreatePermission(context.Background(), domain.Permission{Key: "export_reports"})
	require.NoError(t, err)

	_, err = svc.CreatePermission(context.Background(), domain.Permission{Key: "Export Reports"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCatalogService_Hierarchy(t *testing.T) {
	table := newCatalogService(new(catalogRepoMock)).Hierarchy()
	assert.Equal(t, []string{domain.RoleEmployee, domain.RoleSupervisor}, table[domain.RoleSupervisor])
}

func knownRoles() []domain.Role {
	var out []domain.Role
	for _, r := range catalog.Default().DomainRoles() {
		out = append(out, domain.Role{Key: r.Key, Name: r.Name})
	}
	return out
}

func TestUserService_Create(t *testing.T) {
	users := new(userRepoMock)
	cat := new(catalogRepoMock)
	svc := NewUserService(users, cat, plainHasher{}, nopLogger{})

	cat.On("ListRoles", mock.Anything).Return(knownRoles(), nil)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return u.ID != "" && u.Email == "new.hire@example.com" && u.PasswordHash == "hashed:pw" &&
			u.Active && assert.ObjectsAreEqual([]string{domain.RoleEmployee}, u.Roles)
	})).Return(nil)

	user, err := svc.Create(context.Background(), NewUser{
		Email:    " New.Hire@Example.com ",
		FullName: "New Hire",
		Password: "pw",
		Roles:    []string{domain.RoleEmployee},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	users.AssertExpectations(t)
}

func TestUserService_CreateRejectsUnknownRole(t *testing.T) {
	users := new(userRepoMock)
	cat := new(catalogRepoMock)
	cat.On("ListRoles", mock.Anything).Return(knownRoles(), nil)
	svc := NewUserService(users, cat, plainHasher{}, nopLogger{})

	_, err := svc.Create(context.Background(), NewUser{
		Email: "a@example.com", FullName: "A", Password: "pw", Roles: []string{"wizard"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserService_AssignRoles(t *testing.T) {
	users := new(userRepoMock)
	cat := new(catalogRepoMock)
	svc := NewUserService(users, cat, plainHasher{}, nopLogger{})

	cat.On("ListRoles", mock.Anything).Return(knownRoles(), nil)
	users.On("ReplaceRoles", mock.Anything, "u-1", []string{domain.RoleEmployee, domain.RoleSupervisor}).Return(nil)
	users.On("RoleKeys", mock.Anything, "u-1").Return([]string{domain.RoleEmployee, domain.RoleSupervisor}, nil)

	got, err := svc.AssignRoles(context.Background(), "u-1", []string{domain.RoleSupervisor, domain.RoleEmployee})
	require.NoError(t, err)
	assert.Equal(t, []string{domain.RoleEmployee, domain.RoleSupervisor}, got)
}

func TestUserService_EnsureBootstrapAdmin(t *testing.T) {
	t.Run("creates when missing", func(t *testing.T) {
		users := new(userRepoMock)
		cat := new(catalogRepoMock)
		svc := NewUserService(users, cat, plainHasher{}, nopLogger{})

		users.On("FindByEmail", mock.Anything, "admin@example.com").Return(domain.User{}, domain.ErrNotFound)
		cat.On("ListRoles", mock.Anything).Return(knownRoles(), nil)
		users.On("Create", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
			return assert.ObjectsAreEqual([]string{domain.RoleAdmin, domain.RoleSystemAdmin}, u.Roles)
		})).Return(nil)

		require.NoError(t, svc.EnsureBootstrapAdmin(context.Background(), "admin@example.com", "pw"))
		users.AssertExpectations(t)
	})

	t.Run("leaves existing admin alone", func(t *testing.T) {
		users := new(userRepoMock)
		svc := NewUserService(users, new(catalogRepoMock), plainHasher{}, nopLogger{})
		users.On("FindByEmail", mock.Anything, "admin@example.com").Return(domain.User{ID: "u-admin"}, nil)

		require.NoError(t, svc.EnsureBootstrapAdmin(context.Background(), "admin@example.com", "pw"))
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("surfaces store errors", func(t *testing.T) {
		users := new(userRepoMock)
		svc := NewUserService(users, new(catalogRepoMock), plainHasher{}, nopLogger{})
		expected := errors.New("db down")
		users.On("FindByEmail", mock.Anything, "admin@example.com").Return(domain.User{}, expected)

		assert.ErrorIs(t, svc.EnsureBootstrapAdmin(context.Background(), "admin@example.com", "pw"), expected)
	})
}
