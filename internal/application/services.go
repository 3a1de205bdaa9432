package application

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"backoffice-api/internal/catalog"
	"backoffice-api/internal/domain"
	"backoffice-api/internal/ports"
)

type CatalogService struct {
	repo      ports.CatalogRepository
	hierarchy catalog.Hierarchy
	logger    ports.Logger
}

func NewCatalogService(repo ports.CatalogRepository, hierarchy catalog.Hierarchy, logger ports.Logger) *CatalogService {
	return &CatalogService{repo: repo, hierarchy: hierarchy, logger: logger}
}

func (s *CatalogService) CreateRole(ctx context.Context, role domain.Role) (domain.Role, error) {
	if !validKey(role.Key) || strings.TrimSpace(role.Name) == "" {
		return domain.Role{}, domain.ErrInvalidInput
	}
	permissions, err := normalizeKeys(role.Permissions)
	if err != nil {
		return domain.Role{}, err
	}
	now := time.Now().UTC()
	role.Permissions = permissions
	role.CreatedAt = now
	role.UpdatedAt = now
	if err := s.repo.CreateRole(ctx, role); err != nil {
		return domain.Role{}, err
	}
	s.logger.Info(ctx, "role created", "role", role.Key, "permissions", len(permissions))
	return role, nil
}

func (s *CatalogService) ListRoles(ctx context.Context) ([]domain.Role, error) {
	return s.repo.ListRoles(ctx)
}

func (s *CatalogService) RolePermissions(ctx context.Context, roleKey string) ([]string, error) {
	if roleKey == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.repo.RolePermissions(ctx, roleKey)
}

// ReplacePermissions swaps the permission set of a role and returns the set
// as stored afterwards.
func (s *CatalogService) ReplacePermissions(ctx context.Context, roleKey string, permissions []string) ([]string, error) {
	if roleKey == "" {
		return nil, domain.ErrInvalidInput
	}
	normalized, err := normalizeKeys(permissions)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceRolePermissions(ctx, roleKey, normalized); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "role permissions replaced", "role", roleKey, "permissions", normalized)
	return s.repo.RolePermissions(ctx, roleKey)
}

func (s *CatalogService) CreatePermission(ctx context.Context, permission domain.Permission) (domain.Permission, error) {
	if !validKey(permission.Key) {
		return domain.Permission{}, domain.ErrInvalidInput
	}
	permission.CreatedAt = time.Now().UTC()
	if err := s.repo.CreatePermission(ctx, permission); err != nil {
		return domain.Permission{}, err
	}
	s.logger.Info(ctx, "permission created", "permission", permission.Key)
	return permission, nil
}

func (s *CatalogService) ListPermissions(ctx context.Context) ([]domain.Permission, error) {
	return s.repo.ListPermissions(ctx)
}

func (s *CatalogService) Hierarchy() map[string][]string {
	return s.hierarchy.Table()
}

type NewUser struct {
	Email    string
	FullName string
	Password string
	Roles    []string
}

type UserService struct {
	users   ports.UserRepository
	catalog ports.CatalogRepository
	hasher  ports.PasswordHasher
	logger  ports.Logger
}

func NewUserService(users ports.UserRepository, catalog ports.CatalogRepository, hasher ports.PasswordHasher, logger ports.Logger) *UserService {
	return &UserService{users: users, catalog: catalog, hasher: hasher, logger: logger}
}

func (s *UserService) Create(ctx context.Context, in NewUser) (domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") || strings.TrimSpace(in.FullName) == "" || in.Password == "" {
		return domain.User{}, domain.ErrInvalidInput
	}
	roles, err := s.knownRoles(ctx, in.Roles)
	if err != nil {
		return domain.User{}, err
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, err
	}
	now := time.Now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     strings.TrimSpace(in.FullName),
		PasswordHash: hash,
		Active:       true,
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, err
	}
	s.logger.Info(ctx, "user created", "user_id", user.ID, "roles", roles)
	return user, nil
}

// AssignRoles replaces the roles of a user. Unknown role keys reject the
// whole request.
func (s *UserService) AssignRoles(ctx context.Context, userID string, roleKeys []string) ([]string, error) {
	if userID == "" {
		return nil, domain.ErrInvalidInput
	}
	roles, err := s.knownRoles(ctx, roleKeys)
	if err != nil {
		return nil, err
	}
	if err := s.users.ReplaceRoles(ctx, userID, roles); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "user roles replaced", "user_id", userID, "roles", roles)
	return s.users.RoleKeys(ctx, userID)
}

func (s *UserService) Roles(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.users.RoleKeys(ctx, userID)
}

// EnsureBootstrapAdmin creates the first administrator when no user with the
// given email exists yet.
func (s *UserService) EnsureBootstrapAdmin(ctx context.Context, email, password string) error {
	if email == "" {
		return nil
	}
	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		s.logger.Debug(ctx, "bootstrap admin already present")
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	user, err := s.Create(ctx, NewUser{
		Email:    email,
		FullName: "Administrator",
		Password: password,
		Roles:    []string{domain.RoleSystemAdmin, domain.RoleAdmin},
	})
	if err != nil {
		return fmt.Errorf("create bootstrap admin: %w", err)
	}
	s.logger.Warn(ctx, "bootstrap admin created, rotate its password", "user_id", user.ID)
	return nil
}

func (s *UserService) knownRoles(ctx context.Context, roleKeys []string) ([]string, error) {
	normalized, err := normalizeKeys(roleKeys)
	if err != nil {
		return nil, err
	}
	if len(normalized) == 0 {
		return normalized, nil
	}
	roles, err := s.catalog.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(roles))
	for _, r := range roles {
		known[r.Key] = true
	}
	for _, key := range normalized {
		if !known[key] {
			return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, key)
		}
	}
	return normalized, nil
}

// normalizeKeys trims, deduplicates and sorts catalog keys.
func normalizeKeys(keys []string) ([]string, error) {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if !validKey(k) {
			return nil, fmt.Errorf("%w: invalid key %q", domain.ErrInvalidInput, k)
		}
		if !slices.Contains(out, k) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

func validKey(key string) bool {
	if key == "" || len(key) > 64 {
		return false
	}
	for _, r := range key {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return false
		}
	}
	return true
}
