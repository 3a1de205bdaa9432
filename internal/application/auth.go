package application

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"backoffice-api/internal/domain"
	"backoffice-api/internal/ports"
)

type LoginResult struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expiresAt"`
	Principal domain.Principal `json:"principal"`
}

type AuthService struct {
	users   ports.UserRepository
	catalog ports.CatalogRepository
	hasher  ports.PasswordHasher
	tokens  ports.TokenIssuer
	logger  ports.Logger

	// decoyHash is compared against when the email is unknown so that branch
	// costs the same hash work as a wrong password.
	decoyOnce sync.Once
	decoyHash string
}

func NewAuthService(users ports.UserRepository, catalog ports.CatalogRepository, hasher ports.PasswordHasher, tokens ports.TokenIssuer, logger ports.Logger) *AuthService {
	return &AuthService{users: users, catalog: catalog, hasher: hasher, tokens: tokens, logger: logger}
}

// Login verifies the credentials and issues a token carrying the user's roles
// and the union of their permissions. Unknown emails, wrong passwords and
// inactive accounts all return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	if email == "" || password == "" {
		return LoginResult{}, domain.ErrInvalidCredentials
	}
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		s.compareDecoy(ctx, password)
		s.logger.Warn(ctx, "login rejected", "reason", "unknown email")
		return LoginResult{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		s.logger.Warn(ctx, "login rejected", "reason", "password mismatch", "user_id", user.ID)
		return LoginResult{}, domain.ErrInvalidCredentials
	}
	if !user.Active {
		s.logger.Warn(ctx, "login rejected", "reason", "inactive", "user_id", user.ID)
		return LoginResult{}, domain.ErrInvalidCredentials
	}

	roles, err := s.users.RoleKeys(ctx, user.ID)
	if err != nil {
		return LoginResult{}, err
	}
	permissions, err := s.catalog.PermissionsForRoles(ctx, roles)
	if err != nil {
		return LoginResult{}, err
	}
	principal := domain.Principal{
		Subject:     user.ID,
		Roles:       sortedUnique(roles),
		Permissions: sortedUnique(permissions),
	}
	token, expiresAt, err := s.tokens.Issue(principal.Subject, principal.Roles, principal.Permissions)
	if err != nil {
		return LoginResult{}, err
	}
	s.logger.Info(ctx, "login succeeded", "user_id", user.ID, "roles", principal.Roles)
	return LoginResult{Token: token, ExpiresAt: expiresAt, Principal: principal}, nil
}

func (s *AuthService) compareDecoy(ctx context.Context, password string) {
	s.decoyOnce.Do(func() {
		hash, err := s.hasher.Hash("decoy-password-never-issued")
		if err != nil {
			s.logger.Error(ctx, "decoy hash unavailable", "error", err)
			return
		}
		s.decoyHash = hash
	})
	if s.decoyHash != "" {
		_ = s.hasher.Compare(s.decoyHash, password)
	}
}

func sortedUnique(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
