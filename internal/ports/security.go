package ports

import (
	"time"

	"backoffice-api/internal/domain"
)

type TokenIssuer interface {
	Issue(subject string, roles, permissions []string) (string, time.Time, error)
	Verify(token string) (domain.Principal, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
