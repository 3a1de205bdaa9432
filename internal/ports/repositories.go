package ports

import (
	"context"
	"time"

	"backoffice-api/internal/domain"
)

type CatalogRepository interface {
	CreateRole(ctx context.Context, role domain.Role) error
	GetRole(ctx context.Context, key string) (domain.Role, error)
	ListRoles(ctx context.Context) ([]domain.Role, error)
	CreatePermission(ctx context.Context, permission domain.Permission) error
	ListPermissions(ctx context.Context) ([]domain.Permission, error)
	RolePermissions(ctx context.Context, roleKey string) ([]string, error)
	// ReplaceRolePermissions swaps the whole permission set of a role in one
	// transaction.
	ReplaceRolePermissions(ctx context.Context, roleKey string, permissions []string) error
	PermissionsForRoles(ctx context.Context, roleKeys []string) ([]string, error)
}

type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, userID string) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	RoleKeys(ctx context.Context, userID string) ([]string, error)
	ReplaceRoles(ctx context.Context, userID string, roleKeys []string) error
}

type ContractRepository interface {
	Create(ctx context.Context, contract domain.Contract) error
	Update(ctx context.Context, contract domain.Contract) error
	GetByID(ctx context.Context, contractID string) (domain.Contract, error)
	List(ctx context.Context, filter domain.ContractFilter) ([]domain.Contract, error)
}

type LeaveRepository interface {
	Create(ctx context.Context, leave domain.LeaveRequest) error
	GetByID(ctx context.Context, leaveID string) (domain.LeaveRequest, error)
	List(ctx context.Context, filter domain.LeaveFilter) ([]domain.LeaveRequest, error)
	// Decide records a decision only while the request is still pending.
	Decide(ctx context.Context, leaveID string, status domain.LeaveStatus, decidedBy string, at time.Time) error
}

type SnapshotRepository interface {
	Compute(ctx context.Context, date time.Time) (domain.PayrollSnapshot, error)
	Upsert(ctx context.Context, snapshot domain.PayrollSnapshot) error
	ListRecent(ctx context.Context, limit int) ([]domain.PayrollSnapshot, error)
}

// SnapshotArchive is an optional secondary sink for payroll snapshots.
type SnapshotArchive interface {
	Put(ctx context.Context, snapshot domain.PayrollSnapshot) error
}
