package application

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"backoffice-api/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (nopLogger) Debug(context.Context, string, ...any) {}

type catalogRepoMock struct{ mock.Mock }

func (m *catalogRepoMock) CreateRole(ctx context.Context, role domain.Role) error {
	return m.Called(ctx, role).Error(0)
}

func (m *catalogRepoMock) GetRole(ctx context.Context, key string) (domain.Role, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(domain.Role), args.Error(1)
}

func (m *catalogRepoMock) ListRoles(ctx context.Context) ([]domain.Role, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Role), args.Error(1)
}

func (m *catalogRepoMock) CreatePermission(ctx context.Context, permission domain.Permission) error {
	return m.Called(ctx, permission).Error(0)
}

func (m *catalogRepoMock) ListPermissions(ctx context.Context) ([]domain.Permission, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Permission), args.Error(1)
}

func (m *catalogRepoMock) RolePermissions(ctx context.Context, roleKey string) ([]string, error) {
	args := m.Called(ctx, roleKey)
	return args.Get(0).([]string), args.Error(1)
}

func (m *catalogRepoMock) ReplaceRolePermissions(ctx context.Context, roleKey string, permissions []string) error {
	return m.Called(ctx, roleKey, permissions).Error(0)
}

func (m *catalogRepoMock) PermissionsForRoles(ctx context.Context, roleKeys []string) ([]string, error) {
	args := m.Called(ctx, roleKeys)
	return args.Get(0).([]string), args.Error(1)
}

type userRepoMock struct{ mock.Mock }

func (m *userRepoMock) Create(ctx context.Context, user domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *userRepoMock) GetByID(ctx context.Context, userID string) (domain.User, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *userRepoMock) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *userRepoMock) RoleKeys(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]string), args.Error(1)
}

func (m *userRepoMock) ReplaceRoles(ctx context.Context, userID string, roleKeys []string) error {
	return m.Called(ctx, userID, roleKeys).Error(0)
}

type contractRepoMock struct{ mock.Mock }

func (m *contractRepoMock) Create(ctx context.Context, contract domain.Contract) error {
	return m.Called(ctx, contract).Error(0)
}

func (m *contractRepoMock) Update(ctx context.Context, contract domain.Contract) error {
	return m.Called(ctx, contract).Error(0)
}

func (m *contractRepoMock) GetByID(ctx context.Context, contractID string) (domain.Contract, error) {
	args := m.Called(ctx, contractID)
	return args.Get(0).(domain.Contract), args.Error(1)
}

func (m *contractRepoMock) List(ctx context.Context, filter domain.ContractFilter) ([]domain.Contract, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Contract), args.Error(1)
}

type leaveRepoMock struct{ mock.Mock }

func (m *leaveRepoMock) Create(ctx context.Context, leave domain.LeaveRequest) error {
	return m.Called(ctx, leave).Error(0)
}

func (m *leaveRepoMock) GetByID(ctx context.Context, leaveID string) (domain.LeaveRequest, error) {
	args := m.Called(ctx, leaveID)
	return args.Get(0).(domain.LeaveRequest), args.Error(1)
}

func (m *leaveRepoMock) List(ctx context.Context, filter domain.LeaveFilter) ([]domain.LeaveRequest, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.LeaveRequest), args.Error(1)
}

func (m *leaveRepoMock) Decide(ctx context.Context, leaveID string, status domain.LeaveStatus, decidedBy string, at time.Time) error {
	return m.Called(ctx, leaveID, status, decidedBy, at).Error(0)
}

type snapshotRepoMock struct{ mock.Mock }

func (m *snapshotRepoMock) Compute(ctx context.Context, date time.Time) (domain.PayrollSnapshot, error) {
	args := m.Called(ctx, date)
	return args.Get(0).(domain.PayrollSnapshot), args.Error(1)
}

func (m *snapshotRepoMock) Upsert(ctx context.Context, snapshot domain.PayrollSnapshot) error {
	return m.Called(ctx, snapshot).Error(0)
}

func (m *snapshotRepoMock) ListRecent(ctx context.Context, limit int) ([]domain.PayrollSnapshot, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.PayrollSnapshot), args.Error(1)
}

type archiveMock struct{ mock.Mock }

func (m *archiveMock) Put(ctx context.Context, snapshot domain.PayrollSnapshot) error {
	return m.Called(ctx, snapshot).Error(0)
}

type tokenIssuerMock struct{ mock.Mock }

func (m *tokenIssuerMock) Issue(subject string, roles, permissions []string) (string, time.Time, error) {
	args := m.Called(subject, roles, permissions)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *tokenIssuerMock) Verify(token string) (domain.Principal, error) {
	args := m.Called(token)
	return args.Get(0).(domain.Principal), args.Error(1)
}

// plainHasher stores passwords with a fixed prefix so tests stay fast.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return domain.ErrInvalidCredentials
	}
	return nil
}

// countingHasher records every Compare call made through it.
type countingHasher struct {
	plainHasher
	compared []string
}

func (h *countingHasher) Compare(hash, password string) error {
	h.compared = append(h.compared, hash)
	return h.plainHasher.Compare(hash, password)
}
