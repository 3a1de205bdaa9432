package http

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"backoffice-api/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (nopLogger) Debug(context.Context, string, ...any) {}

// memStore keeps every repository in memory for router tests.
type memStore struct {
	mu          sync.Mutex
	permissions map[string]domain.Permission
	roles       map[string]domain.Role
	users       map[string]domain.User
	contracts   map[string]domain.Contract
	leaves      map[string]domain.LeaveRequest
	snapshots   map[string]domain.PayrollSnapshot
}

func newMemStore() *memStore {
	return &memStore{
		permissions: map[string]domain.Permission{},
		roles:       map[string]domain.Role{},
		users:       map[string]domain.User{},
		contracts:   map[string]domain.Contract{},
		leaves:      map[string]domain.LeaveRequest{},
		snapshots:   map[string]domain.PayrollSnapshot{},
	}
}

type memCatalog struct{ s *memStore }

func (r memCatalog) CreateRole(_ context.Context, role domain.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.roles[role.Key]; ok {
		return domain.ErrConflict
	}
	role.Permissions = slices.Clone(role.Permissions)
	r.s.roles[role.Key] = role
	return nil
}

func (r memCatalog) GetRole(_ context.Context, key string) (domain.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	role, ok := r.s.roles[key]
	if !ok {
		return domain.Role{}, domain.ErrNotFound
	}
	return role, nil
}

func (r memCatalog) ListRoles(_ context.Context) ([]domain.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.Role, 0, len(r.s.roles))
	for _, role := range r.s.roles {
		out = append(out, role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (r memCatalog) CreatePermission(_ context.Context, p domain.Permission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.permissions[p.Key]; ok {
		return domain.ErrConflict
	}
	r.s.permissions[p.Key] = p
	return nil
}

func (r memCatalog) ListPermissions(_ context.Context) ([]domain.Permission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.Permission, 0, len(r.s.permissions))
	for _, p := range r.s.permissions {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (r memCatalog) RolePermissions(ctx context.Context, roleKey string) ([]string, error) {
	role, err := r.GetRole(ctx, roleKey)
	if err != nil {
		return nil, err
	}
	out := slices.Clone(role.Permissions)
	sort.Strings(out)
	return out, nil
}

func (r memCatalog) ReplaceRolePermissions(_ context.Context, roleKey string, permissions []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	role, ok := r.s.roles[roleKey]
	if !ok {
		return domain.ErrNotFound
	}
	for _, p := range permissions {
		if _, ok := r.s.permissions[p]; !ok {
			return domain.ErrInvalidInput
		}
	}
	role.Permissions = slices.Clone(permissions)
	r.s.roles[roleKey] = role
	return nil
}

func (r memCatalog) PermissionsForRoles(_ context.Context, roleKeys []string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	set := map[string]struct{}{}
	for _, k := range roleKeys {
		for _, p := range r.s.roles[k].Permissions {
			set[p] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, u domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == strings.ToLower(u.Email) {
			return domain.ErrConflict
		}
	}
	u.Email = strings.ToLower(u.Email)
	r.s.users[u.ID] = u
	return nil
}

func (r memUsers) GetByID(_ context.Context, id string) (domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (r memUsers) FindByEmail(_ context.Context, email string) (domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == strings.ToLower(email) {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (r memUsers) RoleKeys(ctx context.Context, id string) ([]string, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return slices.Clone(u.Roles), nil
}

func (r memUsers) ReplaceRoles(_ context.Context, id string, roleKeys []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Roles = slices.Clone(roleKeys)
	r.s.users[id] = u
	return nil
}

type memContracts struct{ s *memStore }

func (r memContracts) Create(_ context.Context, c domain.Contract) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.contracts[c.ID] = c
	return nil
}

func (r memContracts) Update(_ context.Context, c domain.Contract) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.contracts[c.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.contracts[c.ID] = c
	return nil
}

func (r memContracts) GetByID(_ context.Context, id string) (domain.Contract, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.contracts[id]
	if !ok {
		return domain.Contract{}, domain.ErrNotFound
	}
	return c, nil
}

func (r memContracts) List(_ context.Context, f domain.ContractFilter) ([]domain.Contract, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Contract{}
	for _, c := range r.s.contracts {
		if (f.OwnerID == "" || c.EmployeeID == f.OwnerID) && (f.Status == "" || c.Status == f.Status) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memLeaves struct{ s *memStore }

func (r memLeaves) Create(_ context.Context, l domain.LeaveRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.leaves[l.ID] = l
	return nil
}

func (r memLeaves) GetByID(_ context.Context, id string) (domain.LeaveRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.leaves[id]
	if !ok {
		return domain.LeaveRequest{}, domain.ErrNotFound
	}
	return l, nil
}

func (r memLeaves) List(_ context.Context, f domain.LeaveFilter) ([]domain.LeaveRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.LeaveRequest{}
	for _, l := range r.s.leaves {
		if (f.OwnerID == "" || l.EmployeeID == f.OwnerID) && (f.Status == "" || l.Status == f.Status) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r memLeaves) Decide(_ context.Context, id string, status domain.LeaveStatus, by string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.leaves[id]
	if !ok {
		return domain.ErrNotFound
	}
	if l.Status != domain.LeavePending {
		return domain.ErrConflict
	}
	l.Status, l.DecidedBy, l.DecidedAt = status, by, &at
	r.s.leaves[id] = l
	return nil
}

type memSnapshots struct{ s *memStore }

func (r memSnapshots) Compute(_ context.Context, date time.Time) (domain.PayrollSnapshot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	snap := domain.PayrollSnapshot{Date: day, ByContractType: map[string]int{}, GeneratedAt: time.Now().UTC()}
	employees := map[string]struct{}{}
	for _, c := range r.s.contracts {
		if c.Status != domain.ContractStatusActive || c.StartDate.After(day) || (c.EndDate != nil && c.EndDate.Before(day)) {
			continue
		}
		employees[c.EmployeeID] = struct{}{}
		snap.ByContractType[c.ContractType]++
		if c.BasicSalary != nil {
			snap.TotalBasicSalary += *c.BasicSalary
		}
	}
	snap.Headcount = len(employees)
	return snap, nil
}

func (r memSnapshots) Upsert(_ context.Context, snap domain.PayrollSnapshot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.snapshots[snap.Date.Format(dateLayout)] = snap
	return nil
}

func (r memSnapshots) ListRecent(_ context.Context, limit int) ([]domain.PayrollSnapshot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.PayrollSnapshot, 0, len(r.s.snapshots))
	for _, s := range r.s.snapshots {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
