package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"backoffice-api/internal/access"
	"backoffice-api/internal/domain"
	"backoffice-api/internal/ports"
)

type ContractInput struct {
	EmployeeID   string
	Position     string
	ContractType string
	StartDate    time.Time
	EndDate      *time.Time
	Status       string
	BasicSalary  *float64
	Allowances   json.RawMessage
}

func (in ContractInput) validate() error {
	if strings.TrimSpace(in.Position) == "" || strings.TrimSpace(in.ContractType) == "" || in.StartDate.IsZero() {
		return domain.ErrInvalidInput
	}
	if in.EndDate != nil && in.EndDate.Before(in.StartDate) {
		return fmt.Errorf("%w: end date before start date", domain.ErrInvalidInput)
	}
	switch in.Status {
	case "", domain.ContractStatusActive, domain.ContractStatusTerminated:
	default:
		return fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, in.Status)
	}
	if in.BasicSalary != nil && *in.BasicSalary < 0 {
		return fmt.Errorf("%w: negative salary", domain.ErrInvalidInput)
	}
	if len(in.Allowances) > 0 && !json.Valid(in.Allowances) {
		return fmt.Errorf("%w: allowances must be JSON", domain.ErrInvalidInput)
	}
	return nil
}

// ContractService returns contracts already redacted and scoped for the
// requesting principal. No path hands out an unsanitized record.
type ContractService struct {
	repo   ports.ContractRepository
	users  ports.UserRepository
	logger ports.Logger
}

func NewContractService(repo ports.ContractRepository, users ports.UserRepository, logger ports.Logger) *ContractService {
	return &ContractService{repo: repo, users: users, logger: logger}
}

// Get returns ErrNotFound for records outside the caller's self-scope so their
// existence is not disclosed.
func (s *ContractService) Get(ctx context.Context, p domain.Principal, contractID string) (domain.Contract, error) {
	if contractID == "" {
		return domain.Contract{}, domain.ErrInvalidInput
	}
	c, err := s.repo.GetByID(ctx, contractID)
	if err != nil {
		return domain.Contract{}, err
	}
	if !access.VisibleTo(p, c.EmployeeID) {
		s.logger.Warn(ctx, "contract outside caller scope", "subject", p.Subject, "contract_id", contractID)
		return domain.Contract{}, domain.ErrNotFound
	}
	return access.Sanitize(c, p.Roles), nil
}

func (s *ContractService) List(ctx context.Context, p domain.Principal, filter domain.ContractFilter) ([]domain.Contract, error) {
	if owner, scoped := access.OwnerScope(p); scoped {
		filter.OwnerID = owner
	}
	contracts, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	owned := access.FilterOwned(contracts, p, func(c domain.Contract) string { return c.EmployeeID })
	return access.SanitizeAll(owned, p.Roles), nil
}

func (s *ContractService) Create(ctx context.Context, p domain.Principal, in ContractInput) (domain.Contract, error) {
	if in.EmployeeID == "" {
		return domain.Contract{}, domain.ErrInvalidInput
	}
	if err := in.validate(); err != nil {
		return domain.Contract{}, err
	}
	if _, err := s.users.GetByID(ctx, in.EmployeeID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Contract{}, fmt.Errorf("%w: unknown employee", domain.ErrInvalidInput)
		}
		return domain.Contract{}, err
	}
	now := time.Now().UTC()
	c := domain.Contract{
		ID:           uuid.NewString(),
		EmployeeID:   in.EmployeeID,
		Position:     strings.TrimSpace(in.Position),
		ContractType: strings.TrimSpace(in.ContractType),
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		Status:       in.Status,
		BasicSalary:  in.BasicSalary,
		Allowances:   in.Allowances,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if c.Status == "" {
		c.Status = domain.ContractStatusActive
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return domain.Contract{}, err
	}
	s.logger.Info(ctx, "contract created", "contract_id", c.ID, "employee_id", c.EmployeeID, "by", p.Subject)
	return access.Sanitize(c, p.Roles), nil
}

// Update replaces the mutable fields of a contract. The owning employee cannot
// be changed.
func (s *ContractService) Update(ctx context.Context, p domain.Principal, contractID string, in ContractInput) (domain.Contract, error) {
	if contractID == "" {
		return domain.Contract{}, domain.ErrInvalidInput
	}
	if err := in.validate(); err != nil {
		return domain.Contract{}, err
	}
	c, err := s.repo.GetByID(ctx, contractID)
	if err != nil {
		return domain.Contract{}, err
	}
	if in.EmployeeID != "" && in.EmployeeID != c.EmployeeID {
		return domain.Contract{}, fmt.Errorf("%w: employee cannot change", domain.ErrInvalidInput)
	}
	c.Position = strings.TrimSpace(in.Position)
	c.ContractType = strings.TrimSpace(in.ContractType)
	c.StartDate = in.StartDate
	c.EndDate = in.EndDate
	if in.Status != "" {
		c.Status = in.Status
	}
	c.BasicSalary = in.BasicSalary
	c.Allowances = in.Allowances
	c.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, c); err != nil {
		return domain.Contract{}, err
	}
	s.logger.Info(ctx, "contract updated", "contract_id", c.ID, "by", p.Subject)
	return access.Sanitize(c, p.Roles), nil
}
