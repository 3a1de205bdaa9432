package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"backoffice-api/internal/access"
	"backoffice-api/internal/domain"
	"backoffice-api/internal/ports"
)

type LeaveInput struct {
	StartDate time.Time
	EndDate   time.Time
	Reason    string
}

type LeaveService struct {
	repo   ports.LeaveRepository
	logger ports.Logger
	now    func() time.Time
}

func NewLeaveService(repo ports.LeaveRepository, logger ports.Logger) *LeaveService {
	return &LeaveService{repo: repo, logger: logger, now: time.Now}
}

// Submit files a leave request owned by the caller.
func (s *LeaveService) Submit(ctx context.Context, p domain.Principal, in LeaveInput) (domain.LeaveRequest, error) {
	if p.Subject == "" || in.StartDate.IsZero() || in.EndDate.IsZero() {
		return domain.LeaveRequest{}, domain.ErrInvalidInput
	}
	if in.EndDate.Before(in.StartDate) {
		return domain.LeaveRequest{}, fmt.Errorf("%w: end date before start date", domain.ErrInvalidInput)
	}
	leave := domain.LeaveRequest{
		ID:         uuid.NewString(),
		EmployeeID: p.Subject,
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		Reason:     strings.TrimSpace(in.Reason),
		Status:     domain.LeavePending,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.repo.Create(ctx, leave); err != nil {
		return domain.LeaveRequest{}, err
	}
	s.logger.Info(ctx, "leave requested", "leave_id", leave.ID, "employee_id", leave.EmployeeID)
	return leave, nil
}

func (s *LeaveService) List(ctx context.Context, p domain.Principal, status domain.LeaveStatus) ([]domain.LeaveRequest, error) {
	if status != "" && !validLeaveStatus(status) {
		return nil, domain.ErrInvalidInput
	}
	filter := domain.LeaveFilter{Status: status}
	if owner, scoped := access.OwnerScope(p); scoped {
		filter.OwnerID = owner
	}
	leaves, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return access.FilterOwned(leaves, p, func(l domain.LeaveRequest) string { return l.EmployeeID }), nil
}

// Decide approves or rejects a pending request. Nobody decides their own
// request.
func (s *LeaveService) Decide(ctx context.Context, p domain.Principal, leaveID string, status domain.LeaveStatus) (domain.LeaveRequest, error) {
	if leaveID == "" || (status != domain.LeaveApproved && status != domain.LeaveRejected) {
		return domain.LeaveRequest{}, domain.ErrInvalidInput
	}
	leave, err := s.repo.GetByID(ctx, leaveID)
	if err != nil {
		return domain.LeaveRequest{}, err
	}
	if leave.EmployeeID == p.Subject {
		return domain.LeaveRequest{}, fmt.Errorf("%w: cannot decide own leave request", domain.ErrPermissionDeny)
	}
	if leave.Status != domain.LeavePending {
		return domain.LeaveRequest{}, fmt.Errorf("%w: leave request already %s", domain.ErrConflict, leave.Status)
	}
	at := s.now().UTC()
	if err := s.repo.Decide(ctx, leaveID, status, p.Subject, at); err != nil {
		return domain.LeaveRequest{}, err
	}
	leave.Status = status
	leave.DecidedBy = p.Subject
	leave.DecidedAt = &at
	s.logger.Info(ctx, "leave decided", "leave_id", leaveID, "status", status, "by", p.Subject)
	return leave, nil
}

func validLeaveStatus(status domain.LeaveStatus) bool {
	switch status {
	case domain.LeavePending, domain.LeaveApproved, domain.LeaveRejected:
		return true
	}
	return false
}
