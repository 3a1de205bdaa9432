package application

import (
	"context"
	"time"

	"backoffice-api/internal/domain"
	"backoffice-api/internal/ports"
)

type SnapshotService struct {
	repo    ports.SnapshotRepository
	archive ports.SnapshotArchive
	logger  ports.Logger
	now     func() time.Time
}

// NewSnapshotService builds the payroll snapshot service. archive may be nil.
func NewSnapshotService(repo ports.SnapshotRepository, archive ports.SnapshotArchive, logger ports.Logger) *SnapshotService {
	return &SnapshotService{repo: repo, archive: archive, logger: logger, now: time.Now}
}

// Run computes and stores the snapshot for date, or for today when date is
// zero. Re-running a date overwrites the earlier result. An archive failure is
// logged and does not fail the run.
func (s *SnapshotService) Run(ctx context.Context, date time.Time) (domain.PayrollSnapshot, error) {
	if date.IsZero() {
		date = s.now()
	}
	snapshot, err := s.repo.Compute(ctx, date)
	if err != nil {
		return domain.PayrollSnapshot{}, err
	}
	if err := s.repo.Upsert(ctx, snapshot); err != nil {
		return domain.PayrollSnapshot{}, err
	}
	s.logger.Info(ctx, "payroll snapshot stored",
		"date", snapshot.Date.Format("2006-01-02"), "headcount", snapshot.Headcount)
	if s.archive != nil {
		if err := s.archive.Put(ctx, snapshot); err != nil {
			s.logger.Error(ctx, "payroll snapshot archive failed", "error", err)
		}
	}
	return snapshot, nil
}

func (s *SnapshotService) List(ctx context.Context, limit int) ([]domain.PayrollSnapshot, error) {
	if limit < 0 || limit > 366 {
		return nil, domain.ErrInvalidInput
	}
	if limit == 0 {
		limit = 30
	}
	return s.repo.ListRecent(ctx, limit)
}
