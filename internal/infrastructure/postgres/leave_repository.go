package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"backoffice-api/internal/domain"
)

type LeaveRepository struct {
	pool *pgxpool.Pool
}

func NewLeaveRepository(pool *pgxpool.Pool) *LeaveRepository {
	return &LeaveRepository{pool: pool}
}

const leaveSelect = `
SELECT id, employee_id, start_date, end_date, reason, status,
       COALESCE(decided_by, ''), decided_at, created_at
FROM leave_requests`

func scanLeave(row pgx.Row) (domain.LeaveRequest, error) {
	var l domain.LeaveRequest
	err := row.Scan(&l.ID, &l.EmployeeID, &l.StartDate, &l.EndDate, &l.Reason, &l.Status,
		&l.DecidedBy, &l.DecidedAt, &l.CreatedAt)
	return l, err
}

func (r *LeaveRepository) Create(ctx context.Context, l domain.LeaveRequest) error {
	return capture(ctx, "CreateLeaveRequest", func(ctx context.Context) error {
		_, err := r.pool.Exec(ctx, `
INSERT INTO leave_requests (id, employee_id, start_date, end_date, reason, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			l.ID, l.EmployeeID, l.StartDate, l.EndDate, l.Reason, string(l.Status), stamp(l.CreatedAt))
		return translate(err)
	})
}

func (r *LeaveRepository) GetByID(ctx context.Context, leaveID string) (domain.LeaveRequest, error) {
	var l domain.LeaveRequest
	err := capture(ctx, "GetLeaveRequest", func(ctx context.Context) error {
		var e error
		l, e = scanLeave(r.pool.QueryRow(ctx, leaveSelect+` WHERE id = $1`, leaveID))
		return e
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.LeaveRequest{}, domain.ErrNotFound
	}
	return l, err
}

func (r *LeaveRepository) List(ctx context.Context, filter domain.LeaveFilter) ([]domain.LeaveRequest, error) {
	var (
		conds []string
		args  []any
	)
	if filter.OwnerID != "" {
		args = append(args, filter.OwnerID)
		conds = append(conds, fmt.Sprintf("employee_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	query := leaveSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id"

	leaves := make([]domain.LeaveRequest, 0)
	err := capture(ctx, "ListLeaveRequests", func(ctx context.Context) error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			l, err := scanLeave(rows)
			if err != nil {
				return err
			}
			leaves = append(leaves, l)
		}
		return rows.Err()
	})
	return leaves, err
}

// Decide sets the final status of a pending request. A request that is
// missing returns ErrNotFound; one that was already decided returns
// ErrConflict.
func (r *LeaveRepository) Decide(ctx context.Context, leaveID string, status domain.LeaveStatus, decidedBy string, at time.Time) error {
	return capture(ctx, "DecideLeaveRequest", func(ctx context.Context) error {
		tag, err := r.pool.Exec(ctx, `
UPDATE leave_requests
SET status = $2, decided_by = $3, decided_at = $4
WHERE id = $1 AND status = 'pending'`,
			leaveID, string(status), decidedBy, at)
		if err != nil {
			return translate(err)
		}
		if tag.RowsAffected() == 1 {
			return nil
		}
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM leave_requests WHERE id = $1)`, leaveID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrNotFound
		}
		return fmt.Errorf("%w: leave request already decided", domain.ErrConflict)
	})
}
