package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"backoffice-api/internal/domain"
)

type SnapshotRepository struct {
	pool *pgxpool.Pool
}

func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

// Compute aggregates the contracts that are active on date.
func (r *SnapshotRepository) Compute(ctx context.Context, date time.Time) (domain.PayrollSnapshot, error) {
	day := truncateDay(date)
	snapshot := domain.PayrollSnapshot{Date: day, ByContractType: map[string]int{}}
	err := capture(ctx, "ComputeSnapshot", func(ctx context.Context) error {
		rows, err := r.pool.Query(ctx, `
SELECT contract_type, count(*), COALESCE(sum(basic_salary), 0)::float8
FROM contracts
WHERE status = 'active'
  AND start_date <= $1
  AND (end_date IS NULL OR end_date >= $1)
GROUP BY contract_type`, day)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var (
				contractType string
				count        int
				total        float64
			)
			if err := rows.Scan(&contractType, &count, &total); err != nil {
				return err
			}
			snapshot.ByContractType[contractType] = count
			snapshot.TotalBasicSalary += total
		}
		if err := rows.Err(); err != nil {
			return err
		}
		return r.pool.QueryRow(ctx, `
SELECT count(DISTINCT employee_id)
FROM contracts
WHERE status = 'active'
  AND start_date <= $1
  AND (end_date IS NULL OR end_date >= $1)`, day).Scan(&snapshot.Headcount)
	})
	snapshot.GeneratedAt = time.Now().UTC()
	return snapshot, err
}

func (r *SnapshotRepository) Upsert(ctx context.Context, s domain.PayrollSnapshot) error {
	byType, err := json.Marshal(s.ByContractType)
	if err != nil {
		return err
	}
	return capture(ctx, "UpsertSnapshot", func(ctx context.Context) error {
		_, err := r.pool.Exec(ctx, `
INSERT INTO payroll_snapshots (snapshot_date, headcount, total_basic_salary, by_contract_type, generated_at)
VALUES ($1, $2, $3, $4::jsonb, $5)
ON CONFLICT (snapshot_date) DO UPDATE
SET headcount = EXCLUDED.headcount,
    total_basic_salary = EXCLUDED.total_basic_salary,
    by_contract_type = EXCLUDED.by_contract_type,
    generated_at = EXCLUDED.generated_at`,
			truncateDay(s.Date), s.Headcount, s.TotalBasicSalary, string(byType), stamp(s.GeneratedAt))
		return err
	})
}

func (r *SnapshotRepository) ListRecent(ctx context.Context, limit int) ([]domain.PayrollSnapshot, error) {
	if limit <= 0 {
		limit = 30
	}
	snapshots := make([]domain.PayrollSnapshot, 0)
	err := capture(ctx, "ListSnapshots", func(ctx context.Context) error {
		rows, err := r.pool.Query(ctx, `
SELECT snapshot_date, headcount, total_basic_salary::float8, by_contract_type, generated_at
FROM payroll_snapshots
ORDER BY snapshot_date DESC
LIMIT $1`, limit)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var (
				s      domain.PayrollSnapshot
				byType []byte
			)
			if err := rows.Scan(&s.Date, &s.Headcount, &s.TotalBasicSalary, &byType, &s.GeneratedAt); err != nil {
				return err
			}
			s.ByContractType = map[string]int{}
			if err := json.Unmarshal(byType, &s.ByContractType); err != nil {
				return err
			}
			snapshots = append(snapshots, s)
		}
		return rows.Err()
	})
	return snapshots, err
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
