package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"backoffice-api/internal/domain"
)

type ContractRepository struct {
	pool *pgxpool.Pool
}

func NewContractRepository(pool *pgxpool.Pool) *ContractRepository {
	return &ContractRepository{pool: pool}
}

const contractSelect = `
SELECT id, employee_id, position, contract_type, start_date, end_date, status,
       basic_salary::float8, allowances, created_at, updated_at
FROM contracts`

func scanContract(row pgx.Row) (domain.Contract, error) {
	var (
		c          domain.Contract
		allowances []byte
	)
	err := row.Scan(&c.ID, &c.EmployeeID, &c.Position, &c.ContractType, &c.StartDate, &c.EndDate,
		&c.Status, &c.BasicSalary, &allowances, &c.CreatedAt, &c.UpdatedAt)
	if len(allowances) > 0 {
		c.Allowances = allowances
	}
	return c, err
}

// jsonArg turns an empty document into SQL NULL.
func jsonArg(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func (r *ContractRepository) Create(ctx context.Context, c domain.Contract) error {
	return capture(ctx, "CreateContract", func(ctx context.Context) error {
		_, err := r.pool.Exec(ctx, `
INSERT INTO contracts (id, employee_id, position, contract_type, start_date, end_date, status,
                       basic_salary, allowances, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, $10, $11)`,
			c.ID, c.EmployeeID, c.Position, c.ContractType, c.StartDate, c.EndDate, c.Status,
			c.BasicSalary, jsonArg(c.Allowances), stamp(c.CreatedAt), stamp(c.UpdatedAt))
		return translate(err)
	})
}

func (r *ContractRepository) Update(ctx context.Context, c domain.Contract) error {
	return capture(ctx, "UpdateContract", func(ctx context.Context) error {
		tag, err := r.pool.Exec(ctx, `
UPDATE contracts
SET position = $2, contract_type = $3, start_date = $4, end_date = $5, status = $6,
    basic_salary = $7, allowances = $8::jsonb, updated_at = $9
WHERE id = $1`,
			c.ID, c.Position, c.ContractType, c.StartDate, c.EndDate, c.Status,
			c.BasicSalary, jsonArg(c.Allowances), stamp(c.UpdatedAt))
		if err != nil {
			return translate(err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *ContractRepository) GetByID(ctx context.Context, contractID string) (domain.Contract, error) {
	var c domain.Contract
	err := capture(ctx, "GetContract", func(ctx context.Context) error {
		var e error
		c, e = scanContract(r.pool.QueryRow(ctx, contractSelect+` WHERE id = $1`, contractID))
		return e
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Contract{}, domain.ErrNotFound
	}
	return c, err
}

func (r *ContractRepository) List(ctx context.Context, filter domain.ContractFilter) ([]domain.Contract, error) {
	var (
		conds []string
		args  []any
	)
	if filter.OwnerID != "" {
		args = append(args, filter.OwnerID)
		conds = append(conds, "employee_id = $1")
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	query := contractSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY start_date DESC, id"

	contracts := make([]domain.Contract, 0)
	err := capture(ctx, "ListContracts", func(ctx context.Context) error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			c, err := scanContract(rows)
			if err != nil {
				return err
			}
			contracts = append(contracts, c)
		}
		return rows.Err()
	})
	return contracts, err
}
