package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"backoffice-api/internal/domain"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userSelect = `
SELECT u.id, u.email, u.full_name, u.password_hash, u.active, u.created_at, u.updated_at,
       COALESCE(array_agg(ur.role_key ORDER BY ur.role_key)
                FILTER (WHERE ur.role_key IS NOT NULL), '{}') AS roles
FROM users u
LEFT JOIN user_roles ur ON ur.user_id = u.id`

func (r *UserRepository) Create(ctx context.Context, user domain.User) error {
	return capture(ctx, "CreateUser", func(ctx context.Context) error {
		return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
			_, err := tx.Exec(ctx, `
INSERT INTO users (id, email, full_name, password_hash, active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				user.ID, strings.ToLower(user.Email), user.FullName, user.PasswordHash, user.Active,
				stamp(user.CreatedAt), stamp(user.UpdatedAt))
			if err != nil {
				return translate(err)
			}
			return insertUserRoles(ctx, tx, user.ID, user.Roles)
		})
	})
}

func (r *UserRepository) GetByID(ctx context.Context, userID string) (domain.User, error) {
	return r.getOne(ctx, "GetUser", ` WHERE u.id = $1 GROUP BY u.id`, userID)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getOne(ctx, "FindUserByEmail", ` WHERE u.email = $1 GROUP BY u.id`, strings.ToLower(email))
}

func (r *UserRepository) getOne(ctx context.Context, op, where string, arg any) (domain.User, error) {
	var u domain.User
	err := capture(ctx, op, func(ctx context.Context) error {
		return r.pool.QueryRow(ctx, userSelect+where, arg).
			Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.Active, &u.CreatedAt, &u.UpdatedAt, &u.Roles)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrNotFound
	}
	return u, err
}

func (r *UserRepository) RoleKeys(ctx context.Context, userID string) ([]string, error) {
	u, err := r.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.Roles, nil
}

// ReplaceRoles swaps the role assignment of a user atomically. Unknown role
// keys violate the foreign key and roll the whole change back.
func (r *UserRepository) ReplaceRoles(ctx context.Context, userID string, roleKeys []string) error {
	return capture(ctx, "ReplaceUserRoles", func(ctx context.Context) error {
		return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
			tag, err := tx.Exec(ctx, `UPDATE users SET updated_at = $2 WHERE id = $1`, userID, time.Now().UTC())
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return domain.ErrNotFound
			}
			if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
				return err
			}
			return insertUserRoles(ctx, tx, userID, roleKeys)
		})
	})
}

func insertUserRoles(ctx context.Context, tx pgx.Tx, userID string, roleKeys []string) error {
	for _, key := range roleKeys {
		if _, err := tx.Exec(ctx,
			`INSERT INTO user_roles (user_id, role_key) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			userID, key); err != nil {
			return translate(err)
		}
	}
	return nil
}
