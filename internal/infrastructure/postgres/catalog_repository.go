package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"backoffice-api/internal/domain"
)

type CatalogRepository struct {
	pool *pgxpool.Pool
}

func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

const roleSelect = `
SELECT r.key, r.name, r.description, r.created_at, r.updated_at,
       COALESCE(array_agg(rp.permission_key ORDER BY rp.permission_key)
                FILTER (WHERE rp.permission_key IS NOT NULL), '{}') AS permissions
FROM roles r
LEFT JOIN role_permissions rp ON rp.role_key = r.key`

func scanRole(row pgx.Row) (domain.Role, error) {
	var role domain.Role
	err := row.Scan(&role.Key, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt, &role.Permissions)
	return role, err
}

func (r *CatalogRepository) CreateRole(ctx context.Context, role domain.Role) error {
	return capture(ctx, "CreateRole", func(ctx context.Context) error {
		return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
			_, err := tx.Exec(ctx,
				`INSERT INTO roles (key, name, description, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
				role.Key, role.Name, role.Description, stamp(role.CreatedAt), stamp(role.UpdatedAt))
			if err != nil {
				return translate(err)
			}
			return insertRolePermissions(ctx, tx, role.Key, role.Permissions)
		})
	})
}

func (r *CatalogRepository) GetRole(ctx context.Context, key string) (domain.Role, error) {
	var role domain.Role
	err := capture(ctx, "GetRole", func(ctx context.Context) error {
		var e error
		role, e = scanRole(r.pool.QueryRow(ctx, roleSelect+` WHERE r.key = $1 GROUP BY r.key`, key))
		return e
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Role{}, domain.ErrNotFound
	}
	return role, err
}

func (r *CatalogRepository) ListRoles(ctx context.Context) ([]domain.Role, error) {
	roles := make([]domain.Role, 0)
	err := capture(ctx, "ListRoles", func(ctx context.Context) error {
		rows, err := r.pool.Query(ctx, roleSelect+` GROUP BY r.key ORDER BY r.key`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			role, err := scanRole(rows)
			if err != nil {
				return err
			}
			roles = append(roles, role)
		}
		return rows.Err()
	})
	return roles, err
}

func (r *CatalogRepository) CreatePermission(ctx context.Context, permission domain.Permission) error {
	return capture(ctx, "CreatePermission", func(ctx context.Context) error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO permissions (key, description, created_at) VALUES ($1, $2, $3)`,
			permission.Key, permission.Description, stamp(permission.CreatedAt))
		return translate(err)
	})
}

func (r *CatalogRepository) ListPermissions(ctx context.Context) ([]domain.Permission, error) {
	permissions := make([]domain.Permission, 0)
	err := capture(ctx, "ListPermissions", func(ctx context.Context) error {
		rows, err := r.pool.Query(ctx, `SELECT key, description, created_at FROM permissions ORDER BY key`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var p domain.Permission
			if err := rows.Scan(&p.Key, &p.Description, &p.CreatedAt); err != nil {
				return err
			}
			permissions = append(permissions, p)
		}
		return rows.Err()
	})
	return permissions, err
}

func (r *CatalogRepository) RolePermissions(ctx context.Context, roleKey string) ([]string, error) {
	role, err := r.GetRole(ctx, roleKey)
	if err != nil {
		return nil, err
	}
	return role.Permissions, nil
}

// ReplaceRolePermissions deletes the current links of the role and inserts the
// new set inside one transaction. The role row is locked so concurrent
// replacements serialize.
func (r *CatalogRepository) ReplaceRolePermissions(ctx context.Context, roleKey string, permissions []string) error {
	return capture(ctx, "ReplaceRolePermissions", func(ctx context.Context) error {
		return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
			var key string
			err := tx.QueryRow(ctx, `SELECT key FROM roles WHERE key = $1 FOR UPDATE`, roleKey).Scan(&key)
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrNotFound
			}
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_key = $1`, roleKey); err != nil {
				return err
			}
			if err := insertRolePermissions(ctx, tx, roleKey, permissions); err != nil {
				return err
			}
			_, err = tx.Exec(ctx, `UPDATE roles SET updated_at = $2 WHERE key = $1`, roleKey, time.Now().UTC())
			return err
		})
	})
}

// PermissionsForRoles returns the sorted union of permissions granted to the
// given roles. Links to permissions that no longer exist are skipped.
func (r *CatalogRepository) PermissionsForRoles(ctx context.Context, roleKeys []string) ([]string, error) {
	permissions := make([]string, 0)
	if len(roleKeys) == 0 {
		return permissions, nil
	}
	err := capture(ctx, "PermissionsForRoles", func(ctx context.Context) error {
		rows, err := r.pool.Query(ctx, `
SELECT DISTINCT rp.permission_key
FROM role_permissions rp
JOIN permissions p ON p.key = rp.permission_key
WHERE rp.role_key = ANY($1)
ORDER BY rp.permission_key`, roleKeys)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var key string
			if err := rows.Scan(&key); err != nil {
				return err
			}
			permissions = append(permissions, key)
		}
		return rows.Err()
	})
	return permissions, err
}

func insertRolePermissions(ctx context.Context, tx pgx.Tx, roleKey string, permissions []string) error {
	for _, p := range permissions {
		if _, err := tx.Exec(ctx,
			`INSERT INTO role_permissions (role_key, permission_key) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			roleKey, p); err != nil {
			return fmt.Errorf("link permission %s: %w", p, translate(err))
		}
	}
	return nil
}
