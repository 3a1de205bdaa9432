package catalog

import (
	"context"
	"fmt"

	"backoffice-api/internal/ports"
)

// Seed creates the permissions and roles of c that are missing from repo.
// Existing roles are left untouched so administrative edits survive restarts.
func Seed(ctx context.Context, c Catalog, repo ports.CatalogRepository, logger ports.Logger) error {
	existingPerms, err := repo.ListPermissions(ctx)
	if err != nil {
		return fmt.Errorf("list permissions: %w", err)
	}
	havePerm := make(map[string]bool, len(existingPerms))
	for _, p := range existingPerms {
		havePerm[p.Key] = true
	}
	for _, p := range c.DomainPermissions() {
		if havePerm[p.Key] {
			continue
		}
		if err := repo.CreatePermission(ctx, p); err != nil {
			return fmt.Errorf("seed permission %s: %w", p.Key, err)
		}
		logger.Info(ctx, "seeded permission", "permission", p.Key)
	}

	existingRoles, err := repo.ListRoles(ctx)
	if err != nil {
		return fmt.Errorf("list roles: %w", err)
	}
	haveRole := make(map[string]bool, len(existingRoles))
	for _, r := range existingRoles {
		haveRole[r.Key] = true
	}
	for _, r := range c.DomainRoles() {
		if haveRole[r.Key] {
			continue
		}
		if err := repo.CreateRole(ctx, r); err != nil {
			return fmt.Errorf("seed role %s: %w", r.Key, err)
		}
		logger.Info(ctx, "seeded role", "role", r.Key, "permissions", len(r.Permissions))
	}
	return nil
}
