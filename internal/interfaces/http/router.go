package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"backoffice-api/internal/access"
	appmw "backoffice-api/internal/adapters/http/middleware"
	"backoffice-api/internal/domain"
	"backoffice-api/internal/ports"
)

// Middleware carries the cross-cutting layers installed on every route. Nil
// entries are skipped. A nil IPExtractor means the peer address identifies the
// client.
type Middleware struct {
	IPExtractor   echo.IPExtractor
	XRay          echo.MiddlewareFunc
	RequestLogger echo.MiddlewareFunc
	Secure        echo.MiddlewareFunc
	Auth          echo.MiddlewareFunc
	LoginLimiter  echo.MiddlewareFunc
}

type Handlers struct {
	Auth      *AuthHandler
	Catalog   *CatalogHandler
	Users     *UsersHandler
	Contracts *ContractsHandler
	Leave     *LeaveHandler
	Payroll   *PayrollHandler
	Health    *HealthHandler
}

func newEcho(m Middleware) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newRequestValidator()
	e.IPExtractor = m.IPExtractor
	if e.IPExtractor == nil {
		e.IPExtractor = echo.ExtractIPDirect()
	}
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	for _, mw := range []echo.MiddlewareFunc{m.XRay, m.RequestLogger, m.Secure, m.Auth} {
		if mw != nil {
			e.Use(mw)
		}
	}
	return e
}

var (
	catalogReaders  = []string{domain.RoleSystemAdmin, domain.RoleAdmin}
	userManagers    = []string{domain.RoleSystemAdmin, domain.RoleAdmin, domain.RoleHRManager}
	contractEditors = []string{domain.RoleAdmin, domain.RoleHRManager}
	contractViewers = []string{
		domain.RoleAdmin, domain.RoleCEO, domain.RoleCFO, domain.RoleHRManager,
		domain.RoleAccountant, domain.RoleSupervisor, domain.RoleEngineer, domain.RoleEmployee,
	}
	leaveViewers  = []string{domain.RoleAdmin, domain.RoleCEO, domain.RoleHRManager, domain.RoleSupervisor, domain.RoleEngineer, domain.RoleEmployee}
	leaveDeciders = []string{domain.RoleAdmin, domain.RoleCEO, domain.RoleHRManager, domain.RoleSupervisor}
)

// NewRouter wires every route behind its gate. Authentication runs on all
// routes and never rejects on its own; each group decides whether a caller
// without a principal may pass.
func NewRouter(h Handlers, m Middleware, authz access.Authorizer, logger ports.Logger) *echo.Echo {
	e := newEcho(m)

	roles := func(keys ...string) echo.MiddlewareFunc { return appmw.RequireAnyRole(authz, logger, keys...) }
	perms := func(keys ...string) echo.MiddlewareFunc { return appmw.RequireAnyPermission(authz, logger, keys...) }

	e.GET("/healthz", h.Health.Check)

	login := []echo.MiddlewareFunc{}
	if m.LoginLimiter != nil {
		login = append(login, m.LoginLimiter)
	}
	e.POST("/auth/login", h.Auth.Login, login...)
	e.GET("/auth/me", h.Auth.Me, appmw.RequireAuthenticated())

	e.GET("/roles", h.Catalog.ListRoles, roles(catalogReaders...))
	e.GET("/roles/hierarchy", h.Catalog.Hierarchy, roles(catalogReaders...))
	e.GET("/permissions", h.Catalog.ListPermissions, roles(catalogReaders...))
	e.POST("/roles", h.Catalog.CreateRole, perms(domain.PermManageRoles))
	e.GET("/roles/:key/permissions", h.Catalog.RolePermissions, perms(domain.PermManageRoles))
	e.PUT("/roles/:key/permissions", h.Catalog.ReplaceRolePermissions, perms(domain.PermManageRoles))
	e.POST("/permissions", h.Catalog.CreatePermission, perms(domain.PermManageRoles))

	e.POST("/users", h.Users.Create, roles(userManagers...))
	e.GET("/users/:id/roles", h.Users.Roles, roles(userManagers...))
	e.PUT("/users/:id/roles", h.Users.AssignRoles, roles(userManagers...))

	e.GET("/contracts", h.Contracts.List, roles(contractViewers...))
	e.GET("/contracts/:id", h.Contracts.Get, roles(contractViewers...))
	e.POST("/contracts", h.Contracts.Create, roles(contractEditors...))
	e.PUT("/contracts/:id", h.Contracts.Update, roles(contractEditors...))

	e.POST("/leave-requests", h.Leave.Submit, perms(domain.PermRequestLeave))
	e.GET("/leave-requests", h.Leave.List, roles(leaveViewers...))
	e.POST("/leave-requests/:id/decision", h.Leave.Decide, roles(leaveDeciders...))

	e.GET("/payroll/snapshots", h.Payroll.List, perms(domain.PermViewPayroll))
	e.POST("/payroll/snapshots", h.Payroll.Run, perms(domain.PermManagePayroll))

	return e
}
