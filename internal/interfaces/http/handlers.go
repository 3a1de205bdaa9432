package http

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"backoffice-api/internal/adapters/http/middleware"
	"backoffice-api/internal/application"
	"backoffice-api/internal/domain"
	"backoffice-api/internal/ports"
)

type message struct {
	Message string `json:"message"`
}

// requestValidator plugs go-playground/validator into echo's c.Validate.
type requestValidator struct {
	v *validator.Validate
}

func newRequestValidator() *requestValidator {
	return &requestValidator{v: validator.New(validator.WithRequiredStructEnabled())}
}

func (rv *requestValidator) Validate(i any) error {
	return rv.v.Struct(i)
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return fmt.Errorf("%w: invalid payload", domain.ErrInvalidInput)
	}
	return c.Validate(req)
}

func validationMessage(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return "invalid input: " + strings.Join(parts, ", ")
}

func handleError(c echo.Context, logger ports.Logger, err error) error {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return c.JSON(stdhttp.StatusBadRequest, message{Message: validationMessage(verrs)})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.JSON(stdhttp.StatusBadRequest, message{Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(stdhttp.StatusNotFound, message{Message: "not found"})
	case errors.Is(err, domain.ErrConflict):
		return c.JSON(stdhttp.StatusConflict, message{Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidCredentials):
		return c.JSON(stdhttp.StatusUnauthorized, message{Message: "invalid credentials"})
	case errors.Is(err, domain.ErrPermissionDeny):
		return c.JSON(stdhttp.StatusForbidden, message{Message: err.Error()})
	default:
		logger.Error(c.Request().Context(), "request failed",
			"error", err,
			"method", c.Request().Method,
			"route_pattern", c.Path(),
		)
		return c.JSON(stdhttp.StatusInternalServerError, message{Message: "internal error"})
	}
}

// principal returns the caller resolved by the authentication middleware. Gated
// routes never reach a handler without one; the zero value is self-scoped and
// unprivileged.
func principal(c echo.Context) domain.Principal {
	if p := middleware.PrincipalFrom(c); p != nil {
		return *p
	}
	return domain.Principal{}
}

type AuthHandler struct {
	service *application.AuthService
	logger  ports.Logger
}

func NewAuthHandler(service *application.AuthService, logger ports.Logger) *AuthHandler {
	return &AuthHandler{service: service, logger: logger}
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if err := bindAndValidate(c, &req); err != nil {
		return handleError(c, h.logger, err)
	}
	res, err := h.service.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(stdhttp.StatusOK, res)
}

func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(stdhttp.StatusOK, principal(c))
}

type CatalogHandler struct {
	service *application.CatalogService
	logger  ports.Logger
}

func NewCatalogHandler(service *application.CatalogService, logger ports.Logger) *CatalogHandler {
	return &CatalogHandler{service: service, logger: logger}
}

type rolePermissions struct {
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

func (h *CatalogHandler) ListRoles(c echo.Context) error {
	roles, err := h.service.ListRoles(c.Request().Context())
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(stdhttp.StatusOK, roles)
}

func (h *CatalogHandler) Hierarchy(c echo.Context) error {
	return c.JSON(stdhttp.StatusOK, h.service.Hierarchy())
}

func (h *CatalogHandler) CreateRole(c echo.Context) error {
	var req struct {
		Key         string   `json:"key" validate:"required,max=64"`
		Name        string   `json:"name" validate:"required,max=120"`
		Description string   `json:"description" validate:"max=500"`
		Permissions []string `json:"permissions" validate:"dive,required"`
	}
	if err := bindAndValidate(c, &req); err != nil {
		return handleError(c, h.logger, err)
	}
	role, err := h.service.CreateRole(c.Request().Context(), domain.Role{
		Key: req.Key, Name: req.Name, Description: req.Description, Permissions: req.Permissions,
	})
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(stdhttp.StatusCreated, role)
}

func (h *CatalogHandler) RolePermissions(c echo.Context) error {
	permissions, err := h.service.RolePermissions(c.Request().Context(), c.Param("key"))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(stdhttp.StatusOK, rolePermissions{Role: c.Param("key"), Permissions: permissions})
}

func (h *CatalogHandler) ReplaceRolePermissions(c echo.Context) error {
	var req struct {
		Permissions []string `json:"permissions" validate:"required,dive,required"`
	}
	if err := bindAndValidate(c, &req); err != nil {
		return handleError(c, h.logger, err)
	}
	permissions, err := h.service.ReplacePermissions(c.Request().Context(), c.Param("key"), req.Permissions)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(stdhttp.StatusOK, rolePermissions{Role: c.Param("key"), Permissions: permissions})
}

func (h *CatalogHandler) ListPermissions(c echo.Context) error {
	permissions, err := h.service.ListPermissions(c.Request().Context())
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(stdhttp.StatusOK, permissions)
}

func (h *CatalogHandler) CreatePermission(c echo.Context) error {
	var req struct {
		Key         string `json:"key" validate:"required,max=64"`
		Description string `json:"description" validate:"max=500"`
	}
	if err := bindAndValidate(c, &req); err != nil {
		return handleError(c, h.logger, err)
	}
	permission, err := h.service.CreatePermission(c.Request().Context(), domain.Permission{Key: req.Key, Description: req.Description})
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(stdhttp.StatusCreated, permission)
}

type UsersHandler struct {
	service *application.UserService
	logger  ports.Logger
}

func NewUsersHandler(service *application.UserService, logger ports.Logger) *UsersHandler {
	return &UsersHandler{service: service, logger: logger}
}

func (h *UsersHandler) Create(c echo.Context) error {
	var req struct {
		Email    string   `json:"email" validate:"required,email"`
		FullName string   `json:"fullName" validate:"required,max=200"`
		Password string   `json:"password" validate:"required,min=8,max=72"`
		Roles    []string `json:"roles" validate:"dive,required"`
	}
	if err := bindAndValidate(c, &req); err != nil {
		return handleError(c, h.logger, err)
	}
	user, err := h.service.Create(c.Request().Context(), application.NewUser{
		Email: req.Email, FullName: req.FullName, Password: req.Password, Roles: req.Roles,
	})
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(stdhttp.StatusCreated, user)
}

type userRoles struct {
	UserID string   `json:"userId"`
	Roles  []string `json:"roles"`
}

func (h *UsersHandler) Roles(c echo.Context) error {
	roles, err := h.service.Roles(c.Request().Context(), c.Param("id"))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(stdhttp.StatusOK, userRoles{UserID: c.Param("id"), Roles: roles})
}

func (h *UsersHandler) AssignRoles(c echo.Context) error {
	var req struct {
		Roles []string `json:"roles" validate:"required,dive,required"`
	}
	if err := bindAndValidate(c, &req); err != nil {
		return handleError(c, h.logger, err)
	}
	roles, err := h.service.AssignRoles(c.Request().Context(), c.Param("id"), req.Roles)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(stdhttp.StatusOK, userRoles{UserID: c.Param("id"), Roles: roles})
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db     Pinger
	logger ports.Logger
}

func NewHealthHandler(db Pinger, logger ports.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

func (h *HealthHandler) Check(c echo.Context) error {
	if h.db != nil {
		if err := h.db.Ping(c.Request().Context()); err != nil {
			h.logger.Error(c.Request().Context(), "health check failed", "error", err)
			return c.JSON(stdhttp.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
	}
	return c.JSON(stdhttp.StatusOK, map[string]string{"status": "ok"})
}
