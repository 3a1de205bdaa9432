package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"backoffice-api/internal/access"
	"backoffice-api/internal/domain"
	"backoffice-api/internal/ports"
)

type message struct {
	Message string `json:"message"`
}

const (
	msgAuthRequired       = "authentication required"
	msgInsufficientRole   = "insufficient role"
	msgInsufficientPermit = "insufficient permission"
)

// RequireAuthenticated only checks that a principal is present.
func RequireAuthenticated() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if PrincipalFrom(c) == nil {
				return c.JSON(http.StatusUnauthorized, message{Message: msgAuthRequired})
			}
			return next(c)
		}
	}
}

func RequireAnyRole(authz access.Authorizer, logger ports.Logger, roles ...string) echo.MiddlewareFunc {
	return gate(logger, msgInsufficientRole, func(p *domain.Principal) access.Decision {
		return authz.RequireAnyRole(p, roles...)
	})
}

func RequireAnyPermission(authz access.Authorizer, logger ports.Logger, permissions ...string) echo.MiddlewareFunc {
	return gate(logger, msgInsufficientPermit, func(p *domain.Principal) access.Decision {
		return authz.RequireAnyPermission(p, permissions...)
	})
}

func gate(logger ports.Logger, forbidden string, decide func(*domain.Principal) access.Decision) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := PrincipalFrom(c)
			switch decide(p) {
			case access.Allow:
				return next(c)
			case access.DenyUnauthenticated:
				return c.JSON(http.StatusUnauthorized, message{Message: msgAuthRequired})
			default:
				logger.Warn(c.Request().Context(), "access denied",
					"subject", p.Subject,
					"roles", p.Roles,
					"method", c.Request().Method,
					"route_pattern", c.Path(),
				)
				return c.JSON(http.StatusForbidden, message{Message: forbidden})
			}
		}
	}
}
