package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"backoffice-api/internal/domain"
	"backoffice-api/internal/ports"
)

const principalKey = "principal"

type principalCtxKey struct{}

// TokenVerifier turns a bearer token into a principal.
type TokenVerifier interface {
	Verify(token string) (domain.Principal, error)
}

// Authenticate resolves the bearer token once per request and stores the
// principal on the context. It never rejects a request: routes decide through
// RequireAnyRole and RequireAnyPermission whether a missing principal matters.
func Authenticate(verifier TokenVerifier, logger ports.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return next(c)
			}
			p, err := verifier.Verify(token)
			if err != nil {
				logger.Debug(c.Request().Context(), "bearer token rejected", "error", err)
				return next(c)
			}
			c.Set(principalKey, &p)
			c.SetRequest(c.Request().WithContext(WithPrincipal(c.Request().Context(), p)))
			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// PrincipalFrom returns the authenticated caller or nil.
func PrincipalFrom(c echo.Context) *domain.Principal {
	p, _ := c.Get(principalKey).(*domain.Principal)
	return p
}

func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalCtxKey{}).(domain.Principal)
	return p, ok
}
