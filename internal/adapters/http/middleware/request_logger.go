package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"backoffice-api/internal/ports"
)

func RequestLogger(logger ports.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			started := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			ctx := c.Request().Context()
			args := []any{
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"route_pattern", c.Path(),
				"status", c.Response().Status,
				"duration", time.Since(started).String(),
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			}
			if p := PrincipalFrom(c); p != nil {
				args = append(args, "subject", p.Subject)
			}
			if c.Response().Status >= 500 {
				logger.Error(ctx, "http request", args...)
			} else {
				logger.Info(ctx, "http request", args...)
			}
			return nil
		}
	}
}
