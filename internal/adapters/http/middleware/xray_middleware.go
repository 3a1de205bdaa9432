package middleware

import (
	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/labstack/echo/v4"
)

// XRayMiddleware opens one segment per request so repository subsegments and
// log lines share a trace id.
func XRayMiddleware(segmentName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, seg := xray.BeginSegment(c.Request().Context(), segmentName)
			c.SetRequest(c.Request().WithContext(ctx))
			err := next(c)
			if seg != nil {
				_ = seg.AddAnnotation("route", c.Path())
				_ = seg.AddAnnotation("status", c.Response().Status)
				seg.Close(err)
			}
			return err
		}
	}
}
