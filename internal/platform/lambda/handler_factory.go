// Package lambda serves the echo router behind API Gateway HTTP APIs.
package lambda

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/awslabs/aws-lambda-go-api-proxy/core"
	echoadapter "github.com/awslabs/aws-lambda-go-api-proxy/echo"
	"github.com/labstack/echo/v4"

	"backoffice-api/internal/ports"
)

type LambdaHandler func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error)

// NewLambdaHandler proxies payload v2 events into e. Only adapter failures are
// logged here; request logging stays in the echo middleware chain.
func NewLambdaHandler(e *echo.Echo, logger ports.Logger) LambdaHandler {
	adapter := echoadapter.NewV2(e)
	return func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		resp, err := adapter.ProxyWithContext(ctx, req)
		if err != nil {
			logger.Error(ctx, "lambda proxy failed",
				"error", err,
				"route_key", req.RouteKey,
				"aws_request_id", req.RequestContext.RequestID,
			)
		}
		return resp, err
	}
}

// SourceIPExtractor reports the caller address API Gateway observed. Client
// supplied X-Forwarded-For values are ignored; requests that did not come
// through the proxy fall back to the peer address.
func SourceIPExtractor() echo.IPExtractor {
	direct := echo.ExtractIPDirect()
	return func(r *http.Request) string {
		if rc, ok := core.GetAPIGatewayV2ContextFromContext(r.Context()); ok && rc.HTTP.SourceIP != "" {
			return rc.HTTP.SourceIP
		}
		return direct(r)
	}
}
