package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLogger struct {
	lastCtx  context.Context
	lastMsg  string
	lastArgs []any
	lastWarn string
	lastErr  string
}

func (m *mockLogger) Info(ctx context.Context, msg string, args ...any) {
	m.lastCtx = ctx
	m.lastMsg = msg
	m.lastArgs = args
}

func (m *mockLogger) Error(ctx context.Context, msg string, args ...any) {
	m.lastCtx = ctx
	m.lastErr = msg
	m.lastArgs = args
}

func (m *mockLogger) Warn(_ context.Context, msg string, _ ...any) { m.lastWarn = msg }
func (m *mockLogger) Debug(context.Context, string, ...any)         {}

func argKeys(args []any) map[string]bool {
	keys := map[string]bool{}
	for i := 0; i < len(args)-1; i += 2 {
		if k, ok := args[i].(string); ok {
			keys[k] = true
		}
	}
	return keys
}

func TestRequestLogger_LogsExpectedFields(t *testing.T) {
	logger := &mockLogger{}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/contracts", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/contracts")

	h := RequestLogger(logger)(func(c echo.Context) error {
		return c.NoContent(http.StatusCreated)
	})
	require.NoError(t, h(c))

	assert.Equal(t, "http request", logger.lastMsg)
	keys := argKeys(logger.lastArgs)
	for _, expected := range []string{"method", "path", "route_pattern", "status", "duration", "request_id"} {
		assert.True(t, keys[expected], "missing key %s", expected)
	}
}

func TestRequestLogger_LogsServerErrorsAtErrorLevel(t *testing.T) {
	logger := &mockLogger{}
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/contracts", nil), httptest.NewRecorder())

	h := RequestLogger(logger)(func(c echo.Context) error {
		return errors.New("boom")
	})
	require.NoError(t, h(c))

	assert.Equal(t, "http request", logger.lastErr)
	assert.Equal(t, http.StatusInternalServerError, c.Response().Status)
}

func TestRequestLogger_PassesContextWithXRaySegment(t *testing.T) {
	logger := &mockLogger{}
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/contracts", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	ctx, seg := xray.BeginSegment(req.Context(), "http-test")
	defer seg.Close(nil)
	c.SetRequest(req.Clone(ctx))

	h := RequestLogger(logger)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))

	assert.NotNil(t, xray.GetSegment(logger.lastCtx))
}
