package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/logging"
)

func runLoggedRequest(t *testing.T, requestID string) (*httptest.ResponseRecorder, *slog.Logger) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if requestID != "" {
		req.Header.Set(echo.HeaderXRequestID, requestID)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got *slog.Logger
	handler := RequestLogger(slog.Default())(func(c echo.Context) error {
		got = logging.FromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec, got
}

func TestRequestLoggerMintsRequestID(t *testing.T) {
	rec, logger := runLoggedRequest(t, "")
	require.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	require.NotNil(t, logger)
	require.NotEqual(t, slog.Default(), logger)
}

func TestRequestLoggerKeepsClientRequestID(t *testing.T) {
	rec, _ := runLoggedRequest(t, "rid-42")
	require.Equal(t, "rid-42", rec.Header().Get(echo.HeaderXRequestID))
}
