package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrmateussiilva/api-sgp/internal/domain"
)

func request(t *testing.T, handler echo.HandlerFunc) (*httptest.ResponseRecorder, ErrorResponse) {
	t.Helper()

	e := echo.New()
	e.Use(Middleware())
	e.GET("/test", handler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var resp ErrorResponse
	if rec.Code >= 400 && rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestMiddleware_PassesThroughSuccess(t *testing.T) {
	rec, _ := request(t, func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddleware_StructuredError(t *testing.T) {
	rec, resp := request(t, func(c echo.Context) error {
		return NotFoundError("order not found").WithField("order_id", 7)
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "order not found", resp.Error)
	assert.Equal(t, TypeNotFound, resp.Type)
	assert.EqualValues(t, 7, resp.Context["order_id"])
}

func TestMiddleware_MapsDomainSentinels(t *testing.T) {
	rec, resp := request(t, func(c echo.Context) error {
		return domain.ErrInvalidToken
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, TypeUnauthorized, resp.Type)
}

func TestMiddleware_UnknownErrorBecomesInternal(t *testing.T) {
	rec, resp := request(t, func(c echo.Context) error {
		return assert.AnError
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, TypeInternal, resp.Type)
	assert.Equal(t, "internal server error", resp.Error)
}

func TestMiddleware_EchoHTTPErrorPassesThrough(t *testing.T) {
	rec, _ := request(t, func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusMethodNotAllowed, "nope")
	})
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
