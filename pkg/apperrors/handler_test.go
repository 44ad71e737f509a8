package apperrors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/policydesk/admin-api/pkg/logger"
)

func serve(t *testing.T, method, path string, h echo.HandlerFunc) (*httptest.ResponseRecorder, ErrorResponse) {
	t.Helper()
	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler(logger.Nop())
	e.Use(logger.RequestLoggerMiddleware(logger.Nop()))
	e.Any("/boom", h)

	req := httptest.NewRequest(method, path, nil)
	req.Header.Set(logger.RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var body ErrorResponse
	if method != http.MethodHead {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHTTPErrorHandler(t *testing.T) {
	t.Run("app error keeps its code and status", func(t *testing.T) {
		rec, body := serve(t, http.MethodGet, "/boom", func(c echo.Context) error {
			return Validation("Title is required, Type is required")
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, ErrorResponse{
			Status:    "error",
			Code:      ErrCodeValidationFailed,
			Message:   "Title is required, Type is required",
			RequestID: "req-123",
		}, body)
	})

	t.Run("internal cause is never rendered", func(t *testing.T) {
		rec, body := serve(t, http.MethodGet, "/boom", func(c echo.Context) error {
			return Unexpected(errors.New("pq: connection refused"))
		})
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, ErrCodeUnexpectedError, body.Code)
		assert.Equal(t, "An unexpected error occurred", body.Message)
		assert.NotContains(t, rec.Body.String(), "connection refused")
	})

	t.Run("unknown route", func(t *testing.T) {
		rec, body := serve(t, http.MethodGet, "/nope", func(c echo.Context) error { return nil })
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, ErrCodeNotFound, body.Code)
	})

	t.Run("echo http error", func(t *testing.T) {
		rec, body := serve(t, http.MethodPost, "/boom", func(c echo.Context) error {
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Request Entity Too Large")
		})
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Equal(t, ErrCodeValidationFailed, body.Code)
		assert.Equal(t, "Request Entity Too Large", body.Message)
	})

	t.Run("plain error", func(t *testing.T) {
		rec, body := serve(t, http.MethodGet, "/boom", func(c echo.Context) error {
			return errors.New("something broke")
		})
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, ErrCodeUnexpectedError, body.Code)
	})

	t.Run("head has no body", func(t *testing.T) {
		rec, _ := serve(t, http.MethodHead, "/boom", func(c echo.Context) error {
			return NotFound("Policy not found")
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}

func TestCodeOf(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), Forbidden())
	assert.Equal(t, ErrCodeForbidden, CodeOf(wrapped))
	assert.Equal(t, "", CodeOf(errors.New("plain")))
	assert.Equal(t, "", CodeOf(nil))
}

func TestSuccessEnvelope(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	require.NoError(t, RespondWithCreated(c, map[string]string{"id": "x"}))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"status":"success","data":{"id":"x"}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, RespondWithMessage(c, "Logged out successfully"))
	assert.JSONEq(t, `{"status":"success","message":"Logged out successfully"}`, rec.Body.String())
}
