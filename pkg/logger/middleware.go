package logger

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestIDHeader is the HTTP header for request ID
const RequestIDHeader = "X-Request-ID"

// AdminIDKey is the echo context key the auth middleware stores the caller's id under
const AdminIDKey = "admin_id"

// RequestLoggerMiddleware assigns a request ID, stores it on both the echo and
// the request context, and logs one line per request once it has been served.
func RequestLoggerMiddleware(log Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			requestID := req.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			c.Set(string(ContextKeyRequestID), requestID)
			c.Response().Header().Set(RequestIDHeader, requestID)
			c.SetRequest(req.WithContext(WithRequestIDContext(req.Context(), requestID)))

			reqLog := log.WithRequestID(requestID).WithFields(
				Method(req.Method),
				Path(req.URL.Path),
				RemoteIP(c.RealIP()),
			)
			reqLog.Debug("Request started")

			err := next(c)
			if err != nil {
				// Render now so the logged status is the one the client saw.
				c.Error(err)
			}

			status := c.Response().Status
			fields := []Field{
				Status(status),
				Duration("duration_ms", time.Since(start)),
				Int64("bytes_out", c.Response().Size),
			}
			if adminID, ok := c.Get(AdminIDKey).(string); ok {
				fields = append(fields, AdminID(adminID))
			}

			switch {
			case status >= http.StatusInternalServerError:
				reqLog.Error("Server error response", err, fields...)
			case status >= http.StatusBadRequest:
				reqLog.Warn("Client error response", fields...)
			default:
				reqLog.Info("Request completed", fields...)
			}
			return nil
		}
	}
}

// RecoveryMiddleware turns a panic into a logged 500 response
func RecoveryMiddleware(log Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					requestID := GetRequestIDFromContext(c)
					log.WithRequestID(requestID).Error("Panic recovered",
						nil,
						Any("panic", r),
						Method(c.Request().Method),
						Path(c.Request().URL.Path),
					)
					err = c.JSON(http.StatusInternalServerError, map[string]interface{}{
						"status":     "error",
						"code":       "INTERNAL_UNEXPECTED_ERROR",
						"message":    "An unexpected error occurred",
						"request_id": requestID,
					})
				}
			}()
			return next(c)
		}
	}
}

// GetRequestIDFromContext gets request ID from echo context
func GetRequestIDFromContext(c echo.Context) string {
	if requestID, ok := c.Get(string(ContextKeyRequestID)).(string); ok {
		return requestID
	}
	return ""
}
