package apperrors

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/policydesk/admin-api/pkg/logger"
)

// ErrorResponse is the standard error response structure
type ErrorResponse struct {
	Status    string `json:"status"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// SuccessResponse wraps every successful payload
type SuccessResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// HTTPErrorHandler returns an Echo error handler that uses structured logging
func HTTPErrorHandler(log logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		requestID := logger.GetRequestIDFromContext(c)
		reqLog := log.WithRequestID(requestID)

		var status int
		response := ErrorResponse{Status: "error", RequestID: requestID}

		var httpErr *echo.HTTPError
		if appErr, ok := AsAppError(err); ok {
			status = appErr.HTTPStatus
			response.Code = appErr.Code
			response.Message = appErr.Message

			if status >= http.StatusInternalServerError {
				reqLog.Error("Internal error", appErr.Err, logger.String("error_code", appErr.Code))
			} else {
				reqLog.Debug("Client error",
					logger.String("error_code", appErr.Code),
					logger.String("message", appErr.Message),
				)
			}
		} else if errors.As(err, &httpErr) {
			status = httpErr.Code
			msg, ok := httpErr.Message.(string)
			if !ok {
				msg = http.StatusText(status)
			}
			response.Code = httpCode(status)
			response.Message = msg

			if status >= http.StatusInternalServerError {
				reqLog.Error("HTTP error", httpErr.Internal, logger.Status(status), logger.String("message", msg))
			}
		} else {
			status = http.StatusInternalServerError
			response.Code = ErrCodeUnexpectedError
			response.Message = "An unexpected error occurred"
			reqLog.Error("Unhandled error", err)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
		} else {
			_ = c.JSON(status, response)
		}
	}
}

// httpCode maps framework-level failures (unknown route, bad method, oversized body)
// onto the closest code in the taxonomy.
func httpCode(status int) string {
	switch status {
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return ErrCodeNotFound
	case http.StatusUnauthorized:
		return ErrCodeTokenMissing
	case http.StatusForbidden:
		return ErrCodeForbidden
	case http.StatusTooManyRequests:
		return ErrCodeRateLimitExceeded
	case http.StatusServiceUnavailable:
		return ErrCodeServiceUnavailable
	}
	if status >= http.StatusInternalServerError {
		return ErrCodeUnexpectedError
	}
	return ErrCodeValidationFailed
}

// RespondWithSuccess is a helper to return a success response
func RespondWithSuccess(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, SuccessResponse{Status: "success", Data: data})
}

// RespondWithMessage returns a success envelope carrying only a message
func RespondWithMessage(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, SuccessResponse{Status: "success", Message: message})
}

// RespondWithCreated is a helper to return a 201 Created response
func RespondWithCreated(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, SuccessResponse{Status: "success", Data: data})
}
