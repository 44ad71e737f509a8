package apperrors

// Error codes - organized by domain

// Authentication errors (AUTH_*)
const (
	ErrCodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	ErrCodeAccountDisabled    = "AUTH_ACCOUNT_DISABLED"
	ErrCodeAccountNotFound    = "AUTH_ACCOUNT_NOT_FOUND"
	ErrCodeTokenExpired       = "AUTH_TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "AUTH_TOKEN_INVALID"
	ErrCodeTokenMissing       = "AUTH_TOKEN_MISSING"
)

// Authorization errors (AUTHZ_*)
const (
	ErrCodeForbidden = "AUTHZ_FORBIDDEN"
)

// Validation errors (VALIDATION_*)
const (
	ErrCodeValidationFailed = "VALIDATION_FAILED"
)

// Resource errors (RESOURCE_*)
const (
	ErrCodeNotFound       = "RESOURCE_NOT_FOUND"
	ErrCodeDuplicateSlug  = "RESOURCE_DUPLICATE_SLUG"
	ErrCodeDuplicateEmail = "RESOURCE_DUPLICATE_EMAIL"
)

// Rate limiting errors (RATE_*)
const (
	ErrCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
)

// Internal errors (INTERNAL_*)
const (
	ErrCodeUnexpectedError    = "INTERNAL_UNEXPECTED_ERROR"
	ErrCodeServiceUnavailable = "INTERNAL_SERVICE_UNAVAILABLE"
)
