package auth

import "errors"

// Sentinel errors returned by Repository implementations
var (
	ErrNotFound       = errors.New("admin not found")
	ErrDuplicateEmail = errors.New("admin email already exists")
)
