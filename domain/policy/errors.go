package policy

import "errors"

// Sentinel errors returned by Repository implementations
var (
	// ErrNotFound indicates no active document matched
	ErrNotFound = errors.New("policy not found")

	// ErrDuplicateSlug indicates another active document already owns the slug
	ErrDuplicateSlug = errors.New("policy slug already exists")
)
