package logger

import (
	"context"
)

type contextKey string

const (
	// ContextKeyRequestID is the context key for request ID
	ContextKeyRequestID contextKey = "request_id"
	// ContextKeyAdminID is the context key for the authenticated administrator
	ContextKeyAdminID contextKey = "admin_id"
)

// WithRequestIDContext adds request ID to context
func WithRequestIDContext(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// WithAdminIDContext adds the administrator ID to context
func WithAdminIDContext(ctx context.Context, adminID string) context.Context {
	return context.WithValue(ctx, ContextKeyAdminID, adminID)
}

// GetRequestID gets request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return requestID
	}
	return ""
}

// GetAdminID gets the administrator ID from context
func GetAdminID(ctx context.Context) string {
	if adminID, ok := ctx.Value(ContextKeyAdminID).(string); ok {
		return adminID
	}
	return ""
}

// FromContext returns the global logger enriched with whatever ids ctx carries
func FromContext(ctx context.Context) Logger {
	return Get().WithContext(ctx)
}
