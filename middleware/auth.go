package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/policydesk/admin-api/domain/auth"
	"github.com/policydesk/admin-api/pkg/apperrors"
)

// TokenVerifier resolves a bearer token to the administrator it belongs to
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*auth.Admin, error)
}

// JWTMiddleware validates the bearer token and stores the administrator on the context
func JWTMiddleware(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(authHeader, "Bearer ") {
				return apperrors.NewUnauthorized(apperrors.ErrCodeTokenMissing, auth.MsgNotLoggedIn)
			}
			tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			if tokenString == "" {
				return apperrors.NewUnauthorized(apperrors.ErrCodeTokenMissing, auth.MsgNotLoggedIn)
			}

			admin, err := verifier.Verify(c.Request().Context(), tokenString)
			if err != nil {
				return err
			}

			auth.SetCurrentAdmin(c, admin)
			return next(c)
		}
	}
}
