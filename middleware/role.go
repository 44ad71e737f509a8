package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/policydesk/admin-api/domain/auth"
)

// Authorizer decides whether an administrator may use a route
type Authorizer interface {
	Authorize(admin *auth.Admin, roles ...auth.Role) error
}

// RoleMiddleware rejects administrators that hold none of roles. It must run
// after JWTMiddleware.
func RoleMiddleware(authz Authorizer, roles ...auth.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			admin, err := auth.CurrentAdmin(c)
			if err != nil {
				return err
			}
			if err := authz.Authorize(admin, roles...); err != nil {
				return err
			}
			return next(c)
		}
	}
}
