package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/policydesk/admin-api/pkg/apperrors"
	"github.com/policydesk/admin-api/pkg/logger"
)

const contextKeyAdmin = "admin"

// MsgNotLoggedIn is returned when a protected route is called without a token
const MsgNotLoggedIn = "You are not logged in. Please log in to get access."

// SetCurrentAdmin records the authenticated administrator on the request
func SetCurrentAdmin(c echo.Context, admin *Admin) {
	c.Set(contextKeyAdmin, admin)
	c.Set(logger.AdminIDKey, admin.ID)
	req := c.Request()
	c.SetRequest(req.WithContext(logger.WithAdminIDContext(req.Context(), admin.ID)))
}

// CurrentAdmin returns the administrator stored by the auth middleware
func CurrentAdmin(c echo.Context) (*Admin, error) {
	admin, ok := c.Get(contextKeyAdmin).(*Admin)
	if !ok || admin == nil {
		return nil, apperrors.NewUnauthorized(apperrors.ErrCodeTokenMissing, MsgNotLoggedIn)
	}
	return admin, nil
}
