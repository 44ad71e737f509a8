package auth

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/policydesk/admin-api/pkg/apperrors"
)

// PresenceReader looks up when an administrator was last seen
type PresenceReader interface {
	GetLastActive(ctx context.Context, adminID string) *time.Time
}

type Handler struct {
	svc      *Service
	presence PresenceReader
}

func NewHandler(svc *Service, presence PresenceReader) *Handler {
	return &Handler{svc: svc, presence: presence}
}

func invalidPayload() error {
	return apperrors.Validation("Invalid request payload")
}

// LoginHandler handles POST /api/auth/login
func (h *Handler) LoginHandler(c echo.Context) error {
	req := new(LoginRequest)
	if err := c.Bind(req); err != nil {
		return invalidPayload()
	}

	sess, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return apperrors.RespondWithSuccess(c, sess)
}

// ProfileHandler handles GET /api/auth/profile
func (h *Handler) ProfileHandler(c echo.Context) error {
	current, err := CurrentAdmin(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	admin, err := h.svc.Profile(ctx, current.ID)
	if err != nil {
		return err
	}
	if h.presence != nil {
		admin.LastActiveAt = h.presence.GetLastActive(ctx, admin.ID)
	}
	return apperrors.RespondWithSuccess(c, map[string]interface{}{"admin": admin})
}

// ChangePasswordHandler handles POST /api/auth/change-password
func (h *Handler) ChangePasswordHandler(c echo.Context) error {
	current, err := CurrentAdmin(c)
	if err != nil {
		return err
	}

	req := new(ChangePasswordRequest)
	if err := c.Bind(req); err != nil {
		return invalidPayload()
	}

	sess, err := h.svc.ChangePassword(c.Request().Context(), current.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		return err
	}
	return apperrors.RespondWithSuccess(c, sess)
}

// LogoutHandler handles POST /api/auth/logout. Tokens are stateless, so the
// client discards its copy.
func (h *Handler) LogoutHandler(c echo.Context) error {
	return apperrors.RespondWithMessage(c, "Logged out successfully")
}
