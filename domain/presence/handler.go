package presence

import (
	"github.com/labstack/echo/v4"

	"github.com/policydesk/admin-api/domain/auth"
	"github.com/policydesk/admin-api/pkg/apperrors"
	"github.com/policydesk/admin-api/pkg/logger"
)

type Handler struct {
	store *Store
	log   logger.Logger
}

func NewHandler(store *Store, log logger.Logger) *Handler {
	return &Handler{store: store, log: log.WithComponent("presence")}
}

// HeartbeatHandler records that the authenticated administrator is active.
// POST /api/auth/heartbeat
func (h *Handler) HeartbeatHandler(c echo.Context) error {
	admin, err := auth.CurrentAdmin(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.store.SetLastActive(ctx, admin.ID); err != nil {
		// A failed write must not break the client.
		h.log.WithContext(ctx).Warn("Heartbeat write failed", logger.AdminID(admin.ID), logger.Err(err))
	}
	return apperrors.RespondWithSuccess(c, map[string]interface{}{"tracked": h.store.Enabled()})
}
