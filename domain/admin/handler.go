package admin

import (
	"context"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/policydesk/admin-api/domain/auth"
	"github.com/policydesk/admin-api/pkg/apperrors"
)

type Handler struct {
	svc      *Service
	presence auth.PresenceReader
}

func NewHandler(svc *Service, presence auth.PresenceReader) *Handler {
	return &Handler{svc: svc, presence: presence}
}

func (h *Handler) view(ctx context.Context, a *auth.Admin) AdminView {
	if h.presence != nil {
		a.LastActiveAt = h.presence.GetLastActive(ctx, a.ID)
	}
	return AdminView{Admin: a, IsOnline: a.LastActiveAt != nil}
}

// ListAdminsHandler returns a page of administrators
// GET /api/admins
func (h *Handler) ListAdminsHandler(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	ctx := c.Request().Context()
	admins, pagination, err := h.svc.List(ctx, c.QueryParam("search"), page, limit)
	if err != nil {
		return err
	}

	views := make([]AdminView, 0, len(admins))
	for i := range admins {
		views = append(views, h.view(ctx, &admins[i]))
	}
	return apperrors.RespondWithSuccess(c, ListResult{Admins: views, Pagination: pagination})
}

// CreateAdminHandler provisions an administrator
// POST /api/admins
func (h *Handler) CreateAdminHandler(c echo.Context) error {
	current, err := auth.CurrentAdmin(c)
	if err != nil {
		return err
	}

	req := new(CreateAdminRequest)
	if err := c.Bind(req); err != nil {
		return apperrors.Validation("Invalid request payload")
	}

	a, err := h.svc.Create(c.Request().Context(), *req, current.ID)
	if err != nil {
		return err
	}
	return apperrors.RespondWithCreated(c, map[string]interface{}{"admin": a})
}

// UpdateAdminStatusHandler activates or deactivates an administrator
// PATCH /api/admins/:id/status
func (h *Handler) UpdateAdminStatusHandler(c echo.Context) error {
	current, err := auth.CurrentAdmin(c)
	if err != nil {
		return err
	}

	req := new(UpdateStatusRequest)
	if err := c.Bind(req); err != nil {
		return apperrors.Validation("Invalid request payload")
	}
	if req.IsActive == nil {
		return apperrors.Validation("isActive is required")
	}

	ctx := c.Request().Context()
	a, err := h.svc.SetActive(ctx, current.ID, c.Param("id"), *req.IsActive)
	if err != nil {
		return err
	}
	return apperrors.RespondWithSuccess(c, map[string]interface{}{"admin": h.view(ctx, a)})
}
