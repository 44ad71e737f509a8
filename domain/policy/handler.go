package policy

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/policydesk/admin-api/domain/auth"
	"github.com/policydesk/admin-api/pkg/apperrors"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// BulkStatusRequest represents the bulk status update request
type BulkStatusRequest struct {
	PolicyIDs []string `json:"policyIds"`
	Status    Status   `json:"status"`
}

func invalidPayload() error {
	return apperrors.Validation("Invalid request payload")
}

func queryInt(c echo.Context, name string) int {
	n, _ := strconv.Atoi(c.QueryParam(name))
	return n
}

func policyData(p *Policy) map[string]interface{} {
	return map[string]interface{}{"policy": p}
}

func policiesData(policies []Policy) map[string]interface{} {
	return map[string]interface{}{"policies": policies, "count": len(policies)}
}

// GetPublicPolicyHandler handles GET /api/policies/public/:slug
func (h *Handler) GetPublicPolicyHandler(c echo.Context) error {
	p, err := h.svc.GetPublicBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	return apperrors.RespondWithSuccess(c, policyData(p))
}

// ListPoliciesHandler handles GET /api/policies
func (h *Handler) ListPoliciesHandler(c echo.Context) error {
	res, err := h.svc.List(c.Request().Context(), ListParams{
		Type:   Type(c.QueryParam("type")),
		Status: Status(c.QueryParam("status")),
		Search: c.QueryParam("search"),
		Page:   queryInt(c, "page"),
		Limit:  queryInt(c, "limit"),
		Sort:   c.QueryParam("sort"),
	})
	if err != nil {
		return err
	}
	return apperrors.RespondWithSuccess(c, res)
}

// GetPolicyHandler handles GET /api/policies/:id
func (h *Handler) GetPolicyHandler(c echo.Context) error {
	p, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return apperrors.RespondWithSuccess(c, policyData(p))
}

// CreatePolicyHandler handles POST /api/policies
func (h *Handler) CreatePolicyHandler(c echo.Context) error {
	admin, err := auth.CurrentAdmin(c)
	if err != nil {
		return err
	}

	req := new(CreateInput)
	if err := c.Bind(req); err != nil {
		return invalidPayload()
	}

	p, err := h.svc.Create(c.Request().Context(), *req, admin.ID)
	if err != nil {
		return err
	}
	return apperrors.RespondWithCreated(c, policyData(p))
}

// UpdatePolicyHandler handles PATCH /api/policies/:id
func (h *Handler) UpdatePolicyHandler(c echo.Context) error {
	admin, err := auth.CurrentAdmin(c)
	if err != nil {
		return err
	}

	req := new(UpdateInput)
	if err := c.Bind(req); err != nil {
		return invalidPayload()
	}

	p, err := h.svc.Update(c.Request().Context(), c.Param("id"), *req, admin.ID)
	if err != nil {
		return err
	}
	return apperrors.RespondWithSuccess(c, policyData(p))
}

// DeletePolicyHandler handles DELETE /api/policies/:id
func (h *Handler) DeletePolicyHandler(c echo.Context) error {
	admin, err := auth.CurrentAdmin(c)
	if err != nil {
		return err
	}

	if err := h.svc.SoftDelete(c.Request().Context(), c.Param("id"), admin.ID); err != nil {
		return err
	}
	return apperrors.RespondWithMessage(c, "Policy deleted successfully")
}

// DuplicatePolicyHandler handles POST /api/policies/:id/duplicate
func (h *Handler) DuplicatePolicyHandler(c echo.Context) error {
	admin, err := auth.CurrentAdmin(c)
	if err != nil {
		return err
	}

	p, err := h.svc.Duplicate(c.Request().Context(), c.Param("id"), admin.ID)
	if err != nil {
		return err
	}
	return apperrors.RespondWithCreated(c, policyData(p))
}

// BulkUpdateStatusHandler handles PATCH /api/policies/bulk/status
func (h *Handler) BulkUpdateStatusHandler(c echo.Context) error {
	admin, err := auth.CurrentAdmin(c)
	if err != nil {
		return err
	}

	req := new(BulkStatusRequest)
	if err := c.Bind(req); err != nil {
		return invalidPayload()
	}

	res, err := h.svc.BulkUpdateStatus(c.Request().Context(), req.PolicyIDs, req.Status, admin.ID)
	if err != nil {
		return err
	}
	return apperrors.RespondWithSuccess(c, res)
}

// StatsHandler handles GET /api/policies/stats/summary
func (h *Handler) StatsHandler(c echo.Context) error {
	stats, err := h.svc.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return apperrors.RespondWithSuccess(c, stats)
}

// DashboardHandler handles GET /api/policies/dashboard/stats
func (h *Handler) DashboardHandler(c echo.Context) error {
	d, err := h.svc.Dashboard(c.Request().Context())
	if err != nil {
		return err
	}
	return apperrors.RespondWithSuccess(c, d)
}

// TypesHandler handles GET /api/policies/types/list
func (h *Handler) TypesHandler(c echo.Context) error {
	return apperrors.RespondWithSuccess(c, map[string]interface{}{"policyTypes": TypeOptions()})
}

// StatusesHandler handles GET /api/policies/statuses/list
func (h *Handler) StatusesHandler(c echo.Context) error {
	return apperrors.RespondWithSuccess(c, map[string]interface{}{"statuses": StatusOptions()})
}

// QuickSearchHandler handles GET /api/policies/search/quick?q=
func (h *Handler) QuickSearchHandler(c echo.Context) error {
	policies, err := h.svc.QuickSearch(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return err
	}
	return apperrors.RespondWithSuccess(c, policiesData(policies))
}

// RecentHandler handles GET /api/policies/recent/list
func (h *Handler) RecentHandler(c echo.Context) error {
	policies, err := h.svc.Recent(c.Request().Context())
	if err != nil {
		return err
	}
	return apperrors.RespondWithSuccess(c, policiesData(policies))
}

// ListByTypeHandler handles GET /api/policies/type/:type
func (h *Handler) ListByTypeHandler(c echo.Context) error {
	policies, err := h.svc.ListByType(c.Request().Context(), Type(c.Param("type")), Status(c.QueryParam("status")))
	if err != nil {
		return err
	}
	return apperrors.RespondWithSuccess(c, policiesData(policies))
}
