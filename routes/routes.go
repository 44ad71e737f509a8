package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/policydesk/admin-api/domain/admin"
	"github.com/policydesk/admin-api/domain/auth"
	"github.com/policydesk/admin-api/domain/health"
	"github.com/policydesk/admin-api/domain/policy"
	"github.com/policydesk/admin-api/domain/presence"
	"github.com/policydesk/admin-api/middleware"
)

// Dependencies carries everything the route table binds to
type Dependencies struct {
	AuthService  *auth.Service
	Auth         *auth.Handler
	Admins       *admin.Handler
	Policies     *policy.Handler
	Presence     *presence.Handler
	Health       *health.Handler
	LoginLimiter echo.MiddlewareFunc
	Gatherer     prometheus.Gatherer
}

func RegisterRoutes(e *echo.Echo, d Dependencies) {
	requireAuth := middleware.JWTMiddleware(d.AuthService)
	superAdmin := middleware.RoleMiddleware(d.AuthService, auth.RoleSuperAdmin)
	managers := middleware.RoleMiddleware(d.AuthService, auth.RoleSuperAdmin, auth.RoleAdmin)
	editors := middleware.RoleMiddleware(d.AuthService, auth.RoleSuperAdmin, auth.RoleAdmin, auth.RoleEditor)

	// Health and metrics
	e.GET("/api/health", d.Health.HealthHandler)
	e.GET("/health/live", d.Health.LivenessHandler)
	e.GET("/health/ready", d.Health.ReadinessHandler)
	e.GET("/health/stats", d.Health.StatsHandler)
	if d.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// Auth routes
	authGroup := e.Group("/api/auth")
	if d.LoginLimiter != nil {
		authGroup.POST("/login", d.Auth.LoginHandler, d.LoginLimiter)
	} else {
		authGroup.POST("/login", d.Auth.LoginHandler)
	}
	authGroup.GET("/profile", d.Auth.ProfileHandler, requireAuth)
	authGroup.POST("/change-password", d.Auth.ChangePasswordHandler, requireAuth)
	authGroup.POST("/logout", d.Auth.LogoutHandler, requireAuth)
	authGroup.POST("/heartbeat", d.Presence.HeartbeatHandler, requireAuth)

	// Admin management (super admin only)
	adminGroup := e.Group("/api/admins", requireAuth, superAdmin)
	adminGroup.GET("", d.Admins.ListAdminsHandler)
	adminGroup.POST("", d.Admins.CreateAdminHandler)
	adminGroup.PATCH("/:id/status", d.Admins.UpdateAdminStatusHandler)

	// Public policy route
	e.GET("/api/policies/public/:slug", d.Policies.GetPublicPolicyHandler)

	// Policy routes (protected). Static paths are registered before /:id.
	policyGroup := e.Group("/api/policies", requireAuth)
	policyGroup.GET("/stats/summary", d.Policies.StatsHandler)
	policyGroup.GET("/dashboard/stats", d.Policies.DashboardHandler)
	policyGroup.GET("/types/list", d.Policies.TypesHandler)
	policyGroup.GET("/statuses/list", d.Policies.StatusesHandler)
	policyGroup.GET("/search/quick", d.Policies.QuickSearchHandler)
	policyGroup.GET("/recent/list", d.Policies.RecentHandler)
	policyGroup.GET("/type/:type", d.Policies.ListByTypeHandler)
	policyGroup.PATCH("/bulk/status", d.Policies.BulkUpdateStatusHandler, managers)

	policyGroup.GET("", d.Policies.ListPoliciesHandler)
	policyGroup.POST("", d.Policies.CreatePolicyHandler, editors)
	policyGroup.GET("/:id", d.Policies.GetPolicyHandler)
	policyGroup.PATCH("/:id", d.Policies.UpdatePolicyHandler, editors)
	policyGroup.DELETE("/:id", d.Policies.DeletePolicyHandler, managers)
	policyGroup.POST("/:id/duplicate", d.Policies.DuplicatePolicyHandler, editors)
}
