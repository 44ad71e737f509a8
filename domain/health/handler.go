package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string           `json:"status"`
	Timestamp string           `json:"timestamp"`
	Version   string           `json:"version,omitempty"`
	Checks    map[string]Check `json:"checks,omitempty"`
}

// Check represents an individual health check result
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// StatsResponse represents system statistics
type StatsResponse struct {
	GoVersion    string `json:"go_version"`
	NumCPU       int    `json:"num_cpu"`
	NumGoroutine int    `json:"num_goroutine"`
	MemAlloc     uint64 `json:"mem_alloc_bytes"`
	MemSys       uint64 `json:"mem_sys_bytes"`
	Uptime       string `json:"uptime,omitempty"`
}

// Pinger is a dependency whose reachability gates readiness
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a function to Pinger
type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

type Handler struct {
	db        Pinger
	cache     Pinger
	version   string
	startTime time.Time
	timeout   time.Duration
}

// NewHandler builds the health endpoints. cache may be nil when presence
// tracking is disabled.
func NewHandler(db *sqlx.DB, cache Pinger, version string, startTime time.Time) *Handler {
	h := &Handler{cache: cache, version: version, startTime: startTime, timeout: 3 * time.Second}
	if db != nil {
		h.db = db
	}
	return h
}

// LivenessHandler handles the /health/live endpoint
// Returns 200 if the process is running
func (h *Handler) LivenessHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// ReadinessHandler handles the /health/ready endpoint
func (h *Handler) ReadinessHandler(c echo.Context) error {
	checks, healthy := h.runChecks(c.Request().Context())

	status, httpStatus := "ok", http.StatusOK
	if !healthy {
		status, httpStatus = "unhealthy", http.StatusServiceUnavailable
	}
	return c.JSON(httpStatus, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}

// HealthHandler handles /api/health and returns every check with the version
func (h *Handler) HealthHandler(c echo.Context) error {
	checks, healthy := h.runChecks(c.Request().Context())

	status, httpStatus := "ok", http.StatusOK
	if !healthy {
		status, httpStatus = "degraded", http.StatusServiceUnavailable
	}
	return c.JSON(httpStatus, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
		Checks:    checks,
	})
}

// StatsHandler handles the /health/stats endpoint
func (h *Handler) StatsHandler(c echo.Context) error {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return c.JSON(http.StatusOK, StatsResponse{
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
		MemAlloc:     m.Alloc,
		MemSys:       m.Sys,
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
	})
}

func (h *Handler) runChecks(ctx context.Context) (map[string]Check, bool) {
	checks := map[string]Check{"database": h.check(ctx, h.db, "Database connection failed")}
	if h.cache != nil {
		checks["redis"] = h.check(ctx, h.cache, "Redis connection failed")
	}

	for _, c := range checks {
		if c.Status != "ok" {
			return checks, false
		}
	}
	return checks, true
}

func (h *Handler) check(ctx context.Context, p Pinger, failure string) Check {
	if p == nil {
		return Check{Status: "error", Message: "not configured"}
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	err := p.PingContext(ctx)
	latency := time.Since(start)
	if err != nil {
		return Check{Status: "error", Message: failure, Latency: latency.String()}
	}
	return Check{Status: "ok", Latency: latency.String()}
}
