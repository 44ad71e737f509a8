package middleware

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"

	"github.com/policydesk/admin-api/pkg/apperrors"
	"github.com/policydesk/admin-api/pkg/logger"
)

const msgTooManyRequests = "Too many requests from this IP, please try again later."

// RateLimiterConfig holds the configuration for rate limiting
type RateLimiterConfig struct {
	MaxRequests   int           // Maximum number of requests allowed per window
	Window        time.Duration // Time window for rate limiting
	BlockDuration time.Duration // Duration to block the IP after exceeding limits
	DB            *sqlx.DB
	Logger        logger.Logger
	Now           func() time.Time
}

// RateLimiter counts requests per client IP in the ip_rate_limits table
type RateLimiter struct {
	cfg RateLimiterConfig
}

func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Get()
	}
	cfg.Logger = cfg.Logger.WithComponent("rate_limiter")
	return &RateLimiter{cfg: cfg}
}

// Allow records one request from ip and reports whether it may proceed
func (l *RateLimiter) Allow(ctx context.Context, ip string) (bool, error) {
	now := l.cfg.Now()

	tx, err := l.cfg.DB.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin rate limit tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO ip_rate_limits (ip_address, request_count, first_request_time, last_request_time)
		VALUES ($1, 0, $2, $2)
		ON CONFLICT (ip_address) DO NOTHING`, ip, now); err != nil {
		return false, fmt.Errorf("insert rate limit row: %w", err)
	}

	var row struct {
		RequestCount     int          `db:"request_count"`
		FirstRequestTime time.Time    `db:"first_request_time"`
		BlockedUntil     sql.NullTime `db:"blocked_until"`
	}
	if err := tx.GetContext(ctx, &row, `
		SELECT request_count, first_request_time, blocked_until
		FROM ip_rate_limits
		WHERE ip_address = $1
		FOR UPDATE`, ip); err != nil {
		return false, fmt.Errorf("fetch rate limit row: %w", err)
	}

	// Currently blocked
	if row.BlockedUntil.Valid && row.BlockedUntil.Time.After(now) {
		return false, tx.Commit()
	}

	allowed := true
	switch {
	case now.Sub(row.FirstRequestTime) > l.cfg.Window:
		_, err = tx.ExecContext(ctx, `
			UPDATE ip_rate_limits
			SET request_count = 1, first_request_time = $2, last_request_time = $2, blocked_until = NULL
			WHERE ip_address = $1`, ip, now)
	case row.RequestCount >= l.cfg.MaxRequests:
		allowed = false
		_, err = tx.ExecContext(ctx, `
			UPDATE ip_rate_limits SET blocked_until = $2 WHERE ip_address = $1`,
			ip, now.Add(l.cfg.BlockDuration))
	default:
		_, err = tx.ExecContext(ctx, `
			UPDATE ip_rate_limits
			SET request_count = request_count + 1, last_request_time = $2
			WHERE ip_address = $1`, ip, now)
	}
	if err != nil {
		return false, fmt.Errorf("update rate limit row: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit rate limit tx: %w", err)
	}
	return allowed, nil
}

// Middleware limits the number of requests per IP
func (l *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()

			allowed, err := l.Allow(c.Request().Context(), ip)
			if err != nil {
				l.cfg.Logger.WithContext(c.Request().Context()).Error("Rate limit check failed", err, logger.RemoteIP(ip))
				return apperrors.Unexpected(err)
			}
			if !allowed {
				l.cfg.Logger.WithContext(c.Request().Context()).Warn("Request rate limited", logger.RemoteIP(ip))
				return apperrors.NewTooManyRequests(apperrors.ErrCodeRateLimitExceeded, msgTooManyRequests)
			}
			return next(c)
		}
	}
}
