package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/policydesk/admin-api/config"
	"github.com/policydesk/admin-api/domain/admin"
	"github.com/policydesk/admin-api/domain/auth"
	"github.com/policydesk/admin-api/domain/health"
	"github.com/policydesk/admin-api/domain/policy"
	"github.com/policydesk/admin-api/domain/presence"
	appmiddleware "github.com/policydesk/admin-api/middleware"
	"github.com/policydesk/admin-api/pkg/apperrors"
	"github.com/policydesk/admin-api/pkg/logger"
	"github.com/policydesk/admin-api/pkg/metrics"
	"github.com/policydesk/admin-api/routes"
	"github.com/policydesk/admin-api/utils"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/main.go [server|migrate|bootstrap]")
		os.Exit(1)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:       logger.Level(cfg.LogLevel),
		Environment: cfg.Env,
		Version:     cfg.Version,
	})
	log := logger.Get()

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", err)
	}
	defer config.CloseDB()

	switch os.Args[1] {
	case "server":
		startServer(cfg, db, log)
	case "migrate":
		if err := config.Migrate(context.Background(), db); err != nil {
			log.Fatal("Migration failed", err)
		}
		log.Info("Migrations applied")
	case "bootstrap":
		if err := config.Migrate(context.Background(), db); err != nil {
			log.Fatal("Migration failed", err)
		}
		bootstrapAdmin(cfg, newAuthService(cfg, db, log, nil), log)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}

func newAuthService(cfg *config.Config, db *sqlx.DB, log logger.Logger, m *metrics.Metrics) *auth.Service {
	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTExpire)
	return auth.NewService(auth.NewPostgresRepository(db), tokens, cfg.BcryptCost, log, m)
}

func bootstrapAdmin(cfg *config.Config, svc *auth.Service, log logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	created, err := svc.Bootstrap(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		log.Fatal("Failed to bootstrap super admin", err)
	}
	if !created {
		log.Info("Super admin already exists", logger.Email(cfg.AdminEmail))
	}
}

func startServer(cfg *config.Config, db *sqlx.DB, log logger.Logger) {
	if cfg.AutoMigrate {
		if err := config.Migrate(context.Background(), db); err != nil {
			log.Fatal("Migration failed", err)
		}
	}

	redisClient, err := config.InitRedis(cfg.RedisURL)
	if err != nil {
		// Presence tracking is optional; run without it.
		log.Warn("Redis unavailable, presence tracking disabled", logger.Err(err))
	}
	defer config.CloseRedis()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)

	authSvc := newAuthService(cfg, db, log, m)
	bootstrapAdmin(cfg, authSvc, log)

	store := presence.NewStore(redisClient)
	var cachePing health.Pinger
	if store.Enabled() {
		cachePing = health.PingFunc(store.Ping)
	}

	policySvc := policy.NewService(policy.NewPostgresRepository(db), log, m)
	adminSvc := admin.NewService(auth.NewPostgresRepository(db), authSvc.BcryptCost(), log)

	limiter := appmiddleware.NewRateLimiter(appmiddleware.RateLimiterConfig{
		MaxRequests:   cfg.LoginRateLimit,
		Window:        cfg.LoginRateWindow,
		BlockDuration: cfg.LoginRateBlock,
		DB:            db,
		Logger:        log,
	})

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = apperrors.HTTPErrorHandler(log)

	e.Use(logger.RequestLoggerMiddleware(log))
	e.Use(m.Middleware())
	e.Use(logger.RecoveryMiddleware(log))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{echo.GET, echo.POST, echo.PUT, echo.PATCH, echo.DELETE, echo.OPTIONS},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, logger.RequestIDHeader},
		ExposeHeaders:    []string{echo.HeaderContentLength, logger.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           86400,
	}))
	e.Use(middleware.BodyLimit("2M"))

	routes.RegisterRoutes(e, routes.Dependencies{
		AuthService:  authSvc,
		Auth:         auth.NewHandler(authSvc, store),
		Admins:       admin.NewHandler(adminSvc, store),
		Policies:     policy.NewHandler(policySvc),
		Presence:     presence.NewHandler(store, log),
		Health:       health.NewHandler(db, cachePing, cfg.Version, m.ServerStartTime),
		LoginLimiter: limiter.Middleware(),
		Gatherer:     reg,
	})

	go func() {
		log.Info("Server starting", logger.String("port", cfg.Port), logger.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("Graceful shutdown failed", err)
	}
}
