package main

import (
	"context"
	"os"
	"time"

	"github.com/policydesk/admin-api/config"
	"github.com/policydesk/admin-api/domain/auth"
	"github.com/policydesk/admin-api/domain/policy"
	"github.com/policydesk/admin-api/pkg/apperrors"
	"github.com/policydesk/admin-api/pkg/logger"
	"github.com/policydesk/admin-api/utils"
)

func main() {
	cfg, err := config.InitConfig()
	if err != nil {
		logger.Get().Fatal("Failed to load configuration", err)
	}
	logger.Init(logger.Config{Level: logger.Level(cfg.LogLevel), Environment: cfg.Env})
	log := logger.Get().WithComponent("seeder")

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", err)
	}
	defer config.CloseDB()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := config.Migrate(ctx, db); err != nil {
		log.Fatal("Migration failed", err)
	}

	// Seed the super admin
	adminRepo := auth.NewPostgresRepository(db)
	authSvc := auth.NewService(adminRepo, utils.NewTokenManager(cfg.JWTSecret, cfg.JWTExpire), cfg.BcryptCost, log, nil)
	if _, err := authSvc.Bootstrap(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatal("Failed to seed super admin", err)
	}
	owner, err := adminRepo.FindByEmail(ctx, utils.NormalizeEmail(cfg.AdminEmail))
	if err != nil {
		log.Fatal("Failed to load super admin", err)
	}

	// Seed policies
	policies := []policy.CreateInput{
		{
			Title:           "Terms and Conditions",
			Content:         "<h2>1. Acceptance</h2><p>By using this site you agree to these terms.</p>",
			Type:            policy.TypeTermsConditions,
			Status:          policy.StatusPublished,
			MetaTitle:       "Terms and Conditions",
			MetaDescription: "The terms that govern use of our services.",
			Keywords:        []string{"terms", "conditions", "agreement"},
		},
		{
			Title:    "Privacy Policy",
			Content:  "<h2>Data we collect</h2><p>We collect only the data needed to provide the service.</p>",
			Type:     policy.TypePrivacyPolicy,
			Status:   policy.StatusPublished,
			Keywords: []string{"privacy", "gdpr", "data"},
		},
		{
			Title:    "Refund Policy",
			Content:  "<p>Refunds are available within 30 days of purchase.</p>",
			Type:     policy.TypeRefundPolicy,
			Status:   policy.StatusDraft,
			Keywords: []string{"refund", "returns"},
		},
		{
			Title:   "Shipping Policy",
			Content: "<p>Orders ship within two business days.</p>",
			Type:    policy.TypeShippingPolicy,
			Status:  policy.StatusDraft,
		},
		{
			Title:   "Cancellation Policy",
			Content: "<p>Subscriptions can be cancelled at any time from the account page.</p>",
			Type:    policy.TypeCancellationPolicy,
			Status:  policy.StatusArchived,
		},
		{
			Title:   "Client Policy",
			Content: "<p>Client engagements are governed by the signed statement of work.</p>",
			Type:    policy.TypeClientPolicy,
		},
	}

	svc := policy.NewService(policy.NewPostgresRepository(db), log, nil)
	seeded := 0
	for _, in := range policies {
		p, err := svc.Create(ctx, in, owner.ID)
		if err != nil {
			if apperrors.CodeOf(err) == apperrors.ErrCodeDuplicateSlug {
				log.Info("Policy already seeded", logger.String("title", in.Title))
				continue
			}
			log.Error("Failed to seed policy", err, logger.String("title", in.Title))
			os.Exit(1)
		}
		seeded++
		log.Info("Seeded policy", logger.PolicyID(p.ID), logger.Slug(p.Slug))
	}

	log.Info("Seeding completed!", logger.Count(seeded))
}
