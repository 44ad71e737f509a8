package admin

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/policydesk/admin-api/domain/auth"
	"github.com/policydesk/admin-api/pkg/apperrors"
	"github.com/policydesk/admin-api/pkg/logger"
	"github.com/policydesk/admin-api/pkg/validation"
	"github.com/policydesk/admin-api/utils"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Service provisions administrator accounts
type Service struct {
	repo       auth.Repository
	bcryptCost int
	log        logger.Logger
	now        func() time.Time
}

func NewService(repo auth.Repository, bcryptCost int, log logger.Logger) *Service {
	return &Service{
		repo:       repo,
		bcryptCost: bcryptCost,
		log:        log.WithComponent("admin"),
		now:        time.Now,
	}
}

// List returns a page of administrators whose name or email contains search
func (s *Service) List(ctx context.Context, search string, page, limit int) ([]auth.Admin, utils.Pagination, error) {
	page, limit = utils.ClampPage(page, limit, defaultPageSize, maxPageSize)

	total, err := s.repo.Count(ctx, search)
	if err != nil {
		return nil, utils.Pagination{}, apperrors.Unexpected(err)
	}
	admins, err := s.repo.List(ctx, search, limit, (page-1)*limit)
	if err != nil {
		return nil, utils.Pagination{}, apperrors.Unexpected(err)
	}
	return admins, utils.NewPagination(page, limit, total), nil
}

// Create provisions a new administrator
func (s *Service) Create(ctx context.Context, req CreateAdminRequest, actingAdminID string) (*auth.Admin, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = utils.NormalizeEmail(req.Email)

	msgs, err := validation.Collect(req)
	if err != nil {
		return nil, apperrors.Unexpected(err)
	}
	if len(req.Password) > auth.MaxPasswordBytes {
		msgs = append(msgs, "Password cannot exceed 72 bytes")
	}
	if err := validation.Join(msgs...); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.Unexpected(err)
	}

	now := s.now()
	a := &auth.Admin{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Email:     req.Email,
		Password:  hash,
		Role:      req.Role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, a); err != nil {
		if errors.Is(err, auth.ErrDuplicateEmail) {
			return nil, apperrors.NewBadRequest(apperrors.ErrCodeDuplicateEmail, "An admin with this email already exists")
		}
		return nil, apperrors.Unexpected(err)
	}

	s.log.WithContext(ctx).Info("Admin created",
		logger.AdminID(a.ID),
		logger.Role(string(a.Role)),
		logger.String("created_by", actingAdminID),
	)
	return a, nil
}

// SetActive activates or deactivates targetID. Administrators cannot deactivate themselves.
func (s *Service) SetActive(ctx context.Context, actingAdminID, targetID string, active bool) (*auth.Admin, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(targetID))
	if err != nil {
		return nil, apperrors.Validation("Invalid admin ID format")
	}
	targetID = parsed.String()
	if !active && targetID == actingAdminID {
		return nil, apperrors.Validation("You cannot deactivate your own account")
	}

	a, err := s.repo.SetActive(ctx, targetID, active, s.now())
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return nil, apperrors.NotFound("Admin not found")
		}
		return nil, apperrors.Unexpected(err)
	}

	s.log.WithContext(ctx).Info("Admin status changed",
		logger.AdminID(a.ID),
		logger.Bool("is_active", active),
		logger.String("changed_by", actingAdminID),
	)
	return a, nil
}
