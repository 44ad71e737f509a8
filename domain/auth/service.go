package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/policydesk/admin-api/pkg/apperrors"
	"github.com/policydesk/admin-api/pkg/logger"
	"github.com/policydesk/admin-api/pkg/metrics"
	"github.com/policydesk/admin-api/pkg/validation"
	"github.com/policydesk/admin-api/utils"
)

// MaxPasswordBytes is the longest password bcrypt will hash
const MaxPasswordBytes = 72

const (
	msgInvalidCredentials = "Invalid email or password"
	msgAccountDisabled    = "Your account has been deactivated."
	msgAccountNotFound    = "The admin belonging to this token no longer exists."
	msgTokenInvalid       = "Invalid token. Please log in again."
	msgTokenExpired       = "Your token has expired. Please log in again."
	msgWrongPassword      = "Current password is incorrect"
)

// Service authenticates administrators and issues their tokens
type Service struct {
	repo       Repository
	tokens     *utils.TokenManager
	bcryptCost int
	log        logger.Logger
	metrics    *metrics.Metrics
	now        func() time.Time

	// dummyHash is compared against when the email is unknown so both failure
	// paths cost one bcrypt comparison.
	dummyHash string
}

func NewService(repo Repository, tokens *utils.TokenManager, bcryptCost int, log logger.Logger, m *metrics.Metrics) *Service {
	dummy, _ := utils.HashPassword(uuid.NewString(), bcryptCost)
	return &Service{
		repo:       repo,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		log:        log.WithComponent("auth"),
		metrics:    m,
		now:        time.Now,
		dummyHash:  dummy,
	}
}

// WithClock replaces the time source used for last-login and password timestamps
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// BcryptCost is the cost new password hashes are generated with
func (s *Service) BcryptCost() int {
	return s.bcryptCost
}

func invalidCredentials() *apperrors.AppError {
	return apperrors.NewUnauthorized(apperrors.ErrCodeInvalidCredentials, msgInvalidCredentials)
}

func accountDisabled() *apperrors.AppError {
	return apperrors.NewUnauthorized(apperrors.ErrCodeAccountDisabled, msgAccountDisabled)
}

func (s *Service) issue(admin *Admin) (*Session, error) {
	token, expiresAt, err := s.tokens.GenerateJWT(admin.ID, admin.Email, string(admin.Role))
	if err != nil {
		return nil, apperrors.Unexpected(err)
	}
	return &Session{Token: token, ExpiresAt: expiresAt, Admin: admin}, nil
}

// Login checks credentials and issues a token. Unknown email and wrong
// password fail identically.
func (s *Service) Login(ctx context.Context, email, password string) (sess *Session, err error) {
	defer func() { s.metrics.RecordLogin(err) }()

	req := LoginRequest{Email: utils.NormalizeEmail(email), Password: password}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	log := s.log.WithContext(ctx)

	admin, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			utils.CheckPasswordHash(req.Password, s.dummyHash)
			log.Warn("Login failed", logger.Email(req.Email), logger.String("reason", "unknown_email"))
			return nil, invalidCredentials()
		}
		return nil, apperrors.Unexpected(err)
	}

	if !utils.CheckPasswordHash(req.Password, admin.Password) {
		log.Warn("Login failed", logger.AdminID(admin.ID), logger.String("reason", "wrong_password"))
		return nil, invalidCredentials()
	}
	if !admin.IsActive {
		log.Warn("Login rejected for deactivated account", logger.AdminID(admin.ID))
		return nil, accountDisabled()
	}

	now := s.now()
	if err := s.repo.UpdateLastLogin(ctx, admin.ID, now); err != nil {
		return nil, apperrors.Unexpected(err)
	}
	admin.LastLogin = &now

	sess, err = s.issue(admin)
	if err != nil {
		return nil, err
	}
	log.Info("Admin logged in", logger.AdminID(admin.ID), logger.Role(string(admin.Role)))
	return sess, nil
}

// Verify resolves a bearer token to an active administrator. It has no side effects.
func (s *Service) Verify(ctx context.Context, token string) (*Admin, error) {
	claims, err := s.tokens.ParseJWT(token)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return nil, apperrors.NewUnauthorized(apperrors.ErrCodeTokenExpired, msgTokenExpired)
		}
		return nil, apperrors.NewUnauthorized(apperrors.ErrCodeTokenInvalid, msgTokenInvalid)
	}
	if _, err := uuid.Parse(claims.ID); err != nil {
		return nil, apperrors.NewUnauthorized(apperrors.ErrCodeTokenInvalid, msgTokenInvalid)
	}

	admin, err := s.repo.FindByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperrors.NewUnauthorized(apperrors.ErrCodeAccountNotFound, msgAccountNotFound)
		}
		return nil, apperrors.Unexpected(err)
	}
	if !admin.IsActive {
		return nil, accountDisabled()
	}
	return admin, nil
}

// ChangePassword replaces the password after checking the current one and
// issues a fresh token. Tokens issued earlier stay valid until they expire.
func (s *Service) ChangePassword(ctx context.Context, adminID, current, next string) (*Session, error) {
	req := ChangePasswordRequest{CurrentPassword: current, NewPassword: next}
	msgs, err := validation.Collect(req)
	if err != nil {
		return nil, apperrors.Unexpected(err)
	}
	if len(next) > MaxPasswordBytes {
		msgs = append(msgs, "New password cannot exceed 72 bytes")
	}
	if err := validation.Join(msgs...); err != nil {
		return nil, err
	}

	admin, err := s.repo.FindByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperrors.NewUnauthorized(apperrors.ErrCodeAccountNotFound, msgAccountNotFound)
		}
		return nil, apperrors.Unexpected(err)
	}
	if !utils.CheckPasswordHash(current, admin.Password) {
		return nil, apperrors.NewUnauthorized(apperrors.ErrCodeInvalidCredentials, msgWrongPassword)
	}

	hash, err := utils.HashPassword(next, s.bcryptCost)
	if err != nil {
		return nil, apperrors.Unexpected(err)
	}
	now := s.now()
	if err := s.repo.UpdatePassword(ctx, admin.ID, hash, now); err != nil {
		return nil, apperrors.Unexpected(err)
	}
	admin.Password = hash
	admin.UpdatedAt = now

	s.log.WithContext(ctx).Info("Password changed", logger.AdminID(admin.ID))
	return s.issue(admin)
}

// Authorize fails with Forbidden unless admin holds one of roles
func (s *Service) Authorize(admin *Admin, roles ...Role) error {
	if admin == nil || !admin.HasRole(roles...) {
		return apperrors.Forbidden()
	}
	return nil
}

// Profile returns the stored account of adminID
func (s *Service) Profile(ctx context.Context, adminID string) (*Admin, error) {
	admin, err := s.repo.FindByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperrors.NotFound("Admin not found")
		}
		return nil, apperrors.Unexpected(err)
	}
	return admin, nil
}

// Bootstrap creates the initial super_admin unless an account with email
// already exists. It reports whether an account was created.
func (s *Service) Bootstrap(ctx context.Context, name, email, password string) (bool, error) {
	email = utils.NormalizeEmail(email)
	if email == "" || password == "" {
		return false, errors.New("bootstrap admin email and password are required")
	}

	_, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}

	hash, err := utils.HashPassword(password, s.bcryptCost)
	if err != nil {
		return false, err
	}
	now := s.now()
	admin := &Admin{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Password:  hash,
		Role:      RoleSuperAdmin,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, admin); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return false, nil
		}
		return false, err
	}

	s.log.Info("Default super admin created", logger.AdminID(admin.ID), logger.Email(email))
	return true, nil
}
