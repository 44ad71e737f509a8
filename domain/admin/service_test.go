package admin

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/policydesk/admin-api/domain/auth"
	"github.com/policydesk/admin-api/pkg/apperrors"
	"github.com/policydesk/admin-api/pkg/logger"
	"github.com/policydesk/admin-api/utils"
)

type memoryAdmins struct {
	mu     sync.Mutex
	admins []*auth.Admin
}

func (r *memoryAdmins) find(match func(*auth.Admin) bool) (*auth.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.admins {
		if match(a) {
			c := *a
			return &c, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (r *memoryAdmins) FindByEmail(_ context.Context, email string) (*auth.Admin, error) {
	return r.find(func(a *auth.Admin) bool { return a.Email == email })
}

func (r *memoryAdmins) FindByID(_ context.Context, id string) (*auth.Admin, error) {
	return r.find(func(a *auth.Admin) bool { return a.ID == id })
}

func (r *memoryAdmins) Insert(_ context.Context, a *auth.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.admins {
		if existing.Email == a.Email {
			return auth.ErrDuplicateEmail
		}
	}
	c := *a
	r.admins = append(r.admins, &c)
	return nil
}

func (r *memoryAdmins) UpdateLastLogin(context.Context, string, time.Time) error { return nil }

func (r *memoryAdmins) UpdatePassword(context.Context, string, string, time.Time) error { return nil }

func (r *memoryAdmins) SetActive(_ context.Context, id string, active bool, at time.Time) (*auth.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.admins {
		if a.ID == id {
			a.IsActive = active
			a.UpdatedAt = at
			c := *a
			return &c, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (r *memoryAdmins) matching(search string) []auth.Admin {
	var out []auth.Admin
	for _, a := range r.admins {
		if search == "" || strings.Contains(strings.ToLower(a.Name), strings.ToLower(search)) || strings.Contains(a.Email, strings.ToLower(search)) {
			out = append(out, *a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *memoryAdmins) Count(_ context.Context, search string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.matching(search)), nil
}

func (r *memoryAdmins) List(_ context.Context, search string, limit, offset int) ([]auth.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	found := r.matching(search)
	if offset >= len(found) {
		return []auth.Admin{}, nil
	}
	found = found[offset:]
	if len(found) > limit {
		found = found[:limit]
	}
	return found, nil
}

func newTestService() (*Service, *memoryAdmins) {
	repo := &memoryAdmins{}
	svc := NewService(repo, bcrypt.MinCost, logger.Nop())
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	return svc, repo
}

func requireCode(t *testing.T, err error, code string) *apperrors.AppError {
	t.Helper()
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	require.Equal(t, code, appErr.Code)
	return appErr
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	actor := uuid.NewString()

	t.Run("stores a hashed active account", func(t *testing.T) {
		svc, repo := newTestService()

		a, err := svc.Create(ctx, CreateAdminRequest{
			Name:     "  Jane Editor ",
			Email:    "Jane@Example.com",
			Password: "s3cret!",
			Role:     auth.RoleEditor,
		}, actor)
		require.NoError(t, err)
		assert.Equal(t, "Jane Editor", a.Name)
		assert.Equal(t, "jane@example.com", a.Email)
		assert.True(t, a.IsActive)

		stored, err := repo.FindByEmail(ctx, "jane@example.com")
		require.NoError(t, err)
		assert.True(t, utils.CheckPasswordHash("s3cret!", stored.Password))
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc, _ := newTestService()
		req := CreateAdminRequest{Name: "A", Email: "a@example.com", Password: "s3cret!", Role: auth.RoleAdmin}
		_, err := svc.Create(ctx, req, actor)
		require.NoError(t, err)

		req.Email = "A@EXAMPLE.com"
		_, err = svc.Create(ctx, req, actor)
		appErr := requireCode(t, err, apperrors.ErrCodeDuplicateEmail)
		assert.Equal(t, "An admin with this email already exists", appErr.Message)
	})

	t.Run("every violation is reported", func(t *testing.T) {
		svc, _ := newTestService()
		_, err := svc.Create(ctx, CreateAdminRequest{Name: "   "}, actor)
		appErr := requireCode(t, err, apperrors.ErrCodeValidationFailed)
		assert.Equal(t, "Name is required, Email is required, Password is required, Role is required", appErr.Message)
	})

	t.Run("unknown role and short password", func(t *testing.T) {
		svc, _ := newTestService()
		_, err := svc.Create(ctx, CreateAdminRequest{Name: "B", Email: "b@example.com", Password: "123", Role: "owner"}, actor)
		appErr := requireCode(t, err, apperrors.ErrCodeValidationFailed)
		assert.Equal(t, "Password must be at least 6 characters, Invalid role", appErr.Message)
	})

	t.Run("password longer than bcrypt accepts", func(t *testing.T) {
		svc, _ := newTestService()
		_, err := svc.Create(ctx, CreateAdminRequest{Name: "C", Email: "c@example.com", Password: strings.Repeat("x", 73), Role: auth.RoleEditor}, actor)
		appErr := requireCode(t, err, apperrors.ErrCodeValidationFailed)
		assert.Equal(t, "Password cannot exceed 72 bytes", appErr.Message)
	})
}

func TestList(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	for _, name := range []string{"Alice", "Bob", "Carol", "Alan"} {
		_, err := svc.Create(ctx, CreateAdminRequest{
			Name:     name,
			Email:    strings.ToLower(name) + "@example.com",
			Password: "s3cret!",
			Role:     auth.RoleEditor,
		}, "")
		require.NoError(t, err)
	}

	admins, page, err := svc.List(ctx, "", 2, 3)
	require.NoError(t, err)
	assert.Equal(t, utils.Pagination{Page: 2, Limit: 3, Total: 4, TotalPages: 2}, page)
	require.Len(t, admins, 1)
	assert.Equal(t, "Alice", admins[0].Name)

	admins, page, err = svc.List(ctx, "", math.MaxInt, 3)
	require.NoError(t, err)
	assert.Empty(t, admins)
	assert.Equal(t, 4, page.Total)

	admins, page, err = svc.List(ctx, "al", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 10, page.Limit)
	assert.Len(t, admins, 2)
}

func TestSetActive(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	self, err := svc.Create(ctx, CreateAdminRequest{Name: "Root", Email: "root@example.com", Password: "s3cret!", Role: auth.RoleSuperAdmin}, "")
	require.NoError(t, err)
	other, err := svc.Create(ctx, CreateAdminRequest{Name: "Ed", Email: "ed@example.com", Password: "s3cret!", Role: auth.RoleEditor}, self.ID)
	require.NoError(t, err)

	t.Run("deactivate and reactivate", func(t *testing.T) {
		a, err := svc.SetActive(ctx, self.ID, other.ID, false)
		require.NoError(t, err)
		assert.False(t, a.IsActive)

		a, err = svc.SetActive(ctx, self.ID, strings.ToUpper(other.ID), true)
		require.NoError(t, err)
		assert.True(t, a.IsActive)
	})

	t.Run("cannot deactivate self", func(t *testing.T) {
		_, err := svc.SetActive(ctx, self.ID, self.ID, false)
		appErr := requireCode(t, err, apperrors.ErrCodeValidationFailed)
		assert.Equal(t, "You cannot deactivate your own account", appErr.Message)
	})

	t.Run("malformed id", func(t *testing.T) {
		_, err := svc.SetActive(ctx, self.ID, "not-a-uuid", false)
		appErr := requireCode(t, err, apperrors.ErrCodeValidationFailed)
		assert.Equal(t, "Invalid admin ID format", appErr.Message)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.SetActive(ctx, self.ID, uuid.NewString(), false)
		requireCode(t, err, apperrors.ErrCodeNotFound)
	})
}
