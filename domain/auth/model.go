package auth

import (
	"time"
)

// Role is an administrator's permission level
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleEditor     Role = "editor"
)

// Roles lists every role from most to least privileged
var Roles = []Role{RoleSuperAdmin, RoleAdmin, RoleEditor}

func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// Admin is an administrator account. Accounts are deactivated, never deleted.
type Admin struct {
	ID           string     `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Email        string     `db:"email" json:"email"`
	Password     string     `db:"password" json:"-"`
	Role         Role       `db:"role" json:"role"`
	IsActive     bool       `db:"is_active" json:"isActive"`
	LastLogin    *time.Time `db:"last_login" json:"lastLogin"`
	LastActiveAt *time.Time `db:"-" json:"lastActiveAt,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

// HasRole reports whether the admin holds one of roles
func (a *Admin) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// LoginRequest represents the login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (LoginRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"Email.required":    "Email is required",
		"Email.email":       "Please provide a valid email",
		"Password.required": "Password is required",
	}
}

// ChangePasswordRequest represents the change password request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

func (ChangePasswordRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"CurrentPassword.required": "Current password is required",
		"NewPassword.required":     "New password is required",
		"NewPassword.min":          "New password must be at least 6 characters",
	}
}

// Session is an issued token together with the account it belongs to
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Admin     *Admin    `json:"admin"`
}
