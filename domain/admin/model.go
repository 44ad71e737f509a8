package admin

import (
	"github.com/policydesk/admin-api/domain/auth"
	"github.com/policydesk/admin-api/utils"
)

// CreateAdminRequest represents the create admin request
type CreateAdminRequest struct {
	Name     string    `json:"name" validate:"notblank,max=100"`
	Email    string    `json:"email" validate:"required,email"`
	Password string    `json:"password" validate:"required,min=6"`
	Role     auth.Role `json:"role" validate:"required,oneof=super_admin admin editor"`
}

func (CreateAdminRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"Name.notblank":     "Name is required",
		"Name.max":          "Name cannot exceed 100 characters",
		"Email.required":    "Email is required",
		"Email.email":       "Please provide a valid email",
		"Password.required": "Password is required",
		"Password.min":      "Password must be at least 6 characters",
		"Role.required":     "Role is required",
		"Role.oneof":        "Invalid role",
	}
}

// UpdateStatusRequest represents the activate/deactivate request
type UpdateStatusRequest struct {
	IsActive *bool `json:"isActive"`
}

// AdminView is an administrator as listed to a super admin
type AdminView struct {
	*auth.Admin
	IsOnline bool `json:"isOnline"`
}

// ListResult is one page of administrators
type ListResult struct {
	Admins     []AdminView      `json:"admins"`
	Pagination utils.Pagination `json:"pagination"`
}
