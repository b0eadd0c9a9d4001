package request

import "github.com/sangkips/posbilling/internal/domain/enum"

// CreateUserRequest represents a staff account creation request
type CreateUserRequest struct {
	Name     string         `json:"name" binding:"required,min=2,max=255"`
	Email    string         `json:"email" binding:"required,email"`
	Password string         `json:"password" binding:"required,min=8"`
	Role     enum.StaffRole `json:"role" binding:"omitempty,oneof=admin cashier"`
}

// UpdateUserRequest represents a staff account update request
type UpdateUserRequest struct {
	Name     *string         `json:"name" binding:"omitempty,min=2,max=255"`
	Role     *enum.StaffRole `json:"role" binding:"omitempty,oneof=admin cashier"`
	IsActive *bool           `json:"is_active"`
	Password *string         `json:"password" binding:"omitempty,min=8"`
}

// UserFilterRequest represents user list parameters
type UserFilterRequest struct {
	Search  string `form:"search"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}
