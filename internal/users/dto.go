package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/voltline/voltline-backend/pkg/db/models"
	"github.com/voltline/voltline-backend/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID               uuid.UUID  `json:"id"`
	Email            string     `json:"email"`
	FullName         string     `json:"full_name"`
	CompanyName      *string    `json:"company_name,omitempty"`
	Phone            *string    `json:"phone,omitempty"`
	IsActive         bool       `json:"is_active"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email        string
	PasswordHash string
	FullName     string
	CompanyName  *string
	Phone        *string
	IsActive     *bool
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:               u.ID,
		Email:            u.Email,
		FullName:         u.FullName,
		CompanyName:      u.CompanyName,
		Phone:            u.Phone,
		IsActive:         u.IsActive,
		EmailConfirmedAt: u.EmailConfirmedAt,
		LastLoginAt:      u.LastLoginAt,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	isActive := true
	if c.IsActive != nil {
		isActive = *c.IsActive
	}

	return &models.User{
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		FullName:     c.FullName,
		CompanyName:  c.CompanyName,
		Phone:        c.Phone,
		IsActive:     isActive,
	}
}

// RoleDTO pairs a user with their assigned role.
type RoleDTO struct {
	UserID uuid.UUID      `json:"user_id"`
	Role   enums.UserRole `json:"role"`
}
