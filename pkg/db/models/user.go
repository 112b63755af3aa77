package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents the canonical identity entity.
type User struct {
	ID               uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email            string     `gorm:"type:text;not null;uniqueIndex:users_email_key"`
	PasswordHash     string     `gorm:"column:password_hash;not null"`
	FullName         string     `gorm:"column:full_name;not null"`
	CompanyName      *string    `gorm:"column:company_name"`
	Phone            *string    `gorm:"column:phone"`
	IsActive         bool       `gorm:"column:is_active;not null;default:true"`
	EmailConfirmedAt *time.Time `gorm:"column:email_confirmed_at"`
	LastLoginAt      *time.Time `gorm:"column:last_login_at"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
