package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/voltline/voltline-backend/pkg/enums"
)

// UserRole maps one user to their portal-wide role. Role checks made here are
// the authoritative access-control decision; anything the client derives from
// them is a rendering hint only.
type UserRole struct {
	UserID    uuid.UUID      `gorm:"column:user_id;type:uuid;primaryKey"`
	Role      enums.UserRole `gorm:"column:role;type:text;not null;default:'user'"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the historical table name.
func (UserRole) TableName() string {
	return "user_roles"
}
