package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/voltline/voltline-backend/pkg/enums"
)

// QuoteRequest is a customer's persisted ask for pricing/availability on a
// product and quantity. The service's responsibility ends at inserting a
// validated row and surfacing the result.
type QuoteRequest struct {
	ID             uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	ProductID      *uuid.UUID        `gorm:"column:product_id;type:uuid"`
	Subject        string            `gorm:"type:text;not null"`
	Message        string            `gorm:"type:text;not null;default:''"`
	Quantity       int               `gorm:"column:quantity;not null"`
	Specifications *string           `gorm:"column:specifications;type:text"`
	Status         enums.QuoteStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
