package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog row. Price is nullable: quote-only items carry no
// list price at all.
type Product struct {
	ID             uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name           string              `gorm:"type:text;not null"`
	Description    string              `gorm:"type:text;not null;default:''"`
	Price          decimal.NullDecimal `gorm:"column:price;type:numeric(12,2)"`
	Category       *string             `gorm:"column:category;type:text"`
	Specifications *string             `gorm:"column:specifications;type:text"`
	ImageURL       *string             `gorm:"column:image_url;type:text"`
	IsActive       bool                `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
