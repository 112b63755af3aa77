package product

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/voltline/voltline-backend/pkg/db/models"
	pkgerrors "github.com/voltline/voltline-backend/pkg/errors"
)

// ProductDTO is the boundary-validated shape the rest of the service works
// with. Rows that fail validation never reach core logic.
type ProductDTO struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	Price          *decimal.Decimal `json:"price,omitempty"`
	Category       *string          `json:"category,omitempty"`
	Specifications *string          `json:"specifications,omitempty"`
	ImageURL       *string          `json:"image_url,omitempty"`
	IsActive       bool             `json:"is_active"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// FromModel converts a catalog row, rejecting rows that violate the minimum
// shape the service depends on.
func FromModel(p *models.Product) (*ProductDTO, error) {
	if p == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "nil product row")
	}
	if p.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "product row missing id")
	}
	if strings.TrimSpace(p.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "product row missing name").
			WithDetails(map[string]any{"product_id": p.ID.String()})
	}

	dto := &ProductDTO{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Category:       p.Category,
		Specifications: p.Specifications,
		ImageURL:       p.ImageURL,
		IsActive:       p.IsActive,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if p.Price.Valid {
		price := p.Price.Decimal
		if price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeInternal, "product row has negative price").
				WithDetails(map[string]any{"product_id": p.ID.String()})
		}
		dto.Price = &price
	}
	return dto, nil
}
