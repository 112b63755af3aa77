package quotes

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voltline/voltline-backend/pkg/db/models"
	"github.com/voltline/voltline-backend/pkg/enums"
)

// QuoteRepository defines the persistence surface required by the quote
// service.
type QuoteRepository interface {
	WithTx(tx *gorm.DB) QuoteRepository
	Create(ctx context.Context, row *models.QuoteRequest) (*models.QuoteRequest, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.QuoteRequest, error)
	List(ctx context.Context, query ListQuery) ([]models.QuoteRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.QuoteStatus) error
}
