package quotes

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voltline/voltline-backend/pkg/db/models"
	"github.com/voltline/voltline-backend/pkg/enums"
	"github.com/voltline/voltline-backend/pkg/pagination"
)

// ListQuery narrows a paged quote listing.
type ListQuery struct {
	UserID *uuid.UUID
	Status *enums.QuoteStatus
	Cursor *pagination.Cursor
	Limit  int
}

// Repository owns quote_requests persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) QuoteRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts the quote request row.
func (r *Repository) Create(ctx context.Context, row *models.QuoteRequest) (*models.QuoteRequest, error) {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// FindByID loads one quote request.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.QuoteRequest, error) {
	var row models.QuoteRequest
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// List pages through quote requests newest-first. Callers pass the buffered
// limit so the extra row signals a next page.
func (r *Repository) List(ctx context.Context, query ListQuery) ([]models.QuoteRequest, error) {
	q := r.db.WithContext(ctx).Model(&models.QuoteRequest{})
	if query.UserID != nil {
		q = q.Where("user_id = ?", *query.UserID)
	}
	if query.Status != nil {
		q = q.Where("status = ?", *query.Status)
	}
	if query.Cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", query.Cursor.CreatedAt, query.Cursor.ID)
	}

	var rows []models.QuoteRequest
	if err := q.Order("created_at DESC, id DESC").Limit(query.Limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateStatus sets the status on a quote request row.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.QuoteStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.QuoteRequest{}).
		Where("id = ?", id).
		UpdateColumn("status", status).Error
}
