package quotes

import (
	"time"

	"github.com/google/uuid"

	"github.com/voltline/voltline-backend/pkg/db/models"
	"github.com/voltline/voltline-backend/pkg/enums"
)

// QuoteRequestDTO is the transport shape of one quote request.
type QuoteRequestDTO struct {
	ID             uuid.UUID         `json:"id"`
	UserID         uuid.UUID         `json:"user_id"`
	ProductID      *uuid.UUID        `json:"product_id,omitempty"`
	Subject        string            `json:"subject"`
	Message        string            `json:"message"`
	Quantity       int               `json:"quantity"`
	Specifications *string           `json:"specifications,omitempty"`
	Status         enums.QuoteStatus `json:"status"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// SubmitQuoteInput is the payload for a single-product submission.
type SubmitQuoteInput struct {
	ProductID      *uuid.UUID
	Subject        string
	Message        string
	Quantity       int
	Specifications *string
}

// QuoteListResult wraps one page of quote requests.
type QuoteListResult struct {
	Quotes     []QuoteRequestDTO `json:"quotes"`
	NextCursor *string           `json:"next_cursor,omitempty"`
}

func fromModel(q *models.QuoteRequest) *QuoteRequestDTO {
	if q == nil {
		return nil
	}
	return &QuoteRequestDTO{
		ID:             q.ID,
		UserID:         q.UserID,
		ProductID:      q.ProductID,
		Subject:        q.Subject,
		Message:        q.Message,
		Quantity:       q.Quantity,
		Specifications: q.Specifications,
		Status:         q.Status,
		CreatedAt:      q.CreatedAt,
		UpdatedAt:      q.UpdatedAt,
	}
}

func fromModels(rows []models.QuoteRequest) []QuoteRequestDTO {
	out := make([]QuoteRequestDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *fromModel(&rows[i]))
	}
	return out
}
