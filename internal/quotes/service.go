package quotes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voltline/voltline-backend/internal/cart"
	"github.com/voltline/voltline-backend/pkg/db/models"
	"github.com/voltline/voltline-backend/pkg/enums"
	pkgerrors "github.com/voltline/voltline-backend/pkg/errors"
	"github.com/voltline/voltline-backend/pkg/logger"
	"github.com/voltline/voltline-backend/pkg/metrics"
	"github.com/voltline/voltline-backend/pkg/pagination"
	"github.com/voltline/voltline-backend/pkg/quoting"
)

const (
	submissionSourceProduct = "product"
	submissionSourceCart    = "cart"

	outcomeSuccess    = "success"
	outcomeValidation = "validation"
	outcomeError      = "error"
)

// ListInput narrows the admin listing.
type ListInput struct {
	Status     *enums.QuoteStatus
	Pagination pagination.Params
}

// Service exposes the quote request workflow.
type Service interface {
	Submit(ctx context.Context, userID uuid.UUID, input SubmitQuoteInput) (*QuoteRequestDTO, error)
	SubmitCart(ctx context.Context, userID uuid.UUID, message string) ([]QuoteRequestDTO, error)
	ListOwn(ctx context.Context, userID uuid.UUID, params pagination.Params) (*QuoteListResult, error)
	List(ctx context.Context, input ListInput) (*QuoteListResult, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.QuoteStatus) (*QuoteRequestDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartAccessor interface {
	Get(ctx context.Context, userID uuid.UUID) (*cart.CartDTO, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type notifier interface {
	SendQuoteConfirmation(ctx context.Context, quoteRequestID string)
	SendStatusNotification(ctx context.Context, quoteRequestID, status string)
}

type service struct {
	repo    QuoteRepository
	tx      txRunner
	carts   cartAccessor
	notify  notifier
	logg    *logger.Logger
	metrics *metrics.QuotingMetrics
}

// NewService builds the quote service backed by the provided stack. The
// metrics collector may be nil.
func NewService(repo QuoteRepository, tx txRunner, carts cartAccessor, notify notifier, logg *logger.Logger, m *metrics.QuotingMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("quote repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart accessor required")
	}
	if notify == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:    repo,
		tx:      tx,
		carts:   carts,
		notify:  notify,
		logg:    logg,
		metrics: m,
	}, nil
}

// Submit validates and persists a single quote request, then fires the
// confirmation notification. The notification outcome never affects the
// response.
func (s *service) Submit(ctx context.Context, userID uuid.UUID, input SubmitQuoteInput) (*QuoteRequestDTO, error) {
	start := time.Now()

	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "you must be signed in to request a quote")
	}

	var productID *string
	if input.ProductID != nil {
		id := input.ProductID.String()
		productID = &id
	}
	if err := quoting.ValidateProductQuote(quoting.ProductQuoteInput{
		ProductID:      productID,
		Quantity:       input.Quantity,
		Specifications: input.Specifications,
		Message:        input.Message,
	}); err != nil {
		s.metrics.IncSubmission(submissionSourceProduct, outcomeValidation)
		return nil, err
	}

	row := &models.QuoteRequest{
		UserID:         userID,
		ProductID:      input.ProductID,
		Subject:        subjectOrDefault(input.Subject),
		Message:        input.Message,
		Quantity:       input.Quantity,
		Specifications: input.Specifications,
		Status:         enums.QuoteStatusPending,
	}
	created, err := s.repo.Create(ctx, row)
	if err != nil {
		s.metrics.IncSubmission(submissionSourceProduct, outcomeError)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist quote request")
	}

	s.logg.Info(s.logg.WithQuoteRequestID(s.logg.WithUserID(ctx, userID.String()), created.ID.String()),
		"quote request submitted")
	s.notify.SendQuoteConfirmation(ctx, created.ID.String())

	s.metrics.IncSubmission(submissionSourceProduct, outcomeSuccess)
	s.metrics.ObserveSubmission(submissionSourceProduct, time.Since(start))
	return fromModel(created), nil
}

// SubmitCart turns every cart line into a quote request inside one
// transaction. The cart is cleared only after the transaction commits.
func (s *service) SubmitCart(ctx context.Context, userID uuid.UUID, message string) ([]QuoteRequestDTO, error) {
	start := time.Now()

	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "you must be signed in to request a quote")
	}

	cartDTO, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	inputs := make([]quoting.CartItemInput, 0, len(cartDTO.Items))
	for _, item := range cartDTO.Items {
		inputs = append(inputs, quoting.CartItemInput{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
		})
	}
	if err := quoting.ValidateCart(inputs); err != nil {
		s.metrics.IncSubmission(submissionSourceCart, outcomeValidation)
		return nil, err
	}
	if len(message) > quoting.MaxMessageLen {
		s.metrics.IncSubmission(submissionSourceCart, outcomeValidation)
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message must be 5,000 characters or fewer")
	}

	created := make([]*models.QuoteRequest, 0, len(cartDTO.Items))
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		for _, item := range cartDTO.Items {
			pid, err := uuid.Parse(item.ProductID)
			if err != nil {
				return pkgerrors.New(pkgerrors.CodeValidation, "cart item product id must be a valid UUID")
			}
			row := &models.QuoteRequest{
				UserID:         userID,
				ProductID:      &pid,
				Subject:        "Quote request: " + item.Name,
				Message:        message,
				Quantity:       item.Quantity,
				Specifications: item.EffectiveSpecs(),
				Status:         enums.QuoteStatusPending,
			}
			saved, err := txRepo.Create(ctx, row)
			if err != nil {
				return err
			}
			created = append(created, saved)
		}
		return nil
	}); err != nil {
		s.metrics.IncSubmission(submissionSourceCart, outcomeError)
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart quote requests")
	}

	// The transaction committed; an uncleared cart is an inconvenience, not
	// a failed submission.
	if err := s.carts.Clear(ctx, userID); err != nil {
		s.logg.Error(s.logg.WithUserID(ctx, userID.String()), "clearing cart after submission", err)
	}

	for _, row := range created {
		s.logg.Info(s.logg.WithQuoteRequestID(s.logg.WithUserID(ctx, userID.String()), row.ID.String()),
			"quote request submitted")
		s.notify.SendQuoteConfirmation(ctx, row.ID.String())
	}

	s.metrics.IncSubmission(submissionSourceCart, outcomeSuccess)
	s.metrics.ObserveSubmission(submissionSourceCart, time.Since(start))

	dtos := make([]QuoteRequestDTO, 0, len(created))
	for _, row := range created {
		dtos = append(dtos, *fromModel(row))
	}
	return dtos, nil
}

// ListOwn pages through the caller's own quote requests.
func (s *service) ListOwn(ctx context.Context, userID uuid.UUID, params pagination.Params) (*QuoteListResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "you must be signed in to view quotes")
	}
	return s.list(ctx, ListQuery{UserID: &userID}, params)
}

// List pages through all quote requests, optionally filtered by status.
func (s *service) List(ctx context.Context, input ListInput) (*QuoteListResult, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid quote status")
	}
	return s.list(ctx, ListQuery{Status: input.Status}, input.Pagination)
}

// UpdateStatus applies an admin status transition and fires the customer
// notification best-effort.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.QuoteStatus) (*QuoteRequestDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid quote status")
	}

	row, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote request not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quote request")
	}

	if !row.Status.CanTransitionTo(status) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "quote request status cannot change").
			WithDetails(map[string]any{"current": row.Status.String(), "requested": status.String()})
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update quote status")
	}
	row.Status = status

	s.logg.Info(s.logg.WithQuoteRequestID(ctx, row.ID.String()), "quote request status updated")
	s.notify.SendStatusNotification(ctx, row.ID.String(), status.String())

	return fromModel(row), nil
}

func (s *service) list(ctx context.Context, query ListQuery, params pagination.Params) (*QuoteListResult, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	query.Cursor = cursor
	query.Limit = pagination.LimitWithBuffer(params.Limit)

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list quote requests")
	}

	rows, hasMore := pagination.TrimPage(rows, params.Limit)
	result := &QuoteListResult{Quotes: fromModels(rows)}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		encoded := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		result.NextCursor = &encoded
	}
	return result, nil
}

func subjectOrDefault(subject string) string {
	if subject == "" {
		return "Quote request"
	}
	return subject
}
