package quotes

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voltline/voltline-backend/internal/cart"
	"github.com/voltline/voltline-backend/pkg/db/models"
	"github.com/voltline/voltline-backend/pkg/enums"
	pkgerrors "github.com/voltline/voltline-backend/pkg/errors"
	"github.com/voltline/voltline-backend/pkg/logger"
	"github.com/voltline/voltline-backend/pkg/pagination"
)

type stubQuoteRepo struct {
	created   []*models.QuoteRequest
	createErr error
	rows      map[uuid.UUID]*models.QuoteRequest
	listRows  []models.QuoteRequest
	updated   map[uuid.UUID]enums.QuoteStatus
}

func newStubQuoteRepo() *stubQuoteRepo {
	return &stubQuoteRepo{
		rows:    map[uuid.UUID]*models.QuoteRequest{},
		updated: map[uuid.UUID]enums.QuoteStatus{},
	}
}

func (s *stubQuoteRepo) WithTx(tx *gorm.DB) QuoteRepository { return s }

func (s *stubQuoteRepo) Create(ctx context.Context, row *models.QuoteRequest) (*models.QuoteRequest, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	row.ID = uuid.New()
	row.CreatedAt = time.Now().UTC()
	row.UpdatedAt = row.CreatedAt
	s.created = append(s.created, row)
	s.rows[row.ID] = row
	return row, nil
}

func (s *stubQuoteRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.QuoteRequest, error) {
	if row, ok := s.rows[id]; ok {
		return row, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubQuoteRepo) List(ctx context.Context, query ListQuery) ([]models.QuoteRequest, error) {
	if query.Limit < len(s.listRows) {
		return s.listRows[:query.Limit], nil
	}
	return s.listRows, nil
}

func (s *stubQuoteRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.QuoteStatus) error {
	s.updated[id] = status
	return nil
}

type stubTxRunner struct {
	err error
}

func (s stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s.err != nil {
		return s.err
	}
	return fn(nil)
}

type stubCarts struct {
	dto      *cart.CartDTO
	getErr   error
	cleared  int
	clearErr error
}

func (s *stubCarts) Get(ctx context.Context, userID uuid.UUID) (*cart.CartDTO, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.dto, nil
}

func (s *stubCarts) Clear(ctx context.Context, userID uuid.UUID) error {
	s.cleared++
	return s.clearErr
}

type stubNotifier struct {
	confirmations []string
	statuses      []string
}

func (s *stubNotifier) SendQuoteConfirmation(ctx context.Context, id string) {
	s.confirmations = append(s.confirmations, id)
}

func (s *stubNotifier) SendStatusNotification(ctx context.Context, id, status string) {
	s.statuses = append(s.statuses, id+":"+status)
}

func newQuoteService(t *testing.T, repo *stubQuoteRepo, tx stubTxRunner, carts *stubCarts, notifier *stubNotifier) Service {
	t.Helper()
	svc, err := NewService(repo, tx, carts, notifier,
		logger.New(logger.Options{ServiceName: "quotes-test"}), nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestSubmitUnauthenticatedAbortsBeforePersistence(t *testing.T) {
	repo := newStubQuoteRepo()
	svc := newQuoteService(t, repo, stubTxRunner{}, &stubCarts{}, &stubNotifier{})

	_, err := svc.Submit(context.Background(), uuid.Nil, SubmitQuoteInput{Quantity: 1})
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatal("nothing may be persisted for an unauthenticated submit")
	}
}

func TestSubmitValidationMessageSurfaced(t *testing.T) {
	svc := newQuoteService(t, newStubQuoteRepo(), stubTxRunner{}, &stubCarts{}, &stubNotifier{})

	_, err := svc.Submit(context.Background(), uuid.New(), SubmitQuoteInput{Quantity: 0})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if typed.Message() != "quantity must be at least 1" {
		t.Fatalf("unexpected message %q", typed.Message())
	}

	_, err = svc.Submit(context.Background(), uuid.New(), SubmitQuoteInput{Quantity: 20000})
	if got := pkgerrors.As(err).Message(); got != "quantity cannot exceed 10,000" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestSubmitSuccessFiresConfirmation(t *testing.T) {
	repo := newStubQuoteRepo()
	notifier := &stubNotifier{}
	carts := &stubCarts{}
	svc := newQuoteService(t, repo, stubTxRunner{}, carts, notifier)

	productID := uuid.New()
	specs := "DIN rail mount"
	dto, err := svc.Submit(context.Background(), uuid.New(), SubmitQuoteInput{
		ProductID:      &productID,
		Subject:        "Quote request: Breaker",
		Message:        "Need these for a panel refit",
		Quantity:       12,
		Specifications: &specs,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if dto.Status != enums.QuoteStatusPending {
		t.Fatalf("expected pending status, got %s", dto.Status)
	}
	if len(notifier.confirmations) != 1 || notifier.confirmations[0] != dto.ID.String() {
		t.Fatalf("expected one confirmation for %s, got %v", dto.ID, notifier.confirmations)
	}
	if carts.cleared != 0 {
		t.Fatal("single-product submission must leave the cart untouched")
	}
}

func TestSubmitTagsLogsWithQuoteRequestID(t *testing.T) {
	repo := newStubQuoteRepo()
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "quotes-test", Output: &buf})
	svc, err := NewService(repo, stubTxRunner{}, &stubCarts{}, &stubNotifier{}, logg, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	dto, err := svc.Submit(context.Background(), uuid.New(), SubmitQuoteInput{Quantity: 3})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !strings.Contains(buf.String(), `"quote_request_id":"`+dto.ID.String()+`"`) {
		t.Fatalf("expected submission log tagged with quote request id, got %s", buf.String())
	}
}

func TestSubmitPersistenceFailureIsGeneric(t *testing.T) {
	repo := newStubQuoteRepo()
	repo.createErr = errors.New("pq: connection refused")
	svc := newQuoteService(t, repo, stubTxRunner{}, &stubCarts{}, &stubNotifier{})

	_, err := svc.Submit(context.Background(), uuid.New(), SubmitQuoteInput{Quantity: 1})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	meta := pkgerrors.MetadataFor(typed.Code())
	if !meta.Retryable {
		t.Fatal("dependency failures must be marked retryable")
	}
	if meta.PublicMessage != "something went wrong, please try again" {
		t.Fatalf("unexpected public message %q", meta.PublicMessage)
	}
}

func cartWith(items ...cart.Item) *cart.CartDTO {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return &cart.CartDTO{Items: items, TotalItems: total}
}

func TestSubmitCartCreatesOneQuotePerItem(t *testing.T) {
	repo := newStubQuoteRepo()
	notifier := &stubNotifier{}
	carts := &stubCarts{dto: cartWith(
		cart.Item{ProductID: uuid.NewString(), Name: "Breaker 32A", Quantity: 2},
		cart.Item{ProductID: uuid.NewString(), Name: "Contactor 3P", Quantity: 5},
	)}
	svc := newQuoteService(t, repo, stubTxRunner{}, carts, notifier)

	userID := uuid.New()
	dtos, err := svc.SubmitCart(context.Background(), userID, "Project order")
	if err != nil {
		t.Fatalf("submit cart: %v", err)
	}
	if len(dtos) != 2 {
		t.Fatalf("expected 2 quotes, got %d", len(dtos))
	}
	if dtos[0].Subject != "Quote request: Breaker 32A" {
		t.Fatalf("unexpected subject %q", dtos[0].Subject)
	}
	if carts.cleared != 1 {
		t.Fatalf("expected cart cleared once, got %d", carts.cleared)
	}
	if len(notifier.confirmations) != 2 {
		t.Fatalf("expected one confirmation per quote, got %d", len(notifier.confirmations))
	}
}

func TestSubmitCartPrefersCustomSpecsOverSnapshot(t *testing.T) {
	repo := newStubQuoteRepo()
	snapshot := "2P, 32A, curve C"
	override := "IP65 enclosure"
	carts := &stubCarts{dto: cartWith(
		cart.Item{ProductID: uuid.NewString(), Name: "Breaker 32A", Quantity: 1, Specifications: &snapshot, CustomSpecs: &override},
		cart.Item{ProductID: uuid.NewString(), Name: "Contactor 3P", Quantity: 2, Specifications: &snapshot},
	)}
	svc := newQuoteService(t, repo, stubTxRunner{}, carts, &stubNotifier{})

	_, err := svc.SubmitCart(context.Background(), uuid.New(), "")
	if err != nil {
		t.Fatalf("submit cart: %v", err)
	}
	if len(repo.created) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(repo.created))
	}
	if got := repo.created[0].Specifications; got == nil || *got != override {
		t.Fatalf("expected the customer override on the quote, got %v", got)
	}
	if got := repo.created[1].Specifications; got == nil || *got != snapshot {
		t.Fatalf("expected the product snapshot without an override, got %v", got)
	}
}

func TestSubmitCartEmptyCart(t *testing.T) {
	svc := newQuoteService(t, newStubQuoteRepo(), stubTxRunner{}, &stubCarts{dto: cartWith()}, &stubNotifier{})

	_, err := svc.SubmitCart(context.Background(), uuid.New(), "")
	if got := pkgerrors.As(err); got == nil || got.Message() != "your cart is empty" {
		t.Fatalf("expected empty cart error, got %v", err)
	}
}

func TestSubmitCartTransactionFailureKeepsCart(t *testing.T) {
	carts := &stubCarts{dto: cartWith(
		cart.Item{ProductID: uuid.NewString(), Name: "Breaker", Quantity: 1},
	)}
	notifier := &stubNotifier{}
	svc := newQuoteService(t, newStubQuoteRepo(), stubTxRunner{err: errors.New("deadlock detected")}, carts, notifier)

	_, err := svc.SubmitCart(context.Background(), uuid.New(), "")
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if carts.cleared != 0 {
		t.Fatal("cart must not be cleared when the transaction fails")
	}
	if len(notifier.confirmations) != 0 {
		t.Fatal("no confirmations may fire for a failed submission")
	}
}

func TestSubmitCartClearFailureStillSucceeds(t *testing.T) {
	carts := &stubCarts{
		dto:      cartWith(cart.Item{ProductID: uuid.NewString(), Name: "Breaker", Quantity: 1}),
		clearErr: errors.New("redis gone"),
	}
	svc := newQuoteService(t, newStubQuoteRepo(), stubTxRunner{}, carts, &stubNotifier{})

	dtos, err := svc.SubmitCart(context.Background(), uuid.New(), "")
	if err != nil {
		t.Fatalf("clear failure must not fail the submission: %v", err)
	}
	if len(dtos) != 1 {
		t.Fatalf("expected 1 quote, got %d", len(dtos))
	}
}

func TestUpdateStatusTransitions(t *testing.T) {
	repo := newStubQuoteRepo()
	notifier := &stubNotifier{}
	svc := newQuoteService(t, repo, stubTxRunner{}, &stubCarts{}, notifier)

	pending := &models.QuoteRequest{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Status: enums.QuoteStatusPending,
	}
	repo.rows[pending.ID] = pending

	dto, err := svc.UpdateStatus(context.Background(), pending.ID, enums.QuoteStatusQuoted)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if dto.Status != enums.QuoteStatusQuoted {
		t.Fatalf("expected quoted, got %s", dto.Status)
	}
	if len(notifier.statuses) != 1 || notifier.statuses[0] != pending.ID.String()+":quoted" {
		t.Fatalf("expected status notification, got %v", notifier.statuses)
	}

	// Terminal statuses never move again.
	_, err = svc.UpdateStatus(context.Background(), pending.ID, enums.QuoteStatusRejected)
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict for terminal transition, got %v", err)
	}

	_, err = svc.UpdateStatus(context.Background(), uuid.New(), enums.QuoteStatusQuoted)
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListOwnPagination(t *testing.T) {
	repo := newStubQuoteRepo()
	userID := uuid.New()
	repo.listRows = make([]models.QuoteRequest, 4)
	for i := range repo.listRows {
		repo.listRows[i] = models.QuoteRequest{
			ID:        uuid.New(),
			UserID:    userID,
			Status:    enums.QuoteStatusPending,
			CreatedAt: time.Now().UTC(),
		}
	}
	svc := newQuoteService(t, repo, stubTxRunner{}, &stubCarts{}, &stubNotifier{})

	result, err := svc.ListOwn(context.Background(), userID, pagination.Params{Limit: 3})
	if err != nil {
		t.Fatalf("list own: %v", err)
	}
	if len(result.Quotes) != 3 {
		t.Fatalf("expected 3 quotes, got %d", len(result.Quotes))
	}
	if result.NextCursor == nil {
		t.Fatal("expected next cursor for buffered page")
	}

	_, err = svc.ListOwn(context.Background(), uuid.Nil, pagination.Params{})
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
