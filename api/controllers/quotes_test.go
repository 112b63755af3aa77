package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/voltline/voltline-backend/internal/quotes"
	"github.com/voltline/voltline-backend/pkg/enums"
	pkgerrors "github.com/voltline/voltline-backend/pkg/errors"
	"github.com/voltline/voltline-backend/pkg/pagination"
)

type stubQuoteService struct {
	submitted       []quotes.SubmitQuoteInput
	cartSubmissions []string
	listOwnParams   []pagination.Params
	listInputs      []quotes.ListInput
	statusUpdates   []enums.QuoteStatus
	updateErr       error
}

func (s *stubQuoteService) Submit(ctx context.Context, userID uuid.UUID, input quotes.SubmitQuoteInput) (*quotes.QuoteRequestDTO, error) {
	s.submitted = append(s.submitted, input)
	return &quotes.QuoteRequestDTO{ID: uuid.New(), UserID: userID, Quantity: input.Quantity, Status: enums.QuoteStatusPending}, nil
}

func (s *stubQuoteService) SubmitCart(ctx context.Context, userID uuid.UUID, message string) ([]quotes.QuoteRequestDTO, error) {
	s.cartSubmissions = append(s.cartSubmissions, message)
	return []quotes.QuoteRequestDTO{
		{ID: uuid.New(), UserID: userID, Status: enums.QuoteStatusPending},
		{ID: uuid.New(), UserID: userID, Status: enums.QuoteStatusPending},
	}, nil
}

func (s *stubQuoteService) ListOwn(ctx context.Context, userID uuid.UUID, params pagination.Params) (*quotes.QuoteListResult, error) {
	s.listOwnParams = append(s.listOwnParams, params)
	return &quotes.QuoteListResult{Quotes: []quotes.QuoteRequestDTO{}}, nil
}

func (s *stubQuoteService) List(ctx context.Context, input quotes.ListInput) (*quotes.QuoteListResult, error) {
	s.listInputs = append(s.listInputs, input)
	return &quotes.QuoteListResult{Quotes: []quotes.QuoteRequestDTO{}}, nil
}

func (s *stubQuoteService) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.QuoteStatus) (*quotes.QuoteRequestDTO, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	s.statusUpdates = append(s.statusUpdates, status)
	return &quotes.QuoteRequestDTO{ID: id, Status: status}, nil
}

func TestQuoteSubmitReturnsCreated(t *testing.T) {
	svc := &stubQuoteService{}
	handler := QuoteSubmit(svc, testLogger())

	productID := uuid.New()
	req := withUser(jsonRequest(t, http.MethodPost, "/quotes", map[string]any{
		"product_id": productID,
		"subject":    "bulk pricing",
		"message":    "need 40 units for a panel build",
		"quantity":   40,
	}), uuid.New())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(svc.submitted) != 1 {
		t.Fatalf("expected one submission, got %d", len(svc.submitted))
	}
	input := svc.submitted[0]
	if input.ProductID == nil || *input.ProductID != productID {
		t.Fatalf("unexpected product id %v", input.ProductID)
	}
	if input.Quantity != 40 {
		t.Fatalf("unexpected quantity %d", input.Quantity)
	}
}

func TestQuoteSubmitRequiresQuantity(t *testing.T) {
	svc := &stubQuoteService{}
	handler := QuoteSubmit(svc, testLogger())

	req := withUser(jsonRequest(t, http.MethodPost, "/quotes", map[string]any{
		"message": "no quantity given",
	}), uuid.New())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if len(svc.submitted) != 0 {
		t.Fatalf("service should not be called without a quantity")
	}
}

func TestQuoteSubmitCartReturnsAllQuotes(t *testing.T) {
	svc := &stubQuoteService{}
	handler := QuoteSubmitCart(svc, testLogger())

	req := withUser(jsonRequest(t, http.MethodPost, "/quotes/cart", map[string]any{
		"message": "quote my whole cart",
	}), uuid.New())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(svc.cartSubmissions) != 1 || svc.cartSubmissions[0] != "quote my whole cart" {
		t.Fatalf("unexpected cart submissions %v", svc.cartSubmissions)
	}

	var envelope struct {
		Data struct {
			Quotes []quotes.QuoteRequestDTO `json:"quotes"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding envelope: %v", err)
	}
	if len(envelope.Data.Quotes) != 2 {
		t.Fatalf("expected two quotes, got %d", len(envelope.Data.Quotes))
	}
}

func TestQuoteListOwnForwardsPagination(t *testing.T) {
	svc := &stubQuoteService{}
	handler := QuoteListOwn(svc, testLogger())

	req := withUser(httptest.NewRequest(http.MethodGet, "/quotes?limit=5&cursor=abc", nil), uuid.New())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(svc.listOwnParams) != 1 {
		t.Fatalf("expected one list call, got %d", len(svc.listOwnParams))
	}
	params := svc.listOwnParams[0]
	if params.Limit != 5 || params.Cursor != "abc" {
		t.Fatalf("unexpected pagination %+v", params)
	}
}

func TestAdminQuoteListAppliesStatusFilter(t *testing.T) {
	svc := &stubQuoteService{}
	handler := AdminQuoteList(svc, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/admin/quotes?status=pending", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(svc.listInputs) != 1 {
		t.Fatalf("expected one list call, got %d", len(svc.listInputs))
	}
	status := svc.listInputs[0].Status
	if status == nil || *status != enums.QuoteStatusPending {
		t.Fatalf("expected pending filter, got %v", status)
	}
}

func TestAdminQuoteUpdateStatusValidatesPath(t *testing.T) {
	svc := &stubQuoteService{}
	r := chi.NewRouter()
	r.Patch("/admin/quotes/{quoteId}/status", AdminQuoteUpdateStatus(svc, testLogger()))

	req := jsonRequest(t, http.MethodPatch, "/admin/quotes/not-a-uuid/status", map[string]string{"status": "quoted"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", rec.Code)
	}
	if len(svc.statusUpdates) != 0 {
		t.Fatalf("service should not be called for malformed id")
	}
}

func TestAdminQuoteUpdateStatusPassesThroughConflict(t *testing.T) {
	svc := &stubQuoteService{updateErr: pkgerrors.New(pkgerrors.CodeConflict, "only pending quote requests can be updated")}
	r := chi.NewRouter()
	r.Patch("/admin/quotes/{quoteId}/status", AdminQuoteUpdateStatus(svc, testLogger()))

	req := jsonRequest(t, http.MethodPatch, "/admin/quotes/"+uuid.NewString()+"/status", map[string]string{"status": "quoted"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	apiErr := decodeErrorEnvelope(t, rec)
	if apiErr.Message != "only pending quote requests can be updated" {
		t.Fatalf("unexpected message %q", apiErr.Message)
	}
}

func TestAdminQuoteUpdateStatusApplied(t *testing.T) {
	svc := &stubQuoteService{}
	r := chi.NewRouter()
	r.Patch("/admin/quotes/{quoteId}/status", AdminQuoteUpdateStatus(svc, testLogger()))

	req := jsonRequest(t, http.MethodPatch, "/admin/quotes/"+uuid.NewString()+"/status", map[string]string{"status": " quoted "})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(svc.statusUpdates) != 1 || svc.statusUpdates[0] != enums.QuoteStatusQuoted {
		t.Fatalf("unexpected status updates %v", svc.statusUpdates)
	}
}
