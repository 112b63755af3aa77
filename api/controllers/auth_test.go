package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/voltline/voltline-backend/internal/auth"
	"github.com/voltline/voltline-backend/internal/users"
	pkgauth "github.com/voltline/voltline-backend/pkg/auth"
	"github.com/voltline/voltline-backend/pkg/auth/session"
	"github.com/voltline/voltline-backend/pkg/config"
	"github.com/voltline/voltline-backend/pkg/enums"
	pkgerrors "github.com/voltline/voltline-backend/pkg/errors"
	"github.com/voltline/voltline-backend/pkg/logger"
	"github.com/voltline/voltline-backend/pkg/types"
)

type stubAuthService struct {
	registered []auth.RegisterRequest
	loginErr   error
	loggedOut  []string
	refreshed  []auth.RefreshRequest
}

func (s *stubAuthService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.RegisterResponse, error) {
	s.registered = append(s.registered, req)
	return &auth.RegisterResponse{User: &users.UserDTO{ID: uuid.New(), Email: req.Email, FullName: req.FullName}}, nil
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &auth.LoginResponse{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		User:         &users.UserDTO{Email: req.Email},
	}, nil
}

func (s *stubAuthService) Logout(ctx context.Context, accessID string) error {
	s.loggedOut = append(s.loggedOut, accessID)
	return nil
}

func (s *stubAuthService) Refresh(ctx context.Context, req auth.RefreshRequest) (*auth.RefreshResponse, error) {
	s.refreshed = append(s.refreshed, req)
	return &auth.RefreshResponse{AccessToken: "rotated-access", RefreshToken: "rotated-refresh"}, nil
}

func (s *stubAuthService) UIHints(ctx context.Context, userID uuid.UUID) auth.UIHints {
	return auth.UIHints{}
}

func (s *stubAuthService) Session(ctx context.Context, userID uuid.UUID) (*auth.SessionResponse, error) {
	return &auth.SessionResponse{User: &users.UserDTO{ID: userID}}, nil
}

func (s *stubAuthService) InviteAdmin(ctx context.Context, email string) error { return nil }

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test-controllers", Output: io.Discard})
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "controller-test-secret",
		Issuer:            "voltline-test",
		ExpirationMinutes: 15,
	}
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decodeErrorEnvelope(t *testing.T, rec *httptest.ResponseRecorder) types.APIError {
	t.Helper()

	var envelope types.ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding error envelope: %v", err)
	}
	return envelope.Error
}

func TestAuthRegisterCreatesAccount(t *testing.T) {
	svc := &stubAuthService{}
	handler := AuthRegister(svc, testLogger())

	req := jsonRequest(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email":     "buyer@example.com",
		"password":  "correct horse battery",
		"full_name": "Pat Chen",
	})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(svc.registered) != 1 {
		t.Fatalf("expected one register call, got %d", len(svc.registered))
	}
	if svc.registered[0].Email != "buyer@example.com" {
		t.Fatalf("unexpected email passed through: %q", svc.registered[0].Email)
	}

	var envelope struct {
		Data struct {
			User users.UserDTO `json:"user"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding envelope: %v", err)
	}
	if envelope.Data.User.Email != "buyer@example.com" {
		t.Fatalf("unexpected user email in response: %q", envelope.Data.User.Email)
	}
}

func TestAuthRegisterRejectsInvalidPayload(t *testing.T) {
	svc := &stubAuthService{}
	handler := AuthRegister(svc, testLogger())

	req := jsonRequest(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email":    "not-an-email",
		"password": "pw",
	})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if len(svc.registered) != 0 {
		t.Fatalf("service should not be called on invalid payload")
	}
	apiErr := decodeErrorEnvelope(t, rec)
	if apiErr.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected error code %q", apiErr.Code)
	}
}

func TestAuthLoginReturnsTokenPair(t *testing.T) {
	svc := &stubAuthService{}
	handler := AuthLogin(svc, testLogger())

	req := jsonRequest(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "buyer@example.com",
		"password": "correct horse battery",
	})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data struct {
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding envelope: %v", err)
	}
	if envelope.Data.AccessToken != "access-token" || envelope.Data.RefreshToken != "refresh-token" {
		t.Fatalf("unexpected token pair: %+v", envelope.Data)
	}
}

func TestAuthLoginPassesThroughCredentialError(t *testing.T) {
	svc := &stubAuthService{loginErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")}
	handler := AuthLogin(svc, testLogger())

	req := jsonRequest(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "buyer@example.com",
		"password": "wrong",
	})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	apiErr := decodeErrorEnvelope(t, rec)
	if apiErr.Message != "invalid email or password" {
		t.Fatalf("expected credential message passthrough, got %q", apiErr.Message)
	}
}

func TestAuthLogoutRevokesBearerSession(t *testing.T) {
	svc := &stubAuthService{}
	cfg := testJWTConfig()
	handler := AuthLogout(svc, cfg, testLogger())

	accessID := session.NewAccessID()
	token, err := pkgauth.MintAccessToken(cfg, time.Now().UTC(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRoleUser,
		JTI:    accessID,
	})
	if err != nil {
		t.Fatalf("minting token: %v", err)
	}

	req := jsonRequest(t, http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(svc.loggedOut) != 1 || svc.loggedOut[0] != accessID {
		t.Fatalf("expected logout with access id %q, got %v", accessID, svc.loggedOut)
	}
}

func TestAuthRefreshRequiresBearerToken(t *testing.T) {
	svc := &stubAuthService{}
	handler := AuthRefresh(svc, testJWTConfig(), testLogger())

	req := jsonRequest(t, http.MethodPost, "/api/v1/auth/refresh", map[string]string{
		"refresh_token": "some-refresh-token",
	})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without bearer token, got %d", rec.Code)
	}
	if len(svc.refreshed) != 0 {
		t.Fatalf("service should not be called without credentials")
	}
}

func TestAuthRefreshForwardsTokenPair(t *testing.T) {
	svc := &stubAuthService{}
	cfg := testJWTConfig()
	handler := AuthRefresh(svc, cfg, testLogger())

	token, err := pkgauth.MintAccessToken(cfg, time.Now().UTC(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRoleUser,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("minting token: %v", err)
	}

	req := jsonRequest(t, http.MethodPost, "/api/v1/auth/refresh", map[string]string{
		"refresh_token": "some-refresh-token",
	})
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(svc.refreshed) != 1 {
		t.Fatalf("expected one refresh call, got %d", len(svc.refreshed))
	}
	if svc.refreshed[0].AccessToken != token || svc.refreshed[0].RefreshToken != "some-refresh-token" {
		t.Fatalf("unexpected refresh input: %+v", svc.refreshed[0])
	}
}
