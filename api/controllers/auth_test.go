package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/campustrade/campustrade-backend/internal/auth"
	pkgerrors "github.com/campustrade/campustrade-backend/pkg/errors"
)

type stubAuthService struct {
	login   *auth.LoginResponse
	refresh *auth.RefreshResponse
	err     error

	loggedOut string
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return s.login, s.err
}

func (s *stubAuthService) Refresh(ctx context.Context, req auth.RefreshRequest) (*auth.RefreshResponse, error) {
	return s.refresh, s.err
}

func (s *stubAuthService) Logout(ctx context.Context, accessID string) error {
	s.loggedOut = accessID
	return s.err
}

type stubRegisterService struct {
	resp *auth.RegisterResponse
	err  error
}

func (s stubRegisterService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.RegisterResponse, error) {
	return s.resp, s.err
}

func TestAuthRegisterSuccess(t *testing.T) {
	resp := &auth.RegisterResponse{
		ID:        uuid.New(),
		StudentID: "20240001",
		Username:  "freshman",
		Email:     "freshman@campus.edu",
		CreatedAt: time.Now(),
	}
	handler := AuthRegister(stubRegisterService{resp: resp}, nil)

	body := []byte(`{"student_id":"20240001","username":"freshman","email":"freshman@campus.edu","password":"longenough1","real_name":"Fresh Man"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rec.Code)
	}

	var envelope struct {
		Data auth.RegisterResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Username != "freshman" {
		t.Fatalf("expected username in payload got %+v", envelope.Data)
	}
}

func TestAuthRegisterInvalidPayload(t *testing.T) {
	handler := AuthRegister(stubRegisterService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader([]byte(`{"username":"x"}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestAuthLoginSuccess(t *testing.T) {
	svc := &stubAuthService{login: &auth.LoginResponse{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		UserID:       uuid.New(),
		Username:     "freshman",
		CreditScore:  100,
	}}
	handler := AuthLogin(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader([]byte(`{"username":"freshman","password":"longenough1"}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	var envelope struct {
		Data auth.LoginResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.AccessToken != "access-token" {
		t.Fatalf("expected token pair in payload got %+v", envelope.Data)
	}
}

func TestAuthLoginBadCredentials(t *testing.T) {
	svc := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid username or password")}
	handler := AuthLogin(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader([]byte(`{"username":"freshman","password":"wrong-password"}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestAuthLoginServiceMissing(t *testing.T) {
	handler := AuthLogin(nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader([]byte(`{"username":"freshman","password":"longenough1"}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rec.Code)
	}
}
