package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"eventrsvp/internal/domain"
)

// mockRegistrationService implements domain.RegistrationService.
type mockRegistrationService struct {
	registerResult *domain.RegisterResult
	registerErr    error
	registerCalls  int
	resendResult   *domain.ResendResult
	resendErr      error
	listResult     []*domain.Registration
	listErr        error
	source         string
}

func (m *mockRegistrationService) Register(ctx context.Context, input domain.RegisterInput) (*domain.RegisterResult, error) {
	m.registerCalls++
	if m.registerErr != nil {
		return nil, m.registerErr
	}
	return m.registerResult, nil
}

func (m *mockRegistrationService) Resend(ctx context.Context, name, email string) (*domain.ResendResult, error) {
	if m.resendErr != nil {
		return nil, m.resendErr
	}
	return m.resendResult, nil
}

func (m *mockRegistrationService) ListRegistrations(ctx context.Context) ([]*domain.Registration, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.listResult, nil
}

func (m *mockRegistrationService) StoreSource() string {
	if m.source != "" {
		return m.source
	}
	return "file"
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func postJSON(t *testing.T, handler http.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestRegistrationController_Register_Success(t *testing.T) {
	svc := &mockRegistrationService{
		registerResult: &domain.RegisterResult{
			Registration: &domain.Registration{ID: "reg-1", Name: "Ada", Email: "ada@x.com"},
			ICSBase64:    "QkVHSU46VkNBTEVOREFS",
			Delivery:     &domain.DeliveryResult{Sent: true, Provider: "ses"},
		},
	}
	ctrl := NewRegistrationController(testLogger(), svc)

	w := postJSON(t, ctrl.Register, "/register", `{"name":"Ada","email":"ada@x.com"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, w.Code)
	}
	var resp RegisterResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if !resp.Success || !resp.EmailSent {
		t.Errorf("expected success and emailSent, got %+v", resp)
	}
	if resp.ICSBase64 == "" {
		t.Error("expected icsBase64 in response")
	}
	if resp.Stored == nil || resp.Stored.ID != "reg-1" {
		t.Errorf("expected stored record, got %+v", resp.Stored)
	}
}

func TestRegistrationController_Register_MissingFields(t *testing.T) {
	svc := &mockRegistrationService{}
	ctrl := NewRegistrationController(testLogger(), svc)

	w := postJSON(t, ctrl.Register, "/register", `{"email":"a@b.com"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
	if svc.registerCalls != 0 {
		t.Error("expected no service call for an invalid request")
	}
	if !strings.Contains(w.Body.String(), "Missing name or email") {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}

func TestRegistrationController_Register_Duplicate(t *testing.T) {
	svc := &mockRegistrationService{registerErr: domain.ErrDuplicateEmail}
	ctrl := NewRegistrationController(testLogger(), svc)

	w := postJSON(t, ctrl.Register, "/register", `{"name":"Ada","email":"ada@x.com"}`)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected status %d, got %d", http.StatusConflict, w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if body["duplicate"] != true {
		t.Errorf("expected duplicate:true, got %v", body)
	}
}

func TestRegistrationController_Register_StorageFailure(t *testing.T) {
	svc := &mockRegistrationService{registerErr: domain.ErrStorageUnavailable}
	ctrl := NewRegistrationController(testLogger(), svc)

	w := postJSON(t, ctrl.Register, "/register", `{"name":"Ada","email":"ada@x.com"}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if body["success"] != false {
		t.Errorf("expected success:false, got %v", body)
	}
}

func TestRegistrationController_Register_EmailFailureStillSucceeds(t *testing.T) {
	svc := &mockRegistrationService{
		registerResult: &domain.RegisterResult{
			Registration: &domain.Registration{ID: "reg-1"},
			ICSBase64:    "QkVHSU46VkNBTEVOREFS",
			Delivery: &domain.DeliveryResult{
				Sent:      false,
				SendError: "Email provider not configured. Registration saved but no email sent.",
			},
		},
	}
	ctrl := NewRegistrationController(testLogger(), svc)

	w := postJSON(t, ctrl.Register, "/register", `{"name":"Ada","email":"ada@x.com"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, w.Code)
	}
	var resp RegisterResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if !resp.Success || resp.EmailSent {
		t.Errorf("expected success with emailSent:false, got %+v", resp)
	}
	if resp.SendError == "" {
		t.Error("expected a non-empty sendError explanation")
	}
}

func TestRegistrationController_Register_BadJSON(t *testing.T) {
	ctrl := NewRegistrationController(testLogger(), &mockRegistrationService{})

	w := postJSON(t, ctrl.Register, "/register", `{not json`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}
