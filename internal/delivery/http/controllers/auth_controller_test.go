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

	"conferencehub/internal/delivery/http/helpers"
	"conferencehub/internal/domain"
)

type mockAuthService struct {
	user  *domain.User
	token string
	err   error
}

func (m *mockAuthService) SignUp(ctx context.Context, email, password string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if m.err != nil {
		return "", nil, m.err
	}
	return m.token, m.user, nil
}

func (m *mockAuthService) LoginWithGitHub(ctx context.Context, code string) (string, *domain.User, error) {
	if m.err != nil {
		return "", nil, m.err
	}
	return m.token, m.user, nil
}

func newAuthController(svc domain.AuthService) *AuthController {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewAuthController(logger, svc)
}

func TestAuthController_SignUp(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		svc        *mockAuthService
		wantStatus int
	}{
		{
			name:       "created",
			body:       `{"email":"ana@example.com","password":"longenough"}`,
			svc:        &mockAuthService{user: &domain.User{ID: "u1", Email: "ana@example.com"}},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "invalid email",
			body:       `{"email":"nope","password":"longenough"}`,
			svc:        &mockAuthService{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "short password",
			body:       `{"email":"ana@example.com","password":"short"}`,
			svc:        &mockAuthService{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "duplicate email",
			body:       `{"email":"ana@example.com","password":"longenough"}`,
			svc:        &mockAuthService{err: domain.ErrDuplicateEmail},
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := newAuthController(tt.svc)

			req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			ctrl.SignUp(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestAuthController_Login(t *testing.T) {
	t.Run("success returns token and user", func(t *testing.T) {
		ctrl := newAuthController(&mockAuthService{
			token: "jwt-token",
			user:  &domain.User{ID: "u1", Email: "ana@example.com"},
		})

		body := strings.NewReader(`{"email":"ana@example.com","password":"longenough"}`)
		w := httptest.NewRecorder()
		ctrl.Login(w, httptest.NewRequest(http.MethodPost, "/auth/login", body))

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
		}
		var resp struct {
			Data LoginResponse `json:"data"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
		if resp.Data.Token != "jwt-token" || resp.Data.TokenType != "Bearer" {
			t.Fatalf("unexpected login response: %+v", resp.Data)
		}
	})

	t.Run("invalid credentials", func(t *testing.T) {
		ctrl := newAuthController(&mockAuthService{err: domain.ErrInvalidCredentials})

		body := strings.NewReader(`{"email":"ana@example.com","password":"wrongpass"}`)
		w := httptest.NewRecorder()
		ctrl.Login(w, httptest.NewRequest(http.MethodPost, "/auth/login", body))

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
		}
		var resp helpers.APIResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
		if resp.Error == nil || resp.Error.Code != helpers.ErrCodeUnauthorized {
			t.Fatalf("expected unauthorized error, got %+v", resp.Error)
		}
	})
}

func TestAuthController_LoginWithGitHub(t *testing.T) {
	t.Run("missing code", func(t *testing.T) {
		ctrl := newAuthController(&mockAuthService{})

		body := strings.NewReader(`{"code":""}`)
		w := httptest.NewRecorder()
		ctrl.LoginWithGitHub(w, httptest.NewRequest(http.MethodPost, "/auth/github", body))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	})

	t.Run("authorization failure", func(t *testing.T) {
		ctrl := newAuthController(&mockAuthService{err: domain.ErrInvalidCredentials})

		body := strings.NewReader(`{"code":"bad-code"}`)
		w := httptest.NewRecorder()
		ctrl.LoginWithGitHub(w, httptest.NewRequest(http.MethodPost, "/auth/github", body))

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
		}
	})
}
