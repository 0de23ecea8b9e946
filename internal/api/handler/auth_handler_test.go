package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/domain"
	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/ports"
)

type stubAuthBackend struct {
	signUpFn  func(ctx context.Context, input ports.SignUpInput) (*ports.AuthResult, error)
	signInFn  func(ctx context.Context, email, password string) (*ports.AuthResult, error)
	signOutFn func(ctx context.Context, accessToken string) error
	refreshFn func(ctx context.Context, refreshToken string) (*ports.AuthResult, error)
	sessionFn func(ctx context.Context, accessToken string) (*domain.Session, *domain.User, error)
	profileFn func(ctx context.Context, userID string) (*domain.Profile, error)
	updateFn  func(ctx context.Context, userID string, patch domain.ProfilePatch) error
}

func (s *stubAuthBackend) GetCurrentSession(ctx context.Context, accessToken string) (*domain.Session, *domain.User, error) {
	if s.sessionFn == nil {
		return nil, nil, nil
	}
	return s.sessionFn(ctx, accessToken)
}

func (s *stubAuthBackend) SignUp(ctx context.Context, input ports.SignUpInput) (*ports.AuthResult, error) {
	return s.signUpFn(ctx, input)
}

func (s *stubAuthBackend) SignIn(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.signInFn(ctx, email, password)
}

func (s *stubAuthBackend) SignOut(ctx context.Context, accessToken string) error {
	if s.signOutFn == nil {
		return nil
	}
	return s.signOutFn(ctx, accessToken)
}

func (s *stubAuthBackend) Refresh(ctx context.Context, refreshToken string) (*ports.AuthResult, error) {
	return s.refreshFn(ctx, refreshToken)
}

func (s *stubAuthBackend) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	if s.profileFn == nil {
		return nil, nil
	}
	return s.profileFn(ctx, userID)
}

func (s *stubAuthBackend) GetRole(context.Context, string) (string, error) {
	return domain.RoleUser, nil
}

func (s *stubAuthBackend) UpdateProfile(ctx context.Context, userID string, patch domain.ProfilePatch) error {
	if s.updateFn == nil {
		return nil
	}
	return s.updateFn(ctx, userID, patch)
}

func (s *stubAuthBackend) CleanupLocalArtifacts(context.Context, string) error { return nil }

func newTestContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func authResult(userID string) *ports.AuthResult {
	user := &domain.User{ID: userID, Email: userID + "@example.com", Role: domain.RoleUser}
	return &ports.AuthResult{
		User: user,
		Session: &domain.Session{
			AccessToken:  "access-" + userID,
			RefreshToken: "refresh-" + userID,
			UserID:       userID,
			ExpiresAt:    time.Now().Add(time.Hour),
			User:         user,
		},
	}
}

func TestAuthHandler_SignUp_Success(t *testing.T) {
	stub := &stubAuthBackend{
		signUpFn: func(_ context.Context, input ports.SignUpInput) (*ports.AuthResult, error) {
			if input.Email != "alice@example.com" || input.FullName != "Alice" {
				t.Fatalf("unexpected input: %+v", input)
			}
			return authResult("u1"), nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/auth/signup",
		`{"email":"alice@example.com","password":"pass1234","full_name":"Alice"}`)
	if err := h.SignUp(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	session, ok := resp["session"].(map[string]any)
	if !ok || session["access_token"] != "access-u1" {
		t.Fatalf("unexpected session payload: %+v", resp)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["email"] != "alice@example.com" {
		t.Fatalf("unexpected user payload: %+v", resp)
	}
}

func TestAuthHandler_SignUp_ShortPassword(t *testing.T) {
	stub := &stubAuthBackend{
		signUpFn: func(context.Context, ports.SignUpInput) (*ports.AuthResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/auth/signup",
		`{"email":"a@b.c","password":"short","full_name":"A"}`)
	err := h.SignUp(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 validation error, got %v", err)
	}
}

func TestAuthHandler_SignUp_DuplicatePropagates(t *testing.T) {
	stub := &stubAuthBackend{
		signUpFn: func(context.Context, ports.SignUpInput) (*ports.AuthResult, error) {
			return nil, domain.ErrUserExists
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/auth/signup",
		`{"email":"bob@example.com","password":"pass1234","full_name":"Bob"}`)
	if err := h.SignUp(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists to propagate, got %v", err)
	}
}

func TestAuthHandler_SignIn_Success(t *testing.T) {
	stub := &stubAuthBackend{
		signInFn: func(_ context.Context, email, password string) (*ports.AuthResult, error) {
			if email != "alice@example.com" || password != "pass1234" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return authResult("u1"), nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/auth/signin",
		`{"email":"alice@example.com","password":"pass1234"}`)
	if err := h.SignIn(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_SignIn_InvalidCredentialsPropagate(t *testing.T) {
	stub := &stubAuthBackend{
		signInFn: func(context.Context, string, string) (*ports.AuthResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/auth/signin",
		`{"email":"alice@example.com","password":"wrongpass"}`)
	if err := h.SignIn(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials to propagate, got %v", err)
	}
}

func TestAuthHandler_SignIn_InvalidPayload(t *testing.T) {
	h := NewAuthHandler(&stubAuthBackend{})

	c, _ := newTestContext(t, http.MethodPost, "/auth/signin", "{")
	err := h.SignIn(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 bind error, got %v", err)
	}
}

func TestAuthHandler_SignOut(t *testing.T) {
	var gotToken string
	stub := &stubAuthBackend{
		signOutFn: func(_ context.Context, accessToken string) error {
			gotToken = accessToken
			return nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/auth/signout", "")
	c.Set("access_token", "tok-123")
	if err := h.SignOut(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if gotToken != "tok-123" {
		t.Fatalf("expected bearer token forwarded, got %q", gotToken)
	}
}

func TestAuthHandler_Refresh_ExpiredPropagates(t *testing.T) {
	stub := &stubAuthBackend{
		refreshFn: func(context.Context, string) (*ports.AuthResult, error) {
			return nil, domain.ErrSessionExpired
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/auth/refresh", `{"refresh_token":"stale"}`)
	if err := h.Refresh(c); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired to propagate, got %v", err)
	}
}

func TestAuthHandler_Session_NotSignedIn(t *testing.T) {
	h := NewAuthHandler(&stubAuthBackend{})

	c, rec := newTestContext(t, http.MethodGet, "/auth/session", "")
	c.Set("access_token", "whatever")
	if err := h.Session(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if _, ok := resp["session"]; ok {
		t.Fatalf("expected empty envelope for signed-out caller, got %+v", resp)
	}
}

func TestAuthHandler_Session_SignedIn(t *testing.T) {
	result := authResult("u1")
	stub := &stubAuthBackend{
		sessionFn: func(_ context.Context, accessToken string) (*domain.Session, *domain.User, error) {
			if accessToken != result.Session.AccessToken {
				t.Fatalf("unexpected token %q", accessToken)
			}
			return result.Session, result.User, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newTestContext(t, http.MethodGet, "/auth/session", "")
	c.Set("access_token", result.Session.AccessToken)
	if err := h.Session(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["id"] != "u1" {
		t.Fatalf("unexpected user payload: %+v", resp)
	}
}
