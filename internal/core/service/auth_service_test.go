package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/domain"
	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/ports"
)

type stubUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
	seq   int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	copy := cloneUser(user)
	if copy.ID == "" {
		r.seq++
		copy.ID = fmt.Sprintf("user_%d", r.seq)
	}
	r.users[copy.ID] = cloneUser(copy)
	return cloneUser(copy), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

type stubProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*domain.Profile
}

func newStubProfileRepo() *stubProfileRepo {
	return &stubProfileRepo{profiles: make(map[string]*domain.Profile)}
}

func (r *stubProfileRepo) FindByUserID(_ context.Context, userID string) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, nil
	}
	clone := *p
	return &clone, nil
}

func (r *stubProfileRepo) Upsert(_ context.Context, userID string, patch domain.ProfilePatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		p = &domain.Profile{ID: userID, CreatedAt: time.Now()}
		r.profiles[userID] = p
	}
	patch.Apply(p)
	p.UpdatedAt = time.Now()
	return nil
}

type stubTokenStore struct {
	mu       sync.Mutex
	refresh  map[string]string
	revoked  map[string]bool
	saveErr  error
	revokeOk int
}

func newStubTokenStore() *stubTokenStore {
	return &stubTokenStore{refresh: make(map[string]string), revoked: make(map[string]bool)}
}

func (t *stubTokenStore) SaveRefresh(_ context.Context, token, userID string, _ time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.saveErr != nil {
		return t.saveErr
	}
	t.refresh[token] = userID
	return nil
}

func (t *stubTokenStore) LookupRefresh(_ context.Context, token string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	userID, ok := t.refresh[token]
	if !ok {
		return "", domain.ErrSessionExpired
	}
	return userID, nil
}

func (t *stubTokenStore) DeleteRefreshByUser(_ context.Context, userID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for tok, uid := range t.refresh {
		if uid == userID {
			delete(t.refresh, tok)
		}
	}
	return nil
}

func (t *stubTokenStore) Revoke(_ context.Context, accessToken string, _ time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.revoked[accessToken] = true
	t.revokeOk++
	return nil
}

func (t *stubTokenStore) IsRevoked(_ context.Context, accessToken string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.revoked[accessToken], nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.AuthEvent
	last   *domain.Session
}

func (p *recordingPublisher) Publish(event domain.AuthEvent, sess *domain.Session) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	p.last = sess
	return nil
}

func (p *recordingPublisher) published() []domain.AuthEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.AuthEvent(nil), p.events...)
}

func newTestAuthService(t *testing.T) (*AuthService, *stubUserRepo, *stubTokenStore, *recordingPublisher) {
	t.Helper()
	users := newStubUserRepo()
	tokens := newStubTokenStore()
	pub := &recordingPublisher{}
	svc := NewAuthService(users, newStubProfileRepo(), tokens, pub, "secret", time.Hour, 24*time.Hour, zerolog.Nop())
	return svc, users, tokens, pub
}

func TestAuthService_SignUp_Success(t *testing.T) {
	svc, _, _, pub := newTestAuthService(t)

	result, err := svc.SignUp(context.Background(), ports.SignUpInput{
		Email:    "alice@example.com",
		Password: "pass1234",
		FullName: "Alice",
	})
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}
	if result.User == nil || result.Session == nil {
		t.Fatalf("expected user and session, got %+v", result)
	}
	if result.User.PasswordHash == "pass1234" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(result.User.PasswordHash), []byte("pass1234")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if result.User.Role != domain.RoleUser {
		t.Fatalf("expected default role %q, got %q", domain.RoleUser, result.User.Role)
	}
	if result.Session.RefreshToken == "" {
		t.Fatalf("expected a refresh token")
	}
	if events := pub.published(); len(events) != 1 || events[0] != domain.AuthSignedIn {
		t.Fatalf("expected one SIGNED_IN event, got %v", events)
	}
}

func TestAuthService_SignUp_Validation(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)

	if _, err := svc.SignUp(context.Background(), ports.SignUpInput{Email: "", Password: "pass"}); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.SignUp(context.Background(), ports.SignUpInput{Email: "a@b.c", Password: ""}); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_SignUp_Duplicate(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)

	in := ports.SignUpInput{Email: "bob@example.com", Password: "pass1234"}
	if _, err := svc.SignUp(context.Background(), in); err != nil {
		t.Fatalf("first SignUp failed: %v", err)
	}
	if _, err := svc.SignUp(context.Background(), in); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_SignIn_Success(t *testing.T) {
	svc, _, _, pub := newTestAuthService(t)

	if _, err := svc.SignUp(context.Background(), ports.SignUpInput{Email: "carol@example.com", Password: "s3cret99"}); err != nil {
		t.Fatalf("sign up failed: %v", err)
	}

	result, err := svc.SignIn(context.Background(), "carol@example.com", "s3cret99")
	if err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}
	if result.Session.AccessToken == "" {
		t.Fatalf("expected access token")
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(result.Session.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["sub"] != result.User.ID {
		t.Fatalf("expected sub %q, got %v", result.User.ID, claims["sub"])
	}
	if claims["role"] != domain.RoleUser {
		t.Fatalf("expected role %q, got %v", domain.RoleUser, claims["role"])
	}

	events := pub.published()
	if len(events) != 2 || events[1] != domain.AuthSignedIn {
		t.Fatalf("expected SIGNED_IN after sign-in, got %v", events)
	}
}

func TestAuthService_SignIn_InvalidPassword(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)

	_, _ = svc.SignUp(context.Background(), ports.SignUpInput{Email: "dave@example.com", Password: "goodpass"})
	if _, err := svc.SignIn(context.Background(), "dave@example.com", "badpass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_SignIn_UserNotFound(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)

	if _, err := svc.SignIn(context.Background(), "ghost@example.com", "pass1234"); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthService_SignOut_RevokesAndPublishes(t *testing.T) {
	svc, _, tokens, pub := newTestAuthService(t)

	result, err := svc.SignUp(context.Background(), ports.SignUpInput{Email: "erin@example.com", Password: "pass1234"})
	if err != nil {
		t.Fatalf("sign up failed: %v", err)
	}

	if err := svc.SignOut(context.Background(), result.Session.AccessToken); err != nil {
		t.Fatalf("SignOut returned error: %v", err)
	}

	revoked, _ := tokens.IsRevoked(context.Background(), result.Session.AccessToken)
	if !revoked {
		t.Fatalf("expected access token to be revoked")
	}
	if _, err := tokens.LookupRefresh(context.Background(), result.Session.RefreshToken); err != domain.ErrSessionExpired {
		t.Fatalf("expected refresh token to be scrubbed, got %v", err)
	}

	events := pub.published()
	if len(events) == 0 || events[len(events)-1] != domain.AuthSignedOut {
		t.Fatalf("expected SIGNED_OUT event, got %v", events)
	}
}

func TestAuthService_SignOut_UnparsableTokenIsNoError(t *testing.T) {
	svc, _, _, pub := newTestAuthService(t)

	if err := svc.SignOut(context.Background(), "garbage"); err != nil {
		t.Fatalf("sign-out with unusable token must succeed, got %v", err)
	}
	if events := pub.published(); len(events) != 0 {
		t.Fatalf("expected no events for unusable token, got %v", events)
	}
}

func TestAuthService_Refresh_RotatesToken(t *testing.T) {
	svc, _, tokens, pub := newTestAuthService(t)

	signedUp, err := svc.SignUp(context.Background(), ports.SignUpInput{Email: "faye@example.com", Password: "pass1234"})
	if err != nil {
		t.Fatalf("sign up failed: %v", err)
	}
	oldRefresh := signedUp.Session.RefreshToken

	refreshed, err := svc.Refresh(context.Background(), oldRefresh)
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if refreshed.Session.RefreshToken == oldRefresh {
		t.Fatalf("expected refresh token rotation")
	}
	if _, err := tokens.LookupRefresh(context.Background(), oldRefresh); err != domain.ErrSessionExpired {
		t.Fatalf("old refresh token must be invalid after rotation, got %v", err)
	}
	if _, err := svc.Refresh(context.Background(), oldRefresh); err != domain.ErrSessionExpired {
		t.Fatalf("expected ErrSessionExpired for rotated token, got %v", err)
	}

	events := pub.published()
	if events[len(events)-1] != domain.AuthTokenRefreshed {
		t.Fatalf("expected TOKEN_REFRESHED event, got %v", events)
	}
}

func TestAuthService_Refresh_UnknownToken(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)

	if _, err := svc.Refresh(context.Background(), "unknown"); err != domain.ErrSessionExpired {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if _, err := svc.Refresh(context.Background(), ""); err != domain.ErrSessionExpired {
		t.Fatalf("expected ErrSessionExpired for empty token, got %v", err)
	}
}

func TestAuthService_GetCurrentSession(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)

	result, err := svc.SignUp(context.Background(), ports.SignUpInput{Email: "gina@example.com", Password: "pass1234"})
	if err != nil {
		t.Fatalf("sign up failed: %v", err)
	}

	sess, user, err := svc.GetCurrentSession(context.Background(), result.Session.AccessToken)
	if err != nil {
		t.Fatalf("GetCurrentSession returned error: %v", err)
	}
	if sess == nil || user == nil {
		t.Fatalf("expected session and user")
	}
	if user.ID != result.User.ID {
		t.Fatalf("expected user %q, got %q", result.User.ID, user.ID)
	}
	if !sess.Valid() {
		t.Fatalf("expected a valid session")
	}

	// No token means "not signed in", not an error.
	sess, user, err = svc.GetCurrentSession(context.Background(), "")
	if sess != nil || user != nil || err != nil {
		t.Fatalf("expected nil/nil/nil for empty token, got %v %v %v", sess, user, err)
	}

	// A malformed token is also "not signed in".
	sess, user, err = svc.GetCurrentSession(context.Background(), "not-a-jwt")
	if sess != nil || user != nil || err != nil {
		t.Fatalf("expected nil/nil/nil for malformed token, got %v %v %v", sess, user, err)
	}
}

func TestAuthService_GetCurrentSession_RevokedToken(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)

	result, err := svc.SignUp(context.Background(), ports.SignUpInput{Email: "hank@example.com", Password: "pass1234"})
	if err != nil {
		t.Fatalf("sign up failed: %v", err)
	}
	if err := svc.SignOut(context.Background(), result.Session.AccessToken); err != nil {
		t.Fatalf("sign out failed: %v", err)
	}

	sess, user, err := svc.GetCurrentSession(context.Background(), result.Session.AccessToken)
	if sess != nil || user != nil || err != nil {
		t.Fatalf("revoked token must resolve to signed out, got %v %v %v", sess, user, err)
	}
}

func TestAuthService_GetRole_FromUserRecord(t *testing.T) {
	svc, users, _, _ := newTestAuthService(t)

	created, err := users.Create(context.Background(), &domain.User{Email: "iris@example.com", Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("seed user failed: %v", err)
	}

	role, err := svc.GetRole(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetRole returned error: %v", err)
	}
	if role != domain.RoleAdmin {
		t.Fatalf("expected role %q, got %q", domain.RoleAdmin, role)
	}

	if _, err := svc.GetRole(context.Background(), "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthService_CleanupLocalArtifacts_EmptyUserIsNoop(t *testing.T) {
	svc, _, tokens, _ := newTestAuthService(t)

	_ = tokens.SaveRefresh(context.Background(), "tok1", "u1", time.Hour)
	if err := svc.CleanupLocalArtifacts(context.Background(), ""); err != nil {
		t.Fatalf("empty user cleanup must be a no-op, got %v", err)
	}
	if _, err := tokens.LookupRefresh(context.Background(), "tok1"); err != nil {
		t.Fatalf("no-op cleanup must not touch other users' tokens: %v", err)
	}

	if err := svc.CleanupLocalArtifacts(context.Background(), "u1"); err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if _, err := tokens.LookupRefresh(context.Background(), "tok1"); err != domain.ErrSessionExpired {
		t.Fatalf("expected token scrubbed, got %v", err)
	}
}
