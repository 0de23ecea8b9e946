package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/domain"
	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/ports"
)

// TokenStore abstracts the refresh-token and revocation store (Redis).
type TokenStore interface {
	SaveRefresh(ctx context.Context, token, userID string, ttl time.Duration) error
	// LookupRefresh resolves a refresh token to its user id, or returns
	// domain.ErrSessionExpired when unknown.
	LookupRefresh(ctx context.Context, token string) (string, error)
	DeleteRefreshByUser(ctx context.Context, userID string) error
	Revoke(ctx context.Context, accessToken string, until time.Time) error
	IsRevoked(ctx context.Context, accessToken string) (bool, error)
}

// AuthService implements ports.AuthBackend: registration, login, session
// resolution, profile and role access. Every identity transition is published
// to the auth feed so session caches across instances stay in sync.
type AuthService struct {
	users      ports.UserRepository
	profiles   ports.ProfileRepository
	tokens     TokenStore
	publisher  ports.AuthPublisher
	jwtSecret  string
	accessTTL  time.Duration
	refreshTTL time.Duration
	log        zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	profiles ports.ProfileRepository,
	tokens TokenStore,
	publisher ports.AuthPublisher,
	jwtSecret string,
	accessTTL, refreshTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 30 * 24 * time.Hour
	}
	return &AuthService{
		users:      users,
		profiles:   profiles,
		tokens:     tokens,
		publisher:  publisher,
		jwtSecret:  jwtSecret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		log:        log,
	}
}

func (s *AuthService) SignUp(ctx context.Context, input ports.SignUpInput) (*ports.AuthResult, error) {
	if input.Email == "" || input.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Email:        input.Email,
		PasswordHash: string(hash),
		FullName:     input.FullName,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.CleanupLocalArtifacts(ctx, created.ID); err != nil {
		s.log.Warn().Err(err).Str("user_id", created.ID).Msg("auth artifact cleanup failed")
	}

	result, err := s.issueSession(ctx, created)
	if err != nil {
		return nil, err
	}
	s.publish(domain.AuthSignedIn, result.Session)
	s.log.Info().Str("user_id", created.ID).Msg("user signed up")
	return result, nil
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.CleanupLocalArtifacts(ctx, user.ID); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("auth artifact cleanup failed")
	}

	result, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}
	s.publish(domain.AuthSignedIn, result.Session)
	s.log.Info().Str("user_id", user.ID).Msg("user signed in")
	return result, nil
}

func (s *AuthService) SignOut(ctx context.Context, accessToken string) error {
	claims, err := s.parseToken(accessToken)
	if err != nil {
		// An unusable token still means "signed out" to the caller.
		s.log.Debug().Err(err).Msg("sign-out with unparsable token")
		return nil
	}
	userID, _ := claims["sub"].(string)

	if err := s.CleanupLocalArtifacts(ctx, userID); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("auth artifact cleanup failed")
	}

	until := time.Now().Add(s.accessTTL)
	if exp, perr := claims.GetExpirationTime(); perr == nil && exp != nil {
		until = exp.Time
	}
	if err := s.tokens.Revoke(ctx, accessToken, until); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("access token revocation failed")
	}

	s.publish(domain.AuthSignedOut, &domain.Session{UserID: userID})
	s.log.Info().Str("user_id", userID).Msg("user signed out")
	return nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*ports.AuthResult, error) {
	if refreshToken == "" {
		return nil, domain.ErrSessionExpired
	}

	userID, err := s.tokens.LookupRefresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Rotation: the old refresh token family is dropped before reissue.
	if err := s.tokens.DeleteRefreshByUser(ctx, userID); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("refresh token rotation cleanup failed")
	}

	result, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}
	s.publish(domain.AuthTokenRefreshed, result.Session)
	return result, nil
}

func (s *AuthService) GetCurrentSession(ctx context.Context, accessToken string) (*domain.Session, *domain.User, error) {
	if accessToken == "" {
		return nil, nil, nil
	}

	claims, err := s.parseToken(accessToken)
	if err != nil {
		// An expired or malformed token is "not signed in", not a failure.
		return nil, nil, nil
	}

	revoked, err := s.tokens.IsRevoked(ctx, accessToken)
	if err != nil {
		return nil, nil, fmt.Errorf("revocation check: %w", err)
	}
	if revoked {
		return nil, nil, nil
	}

	userID, _ := claims["sub"].(string)
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	expiresAt := time.Now().Add(s.accessTTL)
	if exp, perr := claims.GetExpirationTime(); perr == nil && exp != nil {
		expiresAt = exp.Time
	}
	sess := &domain.Session{
		AccessToken: accessToken,
		UserID:      user.ID,
		ExpiresAt:   expiresAt,
		User:        user,
	}
	return sess, user, nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	return s.profiles.FindByUserID(ctx, userID)
}

// GetRole reads the role from the user record, never from profile data.
func (s *AuthService) GetRole(ctx context.Context, userID string) (string, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, patch domain.ProfilePatch) error {
	if userID == "" {
		return domain.ErrUserNotFound
	}
	return s.profiles.Upsert(ctx, userID, patch)
}

// CleanupLocalArtifacts drops stale refresh tokens for the user. An empty
// user id (identity unknown at the call site) is accepted and is a no-op.
func (s *AuthService) CleanupLocalArtifacts(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	return s.tokens.DeleteRefreshByUser(ctx, userID)
}

func (s *AuthService) issueSession(ctx context.Context, user *domain.User) (*ports.AuthResult, error) {
	expiresAt := time.Now().Add(s.accessTTL)
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  user.Role,
		"exp":   expiresAt.Unix(),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, err
	}

	refresh := newRefreshToken()
	if err := s.tokens.SaveRefresh(ctx, refresh, user.ID, s.refreshTTL); err != nil {
		return nil, fmt.Errorf("save refresh token: %w", err)
	}

	sess := &domain.Session{
		AccessToken:  access,
		RefreshToken: refresh,
		UserID:       user.ID,
		ExpiresAt:    expiresAt,
		User:         user,
	}
	return &ports.AuthResult{Session: sess, User: user}, nil
}

func (s *AuthService) parseToken(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// publish is best effort: a feed outage must not fail the auth operation.
func (s *AuthService) publish(event domain.AuthEvent, sess *domain.Session) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(event, sess); err != nil {
		s.log.Warn().Err(err).Str("event", string(event)).Msg("auth event publish failed")
	}
}

func newRefreshToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// fallback: use current nanoseconds
		return fmt.Sprintf("rt_%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
