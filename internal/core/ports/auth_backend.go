package ports

import (
	"context"

	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/domain"
)

// SignUpInput carries all data needed to register a new account.
type SignUpInput struct {
	Email    string
	Password string
	FullName string
}

// AuthResult is returned by identity mutations that establish a session.
type AuthResult struct {
	Session *domain.Session
	User    *domain.User
}

// AuthBackend is the identity collaborator contract. All failures are returned
// as values; no call panics or throws across the boundary.
type AuthBackend interface {
	// GetCurrentSession resolves the session behind an access token. A nil
	// session with a nil error means "not signed in", which is not a failure.
	GetCurrentSession(ctx context.Context, accessToken string) (*domain.Session, *domain.User, error)

	SignUp(ctx context.Context, input SignUpInput) (*AuthResult, error)
	SignIn(ctx context.Context, email, password string) (*AuthResult, error)
	// SignOut revokes the session and scrubs stale local auth artifacts.
	SignOut(ctx context.Context, accessToken string) error
	// Refresh exchanges a refresh token for a new session.
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)

	// GetProfile returns the user's profile, or nil when none exists yet.
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	// GetRole returns the authoritative role for the user. Roles are never
	// inferred from profile data.
	GetRole(ctx context.Context, userID string) (string, error)
	// UpdateProfile applies a partial update; the caller merges the patch into
	// its local copy on success rather than refetching.
	UpdateProfile(ctx context.Context, userID string, patch domain.ProfilePatch) error

	// CleanupLocalArtifacts scrubs residual auth state (revoked tokens and the
	// like) for a user. Called before identity mutations and on fatal
	// session-acquisition failure.
	CleanupLocalArtifacts(ctx context.Context, userID string) error
}
