package domain

import (
	"errors"
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserExists = errors.New("user already exists")
var ErrUserNotFound = errors.New("user not found")
var ErrSessionExpired = errors.New("session expired")
var ErrForbidden = errors.New("access forbidden")
var ErrProfileNotFound = errors.New("profile not found")

// User models an authenticated actor in the system.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Session is the server-issued proof of an authenticated identity. It is
// replaced wholesale on every auth transition, never mutated in place.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	UserID       string    `json:"user_id"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         *User     `json:"user,omitempty"`
}

// Valid reports whether the session carries a usable access credential.
func (s *Session) Valid() bool {
	return s != nil && s.AccessToken != "" && time.Now().Before(s.ExpiresAt)
}

// Profile is the user-owned descriptive record, separate from identity.
// A missing profile is not an error: the user simply has not created one yet.
type Profile struct {
	ID           string    `json:"id"`
	FullName     string    `json:"full_name"`
	BusinessName string    `json:"business_name,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProfilePatch carries a partial profile update. Nil fields are left untouched;
// on success the caller merges the patch into its local copy rather than refetching.
type ProfilePatch struct {
	FullName     *string `json:"full_name,omitempty"`
	BusinessName *string `json:"business_name,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Address      *string `json:"address,omitempty"`
}

// Apply merges the patch into p.
func (patch ProfilePatch) Apply(p *Profile) {
	if patch.FullName != nil {
		p.FullName = *patch.FullName
	}
	if patch.BusinessName != nil {
		p.BusinessName = *patch.BusinessName
	}
	if patch.Phone != nil {
		p.Phone = *patch.Phone
	}
	if patch.Address != nil {
		p.Address = *patch.Address
	}
}
