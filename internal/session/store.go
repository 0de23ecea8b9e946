// Package session implements the session synchronization layer: a single
// authoritative store of "who is signed in", populated once by a Bootstrapper
// and kept current by a Listener on the auth event feed.
package session

import (
	"sync"

	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/domain"
)

// State is a consistent snapshot of the store. User and Session are always
// both set or both nil.
type State struct {
	User       *domain.User
	Session    *domain.Session
	Profile    *domain.Profile
	Role       string
	Loading    bool
	Generation uint64
}

// Authenticated reports whether the snapshot carries a signed-in identity.
func (s State) Authenticated() bool {
	return s.User != nil && s.Session != nil
}

// Store holds the current identity. It performs no I/O; all mutation goes
// through its setters, and SetAuthData/Clear are single atomic transitions.
//
// Every identity transition bumps a generation counter. Asynchronous
// continuations capture the generation at schedule time and are dropped when
// it no longer matches, which is what suppresses stale delayed writes.
type Store struct {
	mu         sync.RWMutex
	user       *domain.User
	session    *domain.Session
	profile    *domain.Profile
	role       string
	loading    bool
	generation uint64
}

// NewStore returns a store in the loading state with no identity.
func NewStore() *Store {
	return &Store{loading: true}
}

// Snapshot returns a consistent copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		User:       s.user,
		Session:    s.session,
		Profile:    s.profile,
		Role:       s.role,
		Loading:    s.loading,
		Generation: s.generation,
	}
}

// Generation returns the current transition counter.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// SetAuthData installs session and user together. Both must be non-nil: a
// half-updated identity must never be observable.
func (s *Store) SetAuthData(sess *domain.Session, user *domain.User) {
	if sess == nil || user == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = sess
	s.user = user
	s.generation++
}

// Clear nulls user, session, profile and role in one transition.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.session = nil
	s.profile = nil
	s.role = ""
	s.generation++
}

// SetProfile replaces the profile. A nil profile means "none created yet".
func (s *Store) SetProfile(p *domain.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
}

// SetRole replaces the role.
func (s *Store) SetRole(role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.role = role
}

// SetLoading flips the loading flag.
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

// SetDetails installs profile and role only when gen still matches the
// current generation, i.e. no identity transition happened since the caller
// captured it. Returns false when the write was dropped as stale.
func (s *Store) SetDetails(gen uint64, profile *domain.Profile, role string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return false
	}
	s.profile = profile
	s.role = role
	return true
}
