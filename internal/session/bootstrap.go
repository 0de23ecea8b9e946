package session

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/domain"
	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/ports"
)

// Bootstrapper performs the one-shot initial session fetch on startup and
// settles the store into either an authenticated or a cleared state.
type Bootstrapper struct {
	backend ports.AuthBackend
	store   *Store
	log     zerolog.Logger
}

func NewBootstrapper(backend ports.AuthBackend, store *Store, log zerolog.Logger) *Bootstrapper {
	return &Bootstrapper{backend: backend, store: store, log: log}
}

// Run fetches the current session exactly once and writes the result into the
// store. Cancellation of ctx suppresses every store write issued after the
// fact; in-flight backend calls are not aborted, only their effects.
//
// A failed secondary profile/role fetch does not roll back the session: a
// user without a fully loaded profile is still authenticated. A failed
// session fetch is treated as "not signed in" after scrubbing local auth
// artifacts.
func (b *Bootstrapper) Run(ctx context.Context, accessToken string) {
	defer func() {
		if ctx.Err() == nil {
			b.store.SetLoading(false)
		}
	}()

	sess, user, err := b.backend.GetCurrentSession(ctx, accessToken)
	if err != nil {
		b.log.Warn().Err(err).Msg("session bootstrap failed, treating as signed out")
		if cleanupErr := b.backend.CleanupLocalArtifacts(ctx, ""); cleanupErr != nil {
			b.log.Warn().Err(cleanupErr).Msg("auth artifact cleanup failed")
		}
		if ctx.Err() == nil {
			b.store.Clear()
		}
		return
	}

	if sess == nil || user == nil {
		if ctx.Err() == nil {
			b.store.Clear()
		}
		return
	}

	if ctx.Err() != nil {
		return
	}
	b.store.SetAuthData(sess, user)
	gen := b.store.Generation()

	profile, role, err := fetchDetails(ctx, b.backend, user.ID)
	if err != nil {
		// Session stays valid; details load again on the next auth event.
		b.log.Warn().Err(err).Str("user_id", user.ID).Msg("profile/role fetch failed after bootstrap")
		return
	}
	if ctx.Err() != nil {
		return
	}
	if !b.store.SetDetails(gen, profile, role) {
		b.log.Debug().Str("user_id", user.ID).Msg("bootstrap details superseded by newer auth transition")
	}
}

// fetchDetails loads profile and role together. A missing profile is not an
// error; a role fetch failure is.
func fetchDetails(ctx context.Context, backend ports.AuthBackend, userID string) (profile *domain.Profile, role string, err error) {
	p, err := backend.GetProfile(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	r, err := backend.GetRole(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	return p, r, nil
}
