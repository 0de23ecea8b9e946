package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/domain"
	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/ports"
)

// DefaultSettleDelay is how long the listener waits after a sign-in or token
// refresh before fetching profile and role. The delay keeps the secondary
// fetch out of the backend's own token-refresh bookkeeping and coalesces
// bursts of refresh events.
const DefaultSettleDelay = 500 * time.Millisecond

// Listener reconciles auth feed events into the store.
//
// SIGNED_OUT clears immediately. SIGNED_IN and TOKEN_REFRESHED install the
// identity immediately and schedule a delayed profile/role fetch guarded by
// the store's generation counter, so a later transition silently drops it.
// INITIAL_SESSION is ignored: the Bootstrapper owns the first snapshot, and
// processing both would race.
type Listener struct {
	store   *Store
	backend ports.AuthBackend
	feed    ports.AuthFeed
	settle  time.Duration
	log     zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	unsub  ports.Unsubscriber
	timers map[*time.Timer]struct{}

	closeOnce sync.Once
}

// NewListener builds a Listener. A settle of 0 selects DefaultSettleDelay.
func NewListener(store *Store, backend ports.AuthBackend, feed ports.AuthFeed, settle time.Duration, log zerolog.Logger) *Listener {
	if settle <= 0 {
		settle = DefaultSettleDelay
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Listener{
		store:   store,
		backend: backend,
		feed:    feed,
		settle:  settle,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
		timers:  make(map[*time.Timer]struct{}),
	}
}

// Start subscribes to the feed. Call at most once.
func (l *Listener) Start() error {
	unsub, err := l.feed.Subscribe(l.handle)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.unsub = unsub
	l.mu.Unlock()
	return nil
}

// Close unsubscribes, cancels pending delayed fetches and suppresses any
// further store writes. Safe to call more than once.
func (l *Listener) Close() {
	l.closeOnce.Do(func() {
		l.cancel()
		l.mu.Lock()
		unsub := l.unsub
		l.unsub = nil
		for t := range l.timers {
			t.Stop()
		}
		l.timers = make(map[*time.Timer]struct{})
		l.mu.Unlock()
		if unsub != nil {
			unsub.Unsubscribe()
		}
	})
}

func (l *Listener) handle(event domain.AuthEvent, sess *domain.Session) {
	if l.ctx.Err() != nil {
		return
	}

	switch event {
	case domain.AuthSignedOut:
		l.store.Clear()
		return

	case domain.AuthInitialSession:
		return

	case domain.AuthSignedIn, domain.AuthTokenRefreshed:
		if sess == nil || sess.User == nil {
			return
		}
		l.store.SetAuthData(sess, sess.User)
		// Feed sessions arrive with tokens redacted, so expiry is the only
		// usable liveness signal here.
		if !sess.ExpiresAt.IsZero() && !sess.ExpiresAt.After(time.Now()) {
			return
		}
		l.scheduleDetailFetch(l.store.Generation(), sess.User.ID)

	default:
		// Unknown events are not ours to interpret.
	}
}

func (l *Listener) scheduleDetailFetch(gen uint64, userID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ctx.Err() != nil {
		return
	}

	var timer *time.Timer
	timer = time.AfterFunc(l.settle, func() {
		l.mu.Lock()
		delete(l.timers, timer)
		l.mu.Unlock()
		l.fetchDetails(gen, userID)
	})
	l.timers[timer] = struct{}{}
}

// fetchDetails runs after the settle delay. It re-checks liveness and the
// generation before every write; a transient failure is logged and swallowed,
// never clearing an already-valid session.
func (l *Listener) fetchDetails(gen uint64, userID string) {
	if l.ctx.Err() != nil {
		return
	}
	if l.store.Generation() != gen {
		return
	}

	profile, role, err := fetchDetails(l.ctx, l.backend, userID)
	if err != nil {
		l.log.Warn().Err(err).Str("user_id", userID).Msg("profile/role fetch failed after auth event")
		return
	}
	if l.ctx.Err() != nil {
		return
	}
	if !l.store.SetDetails(gen, profile, role) {
		l.log.Debug().Str("user_id", userID).Msg("detail fetch superseded by newer auth transition")
	}
}
