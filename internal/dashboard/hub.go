package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/domain"
	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/ports"
	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/realtime"
	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/session"
)

// Hub creates and caches workspaces keyed by user id. A SIGNED_OUT event on
// the auth feed closes the user's workspace so no stale cache outlives the
// session.
type Hub struct {
	backend  ports.AuthBackend
	authFeed ports.AuthFeed
	feed     ports.ChangeFeed
	products ports.ProductRepository
	settle   time.Duration
	log      zerolog.Logger

	mu         sync.Mutex
	workspaces map[string]*Workspace
	unsub      ports.Unsubscriber
	closed     bool
}

func NewHub(
	backend ports.AuthBackend,
	authFeed ports.AuthFeed,
	feed ports.ChangeFeed,
	products ports.ProductRepository,
	settle time.Duration,
	log zerolog.Logger,
) *Hub {
	return &Hub{
		backend:    backend,
		authFeed:   authFeed,
		feed:       feed,
		products:   products,
		settle:     settle,
		log:        log,
		workspaces: make(map[string]*Workspace),
	}
}

// Start subscribes the hub to the auth feed for sign-out eviction.
func (h *Hub) Start() error {
	unsub, err := h.authFeed.Subscribe(func(event domain.AuthEvent, sess *domain.Session) {
		if event != domain.AuthSignedOut || sess == nil || sess.UserID == "" {
			return
		}
		h.evict(sess.UserID)
	})
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.unsub = unsub
	h.mu.Unlock()
	return nil
}

// Workspace returns the cached workspace for the token's user, creating and
// bootstrapping one on first use. A nil workspace with a nil error means the
// token does not resolve to a signed-in session.
func (h *Hub) Workspace(ctx context.Context, accessToken string) (*Workspace, error) {
	sess, user, err := h.backend.GetCurrentSession(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if sess == nil || user == nil {
		return nil, nil
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, nil
	}
	if ws, ok := h.workspaces[user.ID]; ok {
		h.mu.Unlock()
		return ws, nil
	}
	h.mu.Unlock()

	ws, err := h.newWorkspace(ctx, user.ID, accessToken)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		ws.Close()
		return nil, nil
	}
	if existing, ok := h.workspaces[user.ID]; ok {
		// Lost the creation race; keep the first one.
		h.mu.Unlock()
		ws.Close()
		return existing, nil
	}
	h.workspaces[user.ID] = ws
	h.mu.Unlock()
	return ws, nil
}

func (h *Hub) newWorkspace(ctx context.Context, userID, accessToken string) (*Workspace, error) {
	wsCtx, cancel := context.WithCancel(context.Background())
	store := session.NewStore()

	ws := &Workspace{
		ownerID:  userID,
		store:    store,
		products: h.products,
		log:      h.log.With().Str("user_id", userID).Logger(),
		ctx:      wsCtx,
		cancel:   cancel,
	}
	ws.deb = realtime.NewDebouncer(refreshDebounce, func() {
		if err := ws.refresh(wsCtx); err != nil {
			ws.log.Warn().Err(err).Msg("dashboard refresh failed")
		}
	})

	// Populate the store before wiring events: the bootstrapper owns the
	// first snapshot, the listener everything after.
	boot := session.NewBootstrapper(h.backend, store, ws.log)
	boot.Run(wsCtx, accessToken)

	listener := session.NewListener(store, h.backend, userFeed{feed: h.authFeed, userID: userID}, h.settle, ws.log)
	if err := listener.Start(); err != nil {
		cancel()
		return nil, err
	}
	ws.listener = listener

	regs := []realtime.Registration{
		{
			Spec:     ports.EventSpec{Table: "products", Type: domain.ChangeAny, Owner: userID},
			Callback: ws.onChange,
		},
		{
			Spec:     ports.EventSpec{Table: "sales", Type: domain.ChangeInsert, Owner: userID},
			Callback: ws.onChange,
		},
	}
	sub, err := realtime.Open(wsCtx, h.feed, "dashboard", regs, ws.log)
	if err != nil {
		listener.Close()
		cancel()
		return nil, err
	}
	ws.sub = sub

	return ws, nil
}

func (h *Hub) evict(userID string) {
	h.mu.Lock()
	ws, ok := h.workspaces[userID]
	if ok {
		delete(h.workspaces, userID)
	}
	h.mu.Unlock()
	if ok {
		ws.Close()
		h.log.Info().Str("user_id", userID).Msg("workspace evicted on sign-out")
	}
}

// Size reports the number of live workspaces.
func (h *Hub) Size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.workspaces)
}

// Close evicts every workspace and detaches from the auth feed. Idempotent.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	unsub := h.unsub
	h.unsub = nil
	workspaces := h.workspaces
	h.workspaces = make(map[string]*Workspace)
	h.mu.Unlock()

	if unsub != nil {
		unsub.Unsubscribe()
	}
	for _, ws := range workspaces {
		ws.Close()
	}
}

// userFeed narrows the global auth feed to a single user's events, so a
// workspace listener never reacts to someone else's sign-in.
type userFeed struct {
	feed   ports.AuthFeed
	userID string
}

func (f userFeed) Subscribe(handler ports.AuthEventHandler) (ports.Unsubscriber, error) {
	return f.feed.Subscribe(func(event domain.AuthEvent, sess *domain.Session) {
		if sess != nil && sess.UserID != f.userID {
			return
		}
		handler(event, sess)
	})
}
