// Package dashboard keeps one cached workspace per signed-in user: the
// session store, a change-feed subscription over the user's rows, and
// memoized financial aggregates refreshed when the feed reports a change.
package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/analytics"
	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/domain"
	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/ports"
	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/realtime"
	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/session"
)

// refreshDebounce coalesces change-feed bursts into one refetch.
const refreshDebounce = 200 * time.Millisecond

// Summary is the dashboard view served to the frontend.
type Summary struct {
	Omzet        float64         `json:"omzet"`
	Laba         float64         `json:"laba"`
	ProductCount int             `json:"product_count"`
	Products     []domain.Product `json:"products"`
	Profile      *domain.Profile `json:"profile,omitempty"`
	Role         string          `json:"role,omitempty"`
	RefreshedAt  time.Time       `json:"refreshed_at"`
}

// Workspace is the per-user cache. Its change-feed subscription is the only
// channel it ever owns; Close tears down exactly that channel, once.
type Workspace struct {
	ownerID  string
	store    *session.Store
	listener *session.Listener
	sub      *realtime.Subscription
	deb      *realtime.Debouncer

	products ports.ProductRepository
	calc     analytics.Calculator
	log      zerolog.Logger

	mu          sync.RWMutex
	rev         uint64
	cached      []domain.Product
	refreshedAt time.Time

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// Store exposes the workspace's session store for read-through access.
func (w *Workspace) Store() *session.Store {
	return w.store
}

// Summary returns the cached aggregates, loading products on first use.
func (w *Workspace) Summary(ctx context.Context) (*Summary, error) {
	w.mu.RLock()
	loaded := !w.refreshedAt.IsZero()
	w.mu.RUnlock()
	if !loaded {
		if err := w.refresh(ctx); err != nil {
			return nil, err
		}
	}

	w.mu.RLock()
	rev := w.rev
	products := w.cached
	refreshedAt := w.refreshedAt
	w.mu.RUnlock()

	agg := w.calc.Aggregates(rev, products)
	snap := w.store.Snapshot()
	return &Summary{
		Omzet:        agg.Omzet,
		Laba:         agg.Laba,
		ProductCount: len(products),
		Products:     products,
		Profile:      snap.Profile,
		Role:         snap.Role,
		RefreshedAt:  refreshedAt,
	}, nil
}

// refresh requeries the product collection and bumps the revision. Called
// from the debounced change callback: the feed only says "something
// changed", so fresh state always comes from the repository.
func (w *Workspace) refresh(ctx context.Context) error {
	products, err := w.products.List(ctx, ports.ListProductsFilter{OwnerID: w.ownerID})
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.rev++
	w.cached = products
	w.refreshedAt = time.Now().UTC()
	w.mu.Unlock()
	return nil
}

func (w *Workspace) onChange(domain.ChangeEvent) {
	w.deb.Trigger()
}

// Close cancels pending work and tears down the listener and the change
// channel. Idempotent.
func (w *Workspace) Close() {
	w.once.Do(func() {
		w.cancel()
		w.deb.Stop()
		w.listener.Close()
		w.sub.Close()
	})
}
