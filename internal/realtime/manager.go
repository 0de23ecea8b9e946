// Package realtime manages change-feed subscriptions: one uniquely named
// logical channel per call site, one listener per registration, torn down
// exactly once.
package realtime

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/ports"
)

// Registration binds one event spec to one callback. The manager delivers the
// raw change payload untransformed; consumers that need fresh state requery
// inside their callback.
type Registration struct {
	Spec     ports.EventSpec
	Callback ports.ChangeHandler
}

// Subscription owns the channel created for one call site. A call site that
// changes its registration set closes the old subscription fully before
// opening a new one; a live channel's registrations are never mutated.
type Subscription struct {
	feed ports.ChangeFeed
	ch   ports.Channel
	log  zerolog.Logger

	mu     sync.Mutex
	status ports.ChannelStatus
	once   sync.Once
}

// Open creates a subscription for the given registrations. An empty
// registration list opens no channel and returns a no-op subscription, which
// is the correct behavior for consumers whose data is static.
func Open(ctx context.Context, feed ports.ChangeFeed, scope string, regs []Registration, log zerolog.Logger) (*Subscription, error) {
	if len(regs) == 0 {
		return &Subscription{log: log, status: ports.ChannelClosed}, nil
	}

	name := scope + "-" + uuid.NewString()
	ch := feed.OpenChannel(name)
	for _, reg := range regs {
		ch.On(reg.Spec, reg.Callback)
	}

	sub := &Subscription{feed: feed, ch: ch, log: log, status: ports.ChannelSubscribing}
	if err := ch.Subscribe(ctx, sub.onStatus); err != nil {
		_ = feed.RemoveChannel(ch)
		return nil, err
	}
	return sub, nil
}

func (s *Subscription) onStatus(status ports.ChannelStatus) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
	s.log.Debug().Str("channel", s.ch.Name()).Str("status", string(status)).Msg("change channel status")
}

// Status reports the channel lifecycle state. A no-op subscription is closed.
func (s *Subscription) Status() ports.ChannelStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// ChannelName returns the channel name, empty for a no-op subscription.
func (s *Subscription) ChannelName() string {
	if s.ch == nil {
		return ""
	}
	return s.ch.Name()
}

// Close removes exactly the channel this subscription created. Idempotent.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.mu.Lock()
		s.status = ports.ChannelClosed
		ch := s.ch
		s.mu.Unlock()
		if ch == nil {
			return
		}
		if err := s.feed.RemoveChannel(ch); err != nil {
			s.log.Warn().Err(err).Str("channel", ch.Name()).Msg("change channel teardown failed")
		}
	})
}
