package ports

import (
	"context"

	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/domain"
)

// ChannelStatus reports the lifecycle state of a logical change-feed channel.
type ChannelStatus string

const (
	ChannelSubscribing ChannelStatus = "subscribing"
	ChannelSubscribed  ChannelStatus = "subscribed"
	ChannelClosed      ChannelStatus = "closed"
	ChannelError       ChannelStatus = "error"
)

// EventSpec scopes a listener to a table and mutation type. Owner, when
// non-empty, restricts delivery to rows owned by that user.
type EventSpec struct {
	Table string
	Type  domain.ChangeType
	Owner string
}

// Matches reports whether a change event satisfies the spec.
func (s EventSpec) Matches(ev domain.ChangeEvent) bool {
	if s.Table != "" && s.Table != ev.Table {
		return false
	}
	if s.Type != domain.ChangeAny && s.Type != ev.Type {
		return false
	}
	if s.Owner != "" && s.Owner != ev.OwnerID {
		return false
	}
	return true
}

// ChangeHandler receives the raw change payload, untransformed.
type ChangeHandler func(ev domain.ChangeEvent)

// Channel is one logical change-feed connection. Listeners are attached
// before Subscribe; a live channel's registrations are never mutated.
type Channel interface {
	Name() string
	On(spec EventSpec, handler ChangeHandler)
	Subscribe(ctx context.Context, status func(ChannelStatus)) error
}

// ChangeFeed multiplexes logical channels onto one transport connection.
type ChangeFeed interface {
	OpenChannel(name string) Channel
	// RemoveChannel closes the channel and detaches its listeners. Removing an
	// already-removed channel is a no-op.
	RemoveChannel(ch Channel) error
}

// ChangePublisher is the producing side of the change feed. Domain services
// publish a ChangeEvent after every successful row mutation.
type ChangePublisher interface {
	PublishChange(ctx context.Context, ev domain.ChangeEvent) error
}
