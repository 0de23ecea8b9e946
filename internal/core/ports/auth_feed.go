package ports

import (
	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/domain"
)

// AuthEventHandler receives authentication lifecycle events. The session is
// nil for SIGNED_OUT.
type AuthEventHandler func(event domain.AuthEvent, session *domain.Session)

// Unsubscriber detaches a feed subscription. Unsubscribe is idempotent:
// calling it on an already-detached subscription is a no-op.
type Unsubscriber interface {
	Unsubscribe()
}

// AuthFeed is the push feed of authentication lifecycle events.
type AuthFeed interface {
	Subscribe(handler AuthEventHandler) (Unsubscriber, error)
}

// AuthPublisher is the producing side of the auth feed.
type AuthPublisher interface {
	Publish(event domain.AuthEvent, session *domain.Session) error
}
