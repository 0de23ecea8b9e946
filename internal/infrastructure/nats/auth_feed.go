// Package nats carries authentication lifecycle events between instances
// over a NATS subject, so every dashboard node observes sign-ins and
// sign-outs regardless of which node served them.
package nats

import (
	"encoding/json"
	"fmt"
	"sync"

	nats "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/api/metrics"
	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/domain"
	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/ports"
)

// DefaultSubject is the subject auth lifecycle events are published on.
const DefaultSubject = "umkm.auth.events"

type authEventMessage struct {
	Event   domain.AuthEvent `json:"event"`
	Session *domain.Session  `json:"session,omitempty"`
}

// AuthFeed implements both ports.AuthPublisher and ports.AuthFeed on one
// NATS connection.
type AuthFeed struct {
	conn    *nats.Conn
	subject string
	log     zerolog.Logger
}

func NewAuthFeed(conn *nats.Conn, subject string, log zerolog.Logger) *AuthFeed {
	if subject == "" {
		subject = DefaultSubject
	}
	return &AuthFeed{conn: conn, subject: subject, log: log}
}

// Publish sends one lifecycle event. The session's access and refresh tokens
// are stripped before the wire: subscribers only need identity and expiry.
func (f *AuthFeed) Publish(event domain.AuthEvent, sess *domain.Session) error {
	msg := authEventMessage{Event: event}
	if sess != nil {
		redacted := *sess
		redacted.AccessToken = ""
		redacted.RefreshToken = ""
		msg.Session = &redacted
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal auth event: %w", err)
	}
	if err := f.conn.Publish(f.subject, data); err != nil {
		return fmt.Errorf("publish auth event: %w", err)
	}
	metrics.AuthEventsPublishedTotal.WithLabelValues(string(event)).Inc()
	return nil
}

// Subscribe attaches a handler to the feed. The returned Unsubscriber is
// idempotent.
func (f *AuthFeed) Subscribe(handler ports.AuthEventHandler) (ports.Unsubscriber, error) {
	sub, err := f.conn.Subscribe(f.subject, func(msg *nats.Msg) {
		var m authEventMessage
		if err := json.Unmarshal(msg.Data, &m); err != nil {
			f.log.Warn().Err(err).Msg("auth event unmarshal failed")
			return
		}
		handler(m.Event, m.Session)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe auth feed: %w", err)
	}
	return &unsubscriber{sub: sub}, nil
}

type unsubscriber struct {
	sub  *nats.Subscription
	once sync.Once
}

func (u *unsubscriber) Unsubscribe() {
	u.once.Do(func() {
		_ = u.sub.Unsubscribe()
	})
}
