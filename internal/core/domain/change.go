package domain

import (
	"encoding/json"
	"time"
)

// ChangeType classifies a row-level mutation in the change feed.
type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
	// ChangeAny matches every mutation type when used in a registration filter.
	ChangeAny ChangeType = "*"
)

// ChangeEvent is the raw payload delivered to change-feed subscribers. The
// feed guarantees "something changed", not "here is the new state": consumers
// needing fresh aggregates must requery inside their callback.
type ChangeEvent struct {
	Table      string          `json:"table"`
	Type       ChangeType      `json:"type"`
	OwnerID    string          `json:"user_id"`
	Row        json.RawMessage `json:"row,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// AuthEvent names an authentication lifecycle transition on the auth feed.
type AuthEvent string

const (
	AuthSignedIn       AuthEvent = "SIGNED_IN"
	AuthSignedOut      AuthEvent = "SIGNED_OUT"
	AuthTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
	AuthInitialSession AuthEvent = "INITIAL_SESSION"
)
