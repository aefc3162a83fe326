package model

import "time"

// Message directions, from the user's or contact's point of view.
const (
	DirectionIncoming = "incoming"
	DirectionOutgoing = "outgoing"
)

// MessageLog is an append-only record of a message exchanged with a user
// or an escalation contact. Exactly one of UserID and ContactID is set.
type MessageLog struct {
	ID        int64     `json:"id"`
	UserID    *int64    `json:"user_id,omitempty"`
	ContactID *int64    `json:"contact_id,omitempty"`
	Text      string    `json:"message_text"`
	Direction string    `json:"direction"`
	Timestamp time.Time `json:"timestamp"`
}
