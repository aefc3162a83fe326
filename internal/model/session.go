package model

import "time"

// Session statuses. A session starts active and leaves that status exactly
// once: to inactive (ended or de-escalated) or to alert (escalation chain
// exhausted). It never becomes active again.
const (
	SessionActive   = "active"
	SessionInactive = "inactive"
	SessionAlert    = "alert"
)

type Session struct {
	ID                   int64      `json:"id"`
	UserID               int64      `json:"user_id"`
	StartedAt            time.Time  `json:"started_at"`
	EndedAt              *time.Time `json:"ended_at,omitempty"`
	Status               string     `json:"status"`
	LastCheckInAt        time.Time  `json:"last_check_in_at"`
	CheckedInByContactID *int64     `json:"checked_in_by_contact_id,omitempty"`
}

// AlertedSession is one row of the reverse lookup "alert sessions visible
// to a contact phone number": the user's latest session is in alert and
// that phone number is registered as one of their escalation contacts.
type AlertedSession struct {
	SessionID     int64     `json:"session_id"`
	UserID        int64     `json:"user_id"`
	LastCheckInAt time.Time `json:"last_check_in_at"`
}
