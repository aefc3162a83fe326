// Package monitor implements the work-alone core: session lifecycle, the
// three-stage inactivity escalation chain, and mark-safe resolution for
// escalation contacts.
package monitor

import (
	"log/slog"
	"time"

	"github.com/sossh/Work-Alone/internal/store"
)

// Notifier sends a text message or places a voice call. An empty id means
// the destination was rejected; the caller logs and skips that one side
// effect without failing the surrounding command.
type Notifier interface {
	SendMessage(to, text string) string
	MakeCall(to, say string) string
}

// Scheduler runs a callback once after a delay. Fire-and-forget: no
// handle, no cancellation.
type Scheduler interface {
	Schedule(delay time.Duration, fn func())
}

// Events receives session lifecycle notifications for the dashboard.
type Events interface {
	SessionEvent(action string, sessionID, userID int64)
}

// Pusher notifies dashboard operators out-of-band when a session
// escalates to alert.
type Pusher interface {
	SessionAlert(userName string, userID int64)
}

// Session event actions published through Events.
const (
	EventStarted     = "started"
	EventEnded       = "ended"
	EventAlert       = "alert"
	EventDeescalated = "deescalated"
)

type Service struct {
	users    *store.UserStore
	sessions *store.SessionStore
	contacts *store.ContactStore
	logs     *store.MessageLogStore
	notifier Notifier
	sched    Scheduler
	events   Events
	pusher   Pusher
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Service)

// WithEvents wires dashboard broadcasts.
func WithEvents(e Events) Option {
	return func(s *Service) { s.events = e }
}

// WithPusher wires operator push alerts.
func WithPusher(p Pusher) Option {
	return func(s *Service) { s.pusher = p }
}

// WithClock overrides the time source. Tests use this to drive staleness
// without waiting on real timers.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(users *store.UserStore, sessions *store.SessionStore, contacts *store.ContactStore,
	logs *store.MessageLogStore, notifier Notifier, sched Scheduler, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		users:    users,
		sessions: sessions,
		contacts: contacts,
		logs:     logs,
		notifier: notifier,
		sched:    sched,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) emit(action string, sessionID, userID int64) {
	if s.events != nil {
		s.events.SessionEvent(action, sessionID, userID)
	}
}

func (s *Service) logUser(userID int64, text, direction string) {
	if err := s.logs.LogUser(userID, text, direction, s.now()); err != nil {
		s.logger.Error("log user message", "user_id", userID, "error", err)
	}
}

func (s *Service) logContact(contactID int64, text, direction string) {
	if err := s.logs.LogContact(contactID, text, direction, s.now()); err != nil {
		s.logger.Error("log contact message", "contact_id", contactID, "error", err)
	}
}
