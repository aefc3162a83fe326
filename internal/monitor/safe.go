package monitor

import (
	"github.com/sossh/Work-Alone/internal/model"
)

// MarkSafe resolves a contact's "I checked on them" reply against the
// alerted sessions visible to their phone number.
func (s *Service) MarkSafe(from, body string) {
	alerted, err := s.sessions.AlertedForContact(from)
	if err != nil {
		s.logger.Error("mark safe: lookup alerted sessions", "from", from, "error", err)
		return
	}

	// Replying with nothing outstanding is harmless; say so.
	if len(alerted) == 0 {
		if sid := s.notifier.SendMessage(from, msgAllAccounted); sid == "" {
			s.logger.Warn("mark safe: reply not delivered", "to", from)
		}
		return
	}

	if len(alerted) == 1 {
		s.resolve(from, alerted[0], body)
		return
	}

	// Several users are outstanding: the reply must name one by id.
	if id, ok := extractID(body); ok {
		for _, a := range alerted {
			if a.UserID == id {
				s.resolve(from, a, body)
				return
			}
		}
	}

	s.sendListing(from, alerted)
}

// resolve de-escalates one alerted session on behalf of the contact.
func (s *Service) resolve(from string, a model.AlertedSession, body string) {
	contact, err := s.contacts.GetByUserAndPhone(a.UserID, from)
	if err != nil {
		s.logger.Error("mark safe: resolve contact", "from", from, "user_id", a.UserID, "error", err)
		return
	}
	if contact == nil {
		s.logger.Warn("mark safe: no contact record", "from", from, "user_id", a.UserID)
		return
	}

	s.logContact(contact.ID, body, model.DirectionIncoming)

	if err := s.sessions.Deescalate(a.SessionID, contact.ID, s.now()); err != nil {
		s.logger.Error("mark safe: deescalate", "session_id", a.SessionID, "error", err)
		return
	}
	s.emit(EventDeescalated, a.SessionID, a.UserID)

	if sid := s.notifier.SendMessage(from, msgMarkedSafe); sid == "" {
		s.logger.Warn("mark safe: confirmation not delivered", "to", from)
	}
	s.logContact(contact.ID, msgMarkedSafe, model.DirectionOutgoing)

	s.logger.Info("session deescalated", "session_id", a.SessionID, "user_id", a.UserID,
		"contact_id", contact.ID)
}

func (s *Service) sendListing(to string, alerted []model.AlertedSession) {
	users := make([]*model.User, 0, len(alerted))
	for _, a := range alerted {
		u, err := s.users.GetByID(a.UserID)
		if err != nil {
			s.logger.Error("mark safe: load user", "user_id", a.UserID, "error", err)
			continue
		}
		if u != nil {
			users = append(users, u)
		}
	}
	if sid := s.notifier.SendMessage(to, outstandingListing(users)); sid == "" {
		s.logger.Warn("mark safe: listing not delivered", "to", to)
	}
}
