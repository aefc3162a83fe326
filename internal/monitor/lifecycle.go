package monitor

import "github.com/sossh/Work-Alone/internal/model"

// Begin starts a new work-alone session for the sender. Any sessions still
// active for the user are closed first; the loop tolerates prior
// inconsistency even though at most one should exist.
func (s *Service) Begin(from, body string) {
	user, err := s.users.GetByPhone(from)
	if err != nil {
		s.logger.Error("begin: resolve user", "from", from, "error", err)
		return
	}
	if user == nil {
		s.logger.Info("begin from unregistered number", "from", from)
		return
	}

	s.logUser(user.ID, body, model.DirectionIncoming)

	now := s.now()
	for {
		active, err := s.sessions.Active(user.ID)
		if err != nil {
			s.logger.Error("begin: find active session", "user_id", user.ID, "error", err)
			return
		}
		if active == nil {
			break
		}
		if err := s.sessions.End(active.ID, now); err != nil {
			s.logger.Error("begin: close stale session", "session_id", active.ID, "error", err)
			return
		}
		s.emit(EventEnded, active.ID, user.ID)
	}

	sess, err := s.sessions.Start(user.ID, now)
	if err != nil {
		s.logger.Error("begin: start session", "user_id", user.ID, "error", err)
		return
	}
	s.emit(EventStarted, sess.ID, user.ID)
	s.scheduleStage(user.PhoneNumber, sess.ID, StageRemind, user.DelayInterval)

	confirmation := beginConfirmation(user.DelayInterval)
	if sid := s.notifier.SendMessage(user.PhoneNumber, confirmation); sid == "" {
		s.logger.Warn("begin: confirmation not delivered", "user_id", user.ID)
	}
	s.logUser(user.ID, confirmation, model.DirectionOutgoing)

	s.logger.Info("session started", "user_id", user.ID, "session_id", sess.ID,
		"delay_minutes", user.DelayInterval)
}

// End closes the sender's active sessions. When there is nothing to close
// it stays completely silent: confirming "done" to someone not in a
// session would be misleading.
func (s *Service) End(from, body string) {
	user, err := s.users.GetByPhone(from)
	if err != nil {
		s.logger.Error("end: resolve user", "from", from, "error", err)
		return
	}
	if user == nil {
		s.logger.Info("end from unregistered number", "from", from)
		return
	}

	active, err := s.sessions.Active(user.ID)
	if err != nil {
		s.logger.Error("end: find active session", "user_id", user.ID, "error", err)
		return
	}
	if active == nil {
		return
	}

	s.logUser(user.ID, body, model.DirectionIncoming)

	now := s.now()
	for active != nil {
		if err := s.sessions.End(active.ID, now); err != nil {
			s.logger.Error("end: close session", "session_id", active.ID, "error", err)
			return
		}
		s.emit(EventEnded, active.ID, user.ID)
		active, err = s.sessions.Active(user.ID)
		if err != nil {
			s.logger.Error("end: find active session", "user_id", user.ID, "error", err)
			return
		}
	}

	if sid := s.notifier.SendMessage(user.PhoneNumber, msgSessionEnded); sid == "" {
		s.logger.Warn("end: confirmation not delivered", "user_id", user.ID)
	}
	s.logUser(user.ID, msgSessionEnded, model.DirectionOutgoing)
}

// CheckIn records any message from a user with an active session as a
// check-in. Unknown senders and users outside a session get the help text
// instead: an unrecognized message is a cue to show what the system
// understands.
func (s *Service) CheckIn(from, body string) {
	user, err := s.users.GetByPhone(from)
	if err != nil {
		s.logger.Error("check-in: resolve user", "from", from, "error", err)
		return
	}
	if user == nil {
		s.Info(from, body)
		return
	}

	s.logUser(user.ID, body, model.DirectionIncoming)

	active, err := s.sessions.Active(user.ID)
	if err != nil {
		s.logger.Error("check-in: find active session", "user_id", user.ID, "error", err)
		return
	}
	if active == nil {
		s.Info(from, body)
		return
	}

	if err := s.sessions.CheckIn(active.ID, s.now()); err != nil {
		s.logger.Error("check-in: record", "session_id", active.ID, "error", err)
		return
	}

	if sid := s.notifier.SendMessage(user.PhoneNumber, msgCheckInRecorded); sid == "" {
		s.logger.Warn("check-in: acknowledgment not delivered", "user_id", user.ID)
	}
	s.logUser(user.ID, msgCheckInRecorded, model.DirectionOutgoing)
}

// Info replies with the available commands.
func (s *Service) Info(from, _ string) {
	if sid := s.notifier.SendMessage(from, msgInfo); sid == "" {
		s.logger.Warn("info: reply not delivered", "to", from)
	}
}

// HandleDefault routes an unrecognized message by the sender's role: a
// contact with outstanding alerts is treated as mark-safe input, everyone
// else as a user check-in.
func (s *Service) HandleDefault(from, body string) {
	alerted, err := s.sessions.AlertedForContact(from)
	if err != nil {
		s.logger.Error("default: contact lookup", "from", from, "error", err)
	}
	if len(alerted) > 0 {
		s.MarkSafe(from, body)
		return
	}
	s.CheckIn(from, body)
}
