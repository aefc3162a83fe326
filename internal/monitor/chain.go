package monitor

import (
	"time"

	"github.com/sossh/Work-Alone/internal/model"
)

// Stage is one pending check of the escalation chain. Each stage fires
// once, re-reads session state, and either resets, advances, or stops.
type Stage int

const (
	// StageRemind checks whether a reminder SMS is due.
	StageRemind Stage = iota
	// StageCall checks whether a voice call is due.
	StageCall
	// StageEscalate checks whether contacts must be notified. Terminal.
	StageEscalate
)

func (st Stage) String() string {
	switch st {
	case StageRemind:
		return "remind"
	case StageCall:
		return "call"
	default:
		return "escalate"
	}
}

// Action is what a fired stage callback must do.
type Action int

const (
	// ActionNone: the session is no longer active; the chain closes.
	ActionNone Action = iota
	// ActionReschedule: a fresh check-in landed; restart from the remind
	// check and discard any progress through later stages.
	ActionReschedule
	// ActionRemind, ActionCall, ActionEscalate: the session is stale for
	// this stage; perform its side effect and advance.
	ActionRemind
	ActionCall
	ActionEscalate
)

// NextAction is the chain's transition rule, identical at every stage
// boundary. Staleness is "minutes since last check-in >= delay", so the
// configured interval doubles as the initial wait and the grace period of
// every later stage.
func NextAction(status string, sinceCheckIn time.Duration, delayMinutes int, stage Stage) Action {
	if status != model.SessionActive {
		return ActionNone
	}
	if int(sinceCheckIn.Minutes()) < delayMinutes {
		return ActionReschedule
	}
	switch stage {
	case StageRemind:
		return ActionRemind
	case StageCall:
		return ActionCall
	default:
		return ActionEscalate
	}
}

func (s *Service) scheduleStage(phone string, sessionID int64, stage Stage, delayMinutes int) {
	s.sched.Schedule(time.Duration(delayMinutes)*time.Minute, func() {
		s.runStage(phone, sessionID, stage)
	})
}

// runStage is the driver behind every scheduled chain callback. All state
// is re-read from the store at fire time; the captured phone number and
// session id are the only things the closure trusts.
func (s *Service) runStage(phone string, sessionID int64, stage Stage) {
	user, err := s.users.GetByPhone(phone)
	if err != nil {
		s.logger.Error("stage: resolve user", "phone", phone, "error", err)
		return
	}
	if user == nil {
		// User deleted mid-session; nothing left to monitor.
		return
	}

	sess, err := s.sessions.GetByID(sessionID)
	if err != nil {
		s.logger.Error("stage: load session", "session_id", sessionID, "error", err)
		return
	}
	if sess == nil {
		return
	}

	since := s.sinceLastCheckIn(user.ID, sess)

	switch NextAction(sess.Status, since, user.DelayInterval, stage) {
	case ActionNone:
		return

	case ActionReschedule:
		s.scheduleStage(phone, sessionID, StageRemind, user.DelayInterval)

	case ActionRemind:
		if sid := s.notifier.SendMessage(phone, msgReminder); sid == "" {
			s.logger.Warn("stage: reminder not delivered", "user_id", user.ID)
		}
		s.logger.Info("reminder sent", "user_id", user.ID, "session_id", sessionID)
		s.scheduleStage(phone, sessionID, StageCall, user.DelayInterval)

	case ActionCall:
		if sid := s.notifier.MakeCall(phone, msgCallSay); sid == "" {
			s.logger.Warn("stage: call not placed", "user_id", user.ID)
		}
		if sid := s.notifier.SendMessage(phone, callFollowUp(user.DelayInterval)); sid == "" {
			s.logger.Warn("stage: call follow-up not delivered", "user_id", user.ID)
		}
		s.logger.Info("call placed", "user_id", user.ID, "session_id", sessionID)
		s.scheduleStage(phone, sessionID, StageEscalate, user.DelayInterval)

	case ActionEscalate:
		s.escalate(user, since)
	}
}

// escalate notifies every escalation contact and force-closes the user's
// active sessions with alert status. A user with no contacts cannot be
// escalated: the chain stops here and the session stays active.
func (s *Service) escalate(user *model.User, since time.Duration) {
	contacts, err := s.contacts.ListForUser(user.ID)
	if err != nil {
		s.logger.Error("escalate: list contacts", "user_id", user.ID, "error", err)
		return
	}
	if len(contacts) == 0 {
		s.logger.Warn("escalate: user has no contacts", "user_id", user.ID)
		return
	}

	elapsed := minutesText(int(since.Minutes()))
	for _, c := range contacts {
		if sid := s.notifier.SendMessage(c.PhoneNumber, contactAlert(user, elapsed)); sid == "" {
			s.logger.Warn("escalate: contact not reached", "contact_id", c.ID)
		}
	}

	if sid := s.notifier.SendMessage(user.PhoneNumber, msgContactsNotified); sid == "" {
		s.logger.Warn("escalate: user notice not delivered", "user_id", user.ID)
	}

	now := s.now()
	for {
		active, err := s.sessions.Active(user.ID)
		if err != nil {
			s.logger.Error("escalate: find active session", "user_id", user.ID, "error", err)
			return
		}
		if active == nil {
			break
		}
		if err := s.sessions.Timeout(active.ID, now); err != nil {
			s.logger.Error("escalate: timeout session", "session_id", active.ID, "error", err)
			return
		}
		s.emit(EventAlert, active.ID, user.ID)
	}

	if s.pusher != nil {
		s.pusher.SessionAlert(user.FirstName+" "+user.LastName, user.ID)
	}
	s.logger.Info("contacts notified", "user_id", user.ID, "contacts", len(contacts),
		"elapsed", elapsed)
}

// sinceLastCheckIn measures the user's silence. Falls back to the session
// start when no check-in was ever recorded.
func (s *Service) sinceLastCheckIn(userID int64, sess *model.Session) time.Duration {
	last, err := s.sessions.LastCheckIn(userID)
	if err != nil {
		s.logger.Error("stage: last check-in", "user_id", userID, "error", err)
	}
	if last == nil {
		return s.now().Sub(sess.StartedAt)
	}
	return s.now().Sub(*last)
}

// Rearm schedules a fresh remind check for every active session. Called
// once at startup: pending timers do not survive a restart, but sessions
// do, so the chain is re-derived from durable state.
func (s *Service) Rearm() error {
	active, err := s.sessions.ListActive()
	if err != nil {
		return err
	}
	for _, sess := range active {
		user, err := s.users.GetByID(sess.UserID)
		if err != nil {
			return err
		}
		if user == nil {
			continue
		}
		s.scheduleStage(user.PhoneNumber, sess.ID, StageRemind, user.DelayInterval)
	}
	if len(active) > 0 {
		s.logger.Info("re-armed escalation checks", "sessions", len(active))
	}
	return nil
}
