package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sossh/Work-Alone/internal/model"
)

type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

func scanSession(scanner interface{ Scan(...any) error }) (*model.Session, error) {
	var s model.Session
	var endedAt sql.NullTime
	var contactID sql.NullInt64
	err := scanner.Scan(&s.ID, &s.UserID, &s.StartedAt, &endedAt, &s.Status, &s.LastCheckInAt, &contactID)
	if err != nil {
		return nil, err
	}
	if endedAt.Valid {
		t := endedAt.Time
		s.EndedAt = &t
	}
	if contactID.Valid {
		id := contactID.Int64
		s.CheckedInByContactID = &id
	}
	return &s, nil
}

const sessionCols = `id, user_id, started_at, ended_at, status, last_check_in_at, checked_in_by_contact_id`

// Start creates a new active session with its check-in clock set to now.
func (s *SessionStore) Start(userID int64, now time.Time) (*model.Session, error) {
	result, err := execRetry(s.db,
		`INSERT INTO sessions (user_id, started_at, status, last_check_in_at) VALUES (?, ?, ?, ?)`,
		userID, now.UTC(), model.SessionActive, now.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *SessionStore) GetByID(id int64) (*model.Session, error) {
	row := s.db.QueryRow(`SELECT `+sessionCols+` FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// Active returns the user's active session, or nil if none exists.
func (s *SessionStore) Active(userID int64) (*model.Session, error) {
	row := s.db.QueryRow(
		`SELECT `+sessionCols+` FROM sessions WHERE user_id = ? AND status = ? ORDER BY id LIMIT 1`,
		userID, model.SessionActive,
	)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active session: %w", err)
	}
	return sess, nil
}

// ListActive returns every active session across all users. Used at
// startup to re-arm escalation checks.
func (s *SessionStore) ListActive() ([]model.Session, error) {
	rows, err := s.db.Query(
		`SELECT `+sessionCols+` FROM sessions WHERE status = ? ORDER BY id`,
		model.SessionActive,
	)
	if err != nil {
		return nil, fmt.Errorf("list active sessions: %w", err)
	}
	defer rows.Close()

	var sessions []model.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, *sess)
	}
	return sessions, rows.Err()
}

// MostRecent returns the user's latest session regardless of status.
func (s *SessionStore) MostRecent(userID int64) (*model.Session, error) {
	row := s.db.QueryRow(
		`SELECT `+sessionCols+` FROM sessions WHERE user_id = ? ORDER BY started_at DESC, id DESC LIMIT 1`,
		userID,
	)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get most recent session: %w", err)
	}
	return sess, nil
}

// End closes a session on behalf of the user. The check-in clock is
// refreshed so the closed session does not read as stale.
func (s *SessionStore) End(sessionID int64, now time.Time) error {
	_, err := execRetry(s.db,
		`UPDATE sessions SET status = ?, ended_at = ?, last_check_in_at = ? WHERE id = ?`,
		model.SessionInactive, now.UTC(), now.UTC(), sessionID,
	)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

// Timeout closes a session because the escalation chain exhausted all
// stages without a check-in.
func (s *SessionStore) Timeout(sessionID int64, now time.Time) error {
	_, err := execRetry(s.db,
		`UPDATE sessions SET status = ?, ended_at = ? WHERE id = ?`,
		model.SessionAlert, now.UTC(), sessionID,
	)
	if err != nil {
		return fmt.Errorf("timeout session: %w", err)
	}
	return nil
}

// CheckIn advances the session's check-in clock.
func (s *SessionStore) CheckIn(sessionID int64, now time.Time) error {
	_, err := execRetry(s.db,
		`UPDATE sessions SET last_check_in_at = ? WHERE id = ?`,
		now.UTC(), sessionID,
	)
	if err != nil {
		return fmt.Errorf("check in session: %w", err)
	}
	return nil
}

// Deescalate resolves an alerted session: a contact confirmed the user is
// safe.
func (s *SessionStore) Deescalate(sessionID, contactID int64, now time.Time) error {
	_, err := execRetry(s.db,
		`UPDATE sessions SET status = ?, ended_at = ?, checked_in_by_contact_id = ? WHERE id = ?`,
		model.SessionInactive, now.UTC(), contactID, sessionID,
	)
	if err != nil {
		return fmt.Errorf("deescalate session: %w", err)
	}
	return nil
}

// LastCheckIn returns the newest check-in timestamp across all of the
// user's sessions, or nil if they have never had one.
func (s *SessionStore) LastCheckIn(userID int64) (*time.Time, error) {
	var last sql.NullTime
	err := s.db.QueryRow(
		`SELECT MAX(last_check_in_at) FROM sessions WHERE user_id = ?`, userID,
	).Scan(&last)
	if err != nil {
		return nil, fmt.Errorf("get last check in: %w", err)
	}
	if !last.Valid {
		return nil, nil
	}
	t := last.Time
	return &t, nil
}

// AlertedForContact returns, for each user who lists the given phone
// number as an escalation contact, their most recent session if it is in
// alert status.
func (s *SessionStore) AlertedForContact(contactPhone string) ([]model.AlertedSession, error) {
	rows, err := s.db.Query(`
		SELECT s.id, s.user_id, s.last_check_in_at
		FROM sessions s
		JOIN escalation_contacts ec ON ec.contact_of = s.user_id
		WHERE ec.phone_number = ?
		  AND s.status = ?
		  AND s.id = (
			SELECT id FROM sessions WHERE user_id = s.user_id
			ORDER BY last_check_in_at DESC, id DESC LIMIT 1
		  )
		ORDER BY s.user_id`,
		contactPhone, model.SessionAlert,
	)
	if err != nil {
		return nil, fmt.Errorf("list alerted sessions: %w", err)
	}
	defer rows.Close()

	var alerted []model.AlertedSession
	for rows.Next() {
		var a model.AlertedSession
		if err := rows.Scan(&a.SessionID, &a.UserID, &a.LastCheckInAt); err != nil {
			return nil, fmt.Errorf("scan alerted session: %w", err)
		}
		alerted = append(alerted, a)
	}
	return alerted, rows.Err()
}
