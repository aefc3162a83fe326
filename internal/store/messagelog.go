package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sossh/Work-Alone/internal/model"
)

// MessageLogStore is append-only: the monitoring core writes every inbound
// and outbound message here and never reads them back.
type MessageLogStore struct {
	db *sql.DB
}

func NewMessageLogStore(db *sql.DB) *MessageLogStore {
	return &MessageLogStore{db: db}
}

func (s *MessageLogStore) LogUser(userID int64, text, direction string, now time.Time) error {
	_, err := execRetry(s.db,
		`INSERT INTO message_logs (user_id, message_text, direction, timestamp) VALUES (?, ?, ?, ?)`,
		userID, text, direction, now.UTC(),
	)
	if err != nil {
		return fmt.Errorf("log user message: %w", err)
	}
	return nil
}

func (s *MessageLogStore) LogContact(contactID int64, text, direction string, now time.Time) error {
	_, err := execRetry(s.db,
		`INSERT INTO message_logs (contact_id, message_text, direction, timestamp) VALUES (?, ?, ?, ?)`,
		contactID, text, direction, now.UTC(),
	)
	if err != nil {
		return fmt.Errorf("log contact message: %w", err)
	}
	return nil
}

// ListForUser exists for the admin surface; the core never calls it.
func (s *MessageLogStore) ListForUser(userID int64, limit int) ([]model.MessageLog, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, contact_id, message_text, direction, timestamp
		 FROM message_logs WHERE user_id = ? ORDER BY timestamp DESC, id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var logs []model.MessageLog
	for rows.Next() {
		var m model.MessageLog
		var userID, contactID sql.NullInt64
		if err := rows.Scan(&m.ID, &userID, &contactID, &m.Text, &m.Direction, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if userID.Valid {
			id := userID.Int64
			m.UserID = &id
		}
		if contactID.Valid {
			id := contactID.Int64
			m.ContactID = &id
		}
		logs = append(logs, m)
	}
	return logs, rows.Err()
}
