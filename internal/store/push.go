package store

import (
	"database/sql"
	"fmt"

	"github.com/sossh/Work-Alone/internal/model"
)

type PushStore struct {
	db *sql.DB
}

func NewPushStore(db *sql.DB) *PushStore {
	return &PushStore{db: db}
}

// Subscribe stores a browser subscription, replacing any previous record
// for the same endpoint.
func (s *PushStore) Subscribe(endpoint, p256dh, auth string) (*model.PushSubscription, error) {
	_, err := execRetry(s.db,
		`INSERT INTO push_subscriptions (endpoint, p256dh_key, auth_key) VALUES (?, ?, ?)
		 ON CONFLICT(endpoint) DO UPDATE SET p256dh_key = excluded.p256dh_key, auth_key = excluded.auth_key`,
		endpoint, p256dh, auth,
	)
	if err != nil {
		return nil, fmt.Errorf("insert subscription: %w", err)
	}
	// LastInsertId is meaningless when the conflict branch ran, so always
	// read the row back by its endpoint.
	return s.getByEndpoint(endpoint)
}

func (s *PushStore) getByEndpoint(endpoint string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	err := s.db.QueryRow(
		`SELECT id, endpoint, p256dh_key, auth_key, created_at FROM push_subscriptions WHERE endpoint = ?`, endpoint,
	).Scan(&sub.ID, &sub.Endpoint, &sub.P256dhKey, &sub.AuthKey, &sub.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	return &sub, nil
}

func (s *PushStore) List() ([]model.PushSubscription, error) {
	rows, err := s.db.Query(`SELECT id, endpoint, p256dh_key, auth_key, created_at FROM push_subscriptions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []model.PushSubscription
	for rows.Next() {
		var sub model.PushSubscription
		if err := rows.Scan(&sub.ID, &sub.Endpoint, &sub.P256dhKey, &sub.AuthKey, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (s *PushStore) DeleteByEndpoint(endpoint string) error {
	_, err := execRetry(s.db, `DELETE FROM push_subscriptions WHERE endpoint = ?`, endpoint)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	return nil
}
