package store

import (
	"database/sql"
	"fmt"

	"github.com/sossh/Work-Alone/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := scanner.Scan(&u.ID, &u.PhoneNumber, &u.FirstName, &u.LastName, &u.DelayInterval, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

const userCols = `id, phone_number, first_name, last_name, delay_interval, created_at`

func (s *UserStore) Create(phoneNumber, firstName, lastName string, delayInterval int) (*model.User, error) {
	if delayInterval <= 0 {
		delayInterval = model.DefaultDelayInterval
	}
	result, err := execRetry(s.db,
		`INSERT INTO users (phone_number, first_name, last_name, delay_interval) VALUES (?, ?, ?, ?)`,
		phoneNumber, firstName, lastName, delayInterval,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByPhone(phoneNumber string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE phone_number = ?`, phoneNumber)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by phone: %w", err)
	}
	return u, nil
}

// UpdateUserParams carries a partial update: only non-nil fields are
// written, the rest keep their current values.
type UpdateUserParams struct {
	FirstName     *string
	LastName      *string
	PhoneNumber   *string
	DelayInterval *int
}

func (s *UserStore) Update(id int64, p UpdateUserParams) (*model.User, error) {
	u, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, nil
	}

	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.PhoneNumber != nil {
		u.PhoneNumber = *p.PhoneNumber
	}
	if p.DelayInterval != nil {
		u.DelayInterval = *p.DelayInterval
	}

	_, err = execRetry(s.db,
		`UPDATE users SET first_name = ?, last_name = ?, phone_number = ?, delay_interval = ? WHERE id = ?`,
		u.FirstName, u.LastName, u.PhoneNumber, u.DelayInterval, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) Delete(id int64) error {
	_, err := execRetry(s.db, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// ListWithStatus returns every user joined with the status of their most
// recent session, alerted users first.
func (s *UserStore) ListWithStatus() ([]model.UserWithStatus, error) {
	rows, err := s.db.Query(`
		SELECT u.id, u.phone_number, u.first_name, u.last_name, u.delay_interval, u.created_at,
		       s.status, s.last_check_in_at
		FROM users u
		LEFT JOIN sessions s ON s.id = (
			SELECT id FROM sessions WHERE user_id = u.id
			ORDER BY started_at DESC, id DESC LIMIT 1
		)
		ORDER BY CASE s.status
			WHEN 'alert' THEN 1
			WHEN 'active' THEN 2
			WHEN 'inactive' THEN 3
			ELSE 4
		END, u.first_name`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []model.UserWithStatus
	for rows.Next() {
		var u model.UserWithStatus
		var status sql.NullString
		var lastCheckIn sql.NullTime
		err := rows.Scan(&u.ID, &u.PhoneNumber, &u.FirstName, &u.LastName, &u.DelayInterval, &u.CreatedAt,
			&status, &lastCheckIn)
		if err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		u.Status = model.SessionInactive
		if status.Valid {
			u.Status = status.String
		}
		if lastCheckIn.Valid {
			t := lastCheckIn.Time
			u.LastCheckInAt = &t
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
