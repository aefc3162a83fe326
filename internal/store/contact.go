package store

import (
	"database/sql"
	"fmt"

	"github.com/sossh/Work-Alone/internal/model"
)

type ContactStore struct {
	db *sql.DB
}

func NewContactStore(db *sql.DB) *ContactStore {
	return &ContactStore{db: db}
}

func scanContact(scanner interface{ Scan(...any) error }) (*model.EscalationContact, error) {
	var c model.EscalationContact
	err := scanner.Scan(&c.ID, &c.ContactOf, &c.FirstName, &c.LastName, &c.PhoneNumber)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const contactCols = `id, contact_of, first_name, last_name, phone_number`

func (s *ContactStore) Create(userID int64, firstName, lastName, phoneNumber string) (*model.EscalationContact, error) {
	result, err := execRetry(s.db,
		`INSERT INTO escalation_contacts (contact_of, first_name, last_name, phone_number) VALUES (?, ?, ?, ?)`,
		userID, firstName, lastName, phoneNumber,
	)
	if err != nil {
		return nil, fmt.Errorf("insert contact: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ContactStore) GetByID(id int64) (*model.EscalationContact, error) {
	row := s.db.QueryRow(`SELECT `+contactCols+` FROM escalation_contacts WHERE id = ?`, id)
	c, err := scanContact(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return c, nil
}

// GetByUserAndPhone resolves the contact record linking a phone number to
// a specific user.
func (s *ContactStore) GetByUserAndPhone(userID int64, phoneNumber string) (*model.EscalationContact, error) {
	row := s.db.QueryRow(
		`SELECT `+contactCols+` FROM escalation_contacts WHERE contact_of = ? AND phone_number = ? LIMIT 1`,
		userID, phoneNumber,
	)
	c, err := scanContact(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get contact by user and phone: %w", err)
	}
	return c, nil
}

func (s *ContactStore) ListForUser(userID int64) ([]model.EscalationContact, error) {
	rows, err := s.db.Query(
		`SELECT `+contactCols+` FROM escalation_contacts WHERE contact_of = ? ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []model.EscalationContact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		contacts = append(contacts, *c)
	}
	return contacts, rows.Err()
}

// UpdateContactParams carries a partial update: only non-nil fields are
// written.
type UpdateContactParams struct {
	FirstName   *string
	LastName    *string
	PhoneNumber *string
}

func (s *ContactStore) Update(id int64, p UpdateContactParams) (*model.EscalationContact, error) {
	c, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, nil
	}

	if p.FirstName != nil {
		c.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		c.LastName = *p.LastName
	}
	if p.PhoneNumber != nil {
		c.PhoneNumber = *p.PhoneNumber
	}

	_, err = execRetry(s.db,
		`UPDATE escalation_contacts SET first_name = ?, last_name = ?, phone_number = ? WHERE id = ?`,
		c.FirstName, c.LastName, c.PhoneNumber, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update contact: %w", err)
	}
	return s.GetByID(id)
}

func (s *ContactStore) Delete(id int64) error {
	_, err := execRetry(s.db, `DELETE FROM escalation_contacts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	return nil
}
