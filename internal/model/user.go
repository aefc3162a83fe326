package model

import "time"

// DefaultDelayInterval is the check-in interval, in minutes, assigned to
// users created without an explicit one.
const DefaultDelayInterval = 30

type User struct {
	ID            int64     `json:"id"`
	PhoneNumber   string    `json:"phone_number"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	DelayInterval int       `json:"delay_interval"`
	CreatedAt     time.Time `json:"created_at"`
}

// UserWithStatus is a user joined with the status of their most recent
// session, for the admin listing. Status is "inactive" when the user has
// never had a session.
type UserWithStatus struct {
	User
	Status        string     `json:"status"`
	LastCheckInAt *time.Time `json:"last_check_in_at,omitempty"`
}
