package model

type EscalationContact struct {
	ID          int64  `json:"id"`
	ContactOf   int64  `json:"contact_of"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
}
