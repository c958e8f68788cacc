package models

import "time"

// Record represents a customer contact entry.
type Record struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"` // Server-assigned, never updated
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
}

// String returns the customer's display name.
func (r Record) String() string {
	return r.FirstName + " " + r.LastName
}
