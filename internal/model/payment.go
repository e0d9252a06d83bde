package model

import "time"

// Payment mirrors the `payments` table.  Ref is the provider-side
// reference used to correlate webhook callbacks; Metadata is the raw JSON
// blob the provider echoes back.
type Payment struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"user_id,omitempty"`
	Ref       string    `json:"ref"`
	Amount    int       `json:"amount"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	Metadata  string    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
