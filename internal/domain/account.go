package domain

import "time"

// Account is a user-owned balance account. Accounts are opened implicitly
// by the first payment addressed to them.
type Account struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Balance   float64   `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
