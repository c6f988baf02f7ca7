package domain

import (
	"time"

	"github.com/google/uuid"
)

// Payment is a credit received from the external payment system. The
// transaction id identifies the transaction on the external side and is
// unique across all payments.
type Payment struct {
	ID            int64     `json:"id"`
	TransactionID uuid.UUID `json:"transaction_id"`
	UserID        int64     `json:"user_id"`
	AccountID     int64     `json:"account_id"`
	Amount        float64   `json:"amount"`
	Signature     string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
}
