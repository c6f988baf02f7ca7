package payments

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strconv"

	"github.com/google/uuid"
)

// Signer computes and verifies webhook signatures. The signature is the
// hex SHA-256 of the payload values concatenated in alphabetical key
// order (account_id, amount, transaction_id, user_id) followed by the
// shared secret.
type Signer struct {
	secret string
}

// NewSigner creates a signer with the shared secret.
func NewSigner(secret string) *Signer {
	return &Signer{secret: secret}
}

// Sign computes the signature for a payment payload.
func (s *Signer) Sign(transactionID uuid.UUID, userID, accountID int64, amount float64) string {
	base := strconv.FormatInt(accountID, 10) +
		FormatAmount(amount) +
		transactionID.String() +
		strconv.FormatInt(userID, 10) +
		s.secret

	sum := sha256.Sum256([]byte(base))
	return hex.EncodeToString(sum[:])
}

// Verify checks a presented signature in constant time.
func (s *Signer) Verify(transactionID uuid.UUID, userID, accountID int64, amount float64, signature string) bool {
	want := s.Sign(transactionID, userID, accountID, amount)
	return subtle.ConstantTimeCompare([]byte(want), []byte(signature)) == 1
}

// FormatAmount renders an amount the way it must appear in the signature
// base string: shortest decimal representation, no exponent.
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}
