//go:build integration

package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/akulikov/walletd/internal/payments"
	"github.com/akulikov/walletd/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// userView mirrors the user representation in API responses.
type userView struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// accountView mirrors the account representation in API responses.
type accountView struct {
	ID      int64   `json:"id"`
	UserID  int64   `json:"user_id"`
	Balance float64 `json:"balance"`
}

// paymentView mirrors the payment representation in API responses.
type paymentView struct {
	ID            int64   `json:"id"`
	TransactionID string  `json:"transaction_id"`
	UserID        int64   `json:"user_id"`
	AccountID     int64   `json:"account_id"`
	Amount        float64 `json:"amount"`
}

// strongPassword satisfies the password policy for created users.
const strongPassword = "Sup3rStr0ng!"

// createTestUser creates a regular user through the admin API and returns
// it. The client must be logged in as an administrator.
func createTestUser(t *testing.T, client *testutil.Client) userView {
	t.Helper()

	resp, err := client.POST("/api/v1/users", map[string]string{
		"email":     testutil.RandomEmail(),
		"full_name": "Integration User",
		"password1": strongPassword,
		"password2": strongPassword,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Data userView `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	require.NotZero(t, result.Data.ID)
	return result.Data
}

// testSigner signs webhook payloads with the secret the app is running with.
var testSigner = payments.NewSigner(testSigningSecret)

// paymentPayload builds a signed webhook body.
func paymentPayload(transactionID uuid.UUID, userID, accountID int64, amount float64) map[string]interface{} {
	return map[string]interface{}{
		"transaction_id": transactionID.String(),
		"user_id":        userID,
		"account_id":     accountID,
		"amount":         amount,
		"signature":      testSigner.Sign(transactionID, userID, accountID, amount),
	}
}

// sendPayment posts a signed payment webhook and asserts it succeeds.
func sendPayment(t *testing.T, client *testutil.Client, userID, accountID int64, amount float64) uuid.UUID {
	t.Helper()

	transactionID := uuid.New()
	resp, err := client.POST("/api/v1/payments", paymentPayload(transactionID, userID, accountID, amount))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, testutil.ReadBody(t, resp))
	return transactionID
}

// nextAccountID hands out account ids that no other test uses.
func nextAccountID(t *testing.T) int64 {
	t.Helper()

	var id int64
	err := testDB.QueryRow(context.Background(), `SELECT COALESCE(MAX(id), 0) + 1000 FROM accounts`).Scan(&id)
	require.NoError(t, err)
	return id
}
