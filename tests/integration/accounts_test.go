//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/akulikov/walletd/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccounts_Me_EmptyIsNotFound(t *testing.T) {
	admin := newTestClient(t)
	admin.LoginAsAdmin(t)
	created := createTestUser(t, admin)

	client := newTestClient(t)
	client.LoginAs(t, created.Email, strongPassword)

	resp, err := client.GET("/api/v1/accounts/me")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAccounts_Me_AfterPayment(t *testing.T) {
	admin := newTestClient(t)
	admin.LoginAsAdmin(t)
	created := createTestUser(t, admin)

	accountID := nextAccountID(t)
	sendPayment(t, newTestClient(t), created.ID, accountID, 150.25)

	client := newTestClient(t)
	client.LoginAs(t, created.Email, strongPassword)

	resp, err := client.GET("/api/v1/accounts/me")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data []accountView `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	require.Len(t, result.Data, 1)
	assert.Equal(t, accountID, result.Data[0].ID)
	assert.Equal(t, created.ID, result.Data[0].UserID)
	assert.Equal(t, 150.25, result.Data[0].Balance)
}

func TestAccounts_Me_ForbiddenForAdmin(t *testing.T) {
	client := newTestClient(t)
	client.LoginAsAdmin(t)

	resp, err := client.GET("/api/v1/accounts/me")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestAccounts_Me_RequiresAuth(t *testing.T) {
	client := newTestClient(t)

	resp, err := client.GET("/api/v1/accounts/me")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestAccounts_AdminLookup(t *testing.T) {
	admin := newTestClient(t)
	admin.LoginAsAdmin(t)
	created := createTestUser(t, admin)

	accountID := nextAccountID(t)
	sendPayment(t, newTestClient(t), created.ID, accountID, 75)

	resp, err := admin.GET(fmt.Sprintf("/api/v1/users/%d/accounts", created.ID))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data []accountView `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	require.Len(t, result.Data, 1)
	assert.Equal(t, 75.0, result.Data[0].Balance)
}

func TestAccounts_AdminLookup_UnknownUser(t *testing.T) {
	admin := newTestClient(t)
	admin.LoginAsAdmin(t)

	resp, err := admin.GET("/api/v1/users/999999/accounts")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAccounts_AdminLookup_NoAccounts(t *testing.T) {
	admin := newTestClient(t)
	admin.LoginAsAdmin(t)
	created := createTestUser(t, admin)

	resp, err := admin.GET(fmt.Sprintf("/api/v1/users/%d/accounts", created.ID))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAccounts_AdminLookup_ForbiddenForRegularUser(t *testing.T) {
	admin := newTestClient(t)
	admin.LoginAsAdmin(t)
	created := createTestUser(t, admin)

	client := newTestClient(t)
	client.LoginAsUser(t)

	resp, err := client.GET(fmt.Sprintf("/api/v1/users/%d/accounts", created.ID))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}
