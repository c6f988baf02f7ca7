package identity

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/akulikov/walletd/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListUsersHandler_EmptyListIsNotFound(t *testing.T) {
	// Arrange: only an admin exists, so the listing has nothing to show
	repo := newMockRepository()
	repo.addUser("admin@example.com", domain.RoleAdmin, "secret")
	service := NewService(repo, &mockAuthenticator{})
	handler, err := NewHandler(service, CookieSettings{}, nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	rec := httptest.NewRecorder()

	// Act
	handler.ListUsers(rec, req)

	// Assert
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "no users found")
}
