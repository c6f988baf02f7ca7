//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/akulikov/walletd/internal/pkg/httputil"
	"github.com/akulikov/walletd/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth_Login_SetsCookies(t *testing.T) {
	client := newTestClient(t)

	resp, err := client.POST("/api/v1/auth/login", map[string]string{
		"email":    "user@example.com",
		"password": "1234",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cookies := resp.Cookies()
	var hasAccessToken, hasRefreshToken, hasCSRFToken bool
	for _, c := range cookies {
		switch c.Name {
		case httputil.AccessTokenCookie:
			hasAccessToken = true
			assert.True(t, c.HttpOnly)
		case httputil.RefreshTokenCookie:
			hasRefreshToken = true
			assert.True(t, c.HttpOnly)
		case httputil.CSRFTokenCookie:
			hasCSRFToken = true
			assert.False(t, c.HttpOnly) // CSRF token must be readable by JS
		}
	}
	assert.True(t, hasAccessToken, "access_token cookie should be set")
	assert.True(t, hasRefreshToken, "refresh_token cookie should be set")
	assert.True(t, hasCSRFToken, "csrf_token cookie should be set")

	var loginResult struct {
		Data struct {
			User   userView `json:"user"`
			Tokens struct {
				AccessToken  string `json:"access_token"`
				RefreshToken string `json:"refresh_token"`
			} `json:"tokens"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &loginResult)
	assert.Equal(t, "user@example.com", loginResult.Data.User.Email)
	assert.Equal(t, "user", loginResult.Data.User.Role)
	assert.NotEmpty(t, loginResult.Data.Tokens.AccessToken)
	assert.NotEmpty(t, loginResult.Data.Tokens.RefreshToken)
}

func TestAuth_Login_CaseInsensitiveEmail(t *testing.T) {
	client := newTestClient(t)

	resp, err := client.POST("/api/v1/auth/login", map[string]string{
		"email":    "User@Example.COM",
		"password": "1234",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestAuth_Login_InvalidCredentials(t *testing.T) {
	client := newTestClient(t)

	resp, err := client.POST("/api/v1/auth/login", map[string]string{
		"email":    "user@example.com",
		"password": "wrongpassword",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp, err = client.POST("/api/v1/auth/login", map[string]string{
		"email":    "nonexistent@example.com",
		"password": "1234",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestAuth_Login_ValidationError(t *testing.T) {
	client := newTestClientWithoutValidation()

	resp, err := client.POST("/api/v1/auth/login", map[string]string{
		"email": "not-an-email",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestAuth_Me_RequiresAuth(t *testing.T) {
	client := newTestClient(t)

	resp, err := client.GET("/api/v1/me")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestAuth_Me_ReturnsCurrentUser(t *testing.T) {
	client := newTestClient(t)
	client.LoginAsUser(t)

	resp, err := client.GET("/api/v1/me")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data userView `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	assert.Equal(t, "user@example.com", result.Data.Email)
	assert.Equal(t, "user", result.Data.Role)
}

func TestAuth_Me_WorksWithBearerToken(t *testing.T) {
	client := newTestClient(t)

	resp, err := client.POST("/api/v1/auth/login", map[string]string{
		"email":    "user@example.com",
		"password": "1234",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var loginResult struct {
		Data struct {
			Tokens struct {
				AccessToken string `json:"access_token"`
			} `json:"tokens"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &loginResult)

	// Fresh client: no cookie jar state, Bearer header only
	bearer := newTestClient(t)
	bearer.Token = loginResult.Data.Tokens.AccessToken

	resp, err = bearer.GET("/api/v1/me")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestAuth_Refresh_RotatesTokens(t *testing.T) {
	client := newTestClient(t)
	client.LoginAsUser(t)

	resp, err := client.POST("/api/v1/auth/refresh", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data struct {
			Tokens struct {
				AccessToken  string `json:"access_token"`
				RefreshToken string `json:"refresh_token"`
			} `json:"tokens"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	assert.NotEmpty(t, result.Data.Tokens.AccessToken)
	assert.NotEmpty(t, result.Data.Tokens.RefreshToken)
}

func TestAuth_Refresh_OldTokenIsSingleUse(t *testing.T) {
	client := newTestClient(t)

	resp, err := client.POST("/api/v1/auth/login", map[string]string{
		"email":    "user@example.com",
		"password": "1234",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var loginResult struct {
		Data struct {
			Tokens struct {
				RefreshToken string `json:"refresh_token"`
			} `json:"tokens"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &loginResult)
	oldToken := loginResult.Data.Tokens.RefreshToken

	// Use a cookie-less client so the body token is the one presented
	fresh := newTestClientWithoutValidation()

	resp, err = fresh.POST("/api/v1/auth/refresh", map[string]string{"refresh_token": oldToken})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = fresh.POST("/api/v1/auth/refresh", map[string]string{"refresh_token": oldToken})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestAuth_Refresh_MissingToken(t *testing.T) {
	client := newTestClientWithoutValidation()

	resp, err := client.POST("/api/v1/auth/refresh", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestAuth_Logout_ClearsSession(t *testing.T) {
	client := newTestClient(t)
	client.LoginAsUser(t)

	resp, err := client.POST("/api/v1/auth/logout", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	// Cleared cookies: protected endpoints are unreachable again
	resp, err = client.GET("/api/v1/me")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

// CSRF protection applies to state-changing requests authenticated by cookie.
func TestAuth_CSRF_RequiredForCookieAuth(t *testing.T) {
	client := newTestClient(t)
	client.LoginAsAdmin(t)

	// Drop the CSRF token: state-changing cookie-auth requests must fail
	client.CSRFToken = ""

	resp, err := client.POST("/api/v1/users", map[string]string{
		"email":     testutil.RandomEmail(),
		"full_name": "CSRF Probe",
		"password1": strongPassword,
		"password2": strongPassword,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}
