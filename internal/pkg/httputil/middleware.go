package httputil

import (
	"context"
	"net/http"
	"strings"

	"github.com/akulikov/walletd/internal/domain"
)

// CORSMiddleware creates CORS middleware that handles preflight requests
// and adds appropriate CORS headers to responses.
func CORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	originsSet := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		originsSet[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			// Check if origin is allowed
			if originsSet[origin] || originsSet["*"] {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			// Handle preflight OPTIONS request
			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+CSRFTokenHeader)
				w.Header().Set("Access-Control-Max-Age", "86400")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type contextKey string

// Context keys for storing user information.
const (
	UserIDKey contextKey = "user_id"
	RoleKey   contextKey = "role"
)

// TokenValidator interface for validating tokens.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (userID int64, role domain.Role, err error)
}

// AuthMiddleware creates authentication middleware. The access token is
// read from the Authorization header or, for browser clients, from the
// access_token cookie. Cookie-based requests with state-changing methods
// must carry a matching CSRF header.
func AuthMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, fromCookie := extractAccessToken(r)
			if token == "" {
				Error(w, http.StatusUnauthorized, "missing credentials")
				return
			}

			if fromCookie && isStateChangingMethod(r.Method) && !csrfTokenMatches(r) {
				Error(w, http.StatusForbidden, "csrf token mismatch")
				return
			}

			userID, role, err := validator.ValidateToken(r.Context(), token)
			if err != nil {
				Error(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			ctx = context.WithValue(ctx, RoleKey, role)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractAccessToken returns the token and whether it came from a cookie.
func extractAccessToken(r *http.Request) (string, bool) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1], false
		}
		return "", false
	}

	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}

	return "", false
}

func csrfTokenMatches(r *http.Request) bool {
	header := r.Header.Get(CSRFTokenHeader)
	if header == "" {
		return false
	}
	cookie, err := r.Cookie(CSRFTokenCookie)
	if err != nil || cookie.Value == "" {
		return false
	}
	return header == cookie.Value
}

func isStateChangingMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// RequireRole creates RBAC middleware.
func RequireRole(minRole domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := r.Context().Value(RoleKey).(domain.Role)
			if !ok {
				Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			if !role.HasPermission(minRole) {
				Error(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetUserID extracts the user id from context.
func GetUserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserIDKey).(int64)
	return id, ok
}

// GetRole extracts role from context.
func GetRole(ctx context.Context) domain.Role {
	if role, ok := ctx.Value(RoleKey).(domain.Role); ok {
		return role
	}
	return ""
}
