package httputil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func rateLimitedHandler(perMinute, burst int) http.Handler {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return RateLimitMiddleware(perMinute, burst)(ok)
}

func doRequest(handler http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitMiddleware_ExhaustsBurst(t *testing.T) {
	// Arrange: a slow refill so the bucket does not recover mid-test
	handler := rateLimitedHandler(1, 3)

	// Act / Assert: three requests pass, the fourth is throttled
	for i := 0; i < 3; i++ {
		rec := doRequest(handler, "10.0.0.1:51234")
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}

	rec := doRequest(handler, "10.0.0.1:51234")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "too many requests")
}

func TestRateLimitMiddleware_PerIPIsolation(t *testing.T) {
	// Arrange
	handler := rateLimitedHandler(1, 1)

	// Act: first client drains its bucket
	assert.Equal(t, http.StatusNoContent, doRequest(handler, "10.0.0.1:51234").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(handler, "10.0.0.1:51234").Code)

	// Assert: a different client IP has its own bucket
	assert.Equal(t, http.StatusNoContent, doRequest(handler, "10.0.0.2:51234").Code)
}

func TestRateLimitMiddleware_SamePortStrippedIP(t *testing.T) {
	// Arrange
	handler := rateLimitedHandler(1, 1)

	// Act: same IP reconnecting from a different source port
	assert.Equal(t, http.StatusNoContent, doRequest(handler, "10.0.0.1:51234").Code)
	rec := doRequest(handler, "10.0.0.1:60000")

	// Assert: the limiter keys on the IP, not the full address
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
