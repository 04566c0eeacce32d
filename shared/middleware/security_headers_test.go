package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecurityHeaders(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	t.Run("plain http", func(t *testing.T) {
		rr := httptest.NewRecorder()
		SecurityHeaders(false, APIPolicy)(ok).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
		assert.Equal(t, APIPolicy, rr.Header().Get("Content-Security-Policy"))
		assert.Empty(t, rr.Header().Get("Strict-Transport-Security"))
	})

	t.Run("https without csp", func(t *testing.T) {
		rr := httptest.NewRecorder()
		SecurityHeaders(true, "")(ok).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, rr.Header().Get("Strict-Transport-Security"))
		assert.Empty(t, rr.Header().Get("Content-Security-Policy"))
	})
}
