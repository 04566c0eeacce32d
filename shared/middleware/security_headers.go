package middleware

import (
	"net/http"
)

// APIPolicy is the Content-Security-Policy for a JSON-only API.
const APIPolicy = "default-src 'none'; frame-ancestors 'none'"

// SecurityHeaders adds the standard hardening headers to every response.
// isHTTPS adds Strict-Transport-Security; an empty csp sets no policy.
func SecurityHeaders(isHTTPS bool, csp string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			headers := w.Header()

			headers.Set("X-Frame-Options", "DENY")
			headers.Set("X-Content-Type-Options", "nosniff")
			headers.Set("Referrer-Policy", "no-referrer")
			headers.Set("Cache-Control", "no-store")

			if csp != "" {
				headers.Set("Content-Security-Policy", csp)
			}
			if isHTTPS {
				headers.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}
