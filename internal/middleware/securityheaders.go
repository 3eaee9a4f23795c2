package middleware

import (
	"net/http"
)

const (
	// APIContentSecurityPolicy is used for JSON responses
	APIContentSecurityPolicy = "default-src 'none'"
	// PageContentSecurityPolicy allows the dashboard page its own stylesheet and form posts
	PageContentSecurityPolicy = "default-src 'none'; style-src 'self'; img-src 'self' data:; form-action 'self'; frame-ancestors 'none'; base-uri 'none'"
)

// SecurityHeaders sets security headers on all responses. An empty csp means APIContentSecurityPolicy.
func SecurityHeaders(enableHSTS bool, csp string) func(http.Handler) http.Handler {
	if csp == "" {
		csp = APIContentSecurityPolicy
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			w.Header().Set("Content-Security-Policy", csp)

			// HSTS only over TLS and when enabled, so local development keeps working
			if enableHSTS && r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
			}

			next.ServeHTTP(w, r)
		})
	}
}
