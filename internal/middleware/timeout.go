package middleware

import (
	"net/http"
	"time"
)

const (
	// DefaultRequestTimeout bounds handler time; it must exceed the problem fetch timeout
	DefaultRequestTimeout = 30 * time.Second

	timeoutBody = `{"success":false,"error":"Service Unavailable","message":"Request Timeout"}`
)

// Timeout cancels the request context after timeout and answers 503 with a JSON error body
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, timeoutBody)
	}
}
