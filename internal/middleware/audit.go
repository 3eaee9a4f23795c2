package middleware

import (
	"net/http"

	logpkg "github.com/benvon/problem-dashboard/internal/logger"
	"github.com/benvon/problem-dashboard/internal/request"
	"go.uber.org/zap"
)

// Audit logs rejected requests: rate limit violations and oversized or malformed bodies
func Audit(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := newStatusRecorder(w)

			next.ServeHTTP(wrapped, r)

			var event string
			switch wrapped.statusCode {
			case http.StatusTooManyRequests:
				event = "rate_limit_violation"
			case http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
				event = "request_rejected"
			default:
				return
			}
			logger.Warn(event,
				zap.Int("status_code", wrapped.statusCode),
				zap.String("method", r.Method),
				zap.String("path", logpkg.SanitizePath(r.URL.Path)),
				zap.String("ip", logpkg.SanitizeString(request.ClientIP(r), logpkg.MaxGeneralStringLength)),
				zap.String("request_id", request.IDFromContext(r.Context())),
			)
		})
	}
}
