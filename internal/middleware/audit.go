package middleware

import (
	"net/http"

	logpkg "github.com/benvon/smart-planner/internal/logger"
	"github.com/benvon/smart-planner/internal/request"
	"go.uber.org/zap"
)

// Audit logs rejected requests (rate limited, oversized, wrong media type)
// with the client address so abuse can be traced.
func Audit(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			event := auditEvent(wrapped.statusCode)
			if event == "" {
				return
			}
			logger.Warn(event,
				zap.Int("status_code", wrapped.statusCode),
				zap.String("method", r.Method),
				zap.String("path", logpkg.SanitizePath(r.URL.Path)),
				zap.String("ip", logpkg.SanitizeString(request.ClientIP(r), logpkg.MaxGeneralStringLength)),
				zap.String("request_id", request.RequestIDFromContext(r.Context())),
			)
		})
	}
}

func auditEvent(status int) string {
	switch status {
	case http.StatusTooManyRequests:
		return "rate_limit_violation"
	case http.StatusRequestEntityTooLarge:
		return "oversized_request"
	case http.StatusUnsupportedMediaType:
		return "unsupported_media_type"
	default:
		return ""
	}
}
