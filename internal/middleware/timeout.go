package middleware

import (
	"net/http"
	"time"
)

// DefaultRequestTimeout bounds a whole request, including the AI call.
const DefaultRequestTimeout = 60 * time.Second

const timeoutBody = `{"success":false,"error":"Request Timeout","message":"The request took too long to complete"}`

// Timeout cancels the request context after timeout and answers 503.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, timeoutBody)
	}
}
