package middleware

import (
	"net/http"
	"time"
)

// Timeout bounds handler execution at d via http.TimeoutHandler, which also
// puts a matching deadline on the request context. Long-running handlers
// (training, bulk ingest) observe the context and abort their work.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	const body = `{"error":"request timed out"}`
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, body)
	}
}
