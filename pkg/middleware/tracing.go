package middleware

import (
	"net/http"

	"github.com/AustinPardosi/IR-System-BE/pkg/logger"
	"github.com/AustinPardosi/IR-System-BE/pkg/tracing"
)

// Tracing opens a root span per request, keyed by the request id, and logs
// the span tree when the handler returns. It must run after RequestID.
func Tracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracing.StartSpan(r.Context(), r.Method+" "+r.URL.Path, logger.RequestIDFromContext(r.Context()))
		defer func() {
			span.End()
			span.Log()
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
