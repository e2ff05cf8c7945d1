package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/AustinPardosi/IR-System-BE/pkg/metrics"
)

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.code == 0 {
		r.code = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.code == 0 {
		r.code = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// Metrics records request count, latency, and in-flight gauge per method and
// path.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			m.HTTPRequestsInFlight.Inc()
			rec := &statusRecorder{ResponseWriter: w}

			defer func() {
				m.HTTPRequestsInFlight.Dec()
				code := rec.code
				if code == 0 {
					code = http.StatusOK
				}
				m.HTTPRequestsTotal.WithLabelValues(
					r.Method, r.URL.Path, strconv.Itoa(code)).Inc()
				m.HTTPRequestDuration.WithLabelValues(
					r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
			}()

			next.ServeHTTP(rec, r)
		})
	}
}
