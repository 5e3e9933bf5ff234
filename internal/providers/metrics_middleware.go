package providers

import (
	"net/http"
	"time"
)

const unmatchedRoute = "unmatched"

// statusRecorder remembers the status a handler wrote; handlers that never
// call WriteHeader answered 200.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// InstrumentRoutes counts and times API calls per route pattern, e.g.
// "GET /applications/{app}/metrics", never per concrete path.
func InstrumentRoutes(metrics MetricsProviderInterface, api http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		began := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		api.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = unmatchedRoute
		}
		metrics.IncRequestsTotal(route, rec.status)
		metrics.ObserveRequestDuration(route, time.Since(began))
	})
}
