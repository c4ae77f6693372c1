package httpserver

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"notifykit/internal/notify"
	logx "notifykit/pkg/logx"
)

// StoreFactory builds the notify store for one request.
type StoreFactory func() *notify.Store

// WithStore attaches a fresh store to every request context so handlers can
// reach it with notify.FromContext.
func WithStore(newStore StoreFactory, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if newStore == nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(notify.WithStore(r.Context(), newStore())))
	})
}

// withRateLimit rejects requests with 429 once the token bucket is empty.
func withRateLimit(perSec, burst int, next http.Handler) http.Handler {
	if perSec <= 0 {
		return next
	}
	lim := rate.NewLimiter(rate.Limit(perSec), max(burst, 1))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !lim.Allow() {
			w.Header().Set("Retry-After", "1")
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func withRequestLog(log logx.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Debug("http request",
			logx.String("method", r.Method),
			logx.String("path", r.URL.Path),
			logx.Int("status", rec.status),
			logx.Duration("took", time.Since(start)),
		)
	})
}
