package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// RateLimit admits requests attempts per client IP within window. Rejected
// requests get 429 with Retry-After; HTMX requests get an inline notice.
func RateLimit(requests int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(tooManyRequests),
	)
}

func tooManyRequests(w http.ResponseWriter, r *http.Request) {
	if IsHTMXRequest(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`<div class="bg-red-50 border border-red-200 text-red-800 p-4 rounded-lg" role="alert">
	<p class="text-sm">Demasiados intentos. Espera un momento e intenta nuevamente.</p>
</div>`))
		return
	}
	http.Error(w, "Demasiados intentos", http.StatusTooManyRequests)
}
