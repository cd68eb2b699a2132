package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
)

const (
	// SessionName is the cookie shared with the cart store
	SessionName = "session"

	csrfSessionKey = "csrf_token"
	csrfHeader     = "X-CSRF-Token"
	csrfFormField  = "csrf_token"
)

// CSRFMiddleware provides CSRF protection functionality
type CSRFMiddleware struct {
	store  sessions.Store
	logger zerolog.Logger
}

// NewCSRFMiddleware creates a new CSRF middleware
func NewCSRFMiddleware(store sessions.Store, logger zerolog.Logger) *CSRFMiddleware {
	return &CSRFMiddleware{
		store:  store,
		logger: logger.With().Str("component", "csrf").Logger(),
	}
}

// CSRFProtection middleware provides CSRF protection for state-changing requests
func (m *CSRFMiddleware) CSRFProtection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip CSRF check for safe methods
		if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		session, err := m.store.Get(r, SessionName)
		if err != nil {
			m.logger.Warn().Err(err).Str("request_id", GetRequestID(r.Context())).Msg("failed to read session")
			http.Error(w, "Error de sesión", http.StatusInternalServerError)
			return
		}

		sessionToken, _ := session.Values[csrfSessionKey].(string)

		requestToken := r.Header.Get(csrfHeader)
		if requestToken == "" {
			requestToken = r.FormValue(csrfFormField)
		}

		if sessionToken == "" || subtle.ConstantTimeCompare([]byte(requestToken), []byte(sessionToken)) != 1 {
			m.logger.Warn().
				Str("request_id", GetRequestID(r.Context())).
				Str("path", r.URL.Path).
				Bool("token_present", requestToken != "").
				Msg("csrf token mismatch")

			if IsHTMXRequest(r) {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`<div class="bg-red-50 border border-red-200 text-red-800 p-4 rounded-lg" role="alert">
	<p class="text-sm">Tu sesión expiró. Recarga la página e intenta nuevamente.</p>
</div>`))
			} else {
				http.Error(w, "CSRF token mismatch", http.StatusForbidden)
			}
			return
		}

		next.ServeHTTP(w, r)
	})
}

// EnsureCSRFToken middleware ensures a CSRF token is present in the session and context
func (m *CSRFMiddleware) EnsureCSRFToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := m.store.Get(r, SessionName)
		if err != nil {
			// a cookie signed with an old secret still yields a fresh session
			m.logger.Debug().Err(err).Msg("discarding unreadable session")
		}

		token, ok := session.Values[csrfSessionKey].(string)
		if !ok || token == "" {
			token = GenerateCSRFToken()
			session.Values[csrfSessionKey] = token
			if err := session.Save(r, w); err != nil {
				m.logger.Error().Err(err).Msg("failed to save csrf token")
			}
		}

		ctx := context.WithValue(r.Context(), csrfTokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetCSRFToken returns the token stored by EnsureCSRFToken
func GetCSRFToken(ctx context.Context) string {
	token, _ := ctx.Value(csrfTokenKey).(string)
	return token
}

// WithCSRFToken returns a context carrying token, for rendering outside the middleware chain
func WithCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, csrfTokenKey, token)
}
