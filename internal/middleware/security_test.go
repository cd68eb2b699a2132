package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecurityHeaders(t *testing.T) {
	tests := []struct {
		name       string
		production bool
		wantHSTS   bool
	}{
		{"development", false, false},
		{"production", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			SecurityHeaders(tt.production)(okHandler()).ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

			assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
			assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
			assert.Equal(t, "1; mode=block", rr.Header().Get("X-XSS-Protection"))
			assert.Equal(t, tt.wantHSTS, rr.Header().Get("Strict-Transport-Security") != "")
		})
	}
}

func TestBodyLimit(t *testing.T) {
	var readErr error
	handler := BodyLimit(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	t.Run("declared length over limit", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest("POST", "/", strings.NewReader("0123456789")))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	})

	t.Run("undeclared length over limit", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", io.NopCloser(strings.NewReader("0123456789")))
		req.ContentLength = -1
		handler.ServeHTTP(httptest.NewRecorder(), req)
		assert.Error(t, readErr)
	})

	t.Run("under limit", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest("POST", "/", strings.NewReader("ok")))
		assert.NoError(t, readErr)
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestGenerateCSRFToken(t *testing.T) {
	a, b := GenerateCSRFToken(), GenerateCSRFToken()
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func TestIsHTMXRequest(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	assert.False(t, IsHTMXRequest(req))
	req.Header.Set("HX-Request", "true")
	assert.True(t, IsHTMXRequest(req))
}
