package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// ErrorHandlingMiddleware recovers panics into a 500 response
func ErrorHandlingMiddleware(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}

					logger.Error().
						Str("request_id", GetRequestID(r.Context())).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Interface("panic", err).
						Bytes("stack", debug.Stack()).
						Msg("panic recovered")

					if IsHTMXRequest(r) {
						w.Header().Set("Content-Type", "text/html; charset=utf-8")
						w.WriteHeader(http.StatusInternalServerError)
						w.Write([]byte(`<div class="bg-red-50 border border-red-200 text-red-800 p-4 rounded-lg" role="alert">
	<p class="text-sm">Algo salió mal. Por favor, intenta nuevamente.</p>
</div>`))
					} else {
						http.Error(w, "Error interno del servidor", http.StatusInternalServerError)
					}
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// NotFoundHandler handles 404 errors
func NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)

		if IsHTMXRequest(r) {
			w.Write([]byte(`<div class="text-center py-12">
	<h3 class="text-lg font-medium text-gray-900 mb-2">Página no encontrada</h3>
	<a href="/" class="text-[#b91419] font-medium">Volver al inicio</a>
</div>`))
			return
		}

		w.Write([]byte(`<!DOCTYPE html>
<html lang="es">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Página no encontrada</title>
	<link href="/static/css/output.css" rel="stylesheet">
</head>
<body class="bg-gray-50">
	<div class="min-h-screen flex items-center justify-center">
		<div class="text-center">
			<h1 class="text-6xl font-bold text-gray-900 mb-4">404</h1>
			<p class="text-gray-600 mb-8">La página que buscas no existe.</p>
			<a href="/" class="bg-[#b91419] hover:bg-black text-white px-6 py-3 rounded-lg font-medium">Volver al inicio</a>
		</div>
	</div>
</body>
</html>`))
	})
}

// MethodNotAllowedHandler handles 405 errors
func MethodNotAllowedHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Método no permitido", http.StatusMethodNotAllowed)
	})
}
