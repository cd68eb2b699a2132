package pages

import (
	"context"
	"io"

	"rifas-storefront/internal/middleware"
	"rifas-storefront/web/templates/components"

	"github.com/a-h/templ"
)

// Layout wraps a page body with the document shell. HTMX requests carry the
// CSRF token through hx-headers.
func Layout(title, siteName, whatsAppURL string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := components.NewWriter(out)
		w.Raw(`<!DOCTYPE html>
<html lang="es">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>`)
		w.Text(title + " | " + siteName)
		w.Raw(`</title>
	<link href="/static/css/output.css" rel="stylesheet">
	<script src="https://unpkg.com/htmx.org@1.9.12" defer></script>
	<script src="/static/js/storefront.js" defer></script>
</head>
<body class="bg-gray-50 min-h-screen" hx-headers='{"X-CSRF-Token": "`)
		w.Text(middleware.GetCSRFToken(ctx))
		w.Raw(`"}'>
	<header class="bg-black text-white">
		<div class="max-w-6xl mx-auto px-4 py-4 flex justify-between items-center">
			<a href="/" class="text-2xl font-bold">`)
		w.Text(siteName)
		w.Raw(`</a>`)
		if whatsAppURL != "" {
			w.Raw(`
			<a href="`)
			w.URL(whatsAppURL)
			w.Raw(`" target="_blank" rel="noopener" class="bg-green-500 hover:bg-green-600 px-4 py-2 rounded-lg text-sm font-medium">WhatsApp</a>`)
		}
		w.Raw(`
		</div>
	</header>
	<main class="max-w-6xl mx-auto px-4 py-8">
`)
		w.Render(ctx, body)
		w.Raw(`
	</main>
</body>
</html>`)
		return w.Err()
	})
}
