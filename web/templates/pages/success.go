package pages

import (
	"context"
	"io"
	"strconv"

	"rifas-storefront/internal/config"
	"rifas-storefront/web/templates/components"

	"github.com/a-h/templ"
)

// SuccessView is the post-order confirmation
type SuccessView struct {
	Storefront config.Storefront
	Message    string
	Seconds    int
}

// SuccessPage confirms the order and counts down to the landing page. The
// countdown streams from /checkout/countdown; without JavaScript a meta
// refresh does the redirect.
func SuccessPage(v SuccessView) templ.Component {
	return Layout("Compra exitosa", v.Storefront.SiteName, v.Storefront.WhatsAppURL(), successBody(v))
}

func successBody(v SuccessView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := components.NewWriter(out)
		seconds := strconv.Itoa(v.Seconds)
		w.Raw(`<noscript><meta http-equiv="refresh" content="` + seconds + `;url=/"></noscript>
<section class="bg-white rounded-xl shadow p-12 text-center" data-countdown="/checkout/countdown">
	<h1 class="text-2xl font-bold text-green-700 mb-2">¡Compra realizada con éxito!</h1>
	<p class="text-gray-700 mb-6">`)
		w.Text(v.Message)
		w.Raw(`</p>
	<p class="text-gray-600">Serás redirigido en <span data-countdown-value>` + seconds + `</span> segundos.</p>
	<a href="/" class="inline-block mt-6 text-[#b91419] font-medium">Volver al inicio</a>
</section>`)
		return w.Err()
	})
}
