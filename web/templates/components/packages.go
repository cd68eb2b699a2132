package components

import (
	"context"
	"io"
	"strconv"

	"rifas-storefront/internal/models"

	"github.com/a-h/templ"
)

// PackageCard renders one fixed bundle as a one-click purchase
func PackageCard(pkg models.TicketPackage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := NewWriter(out)
		qty := strconv.Itoa(pkg.Quantity)
		w.Raw(`<form method="post" action="/cart" hx-post="/cart" class="bg-white rounded-xl shadow p-4 text-center">
	`)
		w.Render(ctx, CSRFField())
		w.Raw(`
	<input type="hidden" name="cantidad" value="` + qty + `">
	<p class="text-3xl font-bold text-gray-900">` + qty + `</p>
	<p class="text-sm text-gray-500 mb-3">números</p>
	<button type="submit" class="w-full bg-[#b91419] hover:bg-black text-white font-medium py-2 rounded-lg">`)
		w.Text(models.FormatPrice(pkg.Price))
		w.Raw(`</button>
</form>`)
		return w.Err()
	})
}

// Stepper renders the free quantity control. It is its own HTMX swap target;
// the buy button posts the same form to the cart.
func Stepper(value int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := NewWriter(out)
		w.Raw(`<form id="stepper" method="post" action="/cart/stepper" hx-post="/cart/stepper" hx-target="this" hx-swap="outerHTML" class="bg-white rounded-xl shadow p-4 flex flex-col items-center gap-3">
	`)
		w.Render(ctx, CSRFField())
		w.Raw(`
	<p class="font-medium text-gray-900">¿Quieres otra cantidad?</p>
	<div class="flex items-center gap-2">
		<button type="submit" name="op" value="dec" class="w-10 h-10 rounded-full border border-gray-300" aria-label="Menos">-</button>
		<input type="number" name="cantidad" min="1" value="` + strconv.Itoa(value) + `" hx-post="/cart/stepper" hx-trigger="change" class="w-20 text-center border border-gray-300 rounded-lg py-2">
		<button type="submit" name="op" value="inc" class="w-10 h-10 rounded-full border border-gray-300" aria-label="Más">+</button>
	</div>
	<button type="submit" formaction="/cart" hx-post="/cart" class="w-full bg-[#b91419] hover:bg-black text-white font-medium py-2 rounded-lg">Comprar</button>
</form>`)
		return w.Err()
	})
}

// WinnersBoard lists the instant-prize numbers already awarded and the
// slots still open
func WinnersBoard(winners []models.NumberRecord, unclaimed int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := NewWriter(out)
		w.Raw(`<section class="bg-white rounded-xl shadow p-6">
	<h2 class="text-xl font-bold text-gray-900 mb-4">Premios instantáneos</h2>
	<ul class="grid grid-cols-2 md:grid-cols-5 gap-3">`)
		for _, n := range winners {
			w.Raw(`
		<li class="rounded-lg bg-yellow-100 text-yellow-900 text-center py-2 font-semibold line-through">`)
			w.Text(strconv.Itoa(n.ID))
			w.Raw(`</li>`)
		}
		for i := 0; i < unclaimed; i++ {
			w.Raw(`
		<li class="rounded-lg bg-gray-100 text-gray-500 text-center py-2">Por descubrir</li>`)
		}
		w.Raw(`
	</ul>
</section>`)
		return w.Err()
	})
}
