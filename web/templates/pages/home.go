package pages

import (
	"context"
	"io"

	"rifas-storefront/internal/config"
	"rifas-storefront/internal/models"
	"rifas-storefront/web/templates/components"

	"github.com/a-h/templ"
)

// HomeView is everything the landing page shows
type HomeView struct {
	Storefront     config.Storefront
	Raffle         *models.Raffle
	Bundles        []models.TicketPackage
	StepperValue   int
	Winners        []models.NumberRecord
	UnclaimedSlots int
	Consult        components.ConsultView
}

// HomePage renders the landing page. A nil raffle shows the closed notice.
func HomePage(v HomeView) templ.Component {
	return Layout("Inicio", v.Storefront.SiteName, v.Storefront.WhatsAppURL(), homeBody(v))
}

func homeBody(v HomeView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := components.NewWriter(out)

		if v.Raffle == nil {
			w.Raw(`<section class="bg-white rounded-xl shadow p-12 text-center">
	<h1 class="text-2xl font-bold text-gray-900 mb-2">No hay sorteos activos</h1>
	<p class="text-gray-600">Vuelve pronto para participar en nuestro próximo sorteo.</p>
</section>`)
			return w.Err()
		}

		r := v.Raffle
		w.Raw(`<section class="grid gap-8 md:grid-cols-2 mb-10">
	<div>`)
		if r.ImageURL != "" {
			w.Raw(`
		<img src="`)
			w.URL(r.ImageURL)
			w.Raw(`" alt="`)
			w.Text(r.Title)
			w.Raw(`" class="w-full rounded-xl shadow">`)
		}
		if len(r.Gallery) > 0 {
			w.Raw(`
		<div class="grid grid-cols-4 gap-2 mt-2">`)
			for _, img := range r.Gallery {
				w.Raw(`
			<img src="`)
				w.URL(img.URL)
				w.Raw(`" alt="`)
				w.Text(img.Name)
				w.Raw(`" class="rounded-lg" loading="lazy">`)
			}
			w.Raw(`
		</div>`)
		}
		w.Raw(`
	</div>
	<div>
		<h1 class="text-3xl font-bold text-gray-900 mb-4">`)
		w.Text(r.Title)
		w.Raw(`</h1>
		<div class="text-gray-700 whitespace-pre-line mb-6">`)
		w.Raw(descriptionHTML(r.Description))
		w.Raw(`</div>
		<p class="text-lg font-semibold mb-2">Cada número: `)
		w.Text(models.FormatPrice(r.Price))
		w.Raw(`</p>
		<div class="w-full bg-gray-200 rounded-full h-4" role="progressbar" aria-label="Números vendidos">
			<div class="bg-[#b91419] h-4 rounded-full" style="width: `)
		w.Text(formatPercent(r.OccupancyPercentage()))
		w.Raw(`"></div>
		</div>
		<p class="text-sm text-gray-600 mt-1">`)
		w.Text(formatPercent(r.OccupancyPercentage()) + " vendido")
		w.Raw(`</p>
	</div>
</section>
<section class="mb-10">
	<h2 class="text-2xl font-bold text-gray-900 mb-4">¡Adquiere tus números!</h2>
	<div class="grid grid-cols-2 md:grid-cols-3 gap-4 mb-6">`)
		for _, pkg := range v.Bundles {
			w.Render(ctx, components.PackageCard(pkg))
		}
		w.Raw(`
	</div>
	`)
		w.Render(ctx, components.Stepper(v.StepperValue))
		w.Raw(`
</section>
<div class="grid gap-8 md:grid-cols-2">
	`)
		w.Render(ctx, components.WinnersBoard(v.Winners, v.UnclaimedSlots))
		w.Raw(`
	`)
		w.Render(ctx, components.ConsultForm(v.Consult))
		w.Raw(`
</div>`)
		return w.Err()
	})
}
