package pages

import (
	"context"
	"io"
	"strconv"

	"rifas-storefront/internal/config"
	"rifas-storefront/internal/models"
	"rifas-storefront/web/templates/components"

	"github.com/a-h/templ"
)

// CheckoutView is the checkout form as the controller left it
type CheckoutView struct {
	Storefront           config.Storefront
	Selection            models.CartSelection
	Form                 models.OrderForm
	Errors               models.ValidationErrors
	Provinces            []models.Province
	Cities               []models.City
	CityEnabled          bool
	ProvincesUnavailable bool
	Editable             bool
	Message              string
}

var fieldLabels = map[models.FieldName]string{
	models.FieldFirstName:      "Nombre",
	models.FieldLastName:       "Apellido",
	models.FieldIdentityNumber: "Cédula o pasaporte",
	models.FieldProvince:       "Provincia",
	models.FieldCity:           "Ciudad",
	models.FieldEmail:          "Email",
	models.FieldPhone:          "Teléfono (opcional)",
	models.FieldPaymentProof:   "Comprobante de pago",
}

// CheckoutPage renders the order summary, the bank accounts and the form
func CheckoutPage(v CheckoutView) templ.Component {
	return Layout("Checkout", v.Storefront.SiteName, v.Storefront.WhatsAppURL(), checkoutBody(v))
}

func checkoutBody(v CheckoutView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := components.NewWriter(out)
		focus, _ := v.Errors.First()

		w.Raw(`<div class="grid gap-8 md:grid-cols-3">
<aside class="bg-white rounded-xl shadow p-6 h-fit">
	<h2 class="text-lg font-bold text-gray-900 mb-4">Tu pedido</h2>
	<p class="text-gray-700">`)
		w.Text(v.Selection.RaffleName)
		w.Raw(`</p>
	<p class="text-gray-600">`)
		w.Text(strconv.Itoa(v.Selection.UnitQuantity) + " números")
		w.Raw(`</p>
	<p class="text-2xl font-bold mt-2">`)
		w.Text(v.Selection.FormattedTotal())
		w.Raw(`</p>
</aside>
<section class="md:col-span-2 bg-white rounded-xl shadow p-6">
	<h2 class="text-lg font-bold text-gray-900 mb-2">Transfiere el total a una de estas cuentas</h2>
	`)
		w.Render(ctx, components.BankAccounts(v.Storefront.BankAccounts))

		if v.Message != "" {
			w.Raw(`
	<div class="mt-6 bg-red-50 border border-red-200 text-red-800 p-4 rounded-lg" role="alert">`)
			w.Text(v.Message)
			w.Raw(`</div>`)
		}

		w.Raw(`
	<form method="post" action="/checkout" enctype="multipart/form-data" class="mt-6 grid gap-4 md:grid-cols-2" novalidate>
		`)
		w.Render(ctx, components.CSRFField())

		for _, field := range models.FormFieldOrder {
			w.Raw(`
		<div>
			<label for="` + string(field) + `" class="block text-sm font-medium text-gray-700 mb-1">`)
			w.Text(fieldLabels[field])
			w.Raw(`</label>
			`)
			switch field {
			case models.FieldProvince:
				writeProvinceSelect(w, v, field == focus)
			case models.FieldCity:
				w.Render(ctx, components.CityOptions(v.Cities, v.Form.City, v.CityEnabled, field == focus))
			case models.FieldPaymentProof:
				writeProofInput(w, v, field == focus)
			default:
				writeTextInput(w, v, field, field == focus)
			}
			w.Render(ctx, components.FieldError(v.Errors, field))
			w.Raw(`
		</div>`)
		}

		w.Raw(`
		<div class="md:col-span-2">
			<button type="submit" class="w-full bg-[#b91419] hover:bg-black text-white font-medium py-3 rounded-lg disabled:opacity-50"`)
		if !v.Editable {
			w.Raw(` disabled`)
		}
		w.Raw(`>Comprar</button>
		</div>
	</form>
</section>
</div>`)
		return w.Err()
	})
}

func writeTextInput(w *components.Writer, v CheckoutView, field models.FieldName, autofocus bool) {
	inputType := "text"
	switch field {
	case models.FieldEmail:
		inputType = "email"
	case models.FieldPhone:
		inputType = "tel"
	}
	w.Raw(`<input type="` + inputType + `" id="` + string(field) + `" name="` + string(field) + `" value="`)
	w.Text(v.Form.Value(field))
	w.Raw(`" class="`)
	w.Raw(inputClass(v.Errors, field))
	w.Raw(`"`)
	if autofocus {
		w.Raw(` autofocus`)
	}
	w.Raw(`>`)
}

func writeProvinceSelect(w *components.Writer, v CheckoutView, autofocus bool) {
	if v.ProvincesUnavailable {
		w.Raw(`<select id="provincia" name="provincia" class="w-full border border-gray-300 rounded-lg px-3 py-2" disabled><option value="">Selecciona una provincia</option></select>
			<p class="mt-1 text-sm text-red-600">Error al cargar las provincias</p>`)
		return
	}

	w.Raw(`<select id="provincia" name="provincia" hx-get="/checkout/cities" hx-target="#ciudad" hx-swap="outerHTML" class="`)
	w.Raw(inputClass(v.Errors, models.FieldProvince))
	w.Raw(`"`)
	if autofocus {
		w.Raw(` autofocus`)
	}
	w.Raw(`>
				<option value="">Selecciona una provincia</option>`)
	for _, p := range v.Provinces {
		w.Raw(`
				<option value="`)
		w.Text(p.ID)
		w.Raw(`"`)
		if p.ID == v.Form.Province {
			w.Raw(` selected`)
		}
		w.Raw(`>`)
		w.Text(p.Name)
		w.Raw(`</option>`)
	}
	w.Raw(`
			</select>`)
}

func writeProofInput(w *components.Writer, v CheckoutView, autofocus bool) {
	w.Raw(`<input type="file" id="recive" name="recive" accept="image/*,application/pdf" class="`)
	w.Raw(inputClass(v.Errors, models.FieldPaymentProof))
	w.Raw(`"`)
	if autofocus {
		w.Raw(` autofocus`)
	}
	w.Raw(`>`)

	proof := v.Form.PaymentProof
	switch {
	case proof == nil:
	case proof.PreviewURL != "":
		w.Raw(`
			<img src="`)
		// data: URLs are produced by the preview service, not user input
		w.Text(proof.PreviewURL)
		w.Raw(`" alt="Vista previa" class="mt-2 w-[150px] h-[150px] object-contain border rounded-lg">`)
	default:
		w.Raw(`
			<p class="mt-2 text-sm text-gray-600">Documento seleccionado: `)
		w.Text(proof.Filename)
		w.Raw(`</p>`)
	}
	if proof != nil {
		w.Raw(`
			<p class="mt-1 text-xs text-gray-500">Se usará este comprobante si no eliges otro archivo.</p>`)
	}
}
