package components

import (
	"context"
	"io"
	"strconv"
	"time"

	"rifas-storefront/internal/consult"
	"rifas-storefront/internal/models"

	"github.com/a-h/templ"
)

// CSRFField renders the hidden token input for plain form posts
func CSRFField() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := NewWriter(out)
		w.Raw(`<input type="hidden" name="csrf_token" value="`)
		w.Text(getCSRFToken(ctx))
		w.Raw(`">`)
		return w.Err()
	})
}

// FieldError renders the message under an invalid field
func FieldError(errs models.ValidationErrors, field models.FieldName) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		msg, ok := errs[field]
		if !ok {
			return nil
		}
		w := NewWriter(out)
		w.Raw(`<p class="mt-1 text-sm text-red-600" id="` + string(field) + `-error">`)
		w.Text(msg)
		w.Raw(`</p>`)
		return w.Err()
	})
}

// Notice renders a transient message; storefront.js removes it after ttl
func Notice(kind consult.NoticeKind, text string, ttl time.Duration) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := NewWriter(out)
		class := "bg-green-50 border-green-200 text-green-800"
		if kind == consult.NoticeError {
			class = "bg-red-50 border-red-200 text-red-800"
		}
		w.Raw(`<div class="mt-3 border p-3 rounded-lg text-sm ` + class + `" role="status" data-dismiss-after="`)
		w.Raw(strconv.FormatInt(ttl.Milliseconds(), 10))
		w.Raw(`">`)
		w.Text(text)
		w.Raw(`</div>`)
		return w.Err()
	})
}

// ConsultView is the state of the numbers lookup form
type ConsultView struct {
	Email  string
	Notice *consult.Notice
	Now    time.Time
}

// ConsultForm renders the numbers lookup form. It is its own HTMX swap target.
func ConsultForm(v ConsultView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := NewWriter(out)
		w.Raw(`<form id="consult-form" method="post" action="/consult" hx-post="/consult" hx-target="this" hx-swap="outerHTML" class="bg-white rounded-xl shadow p-6">
	<h2 class="text-xl font-bold text-gray-900 mb-2">Consulta tus números</h2>
	<p class="text-sm text-gray-600 mb-4">Ingresa el correo con el que compraste y te enviaremos tus números.</p>
	`)
		w.Render(ctx, CSRFField())
		w.Raw(`
	<div class="flex gap-2">
		<input type="email" name="email" value="`)
		w.Text(v.Email)
		w.Raw(`" placeholder="correo@ejemplo.com" class="flex-1 border border-gray-300 rounded-lg px-3 py-2">
		<button type="submit" class="bg-[#b91419] hover:bg-black text-white font-medium px-4 py-2 rounded-lg">Consultar</button>
	</div>`)
		if v.Notice != nil {
			w.Render(ctx, Notice(v.Notice.Kind, v.Notice.Text, v.Notice.ExpiresAt.Sub(v.Now)))
		}
		w.Raw(`
</form>`)
		return w.Err()
	})
}

// CityOptions renders the city select. It is swapped whole when the province changes.
func CityOptions(cities []models.City, selected string, enabled, autofocus bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := NewWriter(out)
		w.Raw(`<select id="ciudad" name="ciudad" class="w-full border border-gray-300 rounded-lg px-3 py-2"`)
		if !enabled {
			w.Raw(` disabled`)
		}
		if autofocus {
			w.Raw(` autofocus`)
		}
		w.Raw(`>
	<option value="">Selecciona una ciudad</option>`)
		for _, city := range cities {
			w.Raw(`
	<option value="`)
			w.Text(city.ID)
			w.Raw(`"`)
			if city.ID == selected {
				w.Raw(` selected`)
			}
			w.Raw(`>`)
			w.Text(city.Name)
			w.Raw(`</option>`)
		}
		w.Raw(`
</select>`)
		return w.Err()
	})
}
