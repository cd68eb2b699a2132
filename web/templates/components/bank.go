package components

import (
	"context"
	"io"

	"rifas-storefront/internal/config"

	"github.com/a-h/templ"
)

// BankAccounts renders the transfer destinations shown at checkout
func BankAccounts(accounts []config.BankAccount) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		if len(accounts) == 0 {
			return nil
		}
		w := NewWriter(out)
		w.Raw(`<div class="grid gap-4 md:grid-cols-2">`)
		for _, a := range accounts {
			w.Raw(`
	<div class="border border-gray-200 rounded-lg p-4 text-sm">`)
			if a.LogoURL != "" {
				w.Raw(`
		<img src="`)
				w.URL(a.LogoURL)
				w.Raw(`" alt="`)
				w.Text(a.Bank)
				w.Raw(`" class="h-8 mb-2">`)
			}
			w.Raw(`
		<p class="font-semibold text-gray-900">`)
			w.Text(a.Bank)
			w.Raw(`</p>
		<p>`)
			w.Text(a.AccountType + " " + a.Number)
			w.Raw(`</p>
		<p>`)
			w.Text(a.HolderName)
			w.Raw(`</p>
		<p class="text-gray-500">`)
			w.Text(a.HolderID)
			w.Raw(`</p>`)
			if a.QRCodeURL != "" {
				w.Raw(`
		<img src="`)
				w.URL(a.QRCodeURL)
				w.Raw(`" alt="QR" class="mt-2 w-32 h-32">`)
			}
			w.Raw(`
	</div>`)
		}
		w.Raw(`
</div>`)
		return w.Err()
	})
}
