package pages

import (
	"fmt"

	"rifas-storefront/internal/models"

	"github.com/microcosm-cc/bluemonday"
)

// descriptionPolicy allows the formatting the raffle back office produces
var descriptionPolicy = bluemonday.UGCPolicy()

// descriptionHTML sanitizes the raffle description, which arrives as HTML
func descriptionHTML(description string) string {
	return descriptionPolicy.Sanitize(description)
}

func formatPercent(p float64) string {
	return fmt.Sprintf("%.2f%%", p)
}

// inputClass highlights a field holding a validation error
func inputClass(errs models.ValidationErrors, field models.FieldName) string {
	base := "w-full border rounded-lg px-3 py-2 "
	if errs.Has(field) {
		return base + "border-red-500"
	}
	return base + "border-gray-300"
}
