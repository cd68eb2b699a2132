package models

import "github.com/shopspring/decimal"

// CartSelection is the single pending order intent carried from the package
// selector to checkout. JSON keys match the persisted storefront shape.
type CartSelection struct {
	RaffleID     string          `json:"id"`
	UnitQuantity int             `json:"numbers"`
	TotalPrice   decimal.Decimal `json:"price"`
	RaffleName   string          `json:"name"`
}

// TicketPackage is a fixed (quantity, price) bundle offered on the landing page
type TicketPackage struct {
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// NewCartSelection builds a selection whose total always equals
// unitPrice × quantity. Quantities below 1 are raised to 1.
func NewCartSelection(raffleID, raffleName string, unitPrice decimal.Decimal, quantity int) CartSelection {
	if quantity < 1 {
		quantity = 1
	}
	if unitPrice.IsNegative() {
		unitPrice = decimal.Zero
	}
	return CartSelection{
		RaffleID:     raffleID,
		UnitQuantity: quantity,
		TotalPrice:   unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
		RaffleName:   raffleName,
	}
}

// IsEmpty reports whether the selection carries no raffle
func (c CartSelection) IsEmpty() bool {
	return c.RaffleID == "" || c.UnitQuantity < 1
}

// FormattedTotal renders the total the way the storefront displays prices
func (c CartSelection) FormattedTotal() string {
	return FormatPrice(c.TotalPrice)
}

// FormatPrice renders an amount as "$75" or "$7.50"
func FormatPrice(d decimal.Decimal) string {
	if d.IsInteger() {
		return "$" + d.StringFixed(0)
	}
	return "$" + d.StringFixed(2)
}
