package cart

import (
	"strconv"
	"strings"

	"rifas-storefront/internal/models"

	"github.com/shopspring/decimal"
)

// CheckoutRoute is where a selection navigates to
const CheckoutRoute = "/checkout"

// DefaultBundleQuantities are the ticket bundles offered on the landing page
var DefaultBundleQuantities = []int{5, 10, 15, 20, 25, 30}

// Bundles prices each quantity at unitPrice × quantity
func Bundles(unitPrice decimal.Decimal, quantities []int) []models.TicketPackage {
	packages := make([]models.TicketPackage, 0, len(quantities))
	for _, q := range quantities {
		if q < 1 {
			continue
		}
		packages = append(packages, models.TicketPackage{
			Quantity: q,
			Price:    unitPrice.Mul(decimal.NewFromInt(int64(q))),
		})
	}
	return packages
}

// Stepper is the free-form quantity control. Its value never drops below 1.
type Stepper struct {
	value int
}

// NewStepper starts the stepper at the given value, clamped to 1
func NewStepper(initial int) *Stepper {
	if initial < 1 {
		initial = 1
	}
	return &Stepper{value: initial}
}

func (s *Stepper) Value() int {
	return s.value
}

func (s *Stepper) Increment() {
	s.value++
}

func (s *Stepper) Decrement() {
	if s.value > 1 {
		s.value--
	}
}

// SetRaw applies direct numeric entry; non-numeric or non-positive input becomes 1
func (s *Stepper) SetRaw(raw string) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		n = 1
	}
	s.value = n
}

// Apply runs a stepper operation posted by the view: "inc", "dec" or a direct entry
func (s *Stepper) Apply(op, raw string) {
	switch op {
	case "inc":
		s.Increment()
	case "dec":
		s.Decrement()
	default:
		s.SetRaw(raw)
	}
}

// Selector turns a bundle or custom quantity into the cart selection
type Selector struct {
	store  *Store
	raffle *models.Raffle
}

// NewSelector creates a selector for the given raffle
func NewSelector(store *Store, raffle *models.Raffle) *Selector {
	return &Selector{store: store, raffle: raffle}
}

// Choose stores the selection for quantity tickets and returns the route to
// navigate to next.
func (s *Selector) Choose(quantity int) (models.CartSelection, string, error) {
	sel := models.NewCartSelection(s.raffle.ID, s.raffle.Title, s.raffle.Price, quantity)
	if err := s.store.SetSelection(sel); err != nil {
		return sel, CheckoutRoute, err
	}
	return sel, CheckoutRoute, nil
}
