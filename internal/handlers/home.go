package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"rifas-storefront/internal/cart"
	"rifas-storefront/internal/consult"
	"rifas-storefront/internal/middleware"
	"rifas-storefront/internal/models"
	"rifas-storefront/web/templates/components"
	"rifas-storefront/web/templates/pages"
)

// HomePage renders the landing page with the current raffle
func (h *StorefrontHandler) HomePage(w http.ResponseWriter, r *http.Request) {
	stepper := cart.NewStepper(1)
	stepper.SetRaw(r.URL.Query().Get("cantidad"))
	h.renderHome(w, r, http.StatusOK, stepper.Value(), components.ConsultView{})
}

func (h *StorefrontHandler) renderHome(w http.ResponseWriter, r *http.Request, status, stepperValue int, consultView components.ConsultView) {
	view := pages.HomeView{
		Storefront:   h.storefront,
		StepperValue: stepperValue,
		Consult:      consultView,
	}

	raffle, err := h.catalog.Raffle(r.Context())
	switch {
	case errors.Is(err, models.ErrRaffleUnavailable):
	case err != nil:
		h.log(r).Error().Err(err).Msg("failed to load raffle")
	default:
		view.Raffle = raffle
		view.Bundles = cart.Bundles(raffle.Price, h.storefront.BundleQuantities)
		view.Winners = raffle.Winners(h.storefront.PrizeSlots)
		view.UnclaimedSlots = raffle.UnclaimedPrizeSlots(h.storefront.PrizeSlots)
	}

	h.render(w, r, status, pages.HomePage(view))
}

// SelectPackage stores the chosen quantity in the cart and moves to checkout
func (h *StorefrontHandler) SelectPackage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Datos inválidos", http.StatusBadRequest)
		return
	}

	raffle, err := h.catalog.Raffle(r.Context())
	if err != nil {
		h.log(r).Warn().Err(err).Msg("package selected without an active raffle")
		handleRedirect(w, r, "/")
		return
	}

	stepper := cart.NewStepper(1)
	stepper.SetRaw(r.FormValue("cantidad"))

	sel, next, err := cart.NewSelector(h.cartFor(w, r), raffle).Choose(stepper.Value())
	if err != nil {
		h.log(r).Error().Err(err).Msg("failed to persist cart selection")
		http.Error(w, "No se pudo guardar tu selección", http.StatusInternalServerError)
		return
	}

	h.log(r).Info().
		Str("raffle_id", sel.RaffleID).
		Int("numbers", sel.UnitQuantity).
		Str("total", sel.TotalPrice.String()).
		Msg("package selected")

	handleRedirect(w, r, next)
}

// Stepper applies an increment, decrement or direct entry to the free
// quantity control
func (h *StorefrontHandler) Stepper(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Datos inválidos", http.StatusBadRequest)
		return
	}

	stepper := cart.NewStepper(1)
	stepper.SetRaw(r.FormValue("cantidad"))
	stepper.Apply(r.FormValue("op"), r.FormValue("cantidad"))

	if !middleware.IsHTMXRequest(r) {
		http.Redirect(w, r, "/?cantidad="+strconv.Itoa(stepper.Value())+"#stepper", http.StatusSeeOther)
		return
	}

	h.render(w, r, http.StatusOK, components.Stepper(stepper.Value()))
}

// ConsultNumbers asks the raffle API to email the visitor's numbers
func (h *StorefrontHandler) ConsultNumbers(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Datos inválidos", http.StatusBadRequest)
		return
	}

	raffleID := ""
	if raffle, err := h.catalog.Raffle(r.Context()); err == nil {
		raffleID = raffle.ID
	}

	// one instant for the whole request so the rendered ttl matches the notice
	now := time.Now()
	widget := consult.NewWidget(h.api, raffleID, func() time.Time { return now })
	notice := widget.SubmitEmail(r.Context(), r.FormValue("email"))

	h.log(r).Info().Str("kind", string(notice.Kind)).Msg("numbers lookup")

	view := components.ConsultView{Email: widget.Email(), Now: now}
	if active, ok := widget.Notice(); ok {
		view.Notice = &active
	}

	if middleware.IsHTMXRequest(r) {
		h.render(w, r, http.StatusOK, components.ConsultForm(view))
		return
	}
	h.renderHome(w, r, http.StatusOK, 1, view)
}
