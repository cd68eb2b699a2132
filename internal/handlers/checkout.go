package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"rifas-storefront/internal/cart"
	"rifas-storefront/internal/checkout"
	"rifas-storefront/internal/models"
	"rifas-storefront/internal/services"
	"rifas-storefront/web/templates/components"
	"rifas-storefront/web/templates/pages"

	"github.com/gorilla/sessions"
)

const (
	// MaxProofSize bounds the payment proof upload
	MaxProofSize = 10 << 20

	orderFlashKey = "order"

	// heldProofKey is the session value naming the proof kept for a retry
	heldProofKey = "held_proof"

	// countdownKey marks a success page whose countdown has not run yet
	countdownKey = "countdown"

	// MsgOrderReceived is shown when the API acknowledged without a message
	MsgOrderReceived = "Tu compra fue registrada. Revisa tu correo."
)

// textFields are the free-text checkout inputs
var textFields = []models.FieldName{
	models.FieldIdentityNumber,
	models.FieldFirstName,
	models.FieldLastName,
	models.FieldPhone,
	models.FieldEmail,
}

// CheckoutPage renders the checkout form for the cart selection
func (h *StorefrontHandler) CheckoutPage(w http.ResponseWriter, r *http.Request) {
	sel, ok := h.cartFor(w, r).Selection()
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	c := h.newController(r, &sel)
	h.render(w, r, http.StatusOK, pages.CheckoutPage(h.checkoutView(c)))
}

// ProcessCheckout validates the posted form and submits the order
func (h *StorefrontHandler) ProcessCheckout(w http.ResponseWriter, r *http.Request) {
	store := h.cartFor(w, r)
	sel, ok := store.Selection()
	if !ok {
		handleRedirect(w, r, "/")
		return
	}

	if err := r.ParseMultipartForm(MaxProofSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "El comprobante es demasiado grande", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Datos inválidos", http.StatusBadRequest)
		return
	}

	session := h.session(r)
	c := h.newController(r, &sel, checkout.WithSuccessHook(h.orderCompleted(w, r, store)))

	for _, field := range textFields {
		c.SetField(field, strings.TrimSpace(r.FormValue(string(field))))
	}
	c.SelectProvince(r.FormValue(string(models.FieldProvince)))
	if err := c.SelectCity(r.FormValue(string(models.FieldCity))); err != nil {
		h.log(r).Debug().Str("ciudad", r.FormValue(string(models.FieldCity))).Msg("city outside the selected province")
	}

	proof, err := readProof(r)
	if err != nil {
		h.log(r).Warn().Err(err).Msg("failed to read payment proof")
	}
	heldToken, _ := session.Values[heldProofKey].(string)
	fromHold := false
	if proof == nil && heldToken != "" {
		proof = h.heldProof(r, heldToken)
		fromHold = proof != nil
	}
	switch {
	case proof == nil:
	case !services.IsAcceptedProofType(proof.ContentType):
		h.log(r).Info().Str("content_type", proof.ContentType).Msg("rejected payment proof type")
	default:
		c.AttachProof(proof)
	}

	err = c.Submit(r.Context())

	var invalid *models.ValidationError
	switch {
	case err == nil:
		handleRedirect(w, r, "/checkout/success")
	case errors.Is(err, models.ErrCartEmpty):
		handleRedirect(w, r, "/")
	case errors.As(err, &invalid):
		h.log(r).Info().Str("field", string(invalid.Field())).Msg("checkout form invalid")
		h.keepProof(w, r, session, c, heldToken, fromHold)
		h.render(w, r, http.StatusUnprocessableEntity, pages.CheckoutPage(h.checkoutView(c)))
	default:
		h.keepProof(w, r, session, c, heldToken, fromHold)
		h.render(w, r, http.StatusBadGateway, pages.CheckoutPage(h.checkoutView(c)))
	}
}

// heldProof loads the proof kept from an earlier attempt
func (h *StorefrontHandler) heldProof(r *http.Request, token string) *models.PaymentProof {
	if h.holds == nil {
		return nil
	}
	proof, err := h.holds.Get(r.Context(), token)
	if err != nil {
		h.log(r).Warn().Err(err).Msg("failed to load held payment proof")
		return nil
	}
	return proof
}

// keepProof holds the attached proof so the next attempt can reuse it. A
// proof that cannot be held is detached, so the page never shows a file the
// next request will not carry.
func (h *StorefrontHandler) keepProof(w http.ResponseWriter, r *http.Request, session *sessions.Session, c *checkout.Controller, heldToken string, fromHold bool) {
	if fromHold {
		return
	}

	proof := c.Form().PaymentProof
	if proof == nil {
		if heldToken != "" {
			h.releaseProof(r, session, heldToken)
			if err := session.Save(r, w); err != nil {
				h.log(r).Error().Err(err).Msg("failed to save session")
			}
		}
		return
	}

	if h.holds == nil {
		c.ClearProof()
		return
	}
	token, err := h.holds.Put(r.Context(), proof)
	if err != nil {
		h.log(r).Warn().Err(err).Msg("failed to hold payment proof")
		c.ClearProof()
		return
	}
	if heldToken != "" {
		h.releaseProof(r, session, heldToken)
	}

	session.Values[heldProofKey] = token
	if err := session.Save(r, w); err != nil {
		h.log(r).Error().Err(err).Msg("failed to save held payment proof")
		h.releaseProof(r, session, token)
		c.ClearProof()
	}
}

// releaseProof forgets a held proof and its session reference
func (h *StorefrontHandler) releaseProof(r *http.Request, session *sessions.Session, token string) {
	delete(session.Values, heldProofKey)
	if h.holds == nil {
		return
	}
	if err := h.holds.Drop(r.Context(), token); err != nil {
		h.log(r).Warn().Err(err).Msg("failed to drop held payment proof")
	}
}

// orderCompleted clears the cart, archives the proof, drops the cached
// raffle and leaves the acknowledgment for the success page
func (h *StorefrontHandler) orderCompleted(w http.ResponseWriter, r *http.Request, store *cart.Store) checkout.SuccessHook {
	return func(ctx context.Context, order models.OrderForm, ack *models.OrderAck) {
		if err := store.Clear(); err != nil {
			h.log(r).Error().Err(err).Msg("failed to clear cart")
		}
		if h.archive != nil && order.PaymentProof != nil {
			h.archive.ArchiveAsync(ctx, order.RaffleID, order.PaymentProof)
		}
		h.catalog.InvalidateRaffle(ctx)

		session := h.session(r)
		if token, ok := session.Values[heldProofKey].(string); ok {
			h.releaseProof(r, session, token)
		}
		session.AddFlash(ack.Message, orderFlashKey)
		if err := session.Save(r, w); err != nil {
			h.log(r).Error().Err(err).Msg("failed to save order flash")
		}
	}
}

// Cities renders the city select for the chosen province
func (h *StorefrontHandler) Cities(w http.ResponseWriter, r *http.Request) {
	provinces, err := h.catalog.Provinces(r.Context())
	if err != nil {
		h.log(r).Warn().Err(err).Msg("failed to load provinces")
		h.render(w, r, http.StatusOK, components.CityOptions(nil, "", false, false))
		return
	}

	c := checkout.New(nil, provinces, nil)
	c.SelectProvince(r.URL.Query().Get(string(models.FieldProvince)))
	h.render(w, r, http.StatusOK, components.CityOptions(c.Cities(), "", c.CityEnabled(), false))
}

// Success confirms the order and arms the redirect countdown. Without a
// fresh order acknowledgment it sends the visitor home.
func (h *StorefrontHandler) Success(w http.ResponseWriter, r *http.Request) {
	session := h.session(r)
	flashes := session.Flashes(orderFlashKey)
	if len(flashes) == 0 {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	message := MsgOrderReceived
	if text, ok := flashes[0].(string); ok && text != "" {
		message = text
	}
	session.Values[countdownKey] = true
	if err := session.Save(r, w); err != nil {
		h.log(r).Error().Err(err).Msg("failed to consume order flash")
	}

	h.render(w, r, http.StatusOK, pages.SuccessPage(pages.SuccessView{
		Storefront: h.storefront,
		Message:    message,
		Seconds:    checkout.CountdownSteps,
	}))
}

// Countdown streams the post-success countdown as server-sent events: one
// "tick" per second and a final "done" carrying the landing route. It stops
// when the client goes away. A countdown that was not armed by the success
// page ends right away.
func (h *StorefrontHandler) Countdown(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)

	session := h.session(r)
	armed, _ := session.Values[countdownKey].(bool)
	if armed {
		delete(session.Values, countdownKey)
		if err := session.Save(r, w); err != nil {
			h.log(r).Error().Err(err).Msg("failed to disarm countdown")
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	send := func(event, data string) {
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
			return
		}
		if err := rc.Flush(); err != nil {
			h.log(r).Debug().Err(err).Msg("countdown flush failed")
		}
	}

	if !armed {
		send("done", "/")
		return
	}

	countdown := checkout.StartCountdown(r.Context(), checkout.CountdownSteps, h.countdownTick,
		func(remaining int) { send("tick", strconv.Itoa(remaining)) },
		func() { send("done", "/") },
	)
	<-countdown.Done()
}

func (h *StorefrontHandler) newController(r *http.Request, sel *models.CartSelection, opts ...checkout.Option) *checkout.Controller {
	base := []checkout.Option{checkout.WithLogger(*h.log(r))}
	if h.previewer != nil {
		base = append(base, checkout.WithPreviewer(h.previewer))
	}

	provinces, err := h.catalog.Provinces(r.Context())
	if err != nil {
		h.log(r).Warn().Err(err).Msg("failed to load provinces")
		base = append(base, checkout.WithProvincesUnavailable())
	}

	return checkout.New(sel, provinces, h.api, append(base, opts...)...)
}

func (h *StorefrontHandler) checkoutView(c *checkout.Controller) pages.CheckoutView {
	sel, _ := c.Selection()
	return pages.CheckoutView{
		Storefront:           h.storefront,
		Selection:            sel,
		Form:                 c.Form(),
		Errors:               c.Errors(),
		Provinces:            c.Provinces(),
		Cities:               c.Cities(),
		CityEnabled:          c.CityEnabled(),
		ProvincesUnavailable: c.ProvincesUnavailable(),
		Editable:             c.Editable(),
		Message:              c.Message(),
	}
}

// readProof returns the uploaded payment proof, or nil when none was sent
func readProof(r *http.Request) (*models.PaymentProof, error) {
	file, header, err := r.FormFile(string(models.FieldPaymentProof))
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxProofSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read payment proof: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	return &models.PaymentProof{
		Filename:    filepath.Base(header.Filename),
		ContentType: contentType,
		Data:        data,
	}, nil
}
