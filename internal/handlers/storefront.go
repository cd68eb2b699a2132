package handlers

import (
	"context"
	"net/http"
	"time"

	"rifas-storefront/internal/cart"
	"rifas-storefront/internal/checkout"
	"rifas-storefront/internal/config"
	"rifas-storefront/internal/consult"
	"rifas-storefront/internal/middleware"
	"rifas-storefront/internal/models"

	"github.com/a-h/templ"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
)

// Catalog serves the cached raffle and province list
type Catalog interface {
	Raffle(ctx context.Context) (*models.Raffle, error)
	Provinces(ctx context.Context) ([]models.Province, error)
	InvalidateRaffle(ctx context.Context)
}

// RaffleClient is the part of the raffle API the handlers write through
type RaffleClient interface {
	checkout.OrderSubmitter
	consult.Looker
}

// ProofArchiver keeps a copy of accepted payment proofs
type ProofArchiver interface {
	ArchiveAsync(ctx context.Context, raffleID string, proof *models.PaymentProof)
}

// ProofHolder keeps an accepted proof between checkout attempts
type ProofHolder interface {
	Put(ctx context.Context, proof *models.PaymentProof) (string, error)
	Get(ctx context.Context, token string) (*models.PaymentProof, error)
	Drop(ctx context.Context, token string) error
}

// StorefrontHandler serves the landing page, the cart, checkout and the
// numbers lookup
type StorefrontHandler struct {
	storefront config.Storefront
	store      sessions.Store
	catalog    Catalog
	api        RaffleClient
	archive    ProofArchiver
	holds      ProofHolder
	previewer  checkout.Previewer
	logger     zerolog.Logger

	countdownTick time.Duration
}

// NewStorefrontHandler creates a new storefront handler. archive, holds and
// previewer may be nil; without holds a retry after a failed checkout has to
// upload the proof again.
func NewStorefrontHandler(
	storefront config.Storefront,
	store sessions.Store,
	catalog Catalog,
	api RaffleClient,
	archive ProofArchiver,
	holds ProofHolder,
	previewer checkout.Previewer,
	logger zerolog.Logger,
) *StorefrontHandler {
	return &StorefrontHandler{
		storefront: storefront,
		store:      store,
		catalog:    catalog,
		api:        api,
		archive:    archive,
		holds:      holds,
		previewer:  previewer,
		logger:     logger.With().Str("component", "storefront").Logger(),

		countdownTick: checkout.CountdownTick,
	}
}

func (h *StorefrontHandler) cartFor(w http.ResponseWriter, r *http.Request) *cart.Store {
	return cart.ForRequest(h.store, w, r)
}

// session returns the storefront session shared with the cart and CSRF token
func (h *StorefrontHandler) session(r *http.Request) *sessions.Session {
	session, err := h.store.Get(r, cart.SessionName)
	if session == nil {
		h.log(r).Warn().Err(err).Msg("failed to load session")
		session = sessions.NewSession(h.store, cart.SessionName)
	}
	return session
}

// render writes a component with the given status
func (h *StorefrontHandler) render(w http.ResponseWriter, r *http.Request, status int, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := component.Render(r.Context(), w); err != nil {
		h.log(r).Error().Err(err).Msg("failed to render page")
	}
}

// handleRedirect navigates with HX-Redirect for HTMX requests and a 303 otherwise
func handleRedirect(w http.ResponseWriter, r *http.Request, url string) {
	if middleware.IsHTMXRequest(r) {
		w.Header().Set("HX-Redirect", url)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// log returns the request scoped logger, falling back to the handler's
func (h *StorefrontHandler) log(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &h.logger
}
