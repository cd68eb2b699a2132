package main

import (
	"net/http"
	"time"

	"rifas-storefront/internal/handlers"
	"rifas-storefront/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
)

// Attempts allowed per client on the write endpoints that reach the raffle API
const (
	submitAttempts = 10
	submitWindow   = time.Minute
)

type routerDeps struct {
	production bool
	sessions   sessions.Store
	storefront *handlers.StorefrontHandler
	health     *handlers.HealthHandler
	logger     zerolog.Logger
	staticDir  string
}

func newRouter(deps routerDeps) http.Handler {
	csrf := middleware.NewCSRFMiddleware(deps.sessions, deps.logger)
	limit := middleware.RateLimit(submitAttempts, submitWindow)
	bodyLimit := middleware.BodyLimit(handlers.MaxProofSize + 1<<20)

	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.LoggingMiddleware(deps.logger))
	r.Use(middleware.ErrorHandlingMiddleware(deps.logger))
	r.Use(middleware.SecurityHeaders(deps.production))
	r.Use(csrf.EnsureCSRFToken)

	r.NotFound(middleware.NotFoundHandler().ServeHTTP)
	r.MethodNotAllowed(middleware.MethodNotAllowedHandler().ServeHTTP)

	// Static files
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(deps.staticDir))))

	r.Get("/health", deps.health.Health)

	h := deps.storefront
	r.Get("/", h.HomePage)

	r.Group(func(r chi.Router) {
		r.Use(bodyLimit)
		r.Use(csrf.CSRFProtection)

		r.Post("/cart", h.SelectPackage)
		r.Post("/cart/stepper", h.Stepper)
		r.With(limit).Post("/consult", h.ConsultNumbers)
	})

	r.Route("/checkout", func(r chi.Router) {
		r.Get("/", h.CheckoutPage)
		r.Get("/cities", h.Cities)
		r.Get("/success", h.Success)
		r.Get("/countdown", h.Countdown)

		r.With(bodyLimit, csrf.CSRFProtection, limit).Post("/", h.ProcessCheckout)
	})

	return r
}
