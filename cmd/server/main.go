package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rifas-storefront/internal/config"
	"rifas-storefront/internal/handlers"
	"rifas-storefront/internal/models"
	"rifas-storefront/internal/services"

	"github.com/gorilla/sessions"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := config.NewLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checks := map[string]handlers.HealthCheck{}

	// Catalog cache: Redis when configured, in-process otherwise
	var cache services.Cache
	if cfg.Redis.URL != "" {
		redisCache, err := services.NewRedisCacheFromURL(ctx, cfg.Redis.URL, cfg.Redis.Prefix)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, using in-memory catalog cache")
			cache = services.NewMemoryCache()
		} else {
			defer redisCache.Close()
			cache = redisCache
			checks["cache"] = redisCache.Ping
			logger.Info().Msg("redis catalog cache connected")
		}
	} else {
		cache = services.NewMemoryCache()
	}

	api := services.NewRaffleAPI(services.RaffleAPIConfig{
		BaseURL:      cfg.RaffleAPI.BaseURL,
		CountriesURL: cfg.RaffleAPI.CountriesURL,
		Timeout:      cfg.RaffleAPI.Timeout,
	}, logger)

	catalog := services.NewCatalogService(api, cache, cfg.Redis.CatalogTTL, logger)

	warmCtx, cancelWarm := context.WithTimeout(ctx, 10*time.Second)
	if err := catalog.Warm(warmCtx); err != nil {
		logger.Warn().Err(err).Msg("catalog warm-up incomplete")
	}
	cancelWarm()

	checks["catalog"] = func(ctx context.Context) error {
		_, err := catalog.Raffle(ctx)
		if errors.Is(err, models.ErrRaffleUnavailable) {
			return nil
		}
		return err
	}

	// Payment proof archive (R2 or local disk)
	storage := services.NewStorageFactory(cfg, logger).CreateStorageService(ctx)
	archive := services.NewProofArchive(storage, logger)
	previewer := services.NewPreviewService()
	holds := services.NewProofHold(cache, cfg.Redis.ProofHoldTTL)

	// Create session store
	sessionStore := sessions.NewCookieStore([]byte(cfg.Session.Secret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.Session.MaxAge,
		HttpOnly: true,
		Secure:   cfg.Server.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}

	storefront := handlers.NewStorefrontHandler(cfg.Storefront, sessionStore, catalog, api, archive, holds, previewer, logger)

	router := newRouter(routerDeps{
		production: cfg.Server.IsProduction(),
		sessions:   sessionStore,
		storefront: storefront,
		health:     handlers.NewHealthHandler(checks),
		logger:     logger,
		staticDir:  "web/static/",
	})

	server := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Str("env", cfg.Server.Env).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
