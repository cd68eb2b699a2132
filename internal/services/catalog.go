package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"rifas-storefront/internal/models"
)

const (
	raffleCacheKey    = "catalog:raffle"
	provincesCacheKey = "catalog:provinces"
)

// CatalogSource is the read side of the raffle API
type CatalogSource interface {
	GetRaffle(ctx context.Context) (*models.Raffle, error)
	GetProvinces(ctx context.Context) ([]models.Province, error)
}

// CatalogService serves the raffle and the province list through a cache.
// Concurrent misses for the same key share one upstream call.
type CatalogService struct {
	source CatalogSource
	cache  Cache
	ttl    time.Duration
	group  singleflight.Group
	logger zerolog.Logger
}

// NewCatalogService creates a catalog over source. A nil cache disables caching.
func NewCatalogService(source CatalogSource, cache Cache, ttl time.Duration, logger zerolog.Logger) *CatalogService {
	return &CatalogService{
		source: source,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With().Str("component", "catalog").Logger(),
	}
}

// Raffle returns the current raffle
func (s *CatalogService) Raffle(ctx context.Context) (*models.Raffle, error) {
	return cached(ctx, s, raffleCacheKey, s.source.GetRaffle)
}

// Provinces returns the provinces with their cities
func (s *CatalogService) Provinces(ctx context.Context) ([]models.Province, error) {
	return cached(ctx, s, provincesCacheKey, s.source.GetProvinces)
}

// Warm loads both entries concurrently
func (s *CatalogService) Warm(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.Raffle(ctx)
		return err
	})
	g.Go(func() error {
		_, err := s.Provinces(ctx)
		return err
	})
	return g.Wait()
}

// InvalidateRaffle drops the cached raffle so the next read sees fresh numbers
func (s *CatalogService) InvalidateRaffle(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, raffleCacheKey); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate raffle cache")
	}
}

func cached[T any](ctx context.Context, s *CatalogService, key string, fetch func(context.Context) (T, error)) (T, error) {
	if value, ok := lookup[T](ctx, s, key); ok {
		return value, nil
	}

	ch := s.group.DoChan(key, func() (interface{}, error) {
		// The shared call must not die with the first caller's request
		value, err := fetch(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		s.store(ctx, key, value)
		return value, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

// lookup decodes a cache hit. Cache failures and corrupt entries read as misses.
func lookup[T any](ctx context.Context, s *CatalogService, key string) (T, bool) {
	var value T
	if s.cache == nil {
		return value, false
	}

	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		return value, false
	}
	if !ok {
		return value, false
	}

	if err := json.Unmarshal(data, &value); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("discarding corrupt cache entry")
		return value, false
	}
	return value, true
}

func (s *CatalogService) store(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to encode cache entry")
		return
	}
	if err := s.cache.Set(context.WithoutCancel(ctx), key, data, s.ttl); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}
