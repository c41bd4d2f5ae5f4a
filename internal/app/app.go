// Package app assembles the optimizer from configuration. It is shared by the
// server and the command-line runner so both resolve addresses and travel
// costs the same way.
package app

import (
	"context"
	"delivery-route-optimizer/internal/adapters/cache"
	"delivery-route-optimizer/internal/adapters/geocode"
	"delivery-route-optimizer/internal/adapters/traffic"
	"delivery-route-optimizer/internal/config"
	"delivery-route-optimizer/internal/platform/db"
	"delivery-route-optimizer/internal/platform/httpx"
	"delivery-route-optimizer/internal/ports"
	"delivery-route-optimizer/internal/services"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Wired optimizer plus the connections it holds open.
type App struct {
	Optimizer *services.Optimizer
	// HTTP clients of the remote providers, for health reporting.
	Upstreams []*httpx.Client

	closers []func() error
}

// Release database and Redis connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

// Build wires caches, provider adapters and the optimizer.
//
// Every external piece is optional: without a geocoder URL only seeded and
// cached addresses resolve, and without a traffic URL every leg is a
// closed-form estimate.
func Build(ctx context.Context, cfg config.Config, logger zerolog.Logger) (_ *App, err error) {
	a := &App{}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	geocodeCache, err := a.geocodeCache(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	geocoder, err := a.buildGeocoder(cfg, geocodeCache, logger)
	if err != nil {
		return nil, err
	}

	var providers []ports.TrafficProvider
	if cfg.TrafficURL != "" {
		client := httpx.New(httpx.Config{
			Name:    "traffic",
			APIKey:  cfg.TrafficAPIKey,
			Timeout: cfg.Tuning.ProviderTimeout,
		})
		a.Upstreams = append(a.Upstreams, client)
		p, err := traffic.NewHTTPProvider(cfg.TrafficURL, client)
		if err != nil {
			return nil, fmt.Errorf("build app: %w", err)
		}
		providers = append(providers, p)
	}

	var limiter *rate.Limiter
	if cfg.Tuning.ProviderInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.Tuning.ProviderInterval), 1)
	}

	estimator := services.NewEstimator(services.EstimatorConfig{
		Providers: providers,
		Timeout:   cfg.Tuning.ProviderTimeout,
		Limiter:   limiter,
		Logger:    logger,
	})

	t := cfg.Tuning
	a.Optimizer = services.NewOptimizer(services.OptimizerConfig{
		Geocoder:          geocoder,
		Estimator:         estimator,
		Logger:            logger,
		MaxStops:          t.MaxStops,
		FuelPricePerLiter: t.FuelPricePerLiter,
		Matrix:            services.MatrixOptions{Concurrency: t.MatrixConcurrency},
		Geocode: services.GeocodeOptions{
			BatchSize:  t.Geocode.BatchSize,
			CallDelay:  t.Geocode.CallDelay,
			BatchDelay: t.Geocode.BatchDelay,
			Timeout:    t.Geocode.Timeout,
		},
	})

	logger.Info().
		Str("geocoder", geocoder.Name()).
		Int("traffic_providers", len(providers)).
		Int("max_stops", t.MaxStops).
		Msg("optimizer ready")

	return a, nil
}

// Assemble the cache tiers nearest first: in-process LRU, Redis, Postgres.
// Nil means no tier is configured.
func (a *App) geocodeCache(ctx context.Context, cfg config.Config, logger zerolog.Logger) (ports.GeocodeCache, error) {
	var tiers []ports.GeocodeCache

	if cfg.GeocodeCacheSize > 0 {
		lru, err := cache.NewLRUGeocodeCache(cfg.GeocodeCacheSize)
		if err != nil {
			return nil, fmt.Errorf("build app: %w", err)
		}
		tiers = append(tiers, lru)
	}

	if cfg.RedisURL != "" {
		client, err := cache.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("build app: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		tiers = append(tiers, cache.NewRedisGeocodeCache(client, cfg.GeocodeCacheTTL))
		logger.Info().Msg("redis geocode cache enabled")
	}

	if cfg.DatabaseURL != "" {
		conn, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("build app: %w", err)
		}
		a.closers = append(a.closers, conn.Close)
		if err := cache.InitSchema(ctx, conn); err != nil {
			return nil, fmt.Errorf("build app: %w", err)
		}
		tiers = append(tiers, cache.NewSQLGeocodeCache(conn))
		logger.Info().Msg("postgres geocode cache enabled")
	}

	if len(tiers) == 0 {
		return nil, nil
	}
	return cache.NewTieredGeocodeCache(tiers...), nil
}

// Seeded addresses are tried before the remote geocoder; the cache, when
// present, sits in front of both.
func (a *App) buildGeocoder(cfg config.Config, c ports.GeocodeCache, logger zerolog.Logger) (ports.Geocoder, error) {
	var members []ports.Geocoder

	if cfg.GeocodeSeedPath != "" {
		seeds, err := cache.LoadSeeds(cfg.GeocodeSeedPath)
		if err != nil {
			return nil, fmt.Errorf("build app: %w", err)
		}
		members = append(members, geocode.NewStaticGeocoderFromResults(seeds))
	}

	if cfg.GeocoderURL != "" {
		client := httpx.New(httpx.Config{
			Name:    "geocoder",
			APIKey:  cfg.GeocoderAPIKey,
			Timeout: cfg.Tuning.Geocode.Timeout,
		})
		a.Upstreams = append(a.Upstreams, client)
		g, err := geocode.NewHTTPGeocoder(cfg.GeocoderURL, client)
		if err != nil {
			return nil, fmt.Errorf("build app: %w", err)
		}
		members = append(members, g)
	}

	var g ports.Geocoder = services.NewGeocoderChain(logger, members...)
	if c != nil {
		g = geocode.NewCachingGeocoder(g, c, logger)
	}
	return g, nil
}
