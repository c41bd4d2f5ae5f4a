package services

import (
	"context"
	"delivery-route-optimizer/internal/domain"
	"delivery-route-optimizer/internal/platform/obs"
	"delivery-route-optimizer/internal/ports"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const DefaultMaxStops = 25

type OptimizerConfig struct {
	Geocoder  ports.Geocoder
	Estimator ports.TravelCostEstimator
	Logger    zerolog.Logger

	// Zero means DefaultMaxStops.
	MaxStops          int
	FuelPricePerLiter float64
	Matrix            MatrixOptions
	Geocode           GeocodeOptions

	// Route ID source. Nil means uuid.NewString.
	NewID func() string
}

// Runs the full optimization pipeline. An Optimizer holds only immutable
// configuration and concurrency-safe collaborators, so one value can serve
// concurrent runs.
type Optimizer struct {
	cfg OptimizerConfig
}

func NewOptimizer(cfg OptimizerConfig) *Optimizer {
	if cfg.MaxStops <= 0 {
		cfg.MaxStops = DefaultMaxStops
	}
	if cfg.Estimator == nil {
		cfg.Estimator = NewEstimator(EstimatorConfig{Logger: cfg.Logger})
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	return &Optimizer{cfg: cfg}
}

type OptimizeRequest struct {
	Deliveries []domain.DeliveryRequest
	Vehicle    domain.Vehicle
	// Departure time of the route.
	StartTime time.Time
	// Clock used for priority scoring. Zero means time.Now().
	ReferenceTime time.Time
}

type OptimizeResult struct {
	Route *domain.Route
	// Addresses that could not be geocoded and were left out of the route.
	Unresolved []string
	// Requests dropped as duplicates of an earlier address.
	Duplicates int
}

// Optimize a single-vehicle route.
//
// Blank addresses are dropped and duplicates collapsed before the input cap is
// checked. Input problems are returned as *domain.InputError; provider and
// per-address geocoding failures degrade the result instead of failing it.
func (o *Optimizer) Optimize(ctx context.Context, req OptimizeRequest) (res *OptimizeResult, err error) {
	started := time.Now()
	defer func() {
		obs.OptimizeDuration.Observe(time.Since(started).Seconds())
		obs.OptimizeRuns.WithLabelValues(outcome(err)).Inc()
	}()
	defer obs.Time(ctx, "optimizer.Optimize")(&err)

	now := req.ReferenceTime
	if now.IsZero() {
		now = time.Now()
	}
	start := req.StartTime
	if start.IsZero() {
		start = now
	}

	requests := make([]domain.DeliveryRequest, 0, len(req.Deliveries))
	for _, d := range req.Deliveries {
		if strings.TrimSpace(d.Address) == "" {
			continue
		}
		requests = append(requests, d.WithDefaults())
	}

	unique := domain.Dedupe(requests)
	duplicates := len(requests) - len(unique)

	if len(unique) == 0 {
		return nil, domain.NewInputError(domain.ErrNoAddresses, "every delivery address was blank")
	}
	if len(unique) > o.cfg.MaxStops {
		return nil, domain.NewInputError(domain.ErrTooManyAddresses, "got %d, maximum is %d", len(unique), o.cfg.MaxStops)
	}

	resolved, failed, err := GeocodeAll(ctx, unique, o.cfg.Geocoder, o.cfg.Geocode)
	if err != nil {
		return nil, fmt.Errorf("optimize: geocode: %w", err)
	}
	if len(resolved) == 0 {
		return nil, domain.NewInputError(domain.ErrAllGeocodingFailed, "%d of %d addresses failed", len(failed), len(unique))
	}

	ordered := ConstructRoute(resolved, now)

	points := make([]domain.Coordinates, len(ordered))
	for i, r := range ordered {
		points[i] = *r.Location
	}

	matrix, err := BuildDistanceMatrix(ctx, points, o.cfg.Estimator, o.cfg.Matrix)
	if err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}

	identity := make([]int, len(ordered))
	for i := range identity {
		identity[i] = i
	}
	refined := RefineTwoOpt(identity, matrix)

	final := make([]domain.DeliveryRequest, len(refined))
	for i, idx := range refined {
		final[i] = ordered[idx]
	}

	load := ValidateLoad(final, req.Vehicle)

	legs := newMatrixEstimator(points, matrix, o.cfg.Estimator)
	route := SynthesizeSchedule(ctx, final, req.Vehicle, start, now, legs, ScheduleOptions{
		FuelPricePerLiter: o.cfg.FuelPricePerLiter,
	})
	route.ID = o.cfg.NewID()
	route.GeneratedAt = now
	route.Load = load
	route.Recommendations = Recommend(load, route)

	o.logger(ctx).Info().
		Str("route_id", route.ID).
		Int("stops", len(route.Stops)).
		Int("unresolved", len(failed)).
		Int("duplicates", duplicates).
		Float64("distance_km", route.TotalDistanceKm).
		Msg("route optimized")

	return &OptimizeResult{
		Route:      route,
		Unresolved: failed,
		Duplicates: duplicates,
	}, nil
}

// Prefer the request-scoped logger, falling back to the configured one.
func (o *Optimizer) logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &o.cfg.Logger
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case domain.IsInputError(err):
		return "input_error"
	default:
		return "error"
	}
}
