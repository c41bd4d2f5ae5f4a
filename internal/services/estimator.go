package services

import (
	"context"
	"delivery-route-optimizer/internal/domain"
	"delivery-route-optimizer/internal/platform/obs"
	"delivery-route-optimizer/internal/ports"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	// Free-flow and congested pace assumed by the closed-form estimate.
	baseSecondsPerKm    = 180
	trafficSecondsPerKm = 240

	SourceHaversine = "haversine"
)

var (
	errMissingCoordinate = errors.New("missing coordinate")
	errBatchUnsupported  = errors.New("provider does not support batched queries")
)

// One way of pricing a leg. Strategies are tried in order until one succeeds.
type CostStrategy interface {
	Name() string
	Estimate(ctx context.Context, origin, destination *domain.Coordinates) (domain.TravelCost, error)
}

// Prices legs with a live traffic provider.
type ProviderStrategy struct {
	provider ports.TrafficProvider
	timeout  time.Duration
	limiter  *rate.Limiter
}

// limiter may be nil and may be shared with other strategies.
func NewProviderStrategy(provider ports.TrafficProvider, timeout time.Duration, limiter *rate.Limiter) *ProviderStrategy {
	return &ProviderStrategy{provider: provider, timeout: timeout, limiter: limiter}
}

func (s *ProviderStrategy) Name() string { return s.provider.Name() }

func (s *ProviderStrategy) Estimate(ctx context.Context, origin, destination *domain.Coordinates) (domain.TravelCost, error) {
	if origin == nil || destination == nil {
		return domain.TravelCost{}, errMissingCoordinate
	}

	ctx, cancel, err := s.prepare(ctx)
	if err != nil {
		return domain.TravelCost{}, err
	}
	defer cancel()

	res, err := s.provider.Query(ctx, *origin, *destination)
	if err != nil {
		return domain.TravelCost{}, fmt.Errorf("query %s: %w", s.provider.Name(), err)
	}
	return s.toCost(res)
}

// Price one origin against many destinations with a single upstream call.
func (s *ProviderStrategy) EstimateMany(
	ctx context.Context,
	origin domain.Coordinates,
	destinations []domain.Coordinates,
) ([]domain.TravelCost, error) {
	mp, ok := s.provider.(ports.TrafficMatrixProvider)
	if !ok {
		return nil, errBatchUnsupported
	}

	ctx, cancel, err := s.prepare(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	results, err := mp.QueryMany(ctx, origin, destinations)
	if err != nil {
		return nil, fmt.Errorf("query many %s: %w", s.provider.Name(), err)
	}
	if len(results) != len(destinations) {
		return nil, fmt.Errorf("query many %s: got %d results for %d destinations", s.provider.Name(), len(results), len(destinations))
	}

	costs := make([]domain.TravelCost, len(results))
	for i, r := range results {
		if costs[i], err = s.toCost(r); err != nil {
			return nil, err
		}
	}
	return costs, nil
}

func (s *ProviderStrategy) prepare(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, nil, fmt.Errorf("rate limit %s: %w", s.provider.Name(), err)
		}
	}
	if s.timeout > 0 {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		return ctx, cancel, nil
	}
	return ctx, func() {}, nil
}

func (s *ProviderStrategy) toCost(r ports.TrafficResult) (domain.TravelCost, error) {
	if r.DistanceMeters < 0 || r.DurationSeconds < 0 || r.DurationInTrafficSeconds < 0 {
		return domain.TravelCost{}, fmt.Errorf("%s: negative measurement %+v", s.provider.Name(), r)
	}

	traffic := r.DurationInTrafficSeconds
	if traffic == 0 {
		traffic = r.DurationSeconds
	}

	return domain.TravelCost{
		DistanceMeters:         r.DistanceMeters,
		BaseDurationSeconds:    r.DurationSeconds,
		TrafficDurationSeconds: traffic,
		Level:                  domain.ClassifyTraffic(r.DurationSeconds, traffic),
		Source:                 s.provider.Name(),
	}, nil
}

// Closed-form estimate from great-circle distance. Never fails.
type HaversineStrategy struct{}

func (HaversineStrategy) Name() string { return SourceHaversine }

func (HaversineStrategy) Estimate(_ context.Context, origin, destination *domain.Coordinates) (domain.TravelCost, error) {
	if origin == nil || destination == nil {
		return closedFormCost(0), nil
	}
	return closedFormCost(HaversineKm(*origin, *destination)), nil
}

func closedFormCost(km float64) domain.TravelCost {
	return domain.TravelCost{
		DistanceMeters:         km * 1000,
		BaseDurationSeconds:    km * baseSecondsPerKm,
		TrafficDurationSeconds: km * trafficSecondsPerKm,
		Level:                  domain.TrafficModerate,
		Source:                 SourceHaversine,
		Estimated:              true,
	}
}

type EstimatorConfig struct {
	// Providers are tried in order before the closed-form fallback.
	Providers []ports.TrafficProvider
	// Per-call timeout for provider queries. Zero means no extra deadline.
	Timeout time.Duration
	// Shared throttle for provider calls. Nil disables throttling.
	Limiter *rate.Limiter
	Logger  zerolog.Logger
}

// Travel-cost estimator built as an ordered chain of strategies ending in
// HaversineStrategy. It is safe for concurrent use.
type Estimator struct {
	strategies []CostStrategy
	logger     zerolog.Logger
}

func NewEstimator(cfg EstimatorConfig) *Estimator {
	strategies := make([]CostStrategy, 0, len(cfg.Providers)+1)
	for _, p := range cfg.Providers {
		if p == nil {
			continue
		}
		strategies = append(strategies, NewProviderStrategy(p, cfg.Timeout, cfg.Limiter))
	}
	strategies = append(strategies, HaversineStrategy{})

	return &Estimator{strategies: strategies, logger: cfg.Logger}
}

// Estimate the cost of one leg. The first successful strategy wins; provider
// failures are logged and counted, never returned.
func (e *Estimator) Estimate(ctx context.Context, origin, destination *domain.Coordinates) domain.TravelCost {
	return e.estimateFrom(ctx, 0, origin, destination)
}

func (e *Estimator) estimateFrom(ctx context.Context, start int, origin, destination *domain.Coordinates) domain.TravelCost {
	last := len(e.strategies) - 1
	if origin == nil || destination == nil || start > last {
		start = last
	}

	for _, s := range e.strategies[start:] {
		cost, err := s.Estimate(ctx, origin, destination)
		if err == nil {
			return cost
		}
		e.degraded(s.Name(), err)
	}

	return closedFormCost(0)
}

// Estimate the costs from origin to every destination.
// A batch-capable first provider is asked once for the whole row; if that
// fails every cell is priced by the remaining strategies.
func (e *Estimator) EstimateRow(
	ctx context.Context,
	origin domain.Coordinates,
	destinations []domain.Coordinates,
) []domain.TravelCost {
	start := 0
	if ps, ok := e.strategies[0].(*ProviderStrategy); ok {
		costs, err := ps.EstimateMany(ctx, origin, destinations)
		switch {
		case err == nil:
			return costs
		case !errors.Is(err, errBatchUnsupported):
			e.degraded(ps.Name(), err)
			start = 1
		}
	}

	costs := make([]domain.TravelCost, len(destinations))
	for i := range destinations {
		costs[i] = e.estimateFrom(ctx, start, &origin, &destinations[i])
	}
	return costs
}

func (e *Estimator) degraded(strategy string, err error) {
	obs.ProviderFallbacks.WithLabelValues(strategy).Inc()
	e.logger.Warn().
		Str("strategy", strategy).
		Err(err).
		Msg("travel cost lookup degraded, falling back")
}
