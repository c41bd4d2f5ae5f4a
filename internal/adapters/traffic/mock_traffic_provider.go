package traffic

import (
	"context"
	"delivery-route-optimizer/internal/domain"
	"delivery-route-optimizer/internal/ports"
	"fmt"
	"sync/atomic"
)

type MockLeg struct {
	From, To       domain.Coordinates
	Meters         float64
	Seconds        float64
	TrafficSeconds float64
}

// In-memory TrafficProvider keyed by (from, to) pair.
// Err, when set before use, makes every query fail.
type MockTrafficProvider struct {
	legs map[[2]domain.Coordinates]ports.TrafficResult
	Err  error

	queries atomic.Int64
	batches atomic.Int64
}

func NewMockTrafficProvider(legs []MockLeg) *MockTrafficProvider {
	m := make(map[[2]domain.Coordinates]ports.TrafficResult, len(legs))
	for _, l := range legs {
		m[[2]domain.Coordinates{l.From, l.To}] = ports.TrafficResult{
			DistanceMeters:           l.Meters,
			DurationSeconds:          l.Seconds,
			DurationInTrafficSeconds: l.TrafficSeconds,
		}
	}
	return &MockTrafficProvider{legs: m}
}

func (p *MockTrafficProvider) Name() string { return "mock" }

func (p *MockTrafficProvider) Query(ctx context.Context, origin, destination domain.Coordinates) (ports.TrafficResult, error) {
	p.queries.Add(1)
	return p.lookup(ctx, origin, destination)
}

func (p *MockTrafficProvider) QueryMany(
	ctx context.Context,
	origin domain.Coordinates,
	destinations []domain.Coordinates,
) ([]ports.TrafficResult, error) {
	p.batches.Add(1)
	out := make([]ports.TrafficResult, len(destinations))
	for i, d := range destinations {
		r, err := p.lookup(ctx, origin, d)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

func (p *MockTrafficProvider) lookup(ctx context.Context, origin, destination domain.Coordinates) (ports.TrafficResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.TrafficResult{}, err
	}
	if p.Err != nil {
		return ports.TrafficResult{}, p.Err
	}
	r, ok := p.legs[[2]domain.Coordinates{origin, destination}]
	if !ok {
		return ports.TrafficResult{}, fmt.Errorf("missing leg %s -> %s", origin, destination)
	}
	return r, nil
}

// Number of single-leg queries served.
func (p *MockTrafficProvider) Queries() int64 { return p.queries.Load() }

// Number of batched row queries served.
func (p *MockTrafficProvider) Batches() int64 { return p.batches.Load() }
