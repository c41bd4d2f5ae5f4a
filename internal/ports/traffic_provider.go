package ports

import (
	"context"
	"delivery-route-optimizer/internal/domain"
)

// Distance and durations for one leg as measured by a traffic source.
type TrafficResult struct {
	DistanceMeters           float64
	DurationSeconds          float64
	DurationInTrafficSeconds float64
}

// Contract for live, traffic-aware travel measurements.
type TrafficProvider interface {
	Name() string
	Query(ctx context.Context, origin, destination domain.Coordinates) (TrafficResult, error)
}

// Optional extension of TrafficProvider that supports batched lookups.
type TrafficMatrixProvider interface {
	TrafficProvider
	// Return one result per destination, in destination order.
	QueryMany(ctx context.Context, origin domain.Coordinates, destinations []domain.Coordinates) ([]TrafficResult, error)
}
