package ports

import (
	"context"
	"delivery-route-optimizer/internal/domain"
)

// Yields a travel cost for any pair of points and never fails.
// A nil coordinate means the point could not be located.
type TravelCostEstimator interface {
	Estimate(ctx context.Context, origin, destination *domain.Coordinates) domain.TravelCost
}
