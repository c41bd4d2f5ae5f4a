package services

import (
	"context"
	"delivery-route-optimizer/internal/domain"
	"math"
	"time"
)

var kmPerDegree = earthRadiusKm * math.Pi / 180

// Point km kilometres north of the origin along the prime meridian.
func north(km float64) *domain.Coordinates {
	return &domain.Coordinates{Lat: km / kmPerDegree, Lon: 0}
}

func located(id, addr string, p domain.Priority, at *domain.Coordinates) domain.DeliveryRequest {
	return domain.DeliveryRequest{ID: id, Address: addr, Priority: p, Location: at}.WithDefaults()
}

func clock(h, m int) time.Time {
	return time.Date(2026, 3, 2, h, m, 0, 0, time.UTC)
}

// Estimator returning the same cost for every leg.
type constEstimator struct {
	cost domain.TravelCost
}

func (c constEstimator) Estimate(context.Context, *domain.Coordinates, *domain.Coordinates) domain.TravelCost {
	return c.cost
}
