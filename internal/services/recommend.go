package services

import (
	"delivery-route-optimizer/internal/domain"
	"fmt"
)

const (
	delayAdvisoryMinutes = 30
	splitAdvisoryStops   = 15
)

// Produce human-readable advice for a finished route. Order is fixed: load
// advisories, traffic delay, route length, urgent deliveries.
func Recommend(load domain.LoadReport, route *domain.Route) []string {
	recs := append([]string{}, load.Advisories...)
	if route == nil {
		return recs
	}

	if d := route.TrafficImpact.DelayMinutes; d > delayAdvisoryMinutes {
		recs = append(recs, fmt.Sprintf(
			"Traffic adds about %d minutes to this route. Consider adjusting the departure time.", d,
		))
	}

	if n := len(route.Stops); n > splitAdvisoryStops {
		recs = append(recs, fmt.Sprintf(
			"Route has %d stops. Consider splitting it into multiple routes.", n,
		))
	}

	urgent := 0
	for _, s := range route.Stops {
		if s.Delivery.Priority == domain.PriorityUrgent {
			urgent++
		}
	}
	if urgent > 0 {
		recs = append(recs, fmt.Sprintf("%d urgent deliveries were prioritized in this route.", urgent))
	}

	return recs
}
