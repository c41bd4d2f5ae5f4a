package services

import (
	"delivery-route-optimizer/internal/domain"
	"math"
	"sort"
	"time"
)

const (
	priorityWeight  = 0.6
	proximityWeight = 0.4
)

// Build an initial visiting order with a priority-weighted nearest-neighbour
// pass.
//
// Requests are stably sorted by descending priority score and the first one
// seeds the route. Each following stop is the pooled candidate maximising
// 0.6*priority + 0.4*max(0, 50 - 2*km from the current tail). Ties go to the
// candidate earlier in the pool. Requests must carry a Location; proximity is
// taken as zero when either end lacks one. Inputs of two or fewer are returned
// unchanged.
func ConstructRoute(requests []domain.DeliveryRequest, now time.Time) []domain.DeliveryRequest {
	out := append([]domain.DeliveryRequest(nil), requests...)
	if len(out) <= 2 {
		return out
	}

	type scored struct {
		req   domain.DeliveryRequest
		score float64
	}

	pool := make([]scored, len(out))
	for i, r := range out {
		pool[i] = scored{req: r, score: ScorePriority(r, now)}
	}
	sort.SliceStable(pool, func(a, b int) bool { return pool[a].score > pool[b].score })

	route := out[:0]
	route = append(route, pool[0].req)
	tail := pool[0].req.Location
	pool = pool[1:]

	for len(pool) > 0 {
		best := 0
		bestVal := math.Inf(-1)
		for i, c := range pool {
			v := priorityWeight*c.score + proximityWeight*proximity(tail, c.req.Location)
			if v > bestVal {
				best, bestVal = i, v
			}
		}

		next := pool[best]
		route = append(route, next.req)
		tail = next.req.Location
		pool = append(pool[:best], pool[best+1:]...)
	}

	return route
}

func proximity(from, to *domain.Coordinates) float64 {
	if from == nil || to == nil {
		return 0
	}
	return math.Max(0, 50-2*HaversineKm(*from, *to))
}
