package services

import (
	"delivery-route-optimizer/internal/domain"
	"math"
	"time"
)

var priorityBase = map[domain.Priority]float64{
	domain.PriorityUrgent: 100,
	domain.PriorityHigh:   75,
	domain.PriorityMedium: 50,
	domain.PriorityLow:    25,
}

// Score how strongly a delivery should be served early.
//
// The score is the priority base, plus a time-window bonus evaluated against
// now's wall-clock time, plus a cash-on-delivery bonus capped at 20.
// now is injected so results are reproducible.
func ScorePriority(req domain.DeliveryRequest, now time.Time) float64 {
	base, ok := priorityBase[req.Priority]
	if !ok {
		base = priorityBase[domain.PriorityMedium]
	}

	score := base + windowBonus(req.Window, now)

	if req.CashToCollect > 0 {
		score += math.Min(20, req.CashToCollect/100)
	}

	return score
}

func windowBonus(w *domain.TimeWindow, now time.Time) float64 {
	if w == nil {
		return 0
	}

	minute := float64(now.Hour()*60+now.Minute()) + float64(now.Second())/60

	switch {
	case w.Contains(minute):
		return 25
	case minute < float64(w.Start):
		untilStart := float64(w.Start) - minute
		return math.Max(0, 15-untilStart/10)
	default:
		// window already closed
		return 0
	}
}
