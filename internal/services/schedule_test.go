package services

import (
	"context"
	"delivery-route-optimizer/internal/domain"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesizeScheduleClosedForm(t *testing.T) {
	ordered := []domain.DeliveryRequest{
		located("a", "a", domain.PriorityUrgent, north(0)),
		located("b", "b", domain.PriorityMedium, north(5)),
		located("c", "c", domain.PriorityLow, north(10)),
	}
	vehicle := domain.Vehicle{MaxWeightKg: 10, FuelEfficiencyKmPerL: 10}
	start := clock(8, 0)
	e := NewEstimator(EstimatorConfig{Logger: zerolog.Nop()})

	r := SynthesizeSchedule(context.Background(), ordered, vehicle, start, start, e, ScheduleOptions{})

	require.Len(t, r.Stops, 3)
	for i, s := range r.Stops {
		assert.Equal(t, i+1, s.Position)
	}

	// 5 km legs: 20 traffic minutes each, plus 5 minutes service per earlier stop.
	assert.InDelta(t, 0, r.Stops[0].CumulativeMinutes, 1e-9)
	assert.InDelta(t, 25, r.Stops[1].CumulativeMinutes, 1e-6)
	assert.InDelta(t, 50, r.Stops[2].CumulativeMinutes, 1e-6)
	assert.Equal(t, "08:25", r.Stops[1].ArrivalClock)
	assert.Equal(t, "08:50", r.Stops[2].ArrivalClock)

	assert.InDelta(t, 5, r.Stops[1].CumulativeDistanceKm, 1e-9)
	assert.InDelta(t, 10, r.TotalDistanceKm, 1e-9)
	assert.InDelta(t, 30, r.TotalMinutes, 1e-6)
	assert.InDelta(t, 40, r.TrafficAdjustedMinutes, 1e-6)
	assert.InDelta(t, 1.5, r.FuelCost, 1e-9)
	assert.InDelta(t, (100.0+50+25)/3, r.MeanPriorityScore, 1e-9)
	assert.Equal(t, 30, r.LoadUtilizationPct)
	assert.Zero(t, r.TrafficImpact.DelayMinutes)
	assert.Zero(t, r.TrafficImpact.AlternativeRoutesHint)
}

func TestSynthesizeScheduleMonotonic(t *testing.T) {
	ordered := []domain.DeliveryRequest{
		located("a", "a", domain.PriorityMedium, north(3)),
		located("b", "b", domain.PriorityMedium, north(1)),
		located("c", "c", domain.PriorityMedium, north(4)),
		located("d", "d", domain.PriorityMedium, north(1)),
	}
	e := NewEstimator(EstimatorConfig{Logger: zerolog.Nop()})

	r := SynthesizeSchedule(context.Background(), ordered, domain.Vehicle{}, clock(9, 0), clock(9, 0), e, ScheduleOptions{})

	for i := 1; i < len(r.Stops); i++ {
		prev, cur := r.Stops[i-1], r.Stops[i]
		assert.GreaterOrEqual(t, cur.CumulativeDistanceKm, prev.CumulativeDistanceKm)
		assert.GreaterOrEqual(t, cur.CumulativeMinutes, prev.CumulativeMinutes)
		assert.False(t, cur.EstimatedArrival.Before(prev.EstimatedArrival))
	}
	assert.Zero(t, r.FuelCost, "no fuel cost without an efficiency figure")
	assert.Zero(t, r.LoadUtilizationPct)
}

func TestSynthesizeScheduleTrafficImpact(t *testing.T) {
	ordered := []domain.DeliveryRequest{
		located("a", "a", domain.PriorityMedium, north(0)),
		located("b", "b", domain.PriorityMedium, north(1)),
		located("c", "c", domain.PriorityMedium, north(2)),
		located("d", "d", domain.PriorityMedium, north(3)),
	}
	// every leg: 10 free-flow minutes, 25 in traffic
	e := constEstimator{cost: domain.TravelCost{
		DistanceMeters:         1000,
		BaseDurationSeconds:    600,
		TrafficDurationSeconds: 1500,
		Level:                  domain.TrafficSevere,
		Source:                 "stub",
	}}

	r := SynthesizeSchedule(context.Background(), ordered, domain.Vehicle{MaxWeightKg: 4}, clock(7, 0), clock(7, 0), e,
		ScheduleOptions{FuelPricePerLiter: 2})

	assert.Equal(t, 45, r.TrafficImpact.DelayMinutes)
	assert.Equal(t, 3, r.TrafficImpact.AlternativeRoutesHint)
	assert.InDelta(t, 15, r.Stops[1].TrafficDelayMinutes, 1e-9)
	assert.Zero(t, r.Stops[0].TrafficDelayMinutes)
	assert.Equal(t, 100, r.LoadUtilizationPct)
	assert.Equal(t, clock(7, 0).Add(25*time.Minute+5*time.Minute), r.Stops[1].EstimatedArrival)
}

func TestSynthesizeScheduleEmpty(t *testing.T) {
	r := SynthesizeSchedule(context.Background(), nil, domain.Vehicle{MaxWeightKg: 10}, clock(7, 0), clock(7, 0),
		constEstimator{}, ScheduleOptions{})

	assert.Empty(t, r.Stops)
	assert.Zero(t, r.MeanPriorityScore)
}

func TestSynthesizeScheduleDwellUsesEachPriorStopsServiceTime(t *testing.T) {
	ordered := []domain.DeliveryRequest{
		located("a", "a", domain.PriorityMedium, north(0)),
		located("b", "b", domain.PriorityMedium, north(1)),
		located("c", "c", domain.PriorityMedium, north(2)),
	}
	ordered[0].ServiceMinutes = 15
	ordered[1].ServiceMinutes = 2
	// every leg: 10 minutes, no delay
	e := constEstimator{cost: domain.TravelCost{
		DistanceMeters:         1000,
		BaseDurationSeconds:    600,
		TrafficDurationSeconds: 600,
	}}

	r := SynthesizeSchedule(context.Background(), ordered, domain.Vehicle{}, clock(8, 0), clock(8, 0), e, ScheduleOptions{})

	require.Len(t, r.Stops, 3)
	// Dwell is the sum of earlier stops' own service minutes, not index × 5.
	assert.InDelta(t, 0, r.Stops[0].CumulativeMinutes, 1e-9)
	assert.InDelta(t, 10+15, r.Stops[1].CumulativeMinutes, 1e-9)
	assert.InDelta(t, 20+15+2, r.Stops[2].CumulativeMinutes, 1e-9)
	assert.Equal(t, "08:25", r.Stops[1].ArrivalClock)
	assert.Equal(t, "08:37", r.Stops[2].ArrivalClock)
}
