package services

import (
	"context"
	"delivery-route-optimizer/internal/domain"
	"delivery-route-optimizer/internal/ports"
	"math"
	"time"
)

const DefaultFuelPricePerLiter = 1.5

type ScheduleOptions struct {
	// Zero means DefaultFuelPricePerLiter.
	FuelPricePerLiter float64
}

// Running totals of a schedule. Values are replaced, never mutated.
type scheduleTotals struct {
	distanceKm     float64
	baseSeconds    float64
	trafficSeconds float64
	delaySeconds   float64
	dwellMinutes   float64
}

func (t scheduleTotals) withLeg(leg domain.TravelCost) scheduleTotals {
	t.distanceKm += leg.DistanceKm()
	t.baseSeconds += leg.BaseDurationSeconds
	t.trafficSeconds += leg.TrafficDurationSeconds
	t.delaySeconds += leg.DelaySeconds()
	return t
}

func (t scheduleTotals) withDwell(minutes float64) scheduleTotals {
	t.dwellMinutes += minutes
	return t
}

// Minutes from departure to arrival at the current stop.
func (t scheduleTotals) elapsedMinutes() float64 {
	return t.trafficSeconds/60 + t.dwellMinutes
}

// Turn an ordered list of deliveries into a timed route with aggregate metrics.
//
// Leg costs come from estimator. A stop's cumulative minutes are the
// traffic-adjusted travel minutes so far plus the service time of every
// earlier stop; its arrival is start plus those minutes. Priority scores are
// evaluated at now.
func SynthesizeSchedule(
	ctx context.Context,
	ordered []domain.DeliveryRequest,
	vehicle domain.Vehicle,
	start time.Time,
	now time.Time,
	estimator ports.TravelCostEstimator,
	opts ScheduleOptions,
) *domain.Route {
	fuelPrice := opts.FuelPricePerLiter
	if fuelPrice <= 0 {
		fuelPrice = DefaultFuelPricePerLiter
	}

	stops := make([]domain.Stop, 0, len(ordered))
	totals := scheduleTotals{}
	scoreSum := 0.0

	for i, req := range ordered {
		var leg domain.TravelCost
		if i > 0 {
			leg = estimator.Estimate(ctx, ordered[i-1].Location, req.Location)
			totals = totals.withLeg(leg)
		}

		elapsed := totals.elapsedMinutes()
		arrival := start.Add(time.Duration(math.Round(elapsed*60)) * time.Second)
		score := ScorePriority(req, now)
		scoreSum += score

		stops = append(stops, domain.Stop{
			Position:             i + 1,
			Delivery:             req,
			EstimatedArrival:     arrival,
			ArrivalClock:         arrival.Format("15:04"),
			CumulativeDistanceKm: totals.distanceKm,
			CumulativeMinutes:    elapsed,
			TrafficDelayMinutes:  leg.DelaySeconds() / 60,
			PriorityScore:        score,
		})

		service := req.ServiceMinutes
		if service <= 0 {
			service = domain.DefaultServiceMinutes
		}
		totals = totals.withDwell(service)
	}

	route := &domain.Route{
		Stops:                  stops,
		TotalDistanceKm:        totals.distanceKm,
		TotalMinutes:           totals.baseSeconds / 60,
		TrafficAdjustedMinutes: totals.trafficSeconds / 60,
		StartTime:              start,
	}

	if vehicle.FuelEfficiencyKmPerL > 0 {
		route.FuelCost = totals.distanceKm / vehicle.FuelEfficiencyKmPerL * fuelPrice
	}
	if len(stops) > 0 {
		route.MeanPriorityScore = scoreSum / float64(len(stops))
	}
	if vehicle.MaxWeightKg > 0 {
		route.LoadUtilizationPct = int(math.Round(100 * TotalWeightKg(ordered) / vehicle.MaxWeightKg))
	}

	delay := int(math.Round(totals.delaySeconds / 60))
	route.TrafficImpact = domain.TrafficImpact{
		DelayMinutes:          delay,
		AlternativeRoutesHint: min(3, max(0, delay/15)),
	}

	return route
}
