package domain

import "time"

// A single visit in an optimized route.
// Position is 1-based; cumulative values include the incoming leg.
type Stop struct {
	Position             int
	Delivery             DeliveryRequest
	EstimatedArrival     time.Time
	ArrivalClock         string
	CumulativeDistanceKm float64
	CumulativeMinutes    float64
	TrafficDelayMinutes  float64
	PriorityScore        float64
}

type TrafficImpact struct {
	DelayMinutes          int
	AlternativeRoutesHint int
}

// Outcome of comparing the total load against vehicle capacity.
type LoadReport struct {
	Feasible      bool
	TotalWeightKg float64
	AvailableKg   float64
	OverageKg     float64
	Advisories    []string
}

// An ordered route with its aggregate metrics.
// A Route is immutable planning output and contains no side effects.
type Route struct {
	ID                     string
	Stops                  []Stop
	TotalDistanceKm        float64
	TotalMinutes           float64
	TrafficAdjustedMinutes float64
	FuelCost               float64
	MeanPriorityScore      float64
	LoadUtilizationPct     int
	TrafficImpact          TrafficImpact
	Recommendations        []string
	Load                   LoadReport
	StartTime              time.Time
	GeneratedAt            time.Time
}
