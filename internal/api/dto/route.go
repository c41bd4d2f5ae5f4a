package dto

import (
	"delivery-route-optimizer/internal/domain"
	"errors"
	"fmt"
	"strings"
	"time"
)

type TimeWindowRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type DeliveryRequest struct {
	ID             string             `json:"id"`
	Address        string             `json:"address"`
	Lat            *float64           `json:"lat,omitempty"`
	Lng            *float64           `json:"lng,omitempty"`
	CustomerName   string             `json:"customer_name,omitempty"`
	Phone          string             `json:"phone,omitempty"`
	Notes          string             `json:"notes,omitempty"`
	Priority       string             `json:"priority,omitempty"`
	TimeWindow     *TimeWindowRequest `json:"time_window,omitempty"`
	WeightKg       float64            `json:"weight_kg,omitempty"`
	Size           string             `json:"size,omitempty"`
	CashToCollect  float64            `json:"cash_to_collect,omitempty"`
	ServiceMinutes float64            `json:"service_minutes,omitempty"`
}

type VehicleRequest struct {
	MaxWeightKg          float64 `json:"max_weight_kg"`
	MaxVolumeM3          float64 `json:"max_volume_m3,omitempty"`
	FuelEfficiencyKmPerL float64 `json:"fuel_efficiency_km_per_l"`
	CurrentLoadKg        float64 `json:"current_load_kg,omitempty"`
}

type OptimizeRequest struct {
	Deliveries    []DeliveryRequest `json:"deliveries"`
	Vehicle       VehicleRequest    `json:"vehicle"`
	StartTime     *time.Time        `json:"start_time,omitempty"`
	ReferenceTime *time.Time        `json:"reference_time,omitempty"`
}

// Validate field formats and convert to domain values.
// Blank-address filtering and the stop cap are left to the optimizer.
func (r OptimizeRequest) ToDomain() ([]domain.DeliveryRequest, domain.Vehicle, error) {
	v := domain.Vehicle{
		MaxWeightKg:          r.Vehicle.MaxWeightKg,
		MaxVolumeM3:          r.Vehicle.MaxVolumeM3,
		FuelEfficiencyKmPerL: r.Vehicle.FuelEfficiencyKmPerL,
		CurrentLoadKg:        r.Vehicle.CurrentLoadKg,
	}
	if v.MaxWeightKg < 0 || v.FuelEfficiencyKmPerL < 0 || v.CurrentLoadKg < 0 {
		return nil, domain.Vehicle{}, errors.New("vehicle figures must not be negative")
	}

	out := make([]domain.DeliveryRequest, 0, len(r.Deliveries))
	for i, d := range r.Deliveries {
		dr, err := d.toDomain(i)
		if err != nil {
			return nil, domain.Vehicle{}, fmt.Errorf("deliveries[%d]: %w", i, err)
		}
		out = append(out, dr)
	}
	return out, v, nil
}

func (d DeliveryRequest) toDomain(index int) (domain.DeliveryRequest, error) {
	priority, err := domain.ParsePriority(d.Priority)
	if err != nil {
		return domain.DeliveryRequest{}, err
	}
	size, err := domain.ParsePackageSize(d.Size)
	if err != nil {
		return domain.DeliveryRequest{}, err
	}
	if d.WeightKg < 0 || d.CashToCollect < 0 || d.ServiceMinutes < 0 {
		return domain.DeliveryRequest{}, errors.New("weight_kg, cash_to_collect and service_minutes must not be negative")
	}

	id := strings.TrimSpace(d.ID)
	if id == "" {
		id = fmt.Sprintf("delivery-%d", index+1)
	}

	out := domain.DeliveryRequest{
		ID:             id,
		Address:        d.Address,
		CustomerName:   d.CustomerName,
		Phone:          d.Phone,
		Notes:          d.Notes,
		Priority:       priority,
		WeightKg:       d.WeightKg,
		Size:           size,
		CashToCollect:  d.CashToCollect,
		ServiceMinutes: d.ServiceMinutes,
	}

	if (d.Lat == nil) != (d.Lng == nil) {
		return domain.DeliveryRequest{}, errors.New("lat and lng must be given together")
	}
	if d.Lat != nil {
		loc := domain.Coordinates{Lat: *d.Lat, Lon: *d.Lng}
		if !loc.Valid() {
			return domain.DeliveryRequest{}, fmt.Errorf("coordinate out of range: %s", loc)
		}
		out = out.Resolved(loc, "")
	}

	if d.TimeWindow != nil {
		start, err := domain.ParseClockTime(d.TimeWindow.Start)
		if err != nil {
			return domain.DeliveryRequest{}, fmt.Errorf("time_window.start: %w", err)
		}
		end, err := domain.ParseClockTime(d.TimeWindow.End)
		if err != nil {
			return domain.DeliveryRequest{}, fmt.Errorf("time_window.end: %w", err)
		}
		if end < start {
			return domain.DeliveryRequest{}, errors.New("time_window.end is before time_window.start")
		}
		out.Window = &domain.TimeWindow{Start: start, End: end}
	}

	return out, nil
}

type StopResponse struct {
	Position             int       `json:"position"`
	DeliveryID           string    `json:"delivery_id"`
	Address              string    `json:"address"`
	FormattedAddress     string    `json:"formatted_address"`
	Lat                  float64   `json:"lat"`
	Lng                  float64   `json:"lng"`
	CustomerName         string    `json:"customer_name,omitempty"`
	Priority             string    `json:"priority"`
	PriorityScore        float64   `json:"priority_score"`
	EstimatedArrival     time.Time `json:"estimated_arrival"`
	ArrivalClock         string    `json:"arrival_clock"`
	CumulativeDistanceKm float64   `json:"cumulative_distance_km"`
	CumulativeMinutes    float64   `json:"cumulative_minutes"`
	TrafficDelayMinutes  float64   `json:"traffic_delay_minutes"`
	WeightKg             float64   `json:"weight_kg"`
	CashToCollect        float64   `json:"cash_to_collect"`
}

type LoadResponse struct {
	Feasible      bool     `json:"feasible"`
	TotalWeightKg float64  `json:"total_weight_kg"`
	AvailableKg   float64  `json:"available_kg"`
	OverageKg     float64  `json:"overage_kg"`
	Advisories    []string `json:"advisories"`
}

type TrafficImpactResponse struct {
	DelayMinutes          int `json:"delay_minutes"`
	AlternativeRoutesHint int `json:"alternative_routes_hint"`
}

type RouteResponse struct {
	ID                     string                `json:"id"`
	Stops                  []StopResponse        `json:"stops"`
	TotalDistanceKm        float64               `json:"total_distance_km"`
	TotalMinutes           float64               `json:"total_minutes"`
	TrafficAdjustedMinutes float64               `json:"traffic_adjusted_minutes"`
	FuelCost               float64               `json:"fuel_cost"`
	MeanPriorityScore      float64               `json:"mean_priority_score"`
	LoadUtilizationPct     int                   `json:"load_utilization_pct"`
	TrafficImpact          TrafficImpactResponse `json:"traffic_impact"`
	Load                   LoadResponse          `json:"load"`
	Recommendations        []string              `json:"recommendations"`
	StartTime              time.Time             `json:"start_time"`
	GeneratedAt            time.Time             `json:"generated_at"`
}

type OptimizeResponse struct {
	Route      RouteResponse `json:"route"`
	Unresolved []string      `json:"unresolved_addresses"`
	Duplicates int           `json:"duplicates_removed"`
}

func NewOptimizeResponse(route *domain.Route, unresolved []string, duplicates int) OptimizeResponse {
	if unresolved == nil {
		unresolved = []string{}
	}
	return OptimizeResponse{
		Route:      NewRouteResponse(route),
		Unresolved: unresolved,
		Duplicates: duplicates,
	}
}

func NewRouteResponse(r *domain.Route) RouteResponse {
	stops := make([]StopResponse, 0, len(r.Stops))
	for _, s := range r.Stops {
		sr := StopResponse{
			Position:             s.Position,
			DeliveryID:           s.Delivery.ID,
			Address:              s.Delivery.Address,
			FormattedAddress:     s.Delivery.NormalizedAddress,
			CustomerName:         s.Delivery.CustomerName,
			Priority:             string(s.Delivery.Priority),
			PriorityScore:        s.PriorityScore,
			EstimatedArrival:     s.EstimatedArrival,
			ArrivalClock:         s.ArrivalClock,
			CumulativeDistanceKm: round2(s.CumulativeDistanceKm),
			CumulativeMinutes:    round2(s.CumulativeMinutes),
			TrafficDelayMinutes:  round2(s.TrafficDelayMinutes),
			WeightKg:             s.Delivery.WeightKg,
			CashToCollect:        s.Delivery.CashToCollect,
		}
		if s.Delivery.Location != nil {
			sr.Lat, sr.Lng = s.Delivery.Location.Lat, s.Delivery.Location.Lon
		}
		stops = append(stops, sr)
	}

	advisories := r.Load.Advisories
	if advisories == nil {
		advisories = []string{}
	}
	recs := r.Recommendations
	if recs == nil {
		recs = []string{}
	}

	return RouteResponse{
		ID:                     r.ID,
		Stops:                  stops,
		TotalDistanceKm:        round2(r.TotalDistanceKm),
		TotalMinutes:           round2(r.TotalMinutes),
		TrafficAdjustedMinutes: round2(r.TrafficAdjustedMinutes),
		FuelCost:               round2(r.FuelCost),
		MeanPriorityScore:      round2(r.MeanPriorityScore),
		LoadUtilizationPct:     r.LoadUtilizationPct,
		TrafficImpact: TrafficImpactResponse{
			DelayMinutes:          r.TrafficImpact.DelayMinutes,
			AlternativeRoutesHint: r.TrafficImpact.AlternativeRoutesHint,
		},
		Load: LoadResponse{
			Feasible:      r.Load.Feasible,
			TotalWeightKg: round2(r.Load.TotalWeightKg),
			AvailableKg:   round2(r.Load.AvailableKg),
			OverageKg:     round2(r.Load.OverageKg),
			Advisories:    advisories,
		},
		Recommendations: recs,
		StartTime:       r.StartTime,
		GeneratedAt:     r.GeneratedAt,
	}
}

type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}
