package domain

type TrafficLevel string

const (
	TrafficLight    TrafficLevel = "light"
	TrafficModerate TrafficLevel = "moderate"
	TrafficHeavy    TrafficLevel = "heavy"
	TrafficSevere   TrafficLevel = "severe"
)

// Classify congestion from the ratio of traffic-adjusted to free-flow duration.
func ClassifyTraffic(baseSeconds, trafficSeconds float64) TrafficLevel {
	if baseSeconds <= 0 {
		return TrafficLight
	}
	ratio := trafficSeconds / baseSeconds
	switch {
	case ratio > 1.5:
		return TrafficSevere
	case ratio > 1.3:
		return TrafficHeavy
	case ratio > 1.1:
		return TrafficModerate
	default:
		return TrafficLight
	}
}

// Cost of travelling one leg.
// Estimated is set for closed-form legs that were not measured by a provider.
type TravelCost struct {
	DistanceMeters         float64
	BaseDurationSeconds    float64
	TrafficDurationSeconds float64
	Level                  TrafficLevel
	Source                 string
	Estimated              bool
}

func (c TravelCost) DistanceKm() float64 { return c.DistanceMeters / 1000 }

// Observed traffic delay of the leg. Estimated legs carry an assumed buffer,
// not an observed delay, and report zero.
func (c TravelCost) DelaySeconds() float64 {
	if c.Estimated {
		return 0
	}
	return c.TrafficDurationSeconds - c.BaseDurationSeconds
}
