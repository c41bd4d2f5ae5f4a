package domain

import "testing"

func TestClassifyTraffic(t *testing.T) {
	cases := []struct {
		base, traffic float64
		want          TrafficLevel
	}{
		{100, 160, TrafficSevere},
		{100, 140, TrafficHeavy},
		{100, 120, TrafficModerate},
		{100, 110, TrafficLight},
		{100, 90, TrafficLight},
		{0, 50, TrafficLight},
	}
	for _, c := range cases {
		if got := ClassifyTraffic(c.base, c.traffic); got != c.want {
			t.Errorf("ClassifyTraffic(%v, %v) = %s, want %s", c.base, c.traffic, got, c.want)
		}
	}
}

func TestEstimatedLegHasNoDelay(t *testing.T) {
	leg := TravelCost{BaseDurationSeconds: 1800, TrafficDurationSeconds: 2400, Estimated: true}
	if d := leg.DelaySeconds(); d != 0 {
		t.Fatalf("delay = %v, want 0", d)
	}

	leg.Estimated = false
	if d := leg.DelaySeconds(); d != 600 {
		t.Fatalf("delay = %v, want 600", d)
	}
}
