package services

import (
	"delivery-route-optimizer/internal/domain"
	"strings"
	"testing"
)

func weighted(kgs ...float64) []domain.DeliveryRequest {
	out := make([]domain.DeliveryRequest, len(kgs))
	for i, kg := range kgs {
		out[i] = domain.DeliveryRequest{WeightKg: kg}
	}
	return out
}

func TestValidateLoadOverweight(t *testing.T) {
	report := ValidateLoad(weighted(10, 10, 6), domain.Vehicle{MaxWeightKg: 25})

	if report.Feasible {
		t.Fatal("expected infeasible load")
	}
	if report.OverageKg != 1 {
		t.Fatalf("overage = %v, want 1", report.OverageKg)
	}
	if len(report.Advisories) != 2 {
		t.Fatalf("advisories = %q, want overage then near-capacity", report.Advisories)
	}
	if !strings.Contains(report.Advisories[0], "overloaded by 1.0kg") {
		t.Fatalf("advisories[0] = %q, want overage of 1.0kg", report.Advisories[0])
	}
	if !strings.Contains(report.Advisories[1], "near capacity (104% of available 25.0kg)") {
		t.Fatalf("advisories[1] = %q, want near-capacity notice at 104%%", report.Advisories[1])
	}
}

func TestValidateLoadNearCapacity(t *testing.T) {
	report := ValidateLoad(weighted(23), domain.Vehicle{MaxWeightKg: 25})

	if !report.Feasible {
		t.Fatal("expected feasible load")
	}
	if len(report.Advisories) != 1 || !strings.Contains(report.Advisories[0], "near capacity") {
		t.Fatalf("advisories = %q, want near-capacity notice", report.Advisories)
	}
}

func TestValidateLoadComfortable(t *testing.T) {
	report := ValidateLoad(weighted(5, 5), domain.Vehicle{MaxWeightKg: 25})

	if !report.Feasible || len(report.Advisories) != 0 {
		t.Fatalf("report = %+v, want feasible without advisories", report)
	}
}

func TestValidateLoadAccountsForCurrentLoad(t *testing.T) {
	report := ValidateLoad(weighted(5), domain.Vehicle{MaxWeightKg: 25, CurrentLoadKg: 22})

	if report.Feasible {
		t.Fatal("expected infeasible load")
	}
	if report.AvailableKg != 3 || report.OverageKg != 2 {
		t.Fatalf("available = %v overage = %v, want 3 and 2", report.AvailableKg, report.OverageKg)
	}
}

func TestValidateLoadDefaultsMissingWeights(t *testing.T) {
	report := ValidateLoad(weighted(0, 0, 0), domain.Vehicle{MaxWeightKg: 100})

	if report.TotalWeightKg != 3 {
		t.Fatalf("total = %v, want 3", report.TotalWeightKg)
	}
}
