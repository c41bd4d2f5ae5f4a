package services

import (
	"delivery-route-optimizer/internal/domain"
	"fmt"
)

const nearCapacityRatio = 0.9

// Sum of request weights, defaulting unset weights.
func TotalWeightKg(requests []domain.DeliveryRequest) float64 {
	total := 0.0
	for _, r := range requests {
		w := r.WeightKg
		if w <= 0 {
			w = domain.DefaultWeightKg
		}
		total += w
	}
	return total
}

// Compare the total load against the vehicle's remaining capacity.
// An infeasible load is reported, not returned as an error. The overage and
// near-capacity checks are independent; an overloaded vehicle gets both.
func ValidateLoad(requests []domain.DeliveryRequest, vehicle domain.Vehicle) domain.LoadReport {
	total := TotalWeightKg(requests)
	available := vehicle.AvailableCapacityKg()

	report := domain.LoadReport{
		Feasible:      total <= available,
		TotalWeightKg: total,
		AvailableKg:   available,
	}

	if !report.Feasible {
		report.OverageKg = total - available
		report.Advisories = append(report.Advisories, fmt.Sprintf(
			"Vehicle overloaded by %.1fkg. Consider splitting into multiple trips or using a larger vehicle.",
			report.OverageKg,
		))
	}

	if available > 0 && total/available > nearCapacityRatio {
		report.Advisories = append(report.Advisories, fmt.Sprintf(
			"Vehicle is near capacity (%.0f%% of available %.1fkg). Consider leaving room for pickups.",
			100*total/available, available,
		))
	}

	return report
}
