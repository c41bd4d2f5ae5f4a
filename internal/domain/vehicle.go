package domain

// Vehicle profile used for one route.
type Vehicle struct {
	MaxWeightKg          float64
	MaxVolumeM3          float64
	FuelEfficiencyKmPerL float64
	CurrentLoadKg        float64
}

// Weight that can still be loaded on top of the current load.
func (v Vehicle) AvailableCapacityKg() float64 {
	return v.MaxWeightKg - v.CurrentLoadKg
}
