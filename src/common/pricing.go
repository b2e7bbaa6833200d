package common

import "staynearev/src/config"

// EstimatedEnergy returns the kWh a session of the given length would draw at
// the assumed charge rate.
func EstimatedEnergy(durationMinutes uint) float64 {
	return float64(config.ChargeRateKW) * float64(durationMinutes) / 60
}

func EstimatedCost(durationMinutes uint, pricePerUnit float64) float64 {
	return EstimatedEnergy(durationMinutes) * pricePerUnit
}

// FinalCost is charged on completion from the energy actually consumed.
func FinalCost(energyConsumed, pricePerUnit float64) float64 {
	return energyConsumed * pricePerUnit
}
