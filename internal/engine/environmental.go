package engine

import (
	"fmt"
	"math"
)

// Impact category units.
const (
	UnitGWP       = "kg CO2-eq"
	UnitEnergy    = "MJ"
	UnitWater     = "m3"
	UnitDepletion = "kg Sb-eq"
)

// EnvironmentalFor converts the resource consumption of the line into
// impact category totals and allocates them across co-products. The
// production volume supplies the per-kg basis and, when inputs are given
// per kilogram of product, the absolute scaling.
//
// Eco-efficiency scores are attached later by the aggregator, which also
// needs the technical and economic outputs.
func EnvironmentalFor(env EnvironmentalInputs, productionVolume float64, factors EmissionFactors) (EnvironmentalResults, error) {
	if productionVolume <= 0 {
		return EnvironmentalResults{}, fmt.Errorf(
			"%w: per-kg impacts need a positive production_volume", ErrDegenerateInput)
	}

	scale := 1.0
	if env.PerKg {
		scale = productionVolume
	}
	electricity := env.ElectricityKWh * scale
	cooling := env.CoolingKWh * scale
	water := env.WaterKg * scale
	transport := env.TransportTonKm * scale

	// The thermal ratio splits electricity into thermal treatment duty
	// and mechanical processing for the energy accounting.
	thermalKWh := electricity * env.ThermalRatio
	mechanicalKWh := electricity - thermalKWh

	gwp := impactTotal(UnitGWP, productionVolume, map[string]float64{
		"electricity": electricity * factors.ElectricityGWP,
		"water":       water * factors.WaterGWP,
		"transport":   transport * factors.TransportGWP,
	})

	energy := impactTotal(UnitEnergy, productionVolume, map[string]float64{
		"mechanical": mechanicalKWh * factors.ElectricityEnergy,
		"thermal":    thermalKWh * factors.ThermalEnergy,
		"cooling":    cooling * factors.ElectricityEnergy,
	})

	waterFootprint := impactTotal(UnitWater, productionVolume, map[string]float64{
		"process": water * factors.ProcessWater,
		"cooling": cooling * factors.CoolingWater,
	})

	lifetime := factors.EquipmentLifetimeYears
	if lifetime <= 0 {
		lifetime = 1
	}
	depletion := impactTotal(UnitDepletion, productionVolume, map[string]float64{
		"electricity": electricity * factors.ElectricityDepletion,
		"equipment":   env.EquipmentMass * factors.EquipmentDepletion / lifetime,
	})

	allocation, err := AllocateImpacts(env, gwp.Total, energy.Total, waterFootprint.Total, depletion.Total)
	if err != nil {
		return EnvironmentalResults{}, err
	}

	return EnvironmentalResults{
		GWP:               gwp,
		EnergyDemand:      energy,
		WaterFootprint:    waterFootprint,
		ResourceDepletion: depletion,
		Allocation:        allocation,
	}, nil
}

// impactTotal sums a per-resource breakdown into one category total.
func impactTotal(unit string, productionVolume float64, byResource map[string]float64) ImpactTotal {
	var total float64
	for _, v := range byResource {
		total += v
	}
	return ImpactTotal{
		Total:      total,
		Unit:       unit,
		PerKg:      Defined(total / productionVolume),
		ByResource: byResource,
	}
}

// AllocateImpacts splits the category totals across co-products using the
// method declared in the inputs. Shares always sum to 1 within
// ShareSumTolerance.
func AllocateImpacts(env EnvironmentalInputs, gwp, energy, water, depletion float64) (AllocationResult, error) {
	shares, err := SharesFor(env)
	if err != nil {
		return AllocationResult{}, err
	}

	perProduct := make(map[string]ProductImpact, len(shares))
	for product, share := range shares {
		perProduct[product] = ProductImpact{
			Share:             share,
			GWP:               share * gwp,
			EnergyDemand:      share * energy,
			WaterFootprint:    share * water,
			ResourceDepletion: share * depletion,
		}
	}

	return AllocationResult{
		Method:     env.AllocationMethod,
		Shares:     shares,
		PerProduct: perProduct,
	}, nil
}

// SharesFor dispatches on the closed allocation method set. Adding a
// method means adding a case here; the default branch only catches
// requests that skipped validation.
func SharesFor(env EnvironmentalInputs) (map[string]float64, error) {
	switch env.AllocationMethod {
	case AllocationEconomic:
		return economicShares(env.ProductValues, env.MassFlows)
	case AllocationPhysical:
		return physicalShares(env.MassFlows)
	case AllocationHybrid:
		if env.HybridWeights == nil {
			return nil, fmt.Errorf("%w: hybrid allocation without weights", ErrStructuralValidation)
		}
		return hybridShares(env.ProductValues, env.MassFlows, *env.HybridWeights)
	default:
		return nil, fmt.Errorf("%w: unknown allocation method %q", ErrStructuralValidation, env.AllocationMethod)
	}
}

// economicShares weights each product by value times mass flow:
//
//	share_i = v_i * m_i / sum_j (v_j * m_j)
func economicShares(values, massFlows map[string]float64) (map[string]float64, error) {
	var denom float64
	for product, mass := range massFlows {
		denom += values[product] * mass
	}
	if denom <= 0 {
		return nil, fmt.Errorf("economic allocation: %w", ErrAllocationDenominator)
	}

	shares := make(map[string]float64, len(massFlows))
	for product, mass := range massFlows {
		shares[product] = values[product] * mass / denom
	}
	return shares, nil
}

// physicalShares weights each product by mass flow alone.
func physicalShares(massFlows map[string]float64) (map[string]float64, error) {
	var denom float64
	for _, mass := range massFlows {
		denom += mass
	}
	if denom <= 0 {
		return nil, fmt.Errorf("physical allocation: %w", ErrAllocationDenominator)
	}

	shares := make(map[string]float64, len(massFlows))
	for product, mass := range massFlows {
		shares[product] = mass / denom
	}
	return shares, nil
}

// hybridShares blends the economic and physical shares:
//
//	share_i = w_economic * economic_i + w_physical * physical_i
//
// The weights were validated to sum to 1 within HybridWeightTolerance;
// the blend is renormalized so the share-sum invariant holds exactly.
func hybridShares(values, massFlows map[string]float64, w HybridWeights) (map[string]float64, error) {
	if math.Abs(w.Economic+w.Physical-1) > HybridWeightTolerance {
		return nil, fmt.Errorf("%w: hybrid weights must sum to 1", ErrStructuralValidation)
	}

	economic, err := economicShares(values, massFlows)
	if err != nil {
		return nil, err
	}
	physical, err := physicalShares(massFlows)
	if err != nil {
		return nil, err
	}

	weightSum := w.Economic + w.Physical
	shares := make(map[string]float64, len(massFlows))
	for product := range massFlows {
		shares[product] = (w.Economic*economic[product] + w.Physical*physical[product]) / weightSum
	}
	return shares, nil
}
