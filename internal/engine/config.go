package engine

import "runtime"

// Fixed particle-quality span thresholds. These are deliberately not
// configurable so particle scores stay comparable across runs.
const (
	SpanExcellent = 1.5
	SpanGood      = 2.0
	SpanFair      = 2.5
)

// Process-efficiency scoring constants. The optimal bands come from the
// equipment operating envelope of the reference line.
const (
	// BaseProcessEfficiency is the starting score before adjustments.
	BaseProcessEfficiency = 85.0

	// RFEfficiencyBonus is added for radio-frequency treatment.
	RFEfficiencyBonus = 5.0

	// IREfficiencyBonus is added for infrared treatment.
	IREfficiencyBonus = 3.0

	// AirFlowOptimalMin and AirFlowOptimalMax bound the optimal air flow
	// band in cubic meters per hour.
	AirFlowOptimalMin = 400.0
	AirFlowOptimalMax = 600.0

	// ClassifierOptimalMin and ClassifierOptimalMax bound the optimal
	// classifier wheel speed band in rpm.
	ClassifierOptimalMin = 1200.0
	ClassifierOptimalMax = 1800.0

	// BandPenaltyMax is the largest efficiency penalty one operating
	// parameter can cost. A value one full band-width from the center
	// loses the maximum.
	BandPenaltyMax = 10.0

	// OptimalProcessingMoisture is the moisture content the separation
	// performs best at, percent.
	OptimalProcessingMoisture = 12.5

	// MoistureImpactFactor is the efficiency loss per percentage point of
	// moisture deviation from the optimum.
	MoistureImpactFactor = 0.02
)

// IRR root-finding bounds. Newton iterations that stall or escape the
// bracket fall back to bisection inside (IRRRateMin, IRRRateMax).
const (
	IRRRateMin       = -0.99
	IRRRateMax       = 5.0
	IRRMaxIterations = 100
	IRRTolerance     = 1e-6
)

// Allocation invariants.
const (
	// HybridWeightTolerance is the allowed deviation of
	// w_economic + w_physical from 1.
	HybridWeightTolerance = 1e-3

	// ShareSumTolerance is the allowed deviation of the share sum from 1
	// for any allocation method.
	ShareSumTolerance = 1e-6
)

// EmissionFactors converts resource consumption into impact categories.
//
// The numeric defaults below mirror the factor tables of the reference
// line study and have no independently cited provenance; treat them as
// placeholders until confirmed by a domain expert.
type EmissionFactors struct {
	// ElectricityGWP is kg CO2-eq per kWh of grid electricity.
	ElectricityGWP float64 `yaml:"electricity_gwp"  json:"electricity_gwp"`

	// WaterGWP is kg CO2-eq per kg of process water.
	WaterGWP float64 `yaml:"water_gwp"        json:"water_gwp"`

	// TransportGWP is kg CO2-eq per ton-km of product transport.
	TransportGWP float64 `yaml:"transport_gwp"    json:"transport_gwp"`

	// ElectricityEnergy is MJ of cumulative energy demand per kWh.
	ElectricityEnergy float64 `yaml:"electricity_energy" json:"electricity_energy"`

	// ThermalEnergy is MJ per kWh of thermal treatment duty.
	ThermalEnergy float64 `yaml:"thermal_energy"   json:"thermal_energy"`

	// CoolingWater is cubic meters of water per kWh of cooling duty.
	CoolingWater float64 `yaml:"cooling_water"    json:"cooling_water"`

	// ProcessWater converts water consumption in kg to cubic meters.
	ProcessWater float64 `yaml:"process_water"    json:"process_water"`

	// ElectricityDepletion is kg Sb-eq per kWh of electricity.
	ElectricityDepletion float64 `yaml:"electricity_depletion" json:"electricity_depletion"`

	// EquipmentDepletion is kg Sb-eq per kg of installed equipment mass,
	// amortized over the equipment lifetime.
	EquipmentDepletion float64 `yaml:"equipment_depletion"   json:"equipment_depletion"`

	// EquipmentLifetimeYears amortizes the equipment depletion burden.
	EquipmentLifetimeYears float64 `yaml:"equipment_lifetime_years" json:"equipment_lifetime_years"`
}

// DefaultEmissionFactors returns the reference-line factor set.
func DefaultEmissionFactors() EmissionFactors {
	return EmissionFactors{
		ElectricityGWP:         0.5,
		WaterGWP:               0.001,
		TransportGWP:           0.1,
		ElectricityEnergy:      3.6,
		ThermalEnergy:          3.6,
		CoolingWater:           0.0003,
		ProcessWater:           0.001,
		ElectricityDepletion:   1.3e-7,
		EquipmentDepletion:     2.5e-5,
		EquipmentLifetimeYears: 10,
	}
}

// Benchmarks are the targets the efficiency aggregator normalizes
// against. Direct metrics overachieve above the benchmark; impact
// benchmarks are ceilings, where lower measured values score better.
type Benchmarks struct {
	// RecoveryRate is the target protein recovery, percent.
	RecoveryRate float64 `yaml:"recovery_rate"      json:"recovery_rate"`

	// MassEfficiency is the target mass yield, percent.
	MassEfficiency float64 `yaml:"mass_efficiency"    json:"mass_efficiency"`

	// ProcessEfficiency is the target operating score, percent.
	ProcessEfficiency float64 `yaml:"process_efficiency" json:"process_efficiency"`

	// GWPPerKg is the impact ceiling in kg CO2-eq per kg of product.
	GWPPerKg float64 `yaml:"gwp_per_kg"         json:"gwp_per_kg"`

	// WaterPerKg is the impact ceiling in cubic meters per kg of product.
	WaterPerKg float64 `yaml:"water_per_kg"       json:"water_per_kg"`

	// EnergyPerKg is the impact ceiling in MJ per kg of product.
	EnergyPerKg float64 `yaml:"energy_per_kg"      json:"energy_per_kg"`
}

// DefaultBenchmarks returns the reference-line benchmark set. Like the
// emission factors these values lack cited provenance and should be
// confirmed before being treated as ground truth.
func DefaultBenchmarks() Benchmarks {
	return Benchmarks{
		RecoveryRate:      75.0,
		MassEfficiency:    30.0,
		ProcessEfficiency: 85.0,
		GWPPerKg:          1.0,
		WaterPerKg:        0.01,
		EnergyPerKg:       10.0,
	}
}

// Efficiency tier ratio bands. A ratio is value/benchmark for direct
// metrics and benchmark/value for impact ceilings.
const (
	TierRatioExcellent = 1.0
	TierRatioGood      = 0.8
	TierRatioFair      = 0.6
)

// SensitivityConfig controls the single-variable perturbation sweep.
type SensitivityConfig struct {
	// RangePct is the symmetric sweep half-width, percent.
	RangePct float64 `yaml:"range_pct" json:"range_pct"`

	// StepPct is the sweep step, percent.
	StepPct float64 `yaml:"step_pct"  json:"step_pct"`

	// MediumCutoffPct and HighCutoffPct classify the NPV swing relative
	// to the base NPV: below medium is low, above high is high.
	MediumCutoffPct float64 `yaml:"medium_cutoff_pct" json:"medium_cutoff_pct"`
	HighCutoffPct   float64 `yaml:"high_cutoff_pct"   json:"high_cutoff_pct"`
}

// DefaultSensitivityConfig returns the ±20% sweep in 10% steps with the
// 10/25 classification cutoffs.
func DefaultSensitivityConfig() SensitivityConfig {
	return SensitivityConfig{
		RangePct:        20,
		StepPct:         10,
		MediumCutoffPct: 10,
		HighCutoffPct:   25,
	}
}

// MonteCarloConfig controls the default simulation behavior. Requests can
// override iterations and seed per run.
type MonteCarloConfig struct {
	// Iterations is the number of samples drawn per run.
	Iterations int `yaml:"iterations"  json:"iterations"`

	// Concurrency bounds the sample worker pool. Zero means one worker
	// per available CPU.
	Concurrency int `yaml:"concurrency" json:"concurrency"`

	// Seed is the default RNG seed; zero derives a seed per run.
	Seed int64 `yaml:"seed,omitempty" json:"seed,omitempty"`
}

// DefaultMonteCarloIterations is the default sample count.
const DefaultMonteCarloIterations = 1000

// DefaultMonteCarloConfig returns the 1000-iteration, CPU-bounded default.
func DefaultMonteCarloConfig() MonteCarloConfig {
	return MonteCarloConfig{
		Iterations:  DefaultMonteCarloIterations,
		Concurrency: runtime.NumCPU(),
	}
}

// Config carries every domain constant the engine needs. It is passed to
// New explicitly; there is no module-level mutable configuration.
type Config struct {
	Factors     EmissionFactors   `yaml:"emission_factors" json:"emission_factors"`
	Benchmarks  Benchmarks        `yaml:"benchmarks"       json:"benchmarks"`
	Sensitivity SensitivityConfig `yaml:"sensitivity"      json:"sensitivity"`
	MonteCarlo  MonteCarloConfig  `yaml:"monte_carlo"      json:"monte_carlo"`
}

// DefaultConfig assembles the reference-line defaults.
func DefaultConfig() Config {
	return Config{
		Factors:     DefaultEmissionFactors(),
		Benchmarks:  DefaultBenchmarks(),
		Sensitivity: DefaultSensitivityConfig(),
		MonteCarlo:  DefaultMonteCarloConfig(),
	}
}
