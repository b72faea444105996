// Package engine implements the process analysis computation engine for
// dry fractionation lines: technical yield metrics, capital and operating
// economics (NPV, IRR, ROI, payback, break-even), sensitivity and Monte
// Carlo analysis, and multi-product environmental impact allocation.
//
// The engine is stateless per request. All domain constants (emission
// factors, benchmarks, classification cutoffs) arrive through an explicit
// Config at construction; nothing is read from mutable package state.
package engine

// ProcessType identifies the treatment variant of the fractionation line.
type ProcessType string

// Supported process types.
const (
	ProcessBaseline ProcessType = "baseline"
	ProcessRF       ProcessType = "rf"
	ProcessIR       ProcessType = "ir"
)

// AllocationMethod selects how a shared environmental impact is divided
// among co-products. The set is closed: dispatch is by enum, one function
// per method.
type AllocationMethod string

// Supported allocation methods.
const (
	AllocationEconomic AllocationMethod = "economic"
	AllocationPhysical AllocationMethod = "physical"
	AllocationHybrid   AllocationMethod = "hybrid"
)

// Tier grades a metric against its benchmark band.
type Tier string

// Performance tiers, ordered best to worst.
const (
	TierExcellent Tier = "excellent"
	TierGood      Tier = "good"
	TierFair      Tier = "fair"
	TierPoor      Tier = "poor"
)

// ProcessInputs describes the technical side of one analysis request.
// Particle sizes are percentile diameters in micrometers; protein and
// moisture contents are mass percentages.
type ProcessInputs struct {
	InputMass       float64     `json:"input_mass"        validate:"required,gt=0"`
	OutputMass      float64     `json:"output_mass"       validate:"required,gt=0"`
	InitialProtein  float64     `json:"initial_protein"   validate:"gte=0,lte=100"`
	FinalProtein    float64     `json:"final_protein"     validate:"gte=0,lte=100"`
	InitialMoisture float64     `json:"initial_moisture"  validate:"gte=0,lte=100"`
	FinalMoisture   float64     `json:"final_moisture"    validate:"gte=0,lte=100"`
	D10             float64     `json:"d10"               validate:"gt=0"`
	D50             float64     `json:"d50"               validate:"gt=0"`
	D90             float64     `json:"d90"               validate:"gt=0"`
	AirFlow         float64     `json:"air_flow"          validate:"gte=0"`
	ClassifierSpeed float64     `json:"classifier_speed"  validate:"gte=0"`
	ProcessType     ProcessType `json:"process_type"      validate:"required,oneof=baseline rf ir"`
}

// HoldingComponent expresses a working-capital component as a holding
// period times a daily cost rate.
type HoldingComponent struct {
	Days      float64 `json:"days"       validate:"gte=0"`
	DailyRate float64 `json:"daily_rate" validate:"gte=0"`
}

// Value returns the monetary value tied up in this component.
func (h HoldingComponent) Value() float64 {
	return h.Days * h.DailyRate
}

// WorkingCapitalInputs holds the three working-capital components.
// Working capital = inventory + receivables - payables.
type WorkingCapitalInputs struct {
	Inventory   HoldingComponent `json:"inventory"`
	Receivables HoldingComponent `json:"receivables"`
	Payables    HoldingComponent `json:"payables"`
}

// Utility is a single utility stream priced by consumption.
type Utility struct {
	Name        string  `json:"name"         validate:"required"`
	Consumption float64 `json:"consumption"  validate:"gte=0"`
	UnitCost    float64 `json:"unit_cost"    validate:"gte=0"`
}

// RawMaterial is a raw material priced by quantity.
type RawMaterial struct {
	Name     string  `json:"name"      validate:"required"`
	Quantity float64 `json:"quantity"  validate:"gte=0"`
	UnitCost float64 `json:"unit_cost" validate:"gte=0"`
}

// LaborInputs prices the workforce of the line.
type LaborInputs struct {
	HourlyWage   float64 `json:"hourly_wage"    validate:"gte=0"`
	HoursPerWeek float64 `json:"hours_per_week" validate:"gte=0,lte=168"`
	WeeksPerYear float64 `json:"weeks_per_year" validate:"gte=0,lte=53"`
	Workers      int     `json:"workers"        validate:"gte=0"`
}

// AnnualCost returns the yearly labor cost.
func (l LaborInputs) AnnualCost() float64 {
	return l.HourlyWage * l.HoursPerWeek * l.WeeksPerYear * float64(l.Workers)
}

// BreakEvenInputs carries the fixed/variable cost split used for the
// break-even point.
type BreakEvenInputs struct {
	FixedCosts          float64 `json:"fixed_costs"            validate:"gte=0"`
	UnitPrice           float64 `json:"unit_price"             validate:"gte=0"`
	VariableCostPerUnit float64 `json:"variable_cost_per_unit" validate:"gte=0"`
}

// EconomicInputs describes the economic side of one analysis request.
// Factors are ratios in [0,1]. MaintenanceCost, when non-nil, overrides
// the maintenance_factor * equipment_cost estimate.
type EconomicInputs struct {
	EquipmentCost       float64              `json:"equipment_cost"        validate:"required,gt=0"`
	InstallationFactor  float64              `json:"installation_factor"   validate:"gte=0,lte=1"`
	IndirectCostsFactor float64              `json:"indirect_costs_factor" validate:"gte=0,lte=1"`
	MaintenanceFactor   float64              `json:"maintenance_factor"    validate:"gte=0,lte=1"`
	MaintenanceCost     *float64             `json:"maintenance_cost,omitempty"`
	WorkingCapital      WorkingCapitalInputs `json:"working_capital"`
	Utilities           []Utility            `json:"utilities,omitempty"      validate:"dive"`
	RawMaterials        []RawMaterial        `json:"raw_materials,omitempty"  validate:"dive"`
	Labor               LaborInputs          `json:"labor"`
	ProductionVolume    float64              `json:"production_volume"     validate:"required,gt=0"`
	OperatingHours      float64              `json:"operating_hours"       validate:"gt=0,lte=8760"`
	ProjectDuration     int                  `json:"project_duration"      validate:"gte=1"`
	DiscountRate        float64              `json:"discount_rate"         validate:"gte=0,lte=1"`
	RevenuePerYear      float64              `json:"revenue_per_year"      validate:"gte=0"`
	CashFlows           []float64            `json:"cash_flows,omitempty"`
	BreakEven           BreakEvenInputs      `json:"break_even"`
}

// HybridWeights weight the economic and physical shares of the hybrid
// allocation method. They must sum to 1 within HybridWeightTolerance.
type HybridWeights struct {
	Economic float64 `json:"economic" validate:"gte=0,lte=1"`
	Physical float64 `json:"physical" validate:"gte=0,lte=1"`
}

// EnvironmentalInputs describes the resource consumption side of one
// analysis request. Consumption values are absolute per year unless PerKg
// is set, in which case they are per kilogram of product and scaled by the
// economic production volume.
type EnvironmentalInputs struct {
	ElectricityKWh   float64            `json:"electricity_consumption" validate:"gte=0"`
	CoolingKWh       float64            `json:"cooling_consumption"     validate:"gte=0"`
	WaterKg          float64            `json:"water_consumption"       validate:"gte=0"`
	TransportTonKm   float64            `json:"transport"               validate:"gte=0"`
	EquipmentMass    float64            `json:"equipment_mass"          validate:"gte=0"`
	ThermalRatio     float64            `json:"thermal_ratio"           validate:"gte=0,lte=1"`
	PerKg            bool               `json:"per_kg,omitempty"`
	AllocationMethod AllocationMethod   `json:"allocation_method" validate:"required,oneof=economic physical hybrid"`
	ProductValues    map[string]float64 `json:"product_values,omitempty"`
	MassFlows        map[string]float64 `json:"mass_flows,omitempty"`
	HybridWeights    *HybridWeights     `json:"hybrid_weights,omitempty"`
}

// DistributionKind identifies a sampling distribution for Monte Carlo.
type DistributionKind string

// Supported sampling distributions.
const (
	DistNormal  DistributionKind = "normal"
	DistUniform DistributionKind = "uniform"
)

// Distribution declares how an uncertain input is sampled. Normal draws
// use Mean/StdDev, uniform draws use Min/Max.
type Distribution struct {
	Kind   DistributionKind `json:"kind"   validate:"required,oneof=normal uniform"`
	Mean   float64          `json:"mean,omitempty"`
	StdDev float64          `json:"std_dev,omitempty" validate:"gte=0"`
	Min    float64          `json:"min,omitempty"`
	Max    float64          `json:"max,omitempty"`
}

// UncertainInput binds a sweep variable to its sampling distribution.
type UncertainInput struct {
	Variable SweepVariable `json:"variable" validate:"required,oneof=discount_rate production_volume operating_costs revenue"`
	Dist     Distribution  `json:"distribution"`
}

// MonteCarloSpec configures a simulation run. A zero Iterations falls back
// to the engine config default. Seed selects a reproducible sample stream.
type MonteCarloSpec struct {
	Iterations int              `json:"iterations,omitempty" validate:"gte=0"`
	Seed       int64            `json:"seed,omitempty"`
	Inputs     []UncertainInput `json:"inputs" validate:"required,min=1,dive"`
}

// AnalysisRequest is the engine's JSON input contract. Simulation is
// optional; when absent the profitability result carries no Monte Carlo
// section.
type AnalysisRequest struct {
	Technical     ProcessInputs       `json:"technical"`
	Economic      EconomicInputs      `json:"economic"`
	Environmental EnvironmentalInputs `json:"environmental"`
	Simulation    *MonteCarloSpec     `json:"monte_carlo,omitempty"`
}
