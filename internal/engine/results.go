package engine

// Indicator holds a metric that can be legitimately undefined for some
// valid inputs (IRR, payback period, break-even). Value is null in JSON
// when undefined and Reason then says why. Undefined indicators are never
// coerced to a numeric default.
type Indicator struct {
	Value  *float64 `json:"value"`
	Reason string   `json:"reason,omitempty"`
}

// Defined wraps a computed value in an Indicator.
func Defined(v float64) Indicator {
	return Indicator{Value: &v}
}

// Undefined returns an Indicator with no value and the given reason.
func Undefined(reason string) Indicator {
	return Indicator{Reason: reason}
}

// IsDefined reports whether the indicator carries a value.
func (i Indicator) IsDefined() bool {
	return i.Value != nil
}

// TechnicalResults holds the mass/protein/particle-size derived ratios.
type TechnicalResults struct {
	// RecoveryRate is the share of the feed protein recovered in the
	// product, in percent.
	RecoveryRate float64 `json:"recovery_rate"`

	// ProteinLoss is the protein mass lost between feed and product, kg.
	ProteinLoss float64 `json:"protein_loss"`

	// ConcentrationFactor is final over initial protein content.
	ConcentrationFactor float64 `json:"concentration_factor"`

	// ConcentrationIncrease is the relative protein enrichment, percent.
	ConcentrationIncrease float64 `json:"concentration_increase"`

	// MassEfficiency is output over input mass, percent. Bounded by 100
	// given the validated mass invariant.
	MassEfficiency float64 `json:"mass_efficiency"`

	// DistributionSpan is (d90-d10)/d50.
	DistributionSpan float64 `json:"distribution_span"`

	// ParticleQuality grades the span against fixed thresholds.
	ParticleQuality Tier `json:"particle_quality"`

	// ProcessEfficiency is the operating-condition score in [0,100].
	ProcessEfficiency float64 `json:"process_efficiency"`
}

// CapexAnalysis breaks total capital expenditure into its components.
type CapexAnalysis struct {
	EquipmentCost    float64 `json:"equipment_cost"`
	InstallationCost float64 `json:"installation_cost"`
	IndirectCost     float64 `json:"indirect_cost"`
	WorkingCapital   float64 `json:"working_capital"`
	TotalCapex       float64 `json:"total_capex"`
}

// OpexAnalysis breaks annual operating expenditure into its components.
type OpexAnalysis struct {
	UtilitiesCost    float64 `json:"utilities_cost"`
	RawMaterialsCost float64 `json:"raw_materials_cost"`
	LaborCost        float64 `json:"labor_cost"`
	MaintenanceCost  float64 `json:"maintenance_cost"`
	TotalOpex        float64 `json:"total_opex"`
}

// SweepVariable names an input perturbed by sensitivity or Monte Carlo
// analysis.
type SweepVariable string

// Perturbable inputs.
const (
	VarDiscountRate     SweepVariable = "discount_rate"
	VarProductionVolume SweepVariable = "production_volume"
	VarOperatingCosts   SweepVariable = "operating_costs"
	VarRevenue          SweepVariable = "revenue"
)

// Relationship tags how a variable moves NPV.
type Relationship string

// Relationship values. Inverse variables depress NPV as they grow.
const (
	RelationshipDirect  Relationship = "direct"
	RelationshipInverse Relationship = "inverse"
)

// SensitivityClass grades how strongly NPV reacts to a variable.
type SensitivityClass string

// Sensitivity classes.
const (
	SensitivityLow    SensitivityClass = "low"
	SensitivityMedium SensitivityClass = "medium"
	SensitivityHigh   SensitivityClass = "high"
)

// SweepPoint is one step of a sensitivity sweep.
type SweepPoint struct {
	PercentChange float64 `json:"percent_change"`
	NPV           float64 `json:"npv"`
	ROI           float64 `json:"roi"`
}

// VariableSweep is the full single-variable sweep for one input.
type VariableSweep struct {
	Variable       SweepVariable    `json:"variable"`
	Relationship   Relationship     `json:"relationship"`
	Points         []SweepPoint     `json:"points"`
	MaxSwingPct    Indicator        `json:"max_swing_pct"`
	Classification SensitivityClass `json:"classification"`
}

// SensitivityAnalysis aggregates the sweeps of all perturbed variables.
type SensitivityAnalysis struct {
	BaseNPV   float64         `json:"base_npv"`
	Variables []VariableSweep `json:"variables"`
}

// ConfidenceInterval is an empirical percentile interval.
type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// MonteCarloResult aggregates the sampled NPV distribution.
type MonteCarloResult struct {
	Iterations          int                `json:"iterations"`
	Seed                int64              `json:"seed"`
	MeanNPV             float64            `json:"mean_npv"`
	StdDev              float64            `json:"std_dev"`
	MinNPV              float64            `json:"min_npv"`
	MaxNPV              float64            `json:"max_npv"`
	CI95                ConfidenceInterval `json:"ci_95"`
	ProbabilityPositive float64            `json:"probability_positive"`
}

// ProfitabilityAnalysis holds the discounted-cash-flow metrics.
type ProfitabilityAnalysis struct {
	NPV                float64               `json:"npv"`
	ROI                float64               `json:"roi"`
	AnnualizedROI      float64               `json:"annualized_roi"`
	IRR                Indicator             `json:"irr"`
	PaybackPeriod      Indicator             `json:"payback_period"`
	BreakEvenUnits     Indicator             `json:"break_even"`
	UnitProductionCost float64               `json:"unit_production_cost"`
	CashFlows          []float64             `json:"cash_flows"`
	Sensitivity        *SensitivityAnalysis  `json:"sensitivity_analysis,omitempty"`
	MonteCarlo         *MonteCarloResult     `json:"monte_carlo,omitempty"`
}

// ImpactTotal is one environmental impact category with its per-resource
// breakdown. PerKg is undefined when the production volume is degenerate.
type ImpactTotal struct {
	Total      float64            `json:"total"`
	Unit       string             `json:"unit"`
	PerKg      Indicator          `json:"per_kg"`
	ByResource map[string]float64 `json:"by_resource"`
}

// ProductImpact is the slice of each impact category allocated to one
// co-product.
type ProductImpact struct {
	Share             float64 `json:"share"`
	GWP               float64 `json:"gwp"`
	EnergyDemand      float64 `json:"energy_demand"`
	WaterFootprint    float64 `json:"water_footprint"`
	ResourceDepletion float64 `json:"resource_depletion"`
}

// AllocationResult is the multi-product split of the total impacts.
type AllocationResult struct {
	Method     AllocationMethod         `json:"method"`
	Shares     map[string]float64       `json:"shares"`
	PerProduct map[string]ProductImpact `json:"per_product"`
}

// EfficiencyScore grades one metric against its benchmark.
type EfficiencyScore struct {
	Value     float64 `json:"value"`
	Benchmark float64 `json:"benchmark"`
	Ratio     float64 `json:"ratio"`
	Tier      Tier    `json:"tier"`
}

// EcoEfficiencyResults normalizes technical and environmental metrics
// against the configured benchmarks.
type EcoEfficiencyResults struct {
	Scores      map[string]EfficiencyScore `json:"scores"`
	ValuePerGWP Indicator                  `json:"value_per_gwp"`
	Overall     Tier                       `json:"overall"`
}

// EnvironmentalResults holds the impact totals, the co-product allocation
// and the eco-efficiency scores.
type EnvironmentalResults struct {
	GWP               ImpactTotal          `json:"gwp"`
	EnergyDemand      ImpactTotal          `json:"energy_demand"`
	WaterFootprint    ImpactTotal          `json:"water_footprint"`
	ResourceDepletion ImpactTotal          `json:"resource_depletion"`
	Allocation        AllocationResult     `json:"allocation"`
	EcoEfficiency     EcoEfficiencyResults `json:"eco_efficiency"`
}

// AnalysisResult is the immutable snapshot of one completed analysis run.
// A new run produces a new result; nothing edits one in place.
type AnalysisResult struct {
	Fingerprint   string                `json:"fingerprint"`
	Technical     TechnicalResults      `json:"technical_results"`
	Capex         CapexAnalysis         `json:"capex_analysis"`
	Opex          OpexAnalysis          `json:"opex_analysis"`
	Profitability ProfitabilityAnalysis `json:"profitability_analysis"`
	Environmental EnvironmentalResults  `json:"environmental_results"`
}
