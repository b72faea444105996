package engine

import (
	"fmt"
	"math"
)

// sweepVariables is the fixed perturbation set, in presentation order.
var sweepVariables = []SweepVariable{
	VarDiscountRate,
	VarProductionVolume,
	VarOperatingCosts,
	VarRevenue,
}

// relationshipOf tags variables whose growth depresses NPV. The sweep
// mechanics are identical either way; the tag is for presentation.
func relationshipOf(v SweepVariable) Relationship {
	switch v {
	case VarDiscountRate, VarOperatingCosts:
		return RelationshipInverse
	default:
		return RelationshipDirect
	}
}

// perturb returns a copy of the inputs with one variable scaled by
// factor. Operating costs are not a single input field, so they are
// returned as a scale applied to the computed opex total. Production
// volume drives revenue proportionally: the line sells what it makes.
func perturb(in EconomicInputs, v SweepVariable, factor float64) (EconomicInputs, float64) {
	out := in
	opexScale := 1.0
	switch v {
	case VarDiscountRate:
		out.DiscountRate = clamp(in.DiscountRate*factor, 0, 1)
	case VarRevenue:
		out.RevenuePerYear = in.RevenuePerYear * factor
	case VarProductionVolume:
		out.ProductionVolume = in.ProductionVolume * factor
		out.RevenuePerYear = in.RevenuePerYear * factor
	case VarOperatingCosts:
		opexScale = factor
	}
	return out, opexScale
}

// evalPoint recomputes NPV and ROI for a perturbed input set.
// opexOverride, when non-nil, replaces the computed opex total.
func evalPoint(in EconomicInputs, opexScale float64, opexOverride *float64) (npv, roi float64, err error) {
	capex := CapexFor(in)
	totalOpex := OpexFor(in).TotalOpex * opexScale
	if opexOverride != nil {
		totalOpex = *opexOverride
	}

	flows := CashFlowSeries(in, capex.TotalCapex, totalOpex)
	roi, _, err = ROIFor(flows, in.ProjectDuration)
	if err != nil {
		return 0, 0, err
	}
	return NPV(flows, in.DiscountRate), roi, nil
}

// SensitivityFor sweeps each variable of the fixed set symmetrically
// around the base case, holding all other inputs fixed, and classifies
// the NPV swing against the configured cutoffs. A non-positive sweep
// range or step cannot produce a terminating sweep and is rejected.
func SensitivityFor(in EconomicInputs, cfg SensitivityConfig) (*SensitivityAnalysis, error) {
	if cfg.StepPct <= 0 || cfg.RangePct <= 0 {
		return nil, fmt.Errorf(
			"%w: sensitivity sweep needs positive range_pct and step_pct", ErrDegenerateInput)
	}

	baseNPV, _, err := evalPoint(in, 1, nil)
	if err != nil {
		return nil, err
	}

	analysis := &SensitivityAnalysis{
		BaseNPV:   baseNPV,
		Variables: make([]VariableSweep, 0, len(sweepVariables)),
	}

	for _, variable := range sweepVariables {
		sweep, sweepErr := sweepVariable(in, variable, baseNPV, cfg)
		if sweepErr != nil {
			return nil, sweepErr
		}
		analysis.Variables = append(analysis.Variables, sweep)
	}

	return analysis, nil
}

func sweepVariable(in EconomicInputs, variable SweepVariable, baseNPV float64, cfg SensitivityConfig) (VariableSweep, error) {
	sweep := VariableSweep{
		Variable:     variable,
		Relationship: relationshipOf(variable),
	}

	maxSwing := 0.0
	for pct := -cfg.RangePct; pct <= cfg.RangePct+1e-9; pct += cfg.StepPct {
		perturbed, opexScale := perturb(in, variable, 1+pct/100)
		npv, roi, err := evalPoint(perturbed, opexScale, nil)
		if err != nil {
			return VariableSweep{}, err
		}

		sweep.Points = append(sweep.Points, SweepPoint{
			PercentChange: pct,
			NPV:           npv,
			ROI:           roi,
		})

		if swing := math.Abs(npv - baseNPV); swing > maxSwing {
			maxSwing = swing
		}
	}

	if baseNPV == 0 {
		// Any swing is infinite relative to a zero base; report the
		// ratio as undefined and classify conservatively.
		sweep.MaxSwingPct = Undefined(ReasonZeroDenominator)
		sweep.Classification = SensitivityHigh
		return sweep, nil
	}

	swingPct := maxSwing / math.Abs(baseNPV) * 100
	sweep.MaxSwingPct = Defined(swingPct)
	sweep.Classification = classifySwing(swingPct, cfg)
	return sweep, nil
}

// classifySwing grades the relative NPV swing against the configured
// cutoffs.
func classifySwing(swingPct float64, cfg SensitivityConfig) SensitivityClass {
	switch {
	case swingPct > cfg.HighCutoffPct:
		return SensitivityHigh
	case swingPct >= cfg.MediumCutoffPct:
		return SensitivityMedium
	default:
		return SensitivityLow
	}
}
