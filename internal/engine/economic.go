package engine

import (
	"fmt"
	"math"
)

// Nullable-metric reasons for the profitability indicators.
const (
	ReasonNonConvergent   = "non-convergent"
	ReasonNotRecovered    = "not recovered within project duration"
	ReasonNoContribution  = "unit price does not exceed variable cost"
	ReasonNoSignChange    = "cash flows admit no internal rate of return"
	ReasonZeroDenominator = "zero denominator"
)

// WorkingCapital computes inventory + receivables - payables from the
// holding-period components.
func WorkingCapital(in WorkingCapitalInputs) float64 {
	return in.Inventory.Value() + in.Receivables.Value() - in.Payables.Value()
}

// CapexFor aggregates capital expenditure:
//
//	total = equipment * (1+installation) * (1+indirect) + working capital
//
// Installation applies to the bare equipment cost; indirect costs apply to
// the installed cost.
func CapexFor(in EconomicInputs) CapexAnalysis {
	installation := in.EquipmentCost * in.InstallationFactor
	indirect := (in.EquipmentCost + installation) * in.IndirectCostsFactor
	wc := WorkingCapital(in.WorkingCapital)

	return CapexAnalysis{
		EquipmentCost:    in.EquipmentCost,
		InstallationCost: installation,
		IndirectCost:     indirect,
		WorkingCapital:   wc,
		TotalCapex:       in.EquipmentCost + installation + indirect + wc,
	}
}

// OpexFor aggregates annual operating expenditure. Maintenance uses the
// explicit override when given, otherwise maintenance_factor times the
// equipment cost.
func OpexFor(in EconomicInputs) OpexAnalysis {
	var utilities float64
	for _, u := range in.Utilities {
		utilities += u.Consumption * u.UnitCost
	}

	var materials float64
	for _, m := range in.RawMaterials {
		materials += m.Quantity * m.UnitCost
	}

	labor := in.Labor.AnnualCost()

	maintenance := in.MaintenanceFactor * in.EquipmentCost
	if in.MaintenanceCost != nil {
		maintenance = *in.MaintenanceCost
	}

	return OpexAnalysis{
		UtilitiesCost:    utilities,
		RawMaterialsCost: materials,
		LaborCost:        labor,
		MaintenanceCost:  maintenance,
		TotalOpex:        utilities + materials + labor + maintenance,
	}
}

// CashFlowSeries builds the project cash-flow stream: year 0 is the capex
// outlay, years 1..duration carry revenue minus opex. An explicit
// cash_flows override replaces the constructed series entirely.
func CashFlowSeries(in EconomicInputs, totalCapex, totalOpex float64) []float64 {
	if len(in.CashFlows) > 0 {
		flows := make([]float64, len(in.CashFlows))
		copy(flows, in.CashFlows)
		return flows
	}

	flows := make([]float64, in.ProjectDuration+1)
	flows[0] = -totalCapex
	annual := in.RevenuePerYear - totalOpex
	for t := 1; t <= in.ProjectDuration; t++ {
		flows[t] = annual
	}
	return flows
}

// NPV discounts the cash-flow stream at the given rate:
//
//	NPV = sum CF_t / (1+rate)^t
func NPV(flows []float64, rate float64) float64 {
	if math.Abs(1+rate) < 1e-12 {
		return 0
	}
	var npv float64
	for t, cf := range flows {
		npv += cf / math.Pow(1+rate, float64(t))
	}
	return npv
}

// IRR finds the rate where NPV is zero, first by Newton's method with a
// numeric derivative, then by bisection over (IRRRateMin, IRRRateMax) when
// Newton stalls or escapes the bracket. Iterations and tolerance are
// bounded so root finding never loops unbounded. Streams with no sign
// change or no root in the bracket report an undefined indicator rather
// than an error.
func IRR(flows []float64) Indicator {
	if !hasSignChange(flows) {
		return Undefined(ReasonNoSignChange)
	}

	rate := 0.1
	for i := 0; i < IRRMaxIterations; i++ {
		npv := NPV(flows, rate)
		if math.Abs(npv) < IRRTolerance {
			return Defined(rate)
		}

		const delta = 1e-4
		derivative := (NPV(flows, rate+delta) - npv) / delta
		if derivative == 0 || math.IsNaN(derivative) || math.IsInf(derivative, 0) {
			break
		}

		next := rate - npv/derivative
		if math.IsNaN(next) || next <= IRRRateMin || next >= IRRRateMax {
			break
		}
		rate = next
	}

	return irrBisect(flows)
}

// irrBisect brackets the root inside (IRRRateMin, IRRRateMax) and bisects
// to tolerance within the iteration cap.
func irrBisect(flows []float64) Indicator {
	lo, hi := IRRRateMin+1e-9, IRRRateMax
	fLo, fHi := NPV(flows, lo), NPV(flows, hi)
	if fLo*fHi > 0 {
		return Undefined(ReasonNonConvergent)
	}

	for i := 0; i < IRRMaxIterations; i++ {
		mid := (lo + hi) / 2
		fMid := NPV(flows, mid)
		if math.Abs(fMid) < IRRTolerance || (hi-lo)/2 < IRRTolerance {
			return Defined(mid)
		}
		if fLo*fMid < 0 {
			hi = mid
		} else {
			lo, fLo = mid, fMid
		}
	}

	return Undefined(ReasonNonConvergent)
}

// hasSignChange reports whether the stream has both inflows and outflows.
func hasSignChange(flows []float64) bool {
	var pos, neg bool
	for _, cf := range flows {
		if cf > 0 {
			pos = true
		}
		if cf < 0 {
			neg = true
		}
	}
	return pos && neg
}

// Payback finds the first year where the cumulative undiscounted cash
// flow turns non-negative, linearly interpolated within that year.
// Streams that never recover the outlay report an undefined indicator.
func Payback(flows []float64) Indicator {
	if len(flows) == 0 {
		return Undefined(ReasonNotRecovered)
	}

	cumulative := flows[0]
	if cumulative >= 0 {
		return Defined(0)
	}

	for t := 1; t < len(flows); t++ {
		prev := cumulative
		cumulative += flows[t]
		if cumulative >= 0 {
			// prev < 0 <= cumulative, so flows[t] > 0 here.
			fraction := -prev / flows[t]
			return Defined(float64(t-1) + fraction)
		}
	}

	return Undefined(ReasonNotRecovered)
}

// ROIFor computes simple and annualized return on investment over the
// stream: gains are the operating years' flows, the investment is the
// year-0 outlay.
func ROIFor(flows []float64, years int) (roi, annualized float64, err error) {
	if len(flows) == 0 || flows[0] >= 0 {
		return 0, 0, fmt.Errorf("%w: ROI needs a positive initial investment", ErrDegenerateInput)
	}

	investment := -flows[0]
	var totalGain float64
	for _, cf := range flows[1:] {
		totalGain += cf
	}

	simple := (totalGain - investment) / investment
	annualizedRatio := simple
	if years > 1 {
		// Geometric-mean annualization: (1+roi)^(1/n) - 1. Losses beyond
		// the full investment cannot be annualized geometrically.
		if 1+simple > 0 {
			annualizedRatio = math.Pow(1+simple, 1/float64(years)) - 1
		}
	}

	return simple * 100, annualizedRatio * 100, nil
}

// BreakEvenUnits computes fixed_costs / (unit_price - variable_cost).
// A non-positive contribution margin makes the metric undefined; that is
// reported, not thrown.
func BreakEvenUnits(in BreakEvenInputs) Indicator {
	margin := in.UnitPrice - in.VariableCostPerUnit
	if margin <= 0 {
		return Undefined(ReasonNoContribution)
	}
	return Defined(in.FixedCosts / margin)
}

// EconomicMetricsFor runs the full economic aggregation for one request.
func EconomicMetricsFor(in EconomicInputs) (CapexAnalysis, OpexAnalysis, ProfitabilityAnalysis, error) {
	if in.ProductionVolume <= 0 {
		return CapexAnalysis{}, OpexAnalysis{}, ProfitabilityAnalysis{},
			fmt.Errorf("%w: production_volume must be positive", ErrDegenerateInput)
	}

	capex := CapexFor(in)
	opex := OpexFor(in)
	flows := CashFlowSeries(in, capex.TotalCapex, opex.TotalOpex)

	roi, annualized, err := ROIFor(flows, in.ProjectDuration)
	if err != nil {
		return CapexAnalysis{}, OpexAnalysis{}, ProfitabilityAnalysis{}, err
	}

	profitability := ProfitabilityAnalysis{
		NPV:                NPV(flows, in.DiscountRate),
		ROI:                roi,
		AnnualizedROI:      annualized,
		IRR:                IRR(flows),
		PaybackPeriod:      Payback(flows),
		BreakEvenUnits:     BreakEvenUnits(in.BreakEven),
		UnitProductionCost: (capex.TotalCapex + opex.TotalOpex) / in.ProductionVolume,
		CashFlows:          flows,
	}

	return capex, opex, profitability, nil
}
