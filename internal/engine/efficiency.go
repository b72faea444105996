package engine

// Score names used as keys in EcoEfficiencyResults.Scores.
const (
	ScoreRecoveryRate      = "recovery_rate"
	ScoreMassEfficiency    = "mass_efficiency"
	ScoreProcessEfficiency = "process_efficiency"
	ScoreGWPPerKg          = "gwp_per_kg"
	ScoreWaterPerKg        = "water_per_kg"
	ScoreEnergyPerKg       = "energy_per_kg"
)

// tierSeverity orders tiers for worst-wins aggregation.
var tierSeverity = map[Tier]int{
	TierExcellent: 0,
	TierGood:      1,
	TierFair:      2,
	TierPoor:      3,
}

// EcoEfficiencyFor normalizes the technical and environmental outputs
// against the configured benchmarks. Direct metrics score value over
// benchmark; impact ceilings score benchmark over value, so lower
// measured impact grades better. The overall tier is the worst individual
// tier.
func EcoEfficiencyFor(
	tech TechnicalResults,
	prof ProfitabilityAnalysis,
	env EnvironmentalResults,
	b Benchmarks,
) EcoEfficiencyResults {
	scores := map[string]EfficiencyScore{
		ScoreRecoveryRate:      directScore(tech.RecoveryRate, b.RecoveryRate),
		ScoreMassEfficiency:    directScore(tech.MassEfficiency, b.MassEfficiency),
		ScoreProcessEfficiency: directScore(tech.ProcessEfficiency, b.ProcessEfficiency),
		ScoreGWPPerKg:          ceilingScore(indicatorValue(env.GWP.PerKg), b.GWPPerKg),
		ScoreWaterPerKg:        ceilingScore(indicatorValue(env.WaterFootprint.PerKg), b.WaterPerKg),
		ScoreEnergyPerKg:       ceilingScore(indicatorValue(env.EnergyDemand.PerKg), b.EnergyPerKg),
	}

	overall := TierExcellent
	for _, s := range scores {
		if tierSeverity[s.Tier] > tierSeverity[overall] {
			overall = s.Tier
		}
	}

	return EcoEfficiencyResults{
		Scores:      scores,
		ValuePerGWP: valuePerImpact(prof.NPV, env.GWP.Total),
		Overall:     overall,
	}
}

// directScore grades a higher-is-better metric.
func directScore(value, benchmark float64) EfficiencyScore {
	ratio := 0.0
	if benchmark > 0 {
		ratio = value / benchmark
	}
	return EfficiencyScore{Value: value, Benchmark: benchmark, Ratio: ratio, Tier: tierFor(ratio)}
}

// ceilingScore grades a lower-is-better metric against its ceiling. A
// zero measured impact overachieves any ceiling; the ratio is pinned to
// the excellent threshold because benchmark/0 has no finite value.
func ceilingScore(value, benchmark float64) EfficiencyScore {
	var ratio float64
	switch {
	case value <= 0:
		ratio = TierRatioExcellent
	case benchmark <= 0:
		ratio = 0
	default:
		ratio = benchmark / value
	}
	return EfficiencyScore{Value: value, Benchmark: benchmark, Ratio: ratio, Tier: tierFor(ratio)}
}

// tierFor maps a value/threshold ratio to its band. A ratio at or above
// 1.0 overachieves the benchmark.
func tierFor(ratio float64) Tier {
	switch {
	case ratio >= TierRatioExcellent:
		return TierExcellent
	case ratio >= TierRatioGood:
		return TierGood
	case ratio >= TierRatioFair:
		return TierFair
	default:
		return TierPoor
	}
}

// valuePerImpact is the classic eco-efficiency quotient: economic value
// created per unit of impact. A zero impact makes it undefined.
func valuePerImpact(value, impact float64) Indicator {
	if impact <= 0 {
		return Undefined(ReasonZeroDenominator)
	}
	return Defined(value / impact)
}

func indicatorValue(i Indicator) float64 {
	if i.Value == nil {
		return 0
	}
	return *i.Value
}
