package engine

import "fmt"

// TechnicalMetricsFor derives the mass, protein and particle-size ratios
// from the validated process inputs.
//
// Recovery rate follows the protein mass balance:
//
//	R = (Mf * Cf) / (Mi * Ci) * 100
//
// A zero feed protein content or feed mass is a computation error, never
// silently coerced to zero.
func TechnicalMetricsFor(in ProcessInputs) (TechnicalResults, error) {
	if in.InitialProtein <= 0 || in.InputMass <= 0 {
		return TechnicalResults{}, fmt.Errorf(
			"%w: recovery rate needs positive initial_protein and input_mass", ErrDegenerateInput)
	}
	if in.D50 <= 0 {
		return TechnicalResults{}, fmt.Errorf(
			"%w: distribution span needs positive d50", ErrDegenerateInput)
	}

	initialProteinMass := in.InputMass * in.InitialProtein / 100
	finalProteinMass := in.OutputMass * in.FinalProtein / 100

	span := (in.D90 - in.D10) / in.D50

	return TechnicalResults{
		RecoveryRate:          finalProteinMass / initialProteinMass * 100,
		ProteinLoss:           initialProteinMass - finalProteinMass,
		ConcentrationFactor:   in.FinalProtein / in.InitialProtein,
		ConcentrationIncrease: (in.FinalProtein - in.InitialProtein) / in.InitialProtein * 100,
		MassEfficiency:        in.OutputMass / in.InputMass * 100,
		DistributionSpan:      span,
		ParticleQuality:       particleQuality(span),
		ProcessEfficiency:     ProcessEfficiency(in.ProcessType, in.AirFlow, in.ClassifierSpeed, in.FinalMoisture),
	}, nil
}

// particleQuality grades the distribution span against the fixed
// thresholds. Narrow distributions classify better.
func particleQuality(span float64) Tier {
	switch {
	case span <= SpanExcellent:
		return TierExcellent
	case span <= SpanGood:
		return TierGood
	case span <= SpanFair:
		return TierFair
	default:
		return TierPoor
	}
}

// ProcessEfficiency scores the operating conditions of the line in
// [0,100]. The base score gets a treatment bonus, loses points in
// proportion to the distance of air flow and classifier speed from their
// optimal band centers, and is derated by moisture deviation from the
// processing optimum.
func ProcessEfficiency(pt ProcessType, airFlow, classifierSpeed, moisture float64) float64 {
	score := BaseProcessEfficiency
	switch pt {
	case ProcessRF:
		score += RFEfficiencyBonus
	case ProcessIR:
		score += IREfficiencyBonus
	case ProcessBaseline:
	}

	score -= bandPenalty(airFlow, AirFlowOptimalMin, AirFlowOptimalMax)
	score -= bandPenalty(classifierSpeed, ClassifierOptimalMin, ClassifierOptimalMax)

	score *= moistureFactor(moisture)

	return clamp(score, 0, 100)
}

// bandPenalty charges up to BandPenaltyMax points proportionally to the
// distance from the band center, measured in half-widths. The penalty is
// zero at the center, half the maximum at the band edge, and capped at
// two half-widths out.
func bandPenalty(value, min, max float64) float64 {
	center := (min + max) / 2
	halfWidth := (max - min) / 2
	if halfWidth <= 0 {
		return 0
	}

	relDist := abs(value-center) / halfWidth
	if relDist > 2 {
		relDist = 2
	}
	return relDist * BandPenaltyMax / 2
}

// moistureFactor derates efficiency by MoistureImpactFactor per
// percentage point of deviation from the processing optimum, floored at
// zero.
func moistureFactor(moisture float64) float64 {
	f := 1 - abs(moisture-OptimalProcessingMoisture)*MoistureImpactFactor
	if f < 0 {
		return 0
	}
	return f
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
