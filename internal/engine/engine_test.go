package engine

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine() *Engine {
	return New(DefaultConfig(), zerolog.Nop())
}

func TestAnalyzeFullPipeline(t *testing.T) {
	eng := testEngine()
	req := validRequest()
	req.Simulation = &MonteCarloSpec{
		Seed:       42,
		Iterations: 200,
		Inputs: []UncertainInput{
			{Variable: VarRevenue, Dist: Distribution{Kind: DistNormal, Mean: 300000, StdDev: 15000}},
		},
	}

	got, err := eng.Analyze(context.Background(), req)
	require.NoError(t, err)

	assert.NotEmpty(t, got.Fingerprint)
	assert.InDelta(t, 75.0, got.Technical.RecoveryRate, 1e-9)
	assert.InDelta(t, 690000, got.Capex.TotalCapex, 1e-9)
	assert.NotZero(t, got.Opex.TotalOpex)
	assert.NotNil(t, got.Profitability.Sensitivity)
	require.NotNil(t, got.Profitability.MonteCarlo)
	assert.Equal(t, 200, got.Profitability.MonteCarlo.Iterations)
	assert.Len(t, got.Environmental.EcoEfficiency.Scores, 6)
	assert.Len(t, got.Environmental.Allocation.Shares, 2)
}

func TestAnalyzeWithoutSimulation(t *testing.T) {
	got, err := testEngine().Analyze(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Nil(t, got.Profitability.MonteCarlo)
	assert.NotNil(t, got.Profitability.Sensitivity)
}

func TestAnalyzeAbortsOnRecoverableViolations(t *testing.T) {
	req := validRequest()
	req.Technical.OutputMass = req.Technical.InputMass * 2

	_, err := testEngine().Analyze(context.Background(), req)
	require.ErrorIs(t, err, ErrValidationFailed)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.Result.Errors)
	assert.Contains(t, verr.Error(), "technical.output_mass")
}

func TestAnalyzeRejectsStructurallyInvalidRequest(t *testing.T) {
	req := validRequest()
	req.Technical.ProcessType = ""

	_, err := testEngine().Analyze(context.Background(), req)
	require.ErrorIs(t, err, ErrStructuralValidation)
}

func TestAnalyzeResultRoundTripsThroughJSON(t *testing.T) {
	got, err := testEngine().Analyze(context.Background(), validRequest())
	require.NoError(t, err)

	data, err := json.Marshal(got)
	require.NoError(t, err)

	var decoded AnalysisResult
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, got.Fingerprint, decoded.Fingerprint)
	assert.InDelta(t, got.Profitability.NPV, decoded.Profitability.NPV, 1e-9)
	assert.Equal(t, got.Environmental.EcoEfficiency.Overall, decoded.Environmental.EcoEfficiency.Overall)

	// Undefined indicators carry their reason across the wire.
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "profitability_analysis")
	assert.Contains(t, raw, "environmental_results")
}
