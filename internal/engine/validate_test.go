package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validRequest builds a request that passes structural and cross-field
// validation.
func validRequest() *AnalysisRequest {
	return &AnalysisRequest{
		Technical: baseProcessInputs(),
		Economic: EconomicInputs{
			EquipmentCost:       500000,
			InstallationFactor:  0.2,
			IndirectCostsFactor: 0.15,
			MaintenanceFactor:   0.05,
			ProductionVolume:    200000,
			OperatingHours:      8000,
			ProjectDuration:     10,
			DiscountRate:        0.10,
			RevenuePerYear:      300000,
		},
		Environmental: twoProductEnv(AllocationPhysical),
	}
}

func fieldNames(errs []FieldError) []string {
	names := make([]string, 0, len(errs))
	for _, e := range errs {
		names = append(names, e.Field)
	}
	return names
}

func TestValidateAcceptsValidRequest(t *testing.T) {
	v := NewValidator()

	got, err := v.Validate(validRequest())
	require.NoError(t, err)
	assert.True(t, got.OK)
	assert.Empty(t, got.Errors)
}

func TestValidateStructuralViolationsAreFatal(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name   string
		mutate func(*AnalysisRequest)
	}{
		{
			name:   "missing input mass",
			mutate: func(r *AnalysisRequest) { r.Technical.InputMass = 0 },
		},
		{
			name:   "unknown process type",
			mutate: func(r *AnalysisRequest) { r.Technical.ProcessType = "microwave" },
		},
		{
			name:   "missing equipment cost",
			mutate: func(r *AnalysisRequest) { r.Economic.EquipmentCost = 0 },
		},
		{
			name:   "unknown allocation method",
			mutate: func(r *AnalysisRequest) { r.Environmental.AllocationMethod = "mass-energy" },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(req)

			_, err := v.Validate(req)
			require.ErrorIs(t, err, ErrStructuralValidation)
		})
	}

	t.Run("nil request", func(t *testing.T) {
		_, err := v.Validate(nil)
		require.ErrorIs(t, err, ErrStructuralValidation)
	})
}

func TestValidateRangeViolationsAreRecoverable(t *testing.T) {
	v := NewValidator()

	req := validRequest()
	req.Technical.FinalProtein = 130
	req.Economic.DiscountRate = 1.5

	got, err := v.Validate(req)
	require.NoError(t, err)
	assert.False(t, got.OK)
	assert.Contains(t, fieldNames(got.Errors), "technical.final_protein")
	assert.Contains(t, fieldNames(got.Errors), "economic.discount_rate")
}

func TestValidateCrossFieldInvariants(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name      string
		mutate    func(*AnalysisRequest)
		wantField string
	}{
		{
			name:      "output mass exceeds input mass",
			mutate:    func(r *AnalysisRequest) { r.Technical.OutputMass = r.Technical.InputMass + 1 },
			wantField: "technical.output_mass",
		},
		{
			name:      "moisture gained during drying",
			mutate:    func(r *AnalysisRequest) { r.Technical.FinalMoisture = r.Technical.InitialMoisture + 5 },
			wantField: "technical.final_moisture",
		},
		{
			name: "disordered particle percentiles",
			mutate: func(r *AnalysisRequest) {
				r.Technical.D10 = 50
				r.Technical.D50 = 40
			},
			wantField: "technical.d50",
		},
		{
			name: "rf treatment without electricity",
			mutate: func(r *AnalysisRequest) {
				r.Technical.ProcessType = ProcessRF
				r.Environmental.ElectricityKWh = 0
			},
			wantField: "environmental.electricity_consumption",
		},
		{
			name: "ir treatment without cooling",
			mutate: func(r *AnalysisRequest) {
				r.Technical.ProcessType = ProcessIR
				r.Environmental.CoolingKWh = 0
			},
			wantField: "environmental.cooling_consumption",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(req)

			got, err := v.Validate(req)
			require.NoError(t, err)
			assert.False(t, got.OK)
			assert.Contains(t, fieldNames(got.Errors), tc.wantField)
		})
	}
}

func TestAllocationErrors(t *testing.T) {
	tests := []struct {
		name      string
		env       func() EnvironmentalInputs
		wantField string
	}{
		{
			name: "missing mass flows",
			env: func() EnvironmentalInputs {
				e := twoProductEnv(AllocationPhysical)
				e.MassFlows = nil
				return e
			},
			wantField: "environmental.mass_flows",
		},
		{
			name: "economic allocation without product values",
			env: func() EnvironmentalInputs {
				e := twoProductEnv(AllocationEconomic)
				e.ProductValues = nil
				return e
			},
			wantField: "environmental.product_values",
		},
		{
			name: "product missing its economic value",
			env: func() EnvironmentalInputs {
				e := twoProductEnv(AllocationEconomic)
				delete(e.ProductValues, "starch")
				return e
			},
			wantField: "environmental.product_values",
		},
		{
			name: "hybrid allocation without weights",
			env: func() EnvironmentalInputs {
				return twoProductEnv(AllocationHybrid)
			},
			wantField: "environmental.hybrid_weights",
		},
		{
			name: "hybrid weights not summing to one",
			env: func() EnvironmentalInputs {
				e := twoProductEnv(AllocationHybrid)
				e.HybridWeights = &HybridWeights{Economic: 0.7, Physical: 0.7}
				return e
			},
			wantField: "environmental.hybrid_weights",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			errs := allocationErrors(tc.env())
			assert.Contains(t, fieldNames(errs), tc.wantField)
		})
	}
}
