package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkingCapital(t *testing.T) {
	wc := WorkingCapital(WorkingCapitalInputs{
		Inventory:   HoldingComponent{Days: 30, DailyRate: 100},
		Receivables: HoldingComponent{Days: 45, DailyRate: 200},
		Payables:    HoldingComponent{Days: 30, DailyRate: 150},
	})
	// 3000 + 9000 - 4500
	assert.InDelta(t, 7500, wc, 1e-9)
}

func TestCapexFor(t *testing.T) {
	in := EconomicInputs{
		EquipmentCost:       500000,
		InstallationFactor:  0.2,
		IndirectCostsFactor: 0.15,
	}

	got := CapexFor(in)

	assert.InDelta(t, 500000, got.EquipmentCost, 1e-9)
	assert.InDelta(t, 100000, got.InstallationCost, 1e-9)
	// Indirect applies to the installed cost: 600000 * 0.15.
	assert.InDelta(t, 90000, got.IndirectCost, 1e-9)
	// 500000 * 1.2 * 1.15
	assert.InDelta(t, 690000, got.TotalCapex, 1e-9)
}

func TestOpexFor(t *testing.T) {
	in := EconomicInputs{
		EquipmentCost:     500000,
		MaintenanceFactor: 0.05,
		Utilities: []Utility{
			{Name: "electricity", Consumption: 100000, UnitCost: 0.12},
			{Name: "cooling water", Consumption: 50000, UnitCost: 0.02},
		},
		RawMaterials: []RawMaterial{
			{Name: "yellow pea", Quantity: 200000, UnitCost: 0.5},
		},
		Labor: LaborInputs{HourlyWage: 25, HoursPerWeek: 40, WeeksPerYear: 50, Workers: 2},
	}

	got := OpexFor(in)

	assert.InDelta(t, 13000, got.UtilitiesCost, 1e-9)
	assert.InDelta(t, 100000, got.RawMaterialsCost, 1e-9)
	assert.InDelta(t, 100000, got.LaborCost, 1e-9)
	assert.InDelta(t, 25000, got.MaintenanceCost, 1e-9)
	assert.InDelta(t, 238000, got.TotalOpex, 1e-9)
}

func TestOpexForMaintenanceOverride(t *testing.T) {
	override := 40000.0
	in := EconomicInputs{
		EquipmentCost:     500000,
		MaintenanceFactor: 0.05,
		MaintenanceCost:   &override,
	}

	got := OpexFor(in)
	assert.InDelta(t, 40000, got.MaintenanceCost, 1e-9)
}

func TestCashFlowSeries(t *testing.T) {
	t.Run("constructed series", func(t *testing.T) {
		in := EconomicInputs{ProjectDuration: 3, RevenuePerYear: 250000}
		flows := CashFlowSeries(in, 690000, 50000)
		assert.Equal(t, []float64{-690000, 200000, 200000, 200000}, flows)
	})

	t.Run("explicit override copies the stream", func(t *testing.T) {
		override := []float64{-100, 60, 60}
		in := EconomicInputs{CashFlows: override, ProjectDuration: 10}
		flows := CashFlowSeries(in, 999, 999)
		assert.Equal(t, override, flows)

		flows[1] = 0
		assert.Equal(t, 60.0, override[1], "override slice must not be aliased")
	})
}

func TestNPV(t *testing.T) {
	flows := []float64{-690000, 250000, 250000, 250000}

	t.Run("known value at ten percent", func(t *testing.T) {
		assert.InDelta(t, -68287.0023, NPV(flows, 0.10), 0.01)
	})

	t.Run("zero rate sums the stream", func(t *testing.T) {
		assert.InDelta(t, 60000, NPV(flows, 0), 1e-6)
	})

	t.Run("monotonically decreasing in the rate for conventional streams", func(t *testing.T) {
		prev := NPV(flows, 0)
		for _, rate := range []float64{0.05, 0.10, 0.20, 0.50} {
			npv := NPV(flows, rate)
			assert.Less(t, npv, prev)
			prev = npv
		}
	})
}

func TestIRR(t *testing.T) {
	t.Run("two-year annuity", func(t *testing.T) {
		got := IRR([]float64{-1000, 600, 600})
		require.True(t, got.IsDefined())
		assert.InDelta(t, 0.13066, *got.Value, 1e-3)
	})

	t.Run("irr root zeroes the npv", func(t *testing.T) {
		flows := []float64{-690000, 250000, 250000, 250000}
		got := IRR(flows)
		require.True(t, got.IsDefined())
		assert.InDelta(t, 0, NPV(flows, *got.Value), 1e-3)
	})

	t.Run("all-negative stream has no irr", func(t *testing.T) {
		got := IRR([]float64{-100, -50, -50})
		require.False(t, got.IsDefined())
		assert.Equal(t, ReasonNoSignChange, got.Reason)
	})

	t.Run("all-positive stream has no irr", func(t *testing.T) {
		got := IRR([]float64{100, 50})
		require.False(t, got.IsDefined())
		assert.Equal(t, ReasonNoSignChange, got.Reason)
	})
}

func TestPayback(t *testing.T) {
	tests := []struct {
		name      string
		flows     []float64
		want      float64
		undefined bool
	}{
		{
			name:  "interpolated within the recovery year",
			flows: []float64{-1000, 400, 400, 400},
			want:  2.5,
		},
		{
			name:  "exact recovery at a year boundary",
			flows: []float64{-1000, 500, 500},
			want:  2.0,
		},
		{
			name:  "non-negative outlay recovers immediately",
			flows: []float64{0, 100},
			want:  0,
		},
		{
			name:      "never recovered",
			flows:     []float64{-1000, 100, 100},
			undefined: true,
		},
		{
			name:      "empty stream",
			flows:     nil,
			undefined: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Payback(tc.flows)
			if tc.undefined {
				require.False(t, got.IsDefined())
				assert.Equal(t, ReasonNotRecovered, got.Reason)
				return
			}
			require.True(t, got.IsDefined())
			assert.InDelta(t, tc.want, *got.Value, 1e-9)
		})
	}
}

func TestROIFor(t *testing.T) {
	t.Run("simple and annualized", func(t *testing.T) {
		roi, annualized, err := ROIFor([]float64{-1000, 600, 600}, 2)
		require.NoError(t, err)
		assert.InDelta(t, 20.0, roi, 1e-9)
		// (1.2)^(1/2) - 1
		assert.InDelta(t, 9.5445, annualized, 1e-3)
	})

	t.Run("single year keeps the simple ratio", func(t *testing.T) {
		roi, annualized, err := ROIFor([]float64{-1000, 1200}, 1)
		require.NoError(t, err)
		assert.InDelta(t, 20.0, roi, 1e-9)
		assert.InDelta(t, 20.0, annualized, 1e-9)
	})

	t.Run("missing initial outlay is an error", func(t *testing.T) {
		_, _, err := ROIFor([]float64{1000, 200}, 2)
		require.ErrorIs(t, err, ErrDegenerateInput)
	})
}

func TestBreakEvenUnits(t *testing.T) {
	t.Run("positive margin", func(t *testing.T) {
		got := BreakEvenUnits(BreakEvenInputs{FixedCosts: 1000, UnitPrice: 5, VariableCostPerUnit: 3})
		require.True(t, got.IsDefined())
		assert.InDelta(t, 500, *got.Value, 1e-9)
	})

	t.Run("zero margin is undefined, not an error", func(t *testing.T) {
		got := BreakEvenUnits(BreakEvenInputs{FixedCosts: 1000, UnitPrice: 3, VariableCostPerUnit: 3})
		require.False(t, got.IsDefined())
		assert.Equal(t, ReasonNoContribution, got.Reason)
	})
}

func TestEconomicMetricsFor(t *testing.T) {
	in := EconomicInputs{
		EquipmentCost:       500000,
		InstallationFactor:  0.2,
		IndirectCostsFactor: 0.15,
		ProductionVolume:    200000,
		OperatingHours:      8000,
		ProjectDuration:     3,
		DiscountRate:        0.10,
		CashFlows:           []float64{-690000, 250000, 250000, 250000},
		BreakEven:           BreakEvenInputs{FixedCosts: 238000, UnitPrice: 2.5, VariableCostPerUnit: 1.0},
	}

	capex, opex, prof, err := EconomicMetricsFor(in)
	require.NoError(t, err)

	assert.InDelta(t, 690000, capex.TotalCapex, 1e-9)
	assert.InDelta(t, -68287.0023, prof.NPV, 0.01)
	assert.Equal(t, in.CashFlows, prof.CashFlows)
	assert.InDelta(t, (capex.TotalCapex+opex.TotalOpex)/in.ProductionVolume, prof.UnitProductionCost, 1e-9)
	require.True(t, prof.BreakEvenUnits.IsDefined())

	t.Run("zero production volume", func(t *testing.T) {
		bad := in
		bad.ProductionVolume = 0
		_, _, _, err := EconomicMetricsFor(bad)
		require.ErrorIs(t, err, ErrDegenerateInput)
	})
}
