package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint(t *testing.T) {
	first, err := Fingerprint(validRequest())
	require.NoError(t, err)
	assert.Len(t, first, 64, "sha-256 hex digest")

	t.Run("deterministic for equal requests", func(t *testing.T) {
		second, err := Fingerprint(validRequest())
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("changes with any input", func(t *testing.T) {
		req := validRequest()
		req.Economic.DiscountRate = 0.11
		changed, err := Fingerprint(req)
		require.NoError(t, err)
		assert.NotEqual(t, first, changed)
	})

	t.Run("simulation spec participates", func(t *testing.T) {
		req := validRequest()
		req.Simulation = &MonteCarloSpec{
			Seed:   1,
			Inputs: []UncertainInput{{Variable: VarRevenue, Dist: Distribution{Kind: DistNormal, Mean: 1}}},
		}
		withSim, err := Fingerprint(req)
		require.NoError(t, err)
		assert.NotEqual(t, first, withSim)
	})
}
