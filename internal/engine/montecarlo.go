package engine

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// sampleBatchSize is the number of draws dispatched to a worker at once.
// Cancellation is honored between batches: in-flight samples finish, no
// further batch is dispatched.
const sampleBatchSize = 100

// Empirical 95% confidence interval percentiles.
const (
	ciLowerPercentile = 2.5
	ciUpperPercentile = 97.5
)

// ProgressFunc reports completed versus total samples. Implementations
// must tolerate concurrent calls.
type ProgressFunc func(done, total int)

// MonteCarloSimulator re-evaluates NPV over sampled economic inputs.
// Sample parameters are drawn sequentially from a single seeded stream so
// results are reproducible regardless of worker scheduling; only the NPV
// evaluations run concurrently.
type MonteCarloSimulator struct {
	cfg MonteCarloConfig
	log zerolog.Logger
}

// NewMonteCarloSimulator builds a simulator bound to its configuration.
func NewMonteCarloSimulator(cfg MonteCarloConfig, log zerolog.Logger) *MonteCarloSimulator {
	if cfg.Iterations <= 0 {
		cfg.Iterations = DefaultMonteCarloIterations
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &MonteCarloSimulator{cfg: cfg, log: log}
}

// Run draws spec.Iterations samples (falling back to the configured
// default), recomputes NPV per draw with all other inputs held fixed, and
// aggregates the empirical distribution. onProgress may be nil.
func (s *MonteCarloSimulator) Run(
	ctx context.Context,
	in EconomicInputs,
	spec MonteCarloSpec,
	onProgress ProgressFunc,
) (*MonteCarloResult, error) {
	iterations := spec.Iterations
	if iterations <= 0 {
		iterations = s.cfg.Iterations
	}

	seed := spec.Seed
	if seed == 0 {
		seed = s.cfg.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s.log.Debug().
		Int("iterations", iterations).
		Int64("seed", seed).
		Int("uncertain_inputs", len(spec.Inputs)).
		Msg("starting monte carlo simulation")

	draws, err := drawSamples(rand.New(rand.NewSource(seed)), spec.Inputs, iterations)
	if err != nil {
		return nil, err
	}

	npvs := make([]float64, iterations)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	var dispatched int
dispatch:
	for start := 0; start < iterations; start += sampleBatchSize {
		select {
		case <-gctx.Done():
			break dispatch
		default:
		}

		end := start + sampleBatchSize
		if end > iterations {
			end = iterations
		}
		dispatched = end

		batchStart, batchEnd := start, end
		g.Go(func() error {
			for i := batchStart; i < batchEnd; i++ {
				sampled, opexOverride := applySample(in, spec.Inputs, draws[i])
				npv, _, evalErr := evalPoint(sampled, 1, opexOverride)
				if evalErr != nil {
					return fmt.Errorf("sample %d: %w", i, evalErr)
				}
				npvs[i] = npv
			}
			if onProgress != nil {
				onProgress(batchEnd, iterations)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if dispatched == 0 {
		return nil, ErrNoSamples
	}
	npvs = npvs[:dispatched]

	result := aggregate(npvs)
	result.Seed = seed
	result.Iterations = dispatched

	s.log.Debug().
		Float64("mean_npv", result.MeanNPV).
		Float64("std_dev", result.StdDev).
		Int("samples", dispatched).
		Msg("monte carlo simulation finished")

	return result, nil
}

// drawSamples generates all per-sample values up front from one RNG
// stream. draws[i][j] is the sampled value of spec input j for sample i.
func drawSamples(rng *rand.Rand, inputs []UncertainInput, iterations int) ([][]float64, error) {
	draws := make([][]float64, iterations)
	for i := range draws {
		row := make([]float64, len(inputs))
		for j, u := range inputs {
			v, err := sample(rng, u.Dist)
			if err != nil {
				return nil, fmt.Errorf("input %s: %w", u.Variable, err)
			}
			row[j] = v
		}
		draws[i] = row
	}
	return draws, nil
}

// sample draws one value from the declared distribution.
func sample(rng *rand.Rand, d Distribution) (float64, error) {
	switch d.Kind {
	case DistNormal:
		return d.Mean + d.StdDev*rng.NormFloat64(), nil
	case DistUniform:
		if d.Max < d.Min {
			return 0, fmt.Errorf("%w: uniform bounds inverted", ErrStructuralValidation)
		}
		return d.Min + (d.Max-d.Min)*rng.Float64(), nil
	default:
		return 0, fmt.Errorf("%w: unknown distribution %q", ErrStructuralValidation, d.Kind)
	}
}

// applySample substitutes the drawn values into a copy of the inputs.
// Sampled values replace the named input directly; discount rates are
// clamped to the valid [0,1] range and volumes floored at a positive
// epsilon so a wide tail cannot produce an invalid model. Operating costs
// are not one field, so their draw overrides the opex total.
func applySample(in EconomicInputs, inputs []UncertainInput, draw []float64) (EconomicInputs, *float64) {
	out := in
	var opexOverride *float64

	for j, u := range inputs {
		v := draw[j]
		switch u.Variable {
		case VarDiscountRate:
			out.DiscountRate = clamp(v, 0, 1)
		case VarRevenue:
			out.RevenuePerYear = v
		case VarProductionVolume:
			const minVolume = 1e-9
			if in.ProductionVolume > 0 {
				ratio := v / in.ProductionVolume
				out.RevenuePerYear = in.RevenuePerYear * ratio
			}
			out.ProductionVolume = math.Max(v, minVolume)
		case VarOperatingCosts:
			opex := v
			opexOverride = &opex
		}
	}

	return out, opexOverride
}

// aggregate reduces the per-sample NPVs to the reported statistics.
func aggregate(npvs []float64) *MonteCarloResult {
	n := float64(len(npvs))

	var sum float64
	min, max := math.Inf(1), math.Inf(-1)
	var positive int
	for _, v := range npvs {
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		if v > 0 {
			positive++
		}
	}
	mean := sum / n

	var variance float64
	for _, v := range npvs {
		variance += (v - mean) * (v - mean)
	}
	variance /= n

	sorted := make([]float64, len(npvs))
	copy(sorted, npvs)
	sort.Float64s(sorted)

	return &MonteCarloResult{
		MeanNPV: mean,
		StdDev:  math.Sqrt(variance),
		MinNPV:  min,
		MaxNPV:  max,
		CI95: ConfidenceInterval{
			Lower: percentile(sorted, ciLowerPercentile),
			Upper: percentile(sorted, ciUpperPercentile),
		},
		ProbabilityPositive: float64(positive) / n,
	}
}

// percentile linearly interpolates the p-th percentile of sorted values.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	pos := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
