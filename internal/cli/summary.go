package cli

import (
	"fmt"
	"io"
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/fractionworks/proceval/internal/engine"
)

// writeSummary renders a human-readable digest of the analysis result
// with grouped thousands separators for the monetary figures.
func writeSummary(w io.Writer, result *engine.AnalysisResult) error {
	p := message.NewPrinter(language.English)

	p.Fprintf(w, "Process Analysis Summary\n")
	p.Fprintf(w, "========================\n\n")

	tech := result.Technical
	p.Fprintf(w, "Technical\n")
	p.Fprintf(w, "  Recovery rate:        %.1f %%\n", tech.RecoveryRate)
	p.Fprintf(w, "  Protein loss:         %.1f kg\n", tech.ProteinLoss)
	p.Fprintf(w, "  Concentration factor: %.2f\n", tech.ConcentrationFactor)
	p.Fprintf(w, "  Mass efficiency:      %.1f %%\n", tech.MassEfficiency)
	p.Fprintf(w, "  Distribution span:    %.2f\n", tech.DistributionSpan)
	p.Fprintf(w, "  Particle quality:     %s\n", tech.ParticleQuality)
	p.Fprintf(w, "  Process efficiency:   %.1f %%\n\n", tech.ProcessEfficiency)

	p.Fprintf(w, "Investment\n")
	p.Fprintf(w, "  Total capex:          %.2f\n", result.Capex.TotalCapex)
	p.Fprintf(w, "  Total opex (annual):  %.2f\n\n", result.Opex.TotalOpex)

	prof := result.Profitability
	p.Fprintf(w, "Profitability\n")
	p.Fprintf(w, "  NPV:                  %.2f\n", prof.NPV)
	p.Fprintf(w, "  ROI:                  %.1f %%\n", prof.ROI)
	p.Fprintf(w, "  Annualized ROI:       %.1f %%\n", prof.AnnualizedROI)
	fprintIndicator(p, w, "IRR", prof.IRR, "%.2f %%", 100)
	fprintIndicator(p, w, "Payback period", prof.PaybackPeriod, "%.1f years", 1)
	fprintIndicator(p, w, "Break-even units", prof.BreakEvenUnits, "%.0f", 1)
	p.Fprintf(w, "  Unit production cost: %.4f\n\n", prof.UnitProductionCost)

	if prof.Sensitivity != nil {
		p.Fprintf(w, "Sensitivity (base NPV %.2f)\n", prof.Sensitivity.BaseNPV)
		for _, v := range prof.Sensitivity.Variables {
			swing := "undefined"
			if v.MaxSwingPct.IsDefined() {
				swing = p.Sprintf("%.1f %%", *v.MaxSwingPct.Value)
			}
			p.Fprintf(w, "  %-18s %-8s swing %s (%s)\n",
				v.Variable, v.Classification, swing, v.Relationship)
		}
		p.Fprintf(w, "\n")
	}

	if mc := prof.MonteCarlo; mc != nil {
		p.Fprintf(w, "Monte Carlo (%d iterations, seed %d)\n", mc.Iterations, mc.Seed)
		p.Fprintf(w, "  Mean NPV:             %.2f\n", mc.MeanNPV)
		p.Fprintf(w, "  Std deviation:        %.2f\n", mc.StdDev)
		p.Fprintf(w, "  95%% interval:         [%.2f, %.2f]\n", mc.CI95.Lower, mc.CI95.Upper)
		p.Fprintf(w, "  P(NPV > 0):           %.1f %%\n\n", mc.ProbabilityPositive*100)
	}

	env := result.Environmental
	p.Fprintf(w, "Environmental\n")
	p.Fprintf(w, "  GWP:                  %.2f %s\n", env.GWP.Total, env.GWP.Unit)
	p.Fprintf(w, "  Energy demand:        %.2f %s\n", env.EnergyDemand.Total, env.EnergyDemand.Unit)
	p.Fprintf(w, "  Water footprint:      %.2f %s\n", env.WaterFootprint.Total, env.WaterFootprint.Unit)
	p.Fprintf(w, "  Resource depletion:   %.4f %s\n", env.ResourceDepletion.Total, env.ResourceDepletion.Unit)

	if len(env.Allocation.Shares) > 0 {
		p.Fprintf(w, "  Allocation (%s):\n", env.Allocation.Method)
		for _, name := range sortedKeys(env.Allocation.Shares) {
			p.Fprintf(w, "    %-18s %.1f %%\n", name, env.Allocation.Shares[name]*100)
		}
	}

	eco := env.EcoEfficiency
	p.Fprintf(w, "\nEco-efficiency: %s\n", eco.Overall)
	for _, name := range sortedKeys(eco.Scores) {
		s := eco.Scores[name]
		p.Fprintf(w, "  %-22s %-10s (value %.2f vs benchmark %.2f)\n",
			name, s.Tier, s.Value, s.Benchmark)
	}

	return nil
}

// fprintIndicator prints a possibly-undefined metric line, showing the
// reason instead of a number when the metric could not be computed.
func fprintIndicator(p *message.Printer, w io.Writer, label string, ind engine.Indicator, format string, scale float64) {
	padded := fmt.Sprintf("%-21s", label+":")
	if !ind.IsDefined() {
		p.Fprintf(w, "  %s undefined (%s)\n", padded, ind.Reason)
		return
	}
	p.Fprintf(w, "  %s %s\n", padded, p.Sprintf(format, *ind.Value*scale))
}

// sortedKeys returns the map keys in stable order for deterministic
// output.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
