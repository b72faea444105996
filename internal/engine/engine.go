package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Engine runs complete analyses. It holds only configuration and helpers;
// no state survives between requests, so one Engine serves concurrent
// callers.
type Engine struct {
	cfg       Config
	validator *Validator
	simulator *MonteCarloSimulator
	log       zerolog.Logger
}

// New builds an engine bound to its configuration and logger.
func New(cfg Config, log zerolog.Logger) *Engine {
	return &Engine{
		cfg:       cfg,
		validator: NewValidator(),
		simulator: NewMonteCarloSimulator(cfg.MonteCarlo, log),
		log:       log,
	}
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Validate exposes the validator so callers can pre-check a request
// without running the analysis.
func (e *Engine) Validate(req *AnalysisRequest) (ValidationResult, error) {
	return e.validator.Validate(req)
}

// ValidationError carries the recoverable violations that made Analyze
// abort. It unwraps to ErrValidationFailed.
type ValidationError struct {
	Result ValidationResult
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Result.Errors))
	for _, fe := range e.Result.Errors {
		msgs = append(msgs, fe.Field+": "+fe.Message)
	}
	return "input validation failed: " + strings.Join(msgs, "; ")
}

// Unwrap lets errors.Is match ErrValidationFailed.
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// Analyze runs the full pipeline synchronously:
// validate -> technical -> economic -> environmental -> sensitivity /
// Monte Carlo -> efficiency aggregation. The returned result is a fresh
// immutable snapshot.
func (e *Engine) Analyze(ctx context.Context, req *AnalysisRequest) (*AnalysisResult, error) {
	return e.AnalyzeWithProgress(ctx, req, nil)
}

// AnalyzeWithProgress is Analyze with Monte Carlo progress reporting,
// used by the async job wrapper. onProgress may be nil.
func (e *Engine) AnalyzeWithProgress(
	ctx context.Context,
	req *AnalysisRequest,
	onProgress ProgressFunc,
) (*AnalysisResult, error) {
	validation, err := e.validator.Validate(req)
	if err != nil {
		return nil, err
	}
	if !validation.OK {
		return nil, &ValidationError{Result: validation}
	}

	technical, err := TechnicalMetricsFor(req.Technical)
	if err != nil {
		return nil, fmt.Errorf("technical metrics: %w", err)
	}

	capex, opex, profitability, err := EconomicMetricsFor(req.Economic)
	if err != nil {
		return nil, fmt.Errorf("economic metrics: %w", err)
	}

	environmental, err := EnvironmentalFor(req.Environmental, req.Economic.ProductionVolume, e.cfg.Factors)
	if err != nil {
		return nil, fmt.Errorf("environmental impact: %w", err)
	}

	sensitivity, err := SensitivityFor(req.Economic, e.cfg.Sensitivity)
	if err != nil {
		return nil, fmt.Errorf("sensitivity analysis: %w", err)
	}
	profitability.Sensitivity = sensitivity

	if req.Simulation != nil {
		mc, mcErr := e.simulator.Run(ctx, req.Economic, *req.Simulation, onProgress)
		if mcErr != nil {
			return nil, fmt.Errorf("monte carlo: %w", mcErr)
		}
		profitability.MonteCarlo = mc
	}

	environmental.EcoEfficiency = EcoEfficiencyFor(technical, profitability, environmental, e.cfg.Benchmarks)

	fingerprint, err := Fingerprint(req)
	if err != nil {
		return nil, fmt.Errorf("fingerprint: %w", err)
	}

	e.log.Info().
		Str("fingerprint", fingerprint).
		Str("process_type", string(req.Technical.ProcessType)).
		Float64("npv", profitability.NPV).
		Float64("recovery_rate", technical.RecoveryRate).
		Str("overall_tier", string(environmental.EcoEfficiency.Overall)).
		Msg("analysis completed")

	return &AnalysisResult{
		Fingerprint:   fingerprint,
		Technical:     technical,
		Capex:         capex,
		Opex:          opex,
		Profitability: profitability,
		Environmental: environmental,
	}, nil
}
