package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fractionworks/proceval/internal/config"
	"github.com/fractionworks/proceval/internal/engine"
	"github.com/fractionworks/proceval/internal/engine/cache"
	"github.com/fractionworks/proceval/internal/jobs"
	"github.com/fractionworks/proceval/internal/logging"
)

// jobPollInterval is how often the analyze command checks a submitted
// job for progress.
const jobPollInterval = 50 * time.Millisecond

// Output format names accepted by --output.
const (
	outputJSON    = "json"
	outputSummary = "summary"
)

// newAnalyzeCmd creates the analyze command. It reads an analysis
// request as JSON from a file argument or stdin, runs it through the
// engine and prints the result.
func newAnalyzeCmd(cfg *config.Config) *cobra.Command {
	var (
		seed       int64
		iterations int
		output     string
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [request.json]",
		Short: "Run a process analysis",
		Long: `Runs the full analysis pipeline over a JSON request: input validation,
technical metrics, capital and operating cost breakdowns, profitability
(NPV, IRR, ROI, payback, break-even), one-at-a-time sensitivity sweeps,
optional Monte Carlo simulation and environmental impact assessment.

The request is read from the file argument, or from stdin when no
argument is given.`,
		Example: `  # Analyze a request file and print the full result as JSON
  proceval analyze request.json

  # Human-readable summary from stdin
  cat request.json | proceval analyze --output summary

  # Reproducible Monte Carlo run
  proceval analyze request.json --seed 42 --iterations 5000`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != outputJSON && output != outputSummary {
				return fmt.Errorf("unknown output format %q (expected %s or %s)", output, outputJSON, outputSummary)
			}

			req, err := readRequest(cmd, args)
			if err != nil {
				return err
			}
			applySimulationFlags(cmd, req, seed, iterations)

			return runAnalyze(cmd, cfg, req, output, noCache)
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 0, "Monte Carlo random seed (0 = time-based)")
	cmd.Flags().IntVar(&iterations, "iterations", 0, "Monte Carlo iteration count (0 = request/config value)")
	cmd.Flags().StringVarP(&output, "output", "o", outputJSON, "output format: json or summary")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the result cache")

	return cmd
}

// readRequest decodes the analysis request from the file argument or
// stdin.
func readRequest(cmd *cobra.Command, args []string) (*engine.AnalysisRequest, error) {
	var (
		data []byte
		err  error
	)
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
		if err != nil {
			return nil, fmt.Errorf("read request file: %w", err)
		}
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read request from stdin: %w", err)
		}
	}

	var req engine.AnalysisRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parse request: %w", err)
	}
	return &req, nil
}

// applySimulationFlags folds the --seed and --iterations flags into the
// request's simulation spec. Setting either flag enables simulation even
// when the request carries no spec of its own.
func applySimulationFlags(cmd *cobra.Command, req *engine.AnalysisRequest, seed int64, iterations int) {
	seedSet := cmd.Flags().Changed("seed")
	iterSet := cmd.Flags().Changed("iterations")
	if !seedSet && !iterSet {
		return
	}

	if req.Simulation == nil {
		req.Simulation = &engine.MonteCarloSpec{}
	}
	if seedSet {
		req.Simulation.Seed = seed
	}
	if iterSet {
		req.Simulation.Iterations = iterations
	}
}

// runAnalyze executes the analysis through the job queue, consulting the
// result cache on both sides when it is enabled.
func runAnalyze(cmd *cobra.Command, cfg *config.Config, req *engine.AnalysisRequest, output string, noCache bool) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	store, err := cache.NewStore(cfg.Cache.Directory, cfg.Cache.Enabled && !noCache, cfg.Cache.TTL)
	if err != nil {
		return fmt.Errorf("open result cache: %w", err)
	}

	fingerprint, err := engine.Fingerprint(req)
	if err != nil {
		return fmt.Errorf("fingerprint request: %w", err)
	}

	if result, err := store.Get(fingerprint); err == nil {
		log.Debug().Str("fingerprint", fingerprint).Msg("result cache hit")
		return writeResult(cmd, result, output)
	}

	eng := engine.New(cfg.Engine, *log)
	queue := jobs.NewQueue(eng, *log)
	id := queue.Submit(req)

	job, err := waitForJob(cmd, queue, id)
	if err != nil {
		return err
	}

	if job.Status == jobs.StatusFailed {
		return analysisFailure(cmd, eng, req, job)
	}

	if err := store.Put(fingerprint, job.Result); err != nil && !errors.Is(err, cache.ErrDisabled) {
		log.Warn().Err(err).Msg("could not cache analysis result")
	}

	return writeResult(cmd, job.Result, output)
}

// waitForJob polls the queue until the job reaches a terminal state,
// logging progress along the way.
func waitForJob(cmd *cobra.Command, queue *jobs.Queue, id string) (jobs.Job, error) {
	log := logging.FromContext(cmd.Context())

	ticker := time.NewTicker(jobPollInterval)
	defer ticker.Stop()

	lastProgress := -1
	for {
		job, err := queue.Get(id)
		if err != nil {
			return jobs.Job{}, fmt.Errorf("poll job %s: %w", id, err)
		}
		if job.Progress != lastProgress {
			lastProgress = job.Progress
			log.Debug().Str("job_id", id).Int("progress", job.Progress).Msg("analysis progress")
		}
		if job.Terminal() {
			return job, nil
		}

		select {
		case <-cmd.Context().Done():
			_ = queue.Cancel(id)
			return jobs.Job{}, cmd.Context().Err()
		case <-ticker.C:
		}
	}
}

// analysisFailure re-validates the request so a failed job caused by
// input errors reports every offending field rather than a bare error
// string.
func analysisFailure(cmd *cobra.Command, eng *engine.Engine, req *engine.AnalysisRequest, job jobs.Job) error {
	vr, err := eng.Validate(req)
	if err == nil && !vr.OK {
		cmd.PrintErrln("Request validation failed:")
		for _, fe := range vr.Errors {
			cmd.PrintErrf("  %s: %s\n", fe.Field, fe.Message)
		}
		return errors.New("analysis rejected: invalid request")
	}
	return fmt.Errorf("analysis failed: %s", job.Error)
}

// writeResult prints the analysis result in the requested format.
func writeResult(cmd *cobra.Command, result *engine.AnalysisResult, output string) error {
	if output == outputSummary {
		return writeSummary(cmd.OutOrStdout(), result)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
