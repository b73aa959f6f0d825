package app

import (
	"context"
	"fmt"
	"io"
	"mpi-benchmark/internal/domain"
	"mpi-benchmark/internal/infrastructure"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExperimentController drives the trials of one experiment strictly one after another:
// launch, extract the timing from the block the launch appended, accumulate.
type ExperimentController struct {
	logger    *zap.Logger
	launcher  domain.Launcher
	recorder  domain.ExperimentRecorder
	extractor domain.TimingExtractor
	publisher domain.ResultPublisher
	summary   domain.SummaryWriter
	stdout    io.Writer
	id        string

	state   domain.ExperimentState
	stats   domain.AggregateStatistics
	timings []float64
	started time.Time
}

type Option func(*ExperimentController)

func WithPublisher(p domain.ResultPublisher) Option {
	return func(c *ExperimentController) { c.publisher = p }
}

func WithSummaryWriter(w domain.SummaryWriter) Option {
	return func(c *ExperimentController) { c.summary = w }
}

func WithStdout(w io.Writer) Option {
	return func(c *ExperimentController) { c.stdout = w }
}

func WithExperimentID(id string) Option {
	return func(c *ExperimentController) { c.id = id }
}

func NewExperimentController(logger *zap.Logger, launcher domain.Launcher, recorder domain.ExperimentRecorder,
	extractor domain.TimingExtractor, opts ...Option) *ExperimentController {

	c := &ExperimentController{
		launcher:  launcher,
		recorder:  recorder,
		extractor: extractor,
		publisher: infrastructure.NopPublisher{},
		stdout:    os.Stdout,
		state:     domain.StateInitializing,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.id == "" {
		c.id = uuid.NewString()
	}
	c.logger = logger.With(zap.String("experiment_id", c.id))

	return c
}

func (c *ExperimentController) ID() string {
	return c.id
}

func (c *ExperimentController) State() domain.ExperimentState {
	return c.state
}

func (c *ExperimentController) Statistics() domain.AggregateStatistics {
	return c.stats
}

// Run executes the whole experiment and returns the mean elapsed time.
// A controller runs a single experiment; any error leaves it in the failed state.
func (c *ExperimentController) Run(ctx context.Context, cfg domain.ExperimentConfig) (float64, error) {
	if c.state != domain.StateInitializing {
		return 0, fmt.Errorf("%w: experiment already %s", domain.ErrInvalidTransition, c.state)
	}
	c.started = time.Now()

	c.logger.Info("Starting experiment",
		zap.Int("samples", cfg.SampleCount),
		zap.Int("iterations", cfg.IterationCount),
		zap.Int("workers", cfg.WorkerCount),
		zap.String("hosts", cfg.HostSpec))

	if err := c.recorder.WriteHeader(cfg); err != nil {
		return 0, c.fail(cfg, fmt.Errorf("write header: %w", err))
	}

	for index := 0; index < cfg.IterationCount; index++ {
		if err := c.transition(domain.StateRunning); err != nil {
			return 0, c.fail(cfg, err)
		}

		result, err := c.runTrial(ctx, cfg, index+1)
		if err != nil {
			return 0, c.fail(cfg, fmt.Errorf("trial %d: %w", index+1, err))
		}

		if err := c.stats.Record(result.ElapsedSeconds); err != nil {
			return 0, c.fail(cfg, fmt.Errorf("trial %d: %w", index+1, err))
		}
		c.timings = append(c.timings, result.ElapsedSeconds)

		c.logger.Info("Trial completed",
			zap.Int("trial", result.Trial),
			zap.Float64("elapsed_seconds", result.ElapsedSeconds),
			zap.Int("completed_runs", c.stats.CompletedRuns))

		c.publishTrial(result)
	}

	if err := c.transition(domain.StateFinalizing); err != nil {
		return 0, c.fail(cfg, err)
	}

	mean, err := c.stats.Mean()
	if err != nil {
		return 0, c.fail(cfg, err)
	}

	if err := c.recorder.WriteFooter(cfg.IterationCount, mean); err != nil {
		return 0, c.fail(cfg, fmt.Errorf("write footer: %w", err))
	}
	fmt.Fprintln(c.stdout, infrastructure.FooterLine(cfg.IterationCount, mean))

	if err := c.transition(domain.StateDone); err != nil {
		return 0, c.fail(cfg, err)
	}

	c.logger.Info("Experiment completed",
		zap.Float64("mean_seconds", mean),
		zap.Duration("duration", time.Since(c.started)))

	c.finish(cfg, &mean, nil)
	return mean, nil
}

func (c *ExperimentController) runTrial(ctx context.Context, cfg domain.ExperimentConfig, trial int) (*domain.RunResult, error) {
	offset, err := c.recorder.Offset()
	if err != nil {
		return nil, err
	}

	if err := c.launcher.Launch(ctx, cfg, trial, c.recorder); err != nil {
		return nil, err
	}

	lines, err := c.recorder.ReadBlock(offset)
	if err != nil {
		return nil, err
	}

	elapsed, err := c.extractor.Extract(lines)
	if err != nil {
		return nil, err
	}

	return &domain.RunResult{
		Trial:          trial,
		RawOutput:      lines,
		ElapsedSeconds: elapsed,
	}, nil
}

func (c *ExperimentController) transition(next domain.ExperimentState) error {
	state, err := c.state.Transition(next)
	if err != nil {
		return err
	}
	c.state = state
	return nil
}

func (c *ExperimentController) fail(cfg domain.ExperimentConfig, err error) error {
	c.state = domain.StateFailed

	c.logger.Error("Experiment failed",
		zap.Int("completed_runs", c.stats.CompletedRuns),
		zap.Int("iterations", cfg.IterationCount),
		zap.Error(err))

	c.finish(cfg, nil, err)
	return err
}

func (c *ExperimentController) publishTrial(result *domain.RunResult) {
	report := domain.TrialReport{
		ExperimentID:   c.id,
		Trial:          result.Trial,
		ElapsedSeconds: result.ElapsedSeconds,
		CompletedRuns:  c.stats.CompletedRuns,
	}

	if err := c.publisher.PublishTrial(report); err != nil {
		c.logger.Warn("Failed to publish trial", zap.Int("trial", result.Trial), zap.Error(err))
	}
}

// finish emits the summary to the optional sinks. Failures there never change the outcome.
func (c *ExperimentController) finish(cfg domain.ExperimentConfig, mean *float64, runErr error) {
	summary := &domain.ExperimentSummary{
		ExperimentID:   c.id,
		StartedAt:      c.started,
		FinishedAt:     time.Now(),
		SampleCount:    cfg.SampleCount,
		IterationCount: cfg.IterationCount,
		WorkerCount:    cfg.WorkerCount,
		HostSpec:       cfg.HostSpec,
		Params:         cfg.Params,
		Timings:        append([]float64{}, c.timings...),
		CompletedRuns:  c.stats.CompletedRuns,
		MeanSeconds:    mean,
		State:          c.state.String(),
	}
	if runErr != nil {
		summary.Error = runErr.Error()
	}

	if err := c.publisher.PublishSummary(summary); err != nil {
		c.logger.Warn("Failed to publish summary", zap.Error(err))
	}

	if c.summary != nil {
		if err := c.summary.WriteSummary(summary); err != nil {
			c.logger.Warn("Failed to write summary", zap.Error(err))
		}
	}
}
