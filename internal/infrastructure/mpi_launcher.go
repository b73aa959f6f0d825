package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"time"

	"go.uber.org/zap"

	"mpi-benchmark/internal/domain"
)

// waitDelay bounds how long Wait keeps draining output after the launcher
// is killed, in case detached workers still hold the pipe.
const waitDelay = 5 * time.Second

// MPILauncher runs one trial as
//
//	<launcher> [launcher_args...] -np <workers> --host <hosts> <executable> <samples> <params...>
//
// without a shell.
type MPILauncher struct {
	logger        *zap.Logger
	program       string
	extraArgs     []string
	executable    string
	captureStderr bool
	timeout       time.Duration
	stderr        io.Writer
}

func NewMPILauncher(logger *zap.Logger, config *domain.Config) *MPILauncher {
	return &MPILauncher{
		logger:        logger,
		program:       config.Launcher,
		extraArgs:     append([]string(nil), config.LauncherArgs...),
		executable:    config.Executable,
		captureStderr: config.CaptureStderr,
		timeout:       config.TrialTimeout,
		stderr:        os.Stderr,
	}
}

// Argv returns the full argument vector, program first.
func (l *MPILauncher) Argv(cfg domain.ExperimentConfig) []string {
	argv := []string{l.program}
	argv = append(argv, l.extraArgs...)
	argv = append(argv,
		"-np", strconv.Itoa(cfg.WorkerCount),
		"--host", cfg.HostSpec,
		l.executable)
	return append(argv, cfg.WorkerArgs()...)
}

func (l *MPILauncher) Launch(ctx context.Context, cfg domain.ExperimentConfig, trial int, out io.Writer) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: trial %d: %w", domain.ErrRunFailed, trial, err)
	}

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	argv := l.Argv(cfg)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = os.Environ()
	cmd.WaitDelay = waitDelay
	cmd.Stdout = out
	if l.captureStderr {
		cmd.Stderr = out
	} else {
		cmd.Stderr = l.stderr
	}

	l.logger.Debug("Launching trial", zap.Int("trial", trial), zap.Strings("argv", argv))

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrLaunch, argv[0], err)
	}

	err := cmd.Wait()
	wall := time.Since(start)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: trial %d: %w", domain.ErrRunFailed, trial, ctxErr)
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%w: trial %d: %s exited with code %d", domain.ErrRunFailed, trial, argv[0], exitErr.ExitCode())
		}
		return fmt.Errorf("%w: trial %d: %v", domain.ErrRunFailed, trial, err)
	}

	l.logger.Debug("Trial process finished",
		zap.Int("trial", trial),
		zap.Duration("wall", wall))

	return nil
}
