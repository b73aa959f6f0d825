// Command benchrunner launches a distributed MPI workload repeatedly and
// reports the mean of the elapsed times the workload prints.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"mpi-benchmark/internal/app"
	"mpi-benchmark/internal/domain"
	"mpi-benchmark/internal/infrastructure"
	"mpi-benchmark/pkg/timing"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultConfigPath = "benchrunner.yaml"

type options struct {
	configPath    string
	logLevel      string
	logFile       string
	resultsFile   string
	summaryFile   string
	launcher      string
	executable    string
	hosts         string
	workers       int
	timingMarker  string
	trialTimeout  time.Duration
	captureStderr bool
	mqttBroker    string
	mqttTopic     string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "benchrunner <sample-count> <iteration-count>",
		Short: "Repeatedly run an MPI workload and average its reported runtime",
		Long: `benchrunner launches the worker executable through mpirun <iteration-count> times
with <sample-count> samples, appends every run's output to the results file and
reports the average of the elapsed times printed by the worker.`,
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, opts)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", defaultConfigPath, "Path to config file")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug|info|warn|error)")
	flags.StringVar(&opts.logFile, "log-file", "", "Write diagnostics to file instead of stderr")
	flags.StringVarP(&opts.resultsFile, "results", "o", "", "Experiment log to append to [default: result.txt]")
	flags.StringVar(&opts.summaryFile, "summary", "", "Write a JSON summary of the experiment to this file")
	flags.StringVar(&opts.launcher, "launcher", "", "Launcher program [default: mpirun]")
	flags.StringVar(&opts.executable, "executable", "", "Worker executable [default: ./a.out]")
	flags.StringVar(&opts.hosts, "hosts", "", "Host specification passed to --host [default: localhost:8]")
	flags.IntVarP(&opts.workers, "workers", "n", 0, "Number of worker processes [default: 8]")
	flags.StringVar(&opts.timingMarker, "timing-marker", "", "Read the timing from the last line starting with this marker")
	flags.DurationVar(&opts.trialTimeout, "trial-timeout", 0, "Abort the experiment if a single run takes longer")
	flags.BoolVar(&opts.captureStderr, "capture-stderr", false, "Append the worker's stderr to the results file too")
	flags.StringVar(&opts.mqttBroker, "mqtt-broker", "", "Publish results to this MQTT broker (host:port or URL)")
	flags.StringVar(&opts.mqttTopic, "mqtt-topic", "", "MQTT topic prefix [default: mpi-benchmark]")

	return rootCmd
}

func run(cmd *cobra.Command, args []string, opts *options) (err error) {
	sampleCount, err := parseCount("sample count", args[0])
	if err != nil {
		return err
	}
	iterationCount, err := parseCount("iteration count", args[1])
	if err != nil {
		return err
	}

	// Инициализация логгера
	logger := initLogger("info")

	// Чтение конфигурации
	configPath := opts.configPath
	if !cmd.Flags().Changed("config") {
		if _, statErr := os.Stat(configPath); errors.Is(statErr, fs.ErrNotExist) {
			configPath = ""
		}
	}

	configReader := infrastructure.NewYAMLConfigReader(logger)
	config, err := configReader.ReadConfig(configPath)
	if err != nil {
		logger.Error("Failed to read config", zap.String("path", configPath), zap.Error(err))
		return err
	}

	applyFlags(cmd, opts, config)
	if err := infrastructure.Validate(config); err != nil {
		logger.Error("Invalid configuration", zap.Error(err))
		return err
	}

	// Обновляем уровень логирования
	if config.LogFile != "" {
		logger = initLogger(config.LogLevel, config.LogFile)
	} else {
		logger = initLogger(config.LogLevel)
	}
	defer logger.Sync()

	expCfg, err := domain.NewExperimentConfig(sampleCount, iterationCount, config)
	if err != nil {
		logger.Error("Invalid experiment", zap.Error(err))
		return err
	}

	experimentID := uuid.NewString()

	// Инициализация компонентов
	experimentLog, err := infrastructure.OpenTXTExperimentLog(logger, config.ResultsFile)
	if err != nil {
		logger.Error("Failed to open results file", zap.String("file", config.ResultsFile), zap.Error(err))
		return err
	}
	defer func() {
		err = multierr.Append(err, experimentLog.Close())
	}()

	controllerOpts := []app.Option{
		app.WithExperimentID(experimentID),
		app.WithStdout(cmd.OutOrStdout()),
	}

	if config.MQTT.Enabled() {
		publisher, err := infrastructure.NewMQTTPublisher(logger, config.MQTT, experimentID)
		if err != nil {
			logger.Error("Failed to connect to MQTT broker", zap.String("broker", config.MQTT.Broker), zap.Error(err))
			return err
		}
		defer publisher.Close()
		controllerOpts = append(controllerOpts, app.WithPublisher(publisher))
	}

	if config.SummaryFile != "" {
		controllerOpts = append(controllerOpts,
			app.WithSummaryWriter(infrastructure.NewJSONSummaryWriter(logger, config.SummaryFile)))
	}

	controller := app.NewExperimentController(
		logger,
		infrastructure.NewMPILauncher(logger, config),
		experimentLog,
		timing.New(logger, config.TimingMarker),
		controllerOpts...,
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Запуск эксперимента
	_, err = controller.Run(ctx, expCfg)
	return err
}

func parseCount(name, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", domain.ErrInvalidConfig, name, value)
	}
	return n, nil
}

// applyFlags overrides config values with the flags that were set explicitly.
func applyFlags(cmd *cobra.Command, opts *options, config *domain.Config) {
	flags := cmd.Flags()

	if flags.Changed("log-level") {
		config.LogLevel = opts.logLevel
	}
	if flags.Changed("log-file") {
		config.LogFile = opts.logFile
	}
	if flags.Changed("results") {
		config.ResultsFile = opts.resultsFile
	}
	if flags.Changed("summary") {
		config.SummaryFile = opts.summaryFile
	}
	if flags.Changed("launcher") {
		config.Launcher = opts.launcher
	}
	if flags.Changed("executable") {
		config.Executable = opts.executable
	}
	if flags.Changed("hosts") {
		config.Hosts = opts.hosts
	}
	if flags.Changed("workers") {
		config.Workers = opts.workers
	}
	if flags.Changed("timing-marker") {
		config.TimingMarker = opts.timingMarker
	}
	if flags.Changed("trial-timeout") {
		config.TrialTimeout = opts.trialTimeout
	}
	if flags.Changed("capture-stderr") {
		config.CaptureStderr = opts.captureStderr
	}
	if flags.Changed("mqtt-broker") {
		config.MQTT.Broker = opts.mqttBroker
	}
	if flags.Changed("mqtt-topic") {
		config.MQTT.Topic = opts.mqttTopic
	}
}

// initLogger initializes the logger with the specified level and log file name.
// Without a file name diagnostics go to stderr, keeping stdout for the result.
func initLogger(level string, logfileName ...string) *zap.Logger {
	config := zap.NewProductionConfig()

	switch level {
	case "debug":
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		config.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	outputPath := []string{"stderr"}
	if len(logfileName) > 0 {
		outputPath = logfileName
	}

	config.OutputPaths = outputPath
	config.ErrorOutputPaths = outputPath
	config.EncoderConfig.TimeKey = "t"
	config.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	config.DisableCaller = false

	logger, err := config.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		return zap.NewNop()
	}
	return logger
}
