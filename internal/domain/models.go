package domain

import (
	"fmt"
	"strconv"
	"time"
)

// Config представляет конфигурацию приложения
type Config struct {
	Launcher      string        `yaml:"launcher"`
	LauncherArgs  []string      `yaml:"launcher_args"`
	Workers       int           `yaml:"workers"`
	Hosts         string        `yaml:"hosts"`
	Executable    string        `yaml:"executable"`
	Params        []string      `yaml:"params"`
	CaptureStderr bool          `yaml:"capture_stderr"`
	TrialTimeout  time.Duration `yaml:"trial_timeout"`
	ResultsFile   string        `yaml:"results_file"`
	SummaryFile   string        `yaml:"summary_file"`
	TimingMarker  string        `yaml:"timing_marker"`
	LogLevel      string        `yaml:"log_level"`
	LogFile       string        `yaml:"log_file"`
	MQTT          MQTTConfig    `yaml:"mqtt"`
}

// MQTTConfig описывает публикацию результатов в брокер
type MQTTConfig struct {
	Broker   string        `yaml:"broker"`
	Topic    string        `yaml:"topic"`
	ClientID string        `yaml:"client_id"`
	Timeout  time.Duration `yaml:"timeout"`
}

func (m MQTTConfig) Enabled() bool {
	return m.Broker != ""
}

// ExperimentConfig параметры одного эксперимента. Создается один раз и не меняется.
type ExperimentConfig struct {
	SampleCount    int
	IterationCount int
	WorkerCount    int
	HostSpec       string
	Params         []string
}

// NewExperimentConfig validates the process input and binds it to the fixed topology from config.
func NewExperimentConfig(sampleCount, iterationCount int, config *Config) (ExperimentConfig, error) {
	if sampleCount <= 0 {
		return ExperimentConfig{}, fmt.Errorf("%w: sample count must be positive, got %d", ErrInvalidConfig, sampleCount)
	}
	if iterationCount <= 0 {
		return ExperimentConfig{}, fmt.Errorf("%w: iteration count must be positive, got %d", ErrInvalidConfig, iterationCount)
	}
	if config.Workers <= 0 {
		return ExperimentConfig{}, fmt.Errorf("%w: worker count must be positive, got %d", ErrInvalidConfig, config.Workers)
	}
	if config.Hosts == "" {
		return ExperimentConfig{}, fmt.Errorf("%w: host specification is empty", ErrInvalidConfig)
	}

	params := make([]string, len(config.Params))
	copy(params, config.Params)

	return ExperimentConfig{
		SampleCount:    sampleCount,
		IterationCount: iterationCount,
		WorkerCount:    config.Workers,
		HostSpec:       config.Hosts,
		Params:         params,
	}, nil
}

// WorkerArgs returns the positional arguments for the worker executable:
// the sample count followed by the parameter vector.
func (e ExperimentConfig) WorkerArgs() []string {
	args := make([]string, 0, len(e.Params)+1)
	args = append(args, strconv.Itoa(e.SampleCount))
	return append(args, e.Params...)
}

// RunResult результат одного прогона
type RunResult struct {
	Trial          int
	RawOutput      []string
	ElapsedSeconds float64
}
