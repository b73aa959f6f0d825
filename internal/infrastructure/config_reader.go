package infrastructure

import (
	"fmt"
	"mpi-benchmark/internal/domain"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	DefaultLauncher    = "mpirun"
	DefaultWorkers     = 8
	DefaultHosts       = "localhost:8"
	DefaultExecutable  = "./a.out"
	DefaultResultsFile = "result.txt"
	DefaultMQTTTopic   = "mpi-benchmark"
	DefaultMQTTTimeout = 5 * time.Second
)

var DefaultParams = []string{"0", "0", "100", "100"}

type YAMLConfigReader struct {
	logger *zap.Logger
}

func NewYAMLConfigReader(logger *zap.Logger) *YAMLConfigReader {
	return &YAMLConfigReader{logger: logger}
}

// ReadConfig reads the YAML file at path and fills in defaults.
// An empty path yields the default configuration.
func (r *YAMLConfigReader) ReadConfig(path string) (*domain.Config, error) {
	var config domain.Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidConfig, path, err)
		}
		r.logger.Debug("Config file loaded", zap.String("path", path))
	}

	// Устанавливаем значения по умолчанию
	r.setDefaults(&config)

	if err := Validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func (r *YAMLConfigReader) setDefaults(config *domain.Config) {
	if config.Launcher == "" {
		config.Launcher = DefaultLauncher
	}
	if config.Workers == 0 {
		config.Workers = DefaultWorkers
	}
	if config.Hosts == "" {
		config.Hosts = DefaultHosts
	}
	if config.Executable == "" {
		config.Executable = DefaultExecutable
	}
	if config.Params == nil {
		config.Params = append([]string(nil), DefaultParams...)
	}
	if config.ResultsFile == "" {
		config.ResultsFile = DefaultResultsFile
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.MQTT.Topic == "" {
		config.MQTT.Topic = DefaultMQTTTopic
	}
	if config.MQTT.Timeout == 0 {
		config.MQTT.Timeout = DefaultMQTTTimeout
	}
}

// Validate checks the settings that no default can repair.
func Validate(config *domain.Config) error {
	if config.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", domain.ErrInvalidConfig, config.Workers)
	}
	if config.Launcher == "" || config.Executable == "" {
		return fmt.Errorf("%w: launcher and executable are required", domain.ErrInvalidConfig)
	}
	if config.TrialTimeout < 0 {
		return fmt.Errorf("%w: trial timeout must not be negative", domain.ErrInvalidConfig)
	}
	switch config.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", domain.ErrInvalidConfig, config.LogLevel)
	}
	return nil
}
