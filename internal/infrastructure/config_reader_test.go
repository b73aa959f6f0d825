package infrastructure

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"mpi-benchmark/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "benchrunner.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestYAMLConfigReader_Defaults(t *testing.T) {
	config, err := NewYAMLConfigReader(zap.NewNop()).ReadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "mpirun", config.Launcher)
	assert.Equal(t, 8, config.Workers)
	assert.Equal(t, "localhost:8", config.Hosts)
	assert.Equal(t, "./a.out", config.Executable)
	assert.Equal(t, []string{"0", "0", "100", "100"}, config.Params)
	assert.Equal(t, "result.txt", config.ResultsFile)
	assert.Equal(t, "info", config.LogLevel)
	assert.False(t, config.CaptureStderr)
	assert.Zero(t, config.TrialTimeout)
	assert.False(t, config.MQTT.Enabled())
	assert.Equal(t, DefaultMQTTTimeout, config.MQTT.Timeout)

	// defaults must not share the package-level slice
	config.Params[0] = "7"
	assert.Equal(t, "0", DefaultParams[0])
}

func TestYAMLConfigReader_File(t *testing.T) {
	path := writeConfig(t, `
launcher: srun
launcher_args: ["--mpi=pmix"]
workers: 16
hosts: "node1:8,node2:8"
executable: /opt/bench/monte_carlo
params: ["-50", "-50", "50", "50"]
capture_stderr: true
trial_timeout: 90s
results_file: runs.txt
summary_file: summary.json
timing_marker: "ELAPSED"
log_level: debug
mqtt:
  broker: broker.local:1883
  topic: lab/bench
`)

	config, err := NewYAMLConfigReader(zap.NewNop()).ReadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "srun", config.Launcher)
	assert.Equal(t, []string{"--mpi=pmix"}, config.LauncherArgs)
	assert.Equal(t, 16, config.Workers)
	assert.Equal(t, "node1:8,node2:8", config.Hosts)
	assert.Equal(t, "/opt/bench/monte_carlo", config.Executable)
	assert.Equal(t, []string{"-50", "-50", "50", "50"}, config.Params)
	assert.True(t, config.CaptureStderr)
	assert.Equal(t, 90*time.Second, config.TrialTimeout)
	assert.Equal(t, "runs.txt", config.ResultsFile)
	assert.Equal(t, "summary.json", config.SummaryFile)
	assert.Equal(t, "ELAPSED", config.TimingMarker)
	assert.Equal(t, "debug", config.LogLevel)
	assert.True(t, config.MQTT.Enabled())
	assert.Equal(t, "lab/bench", config.MQTT.Topic)
}

func TestYAMLConfigReader_EmptyParamsKept(t *testing.T) {
	path := writeConfig(t, "params: []\n")

	config, err := NewYAMLConfigReader(zap.NewNop()).ReadConfig(path)
	require.NoError(t, err)
	assert.Empty(t, config.Params)
}

func TestYAMLConfigReader_Errors(t *testing.T) {
	reader := NewYAMLConfigReader(zap.NewNop())

	_, err := reader.ReadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = reader.ReadConfig(writeConfig(t, "workers: [1, 2\n"))
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	_, err = reader.ReadConfig(writeConfig(t, "workers: -1\n"))
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	_, err = reader.ReadConfig(writeConfig(t, "log_level: verbose\n"))
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	_, err = reader.ReadConfig(writeConfig(t, "trial_timeout: -5s\n"))
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}
