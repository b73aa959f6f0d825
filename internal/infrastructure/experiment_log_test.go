package infrastructure

import (
	"os"
	"path/filepath"
	"testing"

	"mpi-benchmark/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTestLog(t *testing.T) (*TXTExperimentLog, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "result.txt")
	log, err := OpenTXTExperimentLog(zap.NewNop(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = log.Close() })
	return log, path
}

func TestTXTExperimentLog_Ordering(t *testing.T) {
	log, path := openTestLog(t)
	cfg := domain.ExperimentConfig{SampleCount: 1000, IterationCount: 3}

	require.NoError(t, log.WriteHeader(cfg))
	require.NoError(t, log.AppendRunOutput([]byte("A\n1.5\n\n")))
	require.NoError(t, log.AppendRunOutput([]byte("B\n2.5\n\n")))
	require.NoError(t, log.AppendRunOutput([]byte("C\n2.0\n\n")))
	require.NoError(t, log.WriteFooter(3, 2.0))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	expected := "Sample count 1000 iteration count -> 3\n\n" +
		"A\n1.5\n\n" +
		"B\n2.5\n\n" +
		"C\n2.0\n\n" +
		"Average runtime for the MPI program for 3 iteration is -> 2.0\n"
	assert.Equal(t, expected, string(data))
}

func TestTXTExperimentLog_AppendsToExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.txt")
	require.NoError(t, os.WriteFile(path, []byte("previous experiment\n"), 0644))

	log, err := OpenTXTExperimentLog(zap.NewNop(), path)
	require.NoError(t, err)
	require.NoError(t, log.WriteHeader(domain.ExperimentConfig{SampleCount: 10, IterationCount: 1}))
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous experiment\nSample count 10 iteration count -> 1\n\n", string(data))
}

func TestTXTExperimentLog_OrderViolations(t *testing.T) {
	log, _ := openTestLog(t)

	assert.ErrorIs(t, log.AppendRunOutput([]byte("early")), domain.ErrLogOrder)
	assert.ErrorIs(t, log.WriteFooter(1, 1.0), domain.ErrLogOrder)

	require.NoError(t, log.WriteHeader(domain.ExperimentConfig{SampleCount: 1, IterationCount: 1}))
	assert.ErrorIs(t, log.WriteHeader(domain.ExperimentConfig{SampleCount: 1, IterationCount: 1}), domain.ErrLogOrder)

	require.NoError(t, log.WriteFooter(1, 1.0))
	assert.ErrorIs(t, log.WriteFooter(1, 1.0), domain.ErrLogOrder)
	assert.ErrorIs(t, log.AppendRunOutput([]byte("late")), domain.ErrLogOrder)
}

func TestTXTExperimentLog_ReadBlock(t *testing.T) {
	log, _ := openTestLog(t)
	require.NoError(t, log.WriteHeader(domain.ExperimentConfig{SampleCount: 1, IterationCount: 2}))

	first, err := log.Offset()
	require.NoError(t, err)
	require.NoError(t, log.AppendRunOutput([]byte("run one\n0.5\n\n")))

	second, err := log.Offset()
	require.NoError(t, err)
	require.NoError(t, log.AppendRunOutput([]byte("run two\n0.7\n\n")))

	lines, err := log.ReadBlock(second)
	require.NoError(t, err)
	assert.Equal(t, []string{"run two", "0.7", ""}, lines)

	lines, err = log.ReadBlock(first)
	require.NoError(t, err)
	assert.Equal(t, []string{"run one", "0.5", "", "run two", "0.7", ""}, lines)

	end, err := log.Offset()
	require.NoError(t, err)
	lines, err = log.ReadBlock(end)
	require.NoError(t, err)
	assert.Empty(t, lines)

	_, err = log.ReadBlock(end + 1)
	assert.ErrorIs(t, err, domain.ErrLogOrder)
}

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{2.0, "2.0"},
		{0, "0.0"},
		{0.412345, "0.412345"},
		{2.3333333333333335, "2.3333333333333335"},
		{1e-05, "1e-05"},
		{12345.5, "12345.5"},
		{1e16, "1e+16"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatSeconds(tt.value))
	}
}

func TestFooterLine(t *testing.T) {
	assert.Equal(t,
		"Average runtime for the MPI program for 5 iteration is -> 0.25",
		FooterLine(5, 0.25))
}
