package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		Workers: 8,
		Hosts:   "localhost:8",
		Params:  []string{"0", "0", "100", "100"},
	}
}

func TestNewExperimentConfig(t *testing.T) {
	cfg := testConfig()

	exp, err := NewExperimentConfig(1000, 3, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1000, exp.SampleCount)
	assert.Equal(t, 3, exp.IterationCount)
	assert.Equal(t, 8, exp.WorkerCount)
	assert.Equal(t, "localhost:8", exp.HostSpec)
	assert.Equal(t, []string{"1000", "0", "0", "100", "100"}, exp.WorkerArgs())

	// changes to the source config must not leak into the experiment
	cfg.Params[0] = "42"
	assert.Equal(t, "0", exp.Params[0])
}

func TestNewExperimentConfig_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		samples    int
		iterations int
		mutate     func(*Config)
	}{
		{"zero samples", 0, 3, nil},
		{"negative samples", -5, 3, nil},
		{"zero iterations", 1000, 0, nil},
		{"no workers", 1000, 3, func(c *Config) { c.Workers = 0 }},
		{"no hosts", 1000, 3, func(c *Config) { c.Hosts = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}

			_, err := NewExperimentConfig(tt.samples, tt.iterations, cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestWorkerArgs_DoesNotAliasParams(t *testing.T) {
	exp, err := NewExperimentConfig(10, 1, testConfig())
	require.NoError(t, err)

	args := exp.WorkerArgs()
	args[1] = "changed"
	assert.Equal(t, []string{"10", "0", "0", "100", "100"}, exp.WorkerArgs())
}

func TestExperimentState_Transitions(t *testing.T) {
	state := StateInitializing
	var err error

	for _, next := range []ExperimentState{StateRunning, StateRunning, StateFinalizing, StateDone} {
		state, err = state.Transition(next)
		require.NoError(t, err)
	}
	assert.True(t, state.Terminal())

	_, err = StateDone.Transition(StateRunning)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = StateFailed.Transition(StateFinalizing)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = StateInitializing.Transition(StateFinalizing)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	for _, s := range []ExperimentState{StateInitializing, StateRunning, StateFinalizing} {
		next, err := s.Transition(StateFailed)
		require.NoError(t, err)
		assert.Equal(t, StateFailed, next)
	}
}

func TestExperimentState_String(t *testing.T) {
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "unknown(42)", ExperimentState(42).String())
}
