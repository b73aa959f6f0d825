package domain

import "fmt"

// ExperimentState состояние контроллера эксперимента
type ExperimentState int

const (
	StateInitializing ExperimentState = iota
	StateRunning
	StateFinalizing
	StateDone
	StateFailed
)

func (s ExperimentState) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateRunning:
		return "running"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Terminal reports whether no further transition is allowed.
func (s ExperimentState) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// Transition checks that moving from s to next is allowed and returns next.
// Running may loop onto itself, one step per trial.
func (s ExperimentState) Transition(next ExperimentState) (ExperimentState, error) {
	allowed := false
	switch s {
	case StateInitializing:
		allowed = next == StateRunning || next == StateFailed
	case StateRunning:
		allowed = next == StateRunning || next == StateFinalizing || next == StateFailed
	case StateFinalizing:
		allowed = next == StateDone || next == StateFailed
	}

	if !allowed {
		return s, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, next)
	}
	return next, nil
}
