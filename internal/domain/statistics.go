package domain

import (
	"fmt"
	"math"
)

// AggregateStatistics накопленная статистика по прогонам
type AggregateStatistics struct {
	TotalSeconds  float64
	CompletedRuns int
}

// Record folds one trial's elapsed time into the running total.
func (s *AggregateStatistics) Record(elapsedSeconds float64) error {
	if elapsedSeconds < 0 || math.IsNaN(elapsedSeconds) || math.IsInf(elapsedSeconds, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidSample, elapsedSeconds)
	}

	s.TotalSeconds += elapsedSeconds
	s.CompletedRuns++
	return nil
}

// Mean returns the arithmetic mean of all recorded runs.
func (s *AggregateStatistics) Mean() (float64, error) {
	if s.CompletedRuns == 0 {
		return 0, ErrInsufficientData
	}
	return s.TotalSeconds / float64(s.CompletedRuns), nil
}
