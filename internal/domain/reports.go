package domain

import "time"

// TrialReport сообщение о завершенном прогоне
type TrialReport struct {
	ExperimentID   string  `json:"experiment_id"`
	Trial          int     `json:"trial"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	CompletedRuns  int     `json:"completed_runs"`
}

// ExperimentSummary итог эксперимента, пишется и при успехе, и при ошибке
type ExperimentSummary struct {
	ExperimentID   string    `json:"experiment_id"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	SampleCount    int       `json:"sample_count"`
	IterationCount int       `json:"iteration_count"`
	WorkerCount    int       `json:"worker_count"`
	HostSpec       string    `json:"host_spec"`
	Params         []string  `json:"params"`
	Timings        []float64 `json:"timings"`
	CompletedRuns  int       `json:"completed_runs"`
	MeanSeconds    *float64  `json:"mean_seconds,omitempty"`
	State          string    `json:"state"`
	Error          string    `json:"error,omitempty"`
}
