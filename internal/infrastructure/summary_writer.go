package infrastructure

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"mpi-benchmark/internal/domain"
)

type JSONSummaryWriter struct {
	logger *zap.Logger
	path   string
}

func NewJSONSummaryWriter(logger *zap.Logger, path string) *JSONSummaryWriter {
	return &JSONSummaryWriter{logger: logger, path: path}
}

// WriteSummary replaces the summary file. Unlike the experiment log it holds
// only the latest experiment.
func (w *JSONSummaryWriter) WriteSummary(summary *domain.ExperimentSummary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	if err := os.WriteFile(w.path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write summary file: %w", err)
	}

	w.logger.Info("Summary written", zap.String("file", w.path), zap.String("state", summary.State))
	return nil
}
