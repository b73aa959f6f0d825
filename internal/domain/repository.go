package domain

import (
	"context"
	"io"
)

// Launcher запускает одну распределенную задачу и ждет ее завершения
type Launcher interface {
	Launch(ctx context.Context, cfg ExperimentConfig, trial int, out io.Writer) error
}

// ExperimentRecorder журнал эксперимента, только дозапись
type ExperimentRecorder interface {
	io.Writer
	WriteHeader(cfg ExperimentConfig) error
	AppendRunOutput(raw []byte) error
	WriteFooter(iterations int, mean float64) error
	// Offset returns the current end of the log; the next block starts there.
	Offset() (int64, error)
	// ReadBlock returns the lines appended since offset.
	ReadBlock(offset int64) ([]string, error)
	Close() error
}

// TimingExtractor извлекает время прогона из вывода
type TimingExtractor interface {
	Extract(lines []string) (float64, error)
}

// ResultPublisher публикует результаты прогонов
type ResultPublisher interface {
	PublishTrial(report TrialReport) error
	PublishSummary(summary *ExperimentSummary) error
	Close()
}

// SummaryWriter сохраняет итоговую сводку
type SummaryWriter interface {
	WriteSummary(summary *ExperimentSummary) error
}

// ConfigReader интерфейс для чтения конфигурации
type ConfigReader interface {
	ReadConfig(path string) (*Config, error)
}
