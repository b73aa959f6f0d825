package infrastructure

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"mpi-benchmark/internal/domain"
)

// TXTExperimentLog is the append-only text log of one or more experiments.
// Worker output is written straight into it, so every trial's block can be
// located by the file size before and after the launch.
type TXTExperimentLog struct {
	logger *zap.Logger
	path   string
	file   *os.File
	reader *TXTBlockReader

	headerWritten bool
	footerWritten bool
}

func OpenTXTExperimentLog(logger *zap.Logger, path string) (*TXTExperimentLog, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	logger.Debug("Experiment log opened", zap.String("path", path))
	return &TXTExperimentLog{
		logger: logger,
		path:   path,
		file:   file,
		reader: NewTXTBlockReader(logger),
	}, nil
}

func (l *TXTExperimentLog) Path() string {
	return l.path
}

func (l *TXTExperimentLog) WriteHeader(cfg domain.ExperimentConfig) error {
	if l.headerWritten {
		return fmt.Errorf("%w: header already written", domain.ErrLogOrder)
	}

	if _, err := fmt.Fprintf(l.file, "Sample count %d iteration count -> %d\n\n", cfg.SampleCount, cfg.IterationCount); err != nil {
		return err
	}
	l.headerWritten = true
	return nil
}

// Write appends worker output verbatim. It lets the log serve as a process's stdout.
func (l *TXTExperimentLog) Write(p []byte) (int, error) {
	if !l.headerWritten || l.footerWritten {
		return 0, fmt.Errorf("%w: run output outside of an experiment", domain.ErrLogOrder)
	}
	return l.file.Write(p)
}

func (l *TXTExperimentLog) AppendRunOutput(raw []byte) error {
	_, err := l.Write(raw)
	return err
}

func (l *TXTExperimentLog) WriteFooter(iterations int, mean float64) error {
	if !l.headerWritten || l.footerWritten {
		return fmt.Errorf("%w: footer without header or written twice", domain.ErrLogOrder)
	}

	if _, err := fmt.Fprintf(l.file, "%s\n", FooterLine(iterations, mean)); err != nil {
		return err
	}
	l.footerWritten = true
	return nil
}

func (l *TXTExperimentLog) Offset() (int64, error) {
	info, err := l.file.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (l *TXTExperimentLog) ReadBlock(offset int64) ([]string, error) {
	return l.reader.ReadLines(l.path, offset)
}

func (l *TXTExperimentLog) Close() error {
	if err := l.file.Sync(); err != nil {
		l.logger.Warn("Failed to sync experiment log", zap.String("path", l.path), zap.Error(err))
	}
	return l.file.Close()
}

// FooterLine renders the aggregate line shared by the log and stdout.
func FooterLine(iterations int, mean float64) string {
	return fmt.Sprintf("Average runtime for the MPI program for %d iteration is -> %s", iterations, FormatSeconds(mean))
}

// FormatSeconds prints the shortest representation that round-trips, always
// with a fractional part or exponent, e.g. 2 -> "2.0", 0.00001 -> "1e-05".
func FormatSeconds(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}

	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
