package timing

import (
	"bufio"
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"mpi-benchmark/internal/domain"

	"go.uber.org/zap"
)

const maxLineSize = 1024 * 1024

// TerminalLineExtractor reads the timing from the last non-blank line of a block.
// The worker prints the elapsed time followed by one blank line, so on real output
// this is the second-to-last line.
type TerminalLineExtractor struct {
	logger *zap.Logger
}

func NewTerminalLineExtractor(logger *zap.Logger) *TerminalLineExtractor {
	return &TerminalLineExtractor{logger: logger}
}

func (e *TerminalLineExtractor) Extract(lines []string) (float64, error) {
	if len(lines) < 2 {
		return 0, fmt.Errorf("%w: expected at least 2 lines, got %d", domain.ErrMalformedOutput, len(lines))
	}

	i := len(lines) - 1
	for i >= 0 && strings.TrimSpace(lines[i]) == "" {
		i--
	}
	if i < 0 {
		return 0, fmt.Errorf("%w: block has no content", domain.ErrMalformedOutput)
	}

	e.logger.Debug("Timing line", zap.Int("index", i), zap.String("line", lines[i]))
	return ParseSeconds(lines[i])
}

// MarkerExtractor reads the timing from the last line that starts with a marker,
// e.g. "ELAPSED 1.234".
type MarkerExtractor struct {
	logger *zap.Logger
	marker string
}

func NewMarkerExtractor(logger *zap.Logger, marker string) *MarkerExtractor {
	return &MarkerExtractor{logger: logger, marker: marker}
}

func (e *MarkerExtractor) Extract(lines []string) (float64, error) {
	for i := len(lines) - 1; i >= 0; i-- {
		if rest, ok := strings.CutPrefix(strings.TrimSpace(lines[i]), e.marker); ok {
			e.logger.Debug("Timing line", zap.String("line", lines[i]), zap.String("marker", e.marker))
			return ParseSeconds(rest)
		}
	}
	return 0, fmt.Errorf("%w: no line starts with %q", domain.ErrMalformedOutput, e.marker)
}

// New returns the marker extractor when marker is set, otherwise the terminal-line one.
func New(logger *zap.Logger, marker string) domain.TimingExtractor {
	if marker != "" {
		return NewMarkerExtractor(logger, marker)
	}
	return NewTerminalLineExtractor(logger)
}

// ParseSeconds parses a single float, ignoring surrounding whitespace.
// NaN and infinities are rejected.
func ParseSeconds(s string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", domain.ErrParse, s)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w: %q is not finite", domain.ErrParse, s)
	}
	return value, nil
}

// SplitLines splits raw output into lines without their terminators.
// A trailing newline does not produce an extra empty line, but a blank line before it does.
func SplitLines(data []byte) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
