package infrastructure

import (
	"fmt"
	"io"
	"mpi-benchmark/internal/domain"
	"mpi-benchmark/pkg/timing"
	"os"

	"go.uber.org/zap"
)

type TXTBlockReader struct {
	logger *zap.Logger
}

func NewTXTBlockReader(logger *zap.Logger) *TXTBlockReader {
	return &TXTBlockReader{logger: logger}
}

// ReadLines returns the lines of filename from offset to the current end of file.
func (r *TXTBlockReader) ReadLines(filename string, offset int64) ([]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if offset < 0 || offset > info.Size() {
		return nil, fmt.Errorf("%w: offset %d outside of %d bytes", domain.ErrLogOrder, offset, info.Size())
	}

	data, err := io.ReadAll(io.NewSectionReader(file, offset, info.Size()-offset))
	if err != nil {
		return nil, err
	}

	r.logger.Debug("Block read",
		zap.String("file", filename),
		zap.Int64("offset", offset),
		zap.Int("bytes", len(data)))

	return timing.SplitLines(data)
}
