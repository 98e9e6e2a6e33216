// Package tsv reads tab-delimited incident files.
package tsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
)

// ErrNotFound is returned when the input path does not exist.
var ErrNotFound = errors.New("input file not found")

// Reader loads tab-delimited files into rows of fields.
type Reader struct {
	logger *slog.Logger
}

// NewReader creates a Reader that reports load failures to logger.
func NewReader(logger *slog.Logger) *Reader {
	return &Reader{logger: logger}
}

// ReadFile returns every row of the file at path, each split on TAB.
// Failures are logged and returned; a missing file wraps ErrNotFound.
func (r *Reader) ReadFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.logger.Error("input file not found", "path", path)
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		r.logger.Error("open input file failed", "path", path, "error", err)
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := Parse(f)
	if err != nil {
		r.logger.Error("read input file failed", "path", path, "error", err)
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

// Parse splits tab-delimited text into rows. Quoted fields follow CSV rules;
// rows may have differing field counts.
func Parse(src io.Reader) ([][]string, error) {
	cr := csv.NewReader(src)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
}
