package domain

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrEmptyTable is returned when the input has no header row.
	ErrEmptyTable = errors.New("table has no header row")

	// ErrMissingColumn is returned when a required column is not in the header.
	ErrMissingColumn = errors.New("missing column")
)

// Record is one row keyed by column name. With duplicate column names the
// right-most value wins.
type Record map[string]string

// Table is a labeled table of text values. Rows are padded to the header width.
type Table struct {
	Columns []string
	Rows    [][]string
}

// NewTable builds a Table from loader rows, using the first row as column names.
// Rows shorter than the header are padded with empty strings; longer rows are
// rejected because they cannot be labeled.
func NewTable(rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyTable
	}

	columns := slices.Clone(rows[0])
	data := make([][]string, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) > len(columns) {
			return nil, fmt.Errorf("line %d: %d fields, header has %d", i+2, len(row), len(columns))
		}
		padded := make([]string, len(columns))
		copy(padded, row)
		data = append(data, padded)
	}

	return &Table{Columns: columns, Rows: data}, nil
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the index of the right-most column with the given name, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i := len(t.Columns) - 1; i >= 0; i-- {
		if t.Columns[i] == name {
			return i
		}
	}
	return -1
}

// RequireColumns returns an error wrapping ErrMissingColumn for the first name
// not present in the header.
func (t *Table) RequireColumns(names ...string) error {
	for _, name := range names {
		if t.ColumnIndex(name) < 0 {
			return fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}
	return nil
}

// Record returns row i keyed by column name.
func (t *Table) Record(i int) Record {
	rec := make(Record, len(t.Columns))
	for j, col := range t.Columns {
		rec[col] = t.Rows[i][j]
	}
	return rec
}

// Column returns every value of the named column in row order.
func (t *Table) Column(name string) ([]string, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
	}
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[idx]
	}
	return values, nil
}

// line converts a zero-based row index to its line number in the source file.
func line(row int) int {
	return row + 2
}
