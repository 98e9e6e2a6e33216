package tsv

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTSV = "LOCATION_LATITUDE\tLOCATION_LONGITUDE\tFATAL\tONSHORE_STATE_ABBREVIATION\tCAUSE_DETAILS\n" +
	"40.0\t-75.0\t0\tPA\tCORROSION\n" +
	"29.76\t-95.37\t1\tTX\t\"EXCAVATION DAMAGE BY THIRD PARTY\"\n"

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "incidents.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReader_ReadFile(t *testing.T) {
	r := NewReader(slog.New(slog.NewTextHandler(io.Discard, nil)))

	rows, err := r.ReadFile(writeFile(t, sampleTSV))
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"LOCATION_LATITUDE", "LOCATION_LONGITUDE", "FATAL", "ONSHORE_STATE_ABBREVIATION", "CAUSE_DETAILS"}, rows[0])
	assert.Equal(t, []string{"40.0", "-75.0", "0", "PA", "CORROSION"}, rows[1])
	assert.Equal(t, "EXCAVATION DAMAGE BY THIRD PARTY", rows[2][4])
}

func TestReader_ReadFile_NotFound(t *testing.T) {
	var logs bytes.Buffer
	r := NewReader(slog.New(slog.NewTextHandler(&logs, nil)))

	rows, err := r.ReadFile(filepath.Join(t.TempDir(), "missing.txt"))

	require.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, rows)
	assert.Contains(t, logs.String(), "input file not found")
	assert.Contains(t, logs.String(), "missing.txt")
}

func TestReader_ReadFile_Directory(t *testing.T) {
	var logs bytes.Buffer
	r := NewReader(slog.New(slog.NewTextHandler(&logs, nil)))

	_, err := r.ReadFile(t.TempDir())

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, logs.String(), "level=ERROR")
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected [][]string
	}{
		{"empty", "", nil},
		{"ragged rows", "A\tB\tC\n1\t2\n", [][]string{{"A", "B", "C"}, {"1", "2"}}},
		{"empty fields kept", "A\tB\n\t2\n", [][]string{{"A", "B"}, {"", "2"}}},
		{"commas are data", "A\tB\n1,5\t2\n", [][]string{{"A", "B"}, {"1,5", "2"}}},
		{"crlf line endings", "A\tB\r\n1\t2\r\n", [][]string{{"A", "B"}, {"1", "2"}}},
		{"stray quote", "A\tB\n5\" PIPE\t2\n", [][]string{{"A", "B"}, {"5\" PIPE", "2"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := Parse(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, rows)
		})
	}
}
