package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testHeader = []string{ColumnLatitude, ColumnLongitude, ColumnFatal, ColumnState, ColumnCauseDetails}

func TestNewTable(t *testing.T) {
	t.Run("header becomes columns", func(t *testing.T) {
		rows := [][]string{
			testHeader,
			{"40.0", "-75.0", "0", "PA", "CORROSION"},
			{"29.7", "-95.3", "2", "TX", "EXCAVATION DAMAGE"},
		}
		table, err := NewTable(rows)

		require.NoError(t, err)
		assert.Equal(t, testHeader, table.Columns)
		assert.Equal(t, 2, table.Len())
		assert.Equal(t, "TX", table.Record(1)[ColumnState])
	})

	t.Run("record count equals non-header lines", func(t *testing.T) {
		rows := [][]string{testHeader}
		for range 25 {
			rows = append(rows, []string{"1", "2", "0", "OK", "X"})
		}
		table, err := NewTable(rows)

		require.NoError(t, err)
		assert.Equal(t, 25, table.Len())
	})

	t.Run("header only", func(t *testing.T) {
		table, err := NewTable([][]string{testHeader})

		require.NoError(t, err)
		assert.Equal(t, 0, table.Len())
		assert.Equal(t, testHeader, table.Columns)
	})

	t.Run("no rows", func(t *testing.T) {
		_, err := NewTable(nil)
		require.ErrorIs(t, err, ErrEmptyTable)
	})

	t.Run("short row padded", func(t *testing.T) {
		table, err := NewTable([][]string{testHeader, {"40.0", "-75.0"}})

		require.NoError(t, err)
		rec := table.Record(0)
		assert.Equal(t, "40.0", rec[ColumnLatitude])
		assert.Equal(t, "", rec[ColumnCauseDetails])
	})

	t.Run("long row rejected", func(t *testing.T) {
		_, err := NewTable([][]string{{"A", "B"}, {"1", "2"}, {"1", "2", "3"}})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 3")
	})

	t.Run("header row is not aliased", func(t *testing.T) {
		header := []string{"A", "B"}
		table, err := NewTable([][]string{header, {"1", "2"}})
		require.NoError(t, err)

		header[0] = "changed"
		assert.Equal(t, "A", table.Columns[0])
	})
}

func TestTable_RequireColumns(t *testing.T) {
	table, err := NewTable([][]string{testHeader})
	require.NoError(t, err)

	require.NoError(t, table.RequireColumns(RequiredColumns...))

	err = table.RequireColumns(ColumnFatal, ColumnCity)
	require.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), ColumnCity)
}

func TestTable_DuplicateColumnRightmostWins(t *testing.T) {
	table, err := NewTable([][]string{{"A", "A"}, {"left", "right"}})
	require.NoError(t, err)

	assert.Equal(t, 1, table.ColumnIndex("A"))
	assert.Equal(t, "right", table.Record(0)["A"])
}

func TestTable_Column(t *testing.T) {
	table, err := NewTable([][]string{testHeader, {"1", "2", "0", "PA", "X"}, {"3", "4", "1", "TX", "Y"}})
	require.NoError(t, err)

	states, err := table.Column(ColumnState)
	require.NoError(t, err)
	assert.Equal(t, []string{"PA", "TX"}, states)

	_, err = table.Column("NOPE")
	require.ErrorIs(t, err, ErrMissingColumn)
}
