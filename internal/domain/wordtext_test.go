package domain

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinColumn(t *testing.T) {
	table := mustTable(t,
		[]string{"1", "1", "0", "PA", "", ""},
		[]string{"1", "1", "0", "", "", ""},
		[]string{"1", "1", "0", "TX", "", ""},
		[]string{"1", "1", "0", "TX", "", ""},
	)

	text, err := JoinColumn(table, ColumnState)
	require.NoError(t, err)

	assert.Equal(t, "PA TX TX", text)
	assert.Len(t, strings.Fields(text), 3)
}

func TestJoinColumn_MissingColumn(t *testing.T) {
	table := mustTable(t)
	_, err := JoinColumn(table, "NOPE")
	require.ErrorIs(t, err, ErrMissingColumn)
}

func TestStripWhitespace(t *testing.T) {
	table := mustTable(t,
		[]string{"1", "1", "0", "PA", "INTERNAL CORROSION", ""},
		[]string{"1", "1", "0", "TX", " EXCAVATION\tDAMAGE ", ""},
	)

	stripped, err := StripWhitespace(table, ColumnCauseDetails)
	require.NoError(t, err)

	causes, err := stripped.Column(ColumnCauseDetails)
	require.NoError(t, err)
	assert.Equal(t, []string{"INTERNALCORROSION", "EXCAVATIONDAMAGE"}, causes)

	original, err := table.Column(ColumnCauseDetails)
	require.NoError(t, err)
	assert.Equal(t, "INTERNAL CORROSION", original[0], "input table must not change")
}

func TestWordFrequencies(t *testing.T) {
	got := WordFrequencies("TX PA TX OK  TX PA\tLA")

	want := []WordFrequency{
		{Word: "TX", Count: 3},
		{Word: "PA", Count: 2},
		{Word: "LA", Count: 1},
		{Word: "OK", Count: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("frequencies mismatch (-want +got):\n%s", diff)
	}
}

func TestWordFrequencies_Empty(t *testing.T) {
	assert.Empty(t, WordFrequencies("   "))
}
