package domain

import (
	"sort"
	"strings"
	"unicode"
)

// WordFrequency is one token of the word cloud with its occurrence count.
type WordFrequency struct {
	Word  string
	Count int
}

// StripWhitespace returns a copy of the table with all whitespace removed from
// the values of column. The input table is not modified.
func StripWhitespace(t *Table, column string) (*Table, error) {
	idx := t.ColumnIndex(column)
	if idx < 0 {
		return nil, t.RequireColumns(column)
	}

	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		r := make([]string, len(row))
		copy(r, row)
		r[idx] = strings.Map(func(c rune) rune {
			if unicode.IsSpace(c) {
				return -1
			}
			return c
		}, r[idx])
		rows[i] = r
	}
	return &Table{Columns: t.Columns, Rows: rows}, nil
}

// JoinColumn concatenates the non-empty values of column with single spaces.
func JoinColumn(t *Table, column string) (string, error) {
	values, err := t.Column(column)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, v := range values {
		if v == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(v)
	}
	return b.String(), nil
}

// WordFrequencies counts whitespace-separated tokens, most frequent first.
// Ties are ordered alphabetically so layouts are reproducible.
func WordFrequencies(text string) []WordFrequency {
	counts := make(map[string]int)
	for _, tok := range strings.Fields(text) {
		counts[tok]++
	}

	freqs := make([]WordFrequency, 0, len(counts))
	for w, c := range counts {
		freqs = append(freqs, WordFrequency{Word: w, Count: c})
	}
	sort.Slice(freqs, func(i, j int) bool {
		if freqs[i].Count != freqs[j].Count {
			return freqs[i].Count > freqs[j].Count
		}
		return freqs[i].Word < freqs[j].Word
	})
	return freqs
}
