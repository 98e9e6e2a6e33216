package pipeline

import (
	"context"
	"fmt"

	"github.com/couchcryptid/pipeline-incident-report/internal/domain"
)

// loadTable reads the input and checks that every column a later stage
// reads is present.
func (p *Pipeline) loadTable() (*domain.Table, error) {
	rows, err := p.deps.Rows.ReadFile(p.opts.InputPath)
	if err != nil {
		return nil, fmt.Errorf("load input: %w", err)
	}
	table, err := domain.NewTable(rows)
	if err != nil {
		return nil, fmt.Errorf("build table: %w", err)
	}

	required := []string{
		p.opts.Geocode.LatitudeColumn,
		p.opts.Geocode.LongitudeColumn,
		domain.ColumnFatal,
		p.opts.WordColumn,
	}
	if err := table.RequireColumns(required...); err != nil {
		return nil, fmt.Errorf("build table: %w", err)
	}

	p.logger.Info("input loaded", "path", p.opts.InputPath, "records", table.Len(), "columns", len(table.Columns))
	return table, nil
}

func (p *Pipeline) geocode(ctx context.Context, table *domain.Table) (*domain.GeoTable, error) {
	geo, err := domain.Geocode(ctx, table, p.opts.Geocode, p.logger)
	if err != nil {
		return nil, fmt.Errorf("geocode: %w", err)
	}
	if geo.Skipped > 0 {
		p.metrics.Dropped.WithLabelValues("invalid_coordinate").Add(float64(geo.Skipped))
	}
	return geo, nil
}

// classify splits incidents into map layers. Invalid fatality values are left
// off the map with a warning.
func (p *Pipeline) classify(geo *domain.GeoTable) domain.Partition {
	partition := domain.PartitionIncidents(geo, domain.ColumnFatal)

	for _, inc := range partition.Invalid {
		p.logger.Warn("dropping incident with invalid fatality value",
			"line", inc.Line,
			"value", inc.Record[domain.ColumnFatal],
		)
	}

	p.metrics.Incidents.WithLabelValues(domain.ClassNonFatal.String()).Add(float64(len(partition.NonFatal)))
	p.metrics.Incidents.WithLabelValues(domain.ClassFatal.String()).Add(float64(len(partition.Fatal)))
	p.metrics.Incidents.WithLabelValues(domain.ClassInvalid.String()).Add(float64(len(partition.Invalid)))
	if n := len(partition.Invalid); n > 0 {
		p.metrics.Dropped.WithLabelValues("invalid_fatality").Add(float64(n))
	}
	return partition
}

// wordFrequencies joins the word column into one text and counts its tokens.
// With joinPhrases, whitespace inside each value is removed first so a
// multi-word value counts as one token.
func wordFrequencies(table *domain.Table, column string, joinPhrases bool) ([]domain.WordFrequency, error) {
	if joinPhrases {
		stripped, err := domain.StripWhitespace(table, column)
		if err != nil {
			return nil, fmt.Errorf("word text: %w", err)
		}
		table = stripped
	}
	text, err := domain.JoinColumn(table, column)
	if err != nil {
		return nil, fmt.Errorf("word text: %w", err)
	}
	return domain.WordFrequencies(text), nil
}
