package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"time"

	"github.com/fogleman/gg"

	"github.com/couchcryptid/pipeline-incident-report/internal/domain"
	"github.com/couchcryptid/pipeline-incident-report/internal/render"
)

const (
	contentTypePNG  = "image/png"
	contentTypeHTML = "text/html; charset=utf-8"
)

func (p *Pipeline) renderMap(partition domain.Partition) (domain.Artifact, render.MapStats, error) {
	boundaries, err := p.deps.Boundaries.LoadBoundaries(p.opts.ShapefilePath)
	if err != nil {
		return domain.Artifact{}, render.MapStats{}, fmt.Errorf("load boundaries: %w", err)
	}

	img, stats, err := render.RenderMap(boundaries, partition, p.opts.Map)
	if err != nil {
		return domain.Artifact{}, stats, fmt.Errorf("render map: %w", err)
	}
	if stats.OutsideWindow > 0 {
		p.metrics.Dropped.WithLabelValues("outside_window").Add(float64(stats.OutsideWindow))
	}
	p.logger.Info("map rendered",
		"boundaries", stats.Boundaries,
		"non_fatal", stats.NonFatal,
		"fatal", stats.Fatal,
		"outside_window", stats.OutsideWindow,
	)

	a, err := pngArtifact(domain.ArtifactMap, img)
	return a, stats, err
}

func (p *Pipeline) renderWordCloud(freqs []domain.WordFrequency) (domain.Artifact, int, error) {
	img, err := p.deps.Masks.LoadMaskImage(p.opts.MaskPath)
	if err != nil {
		return domain.Artifact{}, 0, fmt.Errorf("load mask: %w", err)
	}

	cloud, err := render.RenderWordCloud(freqs, render.LoadMask(img), p.opts.WordCloud)
	if err != nil {
		return domain.Artifact{}, 0, fmt.Errorf("render word cloud: %w", err)
	}
	p.logger.Info("word cloud rendered", "column", p.opts.WordColumn, "distinct", len(freqs), "placed", len(cloud.Placements))

	a, err := pngArtifact(domain.ArtifactWordCloud, cloud.Image)
	return a, len(cloud.Placements), err
}

func (p *Pipeline) renderHTML(partition domain.Partition, freqs []domain.WordFrequency) (domain.Artifact, error) {
	var buf bytes.Buffer
	if err := p.deps.HTML.RenderReport(&buf, partition, freqs); err != nil {
		return domain.Artifact{}, err
	}
	return domain.Artifact{Name: domain.ArtifactReport, ContentType: contentTypeHTML, Data: buf.Bytes()}, nil
}

// persist hands every artifact to every sink.
func (p *Pipeline) persist(ctx context.Context, report *Report) error {
	for _, a := range report.Artifacts {
		p.metrics.ArtifactBytes.WithLabelValues(a.Name).Add(float64(len(a.Data)))
	}
	for _, sink := range p.deps.Sinks {
		for _, a := range report.Artifacts {
			loc, err := sink.Put(ctx, a)
			if err != nil {
				return fmt.Errorf("persist %s to %s: %w", a.Name, sink.Name(), err)
			}
			p.metrics.ArtifactsWritten.WithLabelValues(sink.Name()).Inc()
			report.Locations[a.Name] = append(report.Locations[a.Name], loc)
		}
	}
	return nil
}

// publish sends the plotted incidents, non-fatal first.
func (p *Pipeline) publish(ctx context.Context, partition domain.Partition, generatedAt time.Time) error {
	plotted := make([]domain.Incident, 0, partition.Plotted())
	plotted = append(plotted, partition.NonFatal...)
	plotted = append(plotted, partition.Fatal...)

	if err := p.deps.Publisher.Publish(ctx, plotted, generatedAt); err != nil {
		p.metrics.PublishErrors.Inc()
		return fmt.Errorf("publish incidents: %w", err)
	}
	p.metrics.IncidentsPublished.Add(float64(len(plotted)))
	return nil
}

func pngArtifact(name string, img image.Image) (domain.Artifact, error) {
	var buf bytes.Buffer
	if err := gg.NewContextForImage(img).EncodePNG(&buf); err != nil {
		return domain.Artifact{}, fmt.Errorf("encode %s: %w", name, err)
	}
	return domain.Artifact{Name: name, ContentType: contentTypePNG, Data: buf.Bytes()}, nil
}
