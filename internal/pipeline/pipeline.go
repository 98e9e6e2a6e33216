package pipeline

import (
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/pipeline-incident-report/internal/domain"
	"github.com/couchcryptid/pipeline-incident-report/internal/observability"
	"github.com/couchcryptid/pipeline-incident-report/internal/render"
)

// RowLoader reads the delimited input file.
type RowLoader interface {
	ReadFile(path string) ([][]string, error)
}

// BoundaryLoader reads base map polygons.
type BoundaryLoader interface {
	LoadBoundaries(path string) ([]domain.Boundary, error)
}

// BoundaryLoaderFunc adapts a function to BoundaryLoader.
type BoundaryLoaderFunc func(path string) ([]domain.Boundary, error)

func (f BoundaryLoaderFunc) LoadBoundaries(path string) ([]domain.Boundary, error) { return f(path) }

// MaskLoader reads the word cloud mask image.
type MaskLoader interface {
	LoadMaskImage(path string) (image.Image, error)
}

// MaskLoaderFunc adapts a function to MaskLoader.
type MaskLoaderFunc func(path string) (image.Image, error)

func (f MaskLoaderFunc) LoadMaskImage(path string) (image.Image, error) { return f(path) }

// ReportRenderer writes the interactive HTML companion report.
type ReportRenderer interface {
	RenderReport(w io.Writer, p domain.Partition, freqs []domain.WordFrequency) error
}

// ArtifactSink persists rendered artifacts.
type ArtifactSink interface {
	Name() string
	Put(ctx context.Context, a domain.Artifact) (string, error)
}

// IncidentPublisher forwards plotted incidents downstream.
type IncidentPublisher interface {
	Publish(ctx context.Context, incidents []domain.Incident, generatedAt time.Time) error
}

// Options selects inputs and rendering parameters for a run.
type Options struct {
	InputPath     string
	ShapefilePath string
	MaskPath      string

	Geocode     domain.GeocodeOptions
	WordColumn  string
	JoinPhrases bool

	Map       render.MapOptions
	WordCloud render.WordCloudOptions
}

// Deps are the pipeline's collaborators. HTML and Publisher are optional.
type Deps struct {
	Rows       RowLoader
	Boundaries BoundaryLoader
	Masks      MaskLoader
	HTML       ReportRenderer
	Sinks      []ArtifactSink
	Publisher  IncidentPublisher
}

// Report summarizes one run.
type Report struct {
	GeneratedAt   time.Time `json:"generated_at"`
	Records       int       `json:"records"`
	NonFatal      int       `json:"non_fatal"`
	Fatal         int       `json:"fatal"`
	Invalid       int       `json:"invalid"`
	Skipped       int       `json:"skipped"`
	Backfilled    int       `json:"backfilled"`
	OutsideWindow int       `json:"outside_window"`
	DistinctWords int       `json:"distinct_words"`
	WordsPlaced   int       `json:"words_placed"`

	Artifacts []domain.Artifact `json:"-"`
	// Locations lists where each artifact was stored, by artifact name.
	Locations map[string][]string `json:"locations"`
}

// Artifact returns the named artifact from the report.
func (r *Report) Artifact(name string) (domain.Artifact, bool) {
	for _, a := range r.Artifacts {
		if a.Name == name {
			return a, true
		}
	}
	return domain.Artifact{}, false
}

// Pipeline runs the report stages once, in order.
type Pipeline struct {
	opts    Options
	deps    Deps
	logger  *slog.Logger
	metrics *observability.Metrics
	last    atomic.Pointer[Report]
}

// New creates a Pipeline with the given stages and observability.
func New(opts Options, deps Deps, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		opts:    opts,
		deps:    deps,
		logger:  logger,
		metrics: metrics,
	}
}

// CheckReadiness returns nil once a run has completed successfully.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.last.Load() == nil {
		return errors.New("report has not been generated yet")
	}
	return nil
}

// LastReport returns the report of the last successful run, or nil.
func (p *Pipeline) LastReport() *Report {
	return p.last.Load()
}

// Artifact looks up an artifact of the last successful run.
func (p *Pipeline) Artifact(name string) (domain.Artifact, bool) {
	r := p.last.Load()
	if r == nil {
		return domain.Artifact{}, false
	}
	return r.Artifact(name)
}

// Run executes every stage exactly once. The first failing stage aborts the
// run; later stages do not execute.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	p.logger.Info("report run started", "input", p.opts.InputPath)

	report, err := p.run(ctx)
	if err != nil {
		p.metrics.RunSuccess.Set(0)
		return nil, err
	}

	p.metrics.RunSuccess.Set(1)
	p.metrics.LastRunTime.Set(float64(report.GeneratedAt.Unix()))
	p.last.Store(report)
	p.logger.Info("report run complete",
		"duration", time.Since(start),
		"records", report.Records,
		"fatal", report.Fatal,
		"non_fatal", report.NonFatal,
		"invalid", report.Invalid,
		"artifacts", len(report.Artifacts),
	)
	return report, nil
}

func (p *Pipeline) run(ctx context.Context) (*Report, error) {
	report := &Report{
		GeneratedAt: domain.Now(),
		Locations:   make(map[string][]string),
	}

	var (
		table     *domain.Table
		geo       *domain.GeoTable
		partition domain.Partition
		freqs     []domain.WordFrequency
	)

	if err := p.stage(ctx, "load", func() error {
		var err error
		table, err = p.loadTable()
		return err
	}); err != nil {
		return nil, err
	}
	report.Records = table.Len()
	p.metrics.RecordsLoaded.Add(float64(table.Len()))

	if err := p.stage(ctx, "geocode", func() error {
		var err error
		geo, err = p.geocode(ctx, table)
		return err
	}); err != nil {
		return nil, err
	}
	report.Skipped = geo.Skipped
	report.Backfilled = geo.Backfilled

	if err := p.stage(ctx, "classify", func() error {
		partition = p.classify(geo)
		return nil
	}); err != nil {
		return nil, err
	}
	report.NonFatal = len(partition.NonFatal)
	report.Fatal = len(partition.Fatal)
	report.Invalid = len(partition.Invalid)

	if err := p.stage(ctx, "render_map", func() error {
		a, stats, err := p.renderMap(partition)
		if err != nil {
			return err
		}
		report.OutsideWindow = stats.OutsideWindow
		report.Artifacts = append(report.Artifacts, a)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := p.stage(ctx, "word_frequencies", func() error {
		var err error
		freqs, err = wordFrequencies(table, p.opts.WordColumn, p.opts.JoinPhrases)
		return err
	}); err != nil {
		return nil, err
	}
	report.DistinctWords = len(freqs)

	if err := p.stage(ctx, "render_wordcloud", func() error {
		a, placed, err := p.renderWordCloud(freqs)
		if err != nil {
			return err
		}
		report.WordsPlaced = placed
		report.Artifacts = append(report.Artifacts, a)
		return nil
	}); err != nil {
		return nil, err
	}

	if p.deps.HTML != nil {
		if err := p.stage(ctx, "render_html", func() error {
			a, err := p.renderHTML(partition, freqs)
			if err != nil {
				return err
			}
			report.Artifacts = append(report.Artifacts, a)
			return nil
		}); err != nil {
			return nil, err
		}
	}

	if err := p.stage(ctx, "persist", func() error {
		return p.persist(ctx, report)
	}); err != nil {
		return nil, err
	}

	if p.deps.Publisher != nil {
		if err := p.stage(ctx, "publish", func() error {
			return p.publish(ctx, partition, report.GeneratedAt)
		}); err != nil {
			return nil, err
		}
	}

	return report, nil
}

// stage times fn into the stage histogram. A cancelled context stops the run
// between stages.
func (p *Pipeline) stage(ctx context.Context, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	p.metrics.StageDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	if err != nil {
		p.logger.Error("stage failed", "stage", name, "error", err)
		return err
	}
	p.logger.Debug("stage complete", "stage", name, "duration", elapsed)
	return nil
}
