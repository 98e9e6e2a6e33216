// Package echarts renders the interactive HTML companion to the raster report.
package echarts

import (
	"fmt"
	"io"

	"github.com/couchcryptid/pipeline-incident-report/internal/domain"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// Options controls the HTML report.
type Options struct {
	Title         string
	GeoMap        string
	NonFatalLabel string
	FatalLabel    string
	NonFatalColor string
	FatalColor    string
	MaxWords      int
}

// DefaultOptions mirrors the raster map's labels and colors.
func DefaultOptions() Options {
	return Options{
		Title:         "Pipeline Incidents (2010-2024)",
		GeoMap:        "world",
		NonFatalLabel: "Non-Fatality",
		FatalLabel:    "Fatality",
		NonFatalColor: "blue",
		FatalColor:    "red",
		MaxWords:      200,
	}
}

func boolPtr(b bool) *bool { return &b }

// RenderReport writes a page with a geo scatter of both incident layers and a
// word cloud of freqs.
func RenderReport(w io.Writer, p domain.Partition, freqs []domain.WordFrequency, o Options) error {
	page := components.NewPage()
	page.AddCharts(
		incidentGeo(p, o),
		wordCloud(freqs, o),
	)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}
	return nil
}

func incidentGeo(p domain.Partition, o Options) *charts.Geo {
	geo := charts.NewGeo()
	geo.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: o.Title,
			Width:     "100%",
			Height:    "700px",
		}),
		charts.WithTitleOpts(opts.Title{Title: o.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: boolPtr(true)}),
		charts.WithLegendOpts(opts.Legend{Show: boolPtr(true)}),
		charts.WithGeoComponentOpts(opts.GeoComponent{Map: o.GeoMap}),
	)

	geo.AddSeries(o.NonFatalLabel, types.ChartScatter, geoData(p.NonFatal),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: o.NonFatalColor}))
	geo.AddSeries(o.FatalLabel, types.ChartScatter, geoData(p.Fatal),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: o.FatalColor}))
	return geo
}

// geoData encodes each incident as [lon, lat, severity].
func geoData(incidents []domain.Incident) []opts.GeoData {
	data := make([]opts.GeoData, 0, len(incidents))
	for _, inc := range incidents {
		data = append(data, opts.GeoData{
			Name:  fmt.Sprintf("line %d", inc.Line),
			Value: []float64{inc.Point.Lon, inc.Point.Lat, inc.Severity},
		})
	}
	return data
}

func wordCloud(freqs []domain.WordFrequency, o Options) *charts.WordCloud {
	if o.MaxWords > 0 && len(freqs) > o.MaxWords {
		freqs = freqs[:o.MaxWords]
	}
	data := make([]opts.WordCloudData, 0, len(freqs))
	for _, f := range freqs {
		data = append(data, opts.WordCloudData{Name: f.Word, Value: f.Count})
	}

	wc := charts.NewWordCloud()
	wc.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  "100%",
			Height: "600px",
		}),
		charts.WithTitleOpts(opts.Title{Title: "Incidents by Word"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: boolPtr(true)}),
	)
	wc.AddSeries("words", data,
		charts.WithWorldCloudChartOpts(opts.WordCloudChart{
			SizeRange: []float32{12, 80},
			Shape:     "circle",
		}))
	return wc
}

// Renderer binds Options to RenderReport for use as a pipeline stage.
type Renderer struct {
	Options Options
}

// NewRenderer creates a Renderer with the given options.
func NewRenderer(o Options) *Renderer {
	return &Renderer{Options: o}
}

func (r *Renderer) RenderReport(w io.Writer, p domain.Partition, freqs []domain.WordFrequency) error {
	return RenderReport(w, p, freqs, r.Options)
}
