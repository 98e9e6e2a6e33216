package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/couchcryptid/pipeline-incident-report/internal/domain"
	"github.com/fogleman/gg"
)

// MapOptions controls the incident map raster.
type MapOptions struct {
	Figure Figure
	Window Window

	Title     string
	TitleSize float64 // points
	Legend    bool

	BaseFill  string
	BaseEdge  string
	BaseAlpha float64

	// MarkerScale multiplies severity into a marker area in points².
	MarkerScale   float64
	MarkerAlpha   float64
	NonFatalColor string
	FatalColor    string
	NonFatalLabel string
	FatalLabel    string
}

// DefaultMapOptions returns a 15×15 inch figure over the continental US.
func DefaultMapOptions() MapOptions {
	return MapOptions{
		Figure:        Figure{WidthIn: 15, HeightIn: 15, DPI: 100},
		Window:        ContinentalUS,
		Title:         "Pipeline Incidents (2010-2024)",
		TitleSize:     24,
		BaseFill:      "#1f77b4",
		BaseEdge:      "black",
		BaseAlpha:     0.2,
		MarkerScale:   100,
		MarkerAlpha:   0.6,
		NonFatalColor: "blue",
		FatalColor:    "red",
		NonFatalLabel: "Non-Fatality",
		FatalLabel:    "Fatality",
	}
}

// MapStats counts what made it onto the map.
type MapStats struct {
	Boundaries    int
	NonFatal      int
	Fatal         int
	OutsideWindow int
}

// MarkerRadius converts a severity into a marker radius in pixels. The marker
// area is severity×scale points², so the diameter is its square root.
func MarkerRadius(severity, scale, dpi float64) float64 {
	if severity <= 0 {
		return 0
	}
	diameter := math.Sqrt(severity*scale) * dpi / pointsPerInch
	return diameter / 2
}

type mapColors struct {
	fill, edge, nonFatal, fatal color.RGBA
}

func (o MapOptions) colors() (mapColors, error) {
	var c mapColors
	var err error
	for _, pair := range []struct {
		dst *color.RGBA
		src string
	}{
		{&c.fill, o.BaseFill},
		{&c.edge, o.BaseEdge},
		{&c.nonFatal, o.NonFatalColor},
		{&c.fatal, o.FatalColor},
	} {
		if *pair.dst, err = ParseColor(pair.src); err != nil {
			return c, err
		}
	}
	return c, nil
}

// RenderMap draws state boundaries with the non-fatal layer first and the
// fatal layer on top. Boundaries and points outside the window are culled.
func RenderMap(boundaries []domain.Boundary, p domain.Partition, opts MapOptions) (image.Image, MapStats, error) {
	var stats MapStats
	if err := loadFonts(); err != nil {
		return nil, stats, err
	}
	palette, err := opts.colors()
	if err != nil {
		return nil, stats, fmt.Errorf("map colors: %w", err)
	}

	w, h := opts.Figure.Pixels()
	if w <= 0 || h <= 0 {
		return nil, stats, fmt.Errorf("invalid figure size %dx%d", w, h)
	}
	proj := newProjection(opts.Figure, opts.Window)

	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	dc.DrawRectangle(proj.box.X, proj.box.Y, proj.box.W, proj.box.H)
	dc.Clip()

	for _, b := range boundaries {
		if !opts.Window.Intersects(b.BBox) {
			continue
		}
		drawBoundary(dc, proj, b)
		r, g, bl := rgba(palette.fill)
		dc.SetFillRule(gg.FillRuleEvenOdd)
		dc.SetRGBA(r, g, bl, opts.BaseAlpha)
		dc.FillPreserve()
		r, g, bl = rgba(palette.edge)
		dc.SetRGBA(r, g, bl, opts.BaseAlpha)
		dc.SetLineWidth(opts.Figure.px(1))
		dc.Stroke()
		stats.Boundaries++
	}

	stats.NonFatal, stats.OutsideWindow = drawLayer(dc, proj, p.NonFatal, palette.nonFatal, opts)
	var outside int
	stats.Fatal, outside = drawLayer(dc, proj, p.Fatal, palette.fatal, opts)
	stats.OutsideWindow += outside

	dc.ResetClip()
	drawTitle(dc, proj, opts)
	if opts.Legend {
		drawLegend(dc, proj, palette, opts)
	}

	return dc.Image(), stats, nil
}

func drawBoundary(dc *gg.Context, proj projection, b domain.Boundary) {
	for _, ring := range b.Rings {
		if len(ring) < 3 {
			continue
		}
		x, y := proj.project(ring[0])
		dc.MoveTo(x, y)
		for _, pt := range ring[1:] {
			x, y = proj.project(pt)
			dc.LineTo(x, y)
		}
		dc.ClosePath()
	}
}

func drawLayer(dc *gg.Context, proj projection, incidents []domain.Incident, c color.RGBA, opts MapOptions) (drawn, outside int) {
	r, g, b := rgba(c)
	dc.SetRGBA(r, g, b, opts.MarkerAlpha)
	for _, inc := range incidents {
		if !opts.Window.Contains(inc.Point) {
			outside++
			continue
		}
		radius := MarkerRadius(inc.Severity, opts.MarkerScale, opts.Figure.DPI)
		if radius == 0 {
			continue
		}
		x, y := proj.project(inc.Point)
		dc.DrawCircle(x, y, radius)
		dc.Fill()
		drawn++
	}
	return drawn, outside
}

func drawTitle(dc *gg.Context, proj projection, opts MapOptions) {
	if opts.Title == "" {
		return
	}
	faces := newFaceCache(boldFont, opts.Figure.DPI)
	dc.SetFontFace(faces.face(opts.TitleSize))
	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(opts.Title, proj.box.X+proj.box.W/2, proj.box.Y-opts.Figure.px(6), 0.5, 0)
}

func drawLegend(dc *gg.Context, proj projection, palette mapColors, opts MapOptions) {
	fig := opts.Figure
	faces := newFaceCache(regularFont, fig.DPI)
	dc.SetFontFace(faces.face(10))

	entries := []struct {
		label string
		c     color.RGBA
	}{
		{opts.NonFatalLabel, palette.nonFatal},
		{opts.FatalLabel, palette.fatal},
	}

	var textW float64
	for _, e := range entries {
		if w, _ := dc.MeasureString(e.label); w > textW {
			textW = w
		}
	}
	pad := fig.px(6)
	row := fig.px(16)
	marker := fig.px(4)
	boxW := pad*3 + marker*2 + textW
	boxH := pad*2 + row*float64(len(entries))
	x := proj.box.X + proj.box.W - boxW - pad
	y := proj.box.Y + pad

	dc.DrawRectangle(x, y, boxW, boxH)
	dc.SetRGBA(1, 1, 1, 0.8)
	dc.FillPreserve()
	dc.SetRGB(0.8, 0.8, 0.8)
	dc.SetLineWidth(fig.px(0.8))
	dc.Stroke()

	for i, e := range entries {
		cy := y + pad + row*float64(i) + row/2
		r, g, b := rgba(e.c)
		dc.SetRGBA(r, g, b, opts.MarkerAlpha)
		dc.DrawCircle(x+pad+marker, cy, marker)
		dc.Fill()
		dc.SetRGB(0, 0, 0)
		dc.DrawStringAnchored(e.label, x+pad*2+marker*2, cy, 0, 0.35)
	}
}
