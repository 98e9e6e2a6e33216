package render

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/couchcryptid/pipeline-incident-report/internal/domain"
)

const pointsPerInch = 72.0

// Default subplot box as fractions of the figure (left, right, bottom, top).
const (
	subplotLeft   = 0.125
	subplotRight  = 0.9
	subplotBottom = 0.11
	subplotTop    = 0.88
)

// Figure is the size of a rendered raster.
type Figure struct {
	WidthIn  float64
	HeightIn float64
	DPI      float64
}

// Pixels returns the raster dimensions.
func (f Figure) Pixels() (int, int) {
	return int(math.Round(f.WidthIn * f.DPI)), int(math.Round(f.HeightIn * f.DPI))
}

// px converts typographic points to pixels at the figure's DPI.
func (f Figure) px(points float64) float64 {
	return points * f.DPI / pointsPerInch
}

type rect struct {
	X, Y, W, H float64
}

// projection maps lon/lat onto the pixel box of the axes. The box keeps an
// aspect of 1/cos(center latitude) and is centered inside the subplot area.
type projection struct {
	window Window
	box    rect
}

func newProjection(fig Figure, window Window) projection {
	w, h := fig.Pixels()
	W, H := float64(w), float64(h)
	axes := rect{
		X: subplotLeft * W,
		Y: (1 - subplotTop) * H,
		W: (subplotRight - subplotLeft) * W,
		H: (subplotTop - subplotBottom) * H,
	}

	aspect := 1 / math.Cos(radians(window.CenterLat()))
	dataW := window.MaxLon - window.MinLon
	dataH := (window.MaxLat - window.MinLat) * aspect
	scale := math.Min(axes.W/dataW, axes.H/dataH)

	boxW, boxH := dataW*scale, dataH*scale
	return projection{
		window: window,
		box: rect{
			X: axes.X + (axes.W-boxW)/2,
			Y: axes.Y + (axes.H-boxH)/2,
			W: boxW,
			H: boxH,
		},
	}
}

func (p projection) project(pt domain.Point) (float64, float64) {
	x := p.box.X + (pt.Lon-p.window.MinLon)/(p.window.MaxLon-p.window.MinLon)*p.box.W
	y := p.box.Y + (p.window.MaxLat-pt.Lat)/(p.window.MaxLat-p.window.MinLat)*p.box.H
	return x, y
}

// namedColors covers the color names accepted in configuration.
var namedColors = map[string]string{
	"black": "#000000",
	"white": "#ffffff",
	"red":   "#ff0000",
	"blue":  "#0000ff",
	"k":     "#000000",
}

// ParseColor accepts "#rrggbb", "#rgb", or one of a few color names.
func ParseColor(s string) (color.RGBA, error) {
	hex := strings.ToLower(strings.TrimSpace(s))
	if named, ok := namedColors[hex]; ok {
		hex = named
	}
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// rgba splits a color into the 0–1 float components gg expects.
func rgba(c color.RGBA) (float64, float64, float64) {
	return float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255
}
