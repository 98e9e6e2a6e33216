package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/couchcryptid/pipeline-incident-report/internal/domain"
	"github.com/fogleman/gg"
)

// ErrNoWords is returned when there is nothing to lay out.
var ErrNoWords = errors.New("no words to draw")

// WordCloudOptions controls word cloud layout and styling.
type WordCloudOptions struct {
	Background   string
	ContourWidth int
	ContourColor string

	MaxWords int
	// MaxFontSize in pixels. Zero derives it from the canvas height.
	MaxFontSize     float64
	MinFontSize     float64
	RelativeScaling float64
	// PreferHorizontal is the share of words tried horizontally first.
	PreferHorizontal float64
	Margin           int
	// Step is the scan stride used when looking for free positions.
	Step int
	Seed uint64

	Colormap Colormap
}

// DefaultWordCloudOptions returns a white cloud with a black contour in the
// bone colormap.
func DefaultWordCloudOptions() WordCloudOptions {
	return WordCloudOptions{
		Background:       "white",
		ContourWidth:     1,
		ContourColor:     "black",
		MaxWords:         200,
		MinFontSize:      4,
		RelativeScaling:  0.5,
		PreferHorizontal: 0.9,
		Margin:           2,
		Step:             2,
		Seed:             1,
		Colormap:         Bone,
	}
}

// WordPlacement is one word drawn on the cloud. X and Y locate the top-left
// corner of its bounding box.
type WordPlacement struct {
	Word     string
	Count    int
	FontSize float64
	X, Y     int
	W, H     int
	Vertical bool
	Color    color.RGBA
}

// WordCloud is a rendered cloud and the layout that produced it.
type WordCloud struct {
	Image      image.Image
	Placements []WordPlacement
}

// RenderWordCloud lays out freqs (highest count first) inside the mask. Words
// that cannot fit even at MinFontSize end the layout.
func RenderWordCloud(freqs []domain.WordFrequency, mask *Mask, opts WordCloudOptions) (*WordCloud, error) {
	if len(freqs) == 0 {
		return nil, ErrNoWords
	}
	if mask == nil || mask.Width == 0 || mask.Height == 0 {
		return nil, errors.New("word cloud mask is empty")
	}
	if err := loadFonts(); err != nil {
		return nil, err
	}
	bg, err := ParseColor(opts.Background)
	if err != nil {
		return nil, fmt.Errorf("background: %w", err)
	}
	contour, err := ParseColor(opts.ContourColor)
	if err != nil {
		return nil, fmt.Errorf("contour: %w", err)
	}
	if opts.Colormap == nil {
		opts.Colormap = Bone
	}
	if opts.Step < 1 {
		opts.Step = 1
	}
	if opts.MaxWords > 0 && len(freqs) > opts.MaxWords {
		freqs = freqs[:opts.MaxWords]
	}

	dc := gg.NewContext(mask.Width, mask.Height)
	r, g, b := rgba(bg)
	dc.SetRGB(r, g, b)
	dc.Clear()

	l := newLayout(mask, opts)
	placements := l.place(dc, freqs)

	drawContour(dc, mask, contour, opts.ContourWidth)

	return &WordCloud{Image: dc.Image(), Placements: placements}, nil
}

type layout struct {
	mask  *Mask
	opts  WordCloudOptions
	rng   *rand.Rand
	faces *faceCache
	// occupied is a summed-area table of blocked pixels, (W+1)×(H+1).
	occupied []int32
	blocked  []bool
}

func newLayout(mask *Mask, opts WordCloudOptions) *layout {
	l := &layout{
		mask:     mask,
		opts:     opts,
		rng:      rand.New(rand.NewPCG(opts.Seed, opts.Seed)),
		faces:    newFaceCache(boldFont, pointsPerInch),
		occupied: make([]int32, (mask.Width+1)*(mask.Height+1)),
		blocked:  make([]bool, mask.Width*mask.Height),
	}
	for i, ok := range mask.allowed {
		l.blocked[i] = !ok
	}
	l.integrate()
	return l
}

func (l *layout) place(dc *gg.Context, freqs []domain.WordFrequency) []WordPlacement {
	maxCount := float64(freqs[0].Count)
	fontSize := l.opts.MaxFontSize
	if fontSize <= 0 {
		fontSize = float64(l.mask.Height) / 2
	}
	first := l.opts.MaxFontSize <= 0
	lastFreq := 1.0

	var placements []WordPlacement
	for i, f := range freqs {
		rel := float64(f.Count) / maxCount
		if i > 0 && l.opts.RelativeScaling != 0 {
			rs := l.opts.RelativeScaling
			fontSize = math.Round((rs*(rel/lastFreq) + (1 - rs)) * fontSize)
		}
		vertical := l.rng.Float64() > l.opts.PreferHorizontal

		var (
			x, y, w, h int
			found      bool
			rotated    bool
		)
		for fontSize >= l.opts.MinFontSize {
			dc.SetFontFace(l.faces.face(fontSize))
			tw, th := dc.MeasureString(f.Word)
			w = int(math.Ceil(tw)) + l.opts.Margin
			h = int(math.Ceil(th)) + l.opts.Margin
			if vertical {
				w, h = h, w
			}
			if x, y, found = l.findPosition(w, h); found {
				break
			}
			// Try the other orientation once before shrinking.
			if !rotated {
				rotated = true
				vertical = !vertical
				continue
			}
			fontSize -= l.shrinkStep(fontSize, first)
		}
		if !found {
			break
		}
		first = false

		c := l.opts.Colormap(l.rng.Float64())
		l.draw(dc, f.Word, fontSize, x, y, w, h, vertical, c)
		l.occupy(x, y, w, h)

		placements = append(placements, WordPlacement{
			Word:     f.Word,
			Count:    f.Count,
			FontSize: fontSize,
			X:        x,
			Y:        y,
			W:        w,
			H:        h,
			Vertical: vertical,
			Color:    c,
		})
		lastFreq = rel
	}
	return placements
}

// shrinkStep shrinks the largest word in bigger steps since its starting size
// is only a guess.
func (l *layout) shrinkStep(size float64, first bool) float64 {
	if first {
		return math.Max(1, math.Floor(size*0.1))
	}
	return 1
}

func (l *layout) draw(dc *gg.Context, word string, size float64, x, y, w, h int, vertical bool, c color.RGBA) {
	cx := float64(x) + float64(w)/2
	cy := float64(y) + float64(h)/2
	dc.SetFontFace(l.faces.face(size))
	r, g, b := rgba(c)
	dc.SetRGB(r, g, b)
	if vertical {
		dc.Push()
		dc.RotateAbout(gg.Radians(-90), cx, cy)
		dc.DrawStringAnchored(word, cx, cy, 0.5, 0.35)
		dc.Pop()
		return
	}
	dc.DrawStringAnchored(word, cx, cy, 0.5, 0.35)
}

// findPosition picks uniformly among all free w×h boxes on the scan grid.
func (l *layout) findPosition(w, h int) (int, int, bool) {
	W, H := l.mask.Width, l.mask.Height
	if w > W || h > H {
		return 0, 0, false
	}
	step := l.opts.Step
	free := 0
	for y := 0; y+h <= H; y += step {
		for x := 0; x+w <= W; x += step {
			if l.sum(x, y, w, h) == 0 {
				free++
			}
		}
	}
	if free == 0 {
		return 0, 0, false
	}
	pick := l.rng.IntN(free)
	for y := 0; y+h <= H; y += step {
		for x := 0; x+w <= W; x += step {
			if l.sum(x, y, w, h) != 0 {
				continue
			}
			if pick == 0 {
				return x, y, true
			}
			pick--
		}
	}
	return 0, 0, false
}

func (l *layout) sum(x, y, w, h int) int32 {
	stride := l.mask.Width + 1
	return l.occupied[(y+h)*stride+x+w] - l.occupied[y*stride+x+w] -
		l.occupied[(y+h)*stride+x] + l.occupied[y*stride+x]
}

func (l *layout) occupy(x, y, w, h int) {
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			l.blocked[yy*l.mask.Width+xx] = true
		}
	}
	l.integrate()
}

func (l *layout) integrate() {
	W, H := l.mask.Width, l.mask.Height
	stride := W + 1
	for y := 1; y <= H; y++ {
		var row int32
		for x := 1; x <= W; x++ {
			if l.blocked[(y-1)*W+x-1] {
				row++
			}
			l.occupied[y*stride+x] = l.occupied[(y-1)*stride+x] + row
		}
	}
}

func drawContour(dc *gg.Context, mask *Mask, c color.RGBA, width int) {
	if width <= 0 {
		return
	}
	r, g, b := rgba(c)
	dc.SetRGB(r, g, b)
	reach := width - 1
	for y := 0; y < mask.Height; y++ {
		for x := 0; x < mask.Width; x++ {
			if !mask.edge(x, y) {
				continue
			}
			for dy := -reach; dy <= reach; dy++ {
				for dx := -reach; dx <= reach; dx++ {
					dc.SetPixel(x+dx, y+dy)
				}
			}
		}
	}
}
