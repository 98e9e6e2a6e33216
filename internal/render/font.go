package render

import (
	"fmt"
	"math"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	fontsOnce   sync.Once
	boldFont    *truetype.Font
	regularFont *truetype.Font
	fontsErr    error
)

func loadFonts() error {
	fontsOnce.Do(func() {
		boldFont, fontsErr = truetype.Parse(gobold.TTF)
		if fontsErr != nil {
			fontsErr = fmt.Errorf("parse bold font: %w", fontsErr)
			return
		}
		regularFont, fontsErr = truetype.Parse(goregular.TTF)
		if fontsErr != nil {
			fontsErr = fmt.Errorf("parse regular font: %w", fontsErr)
		}
	})
	return fontsErr
}

// faceCache hands out faces of one font by size. Sizes are rounded to a
// quarter pixel so the cache stays small during font shrinking.
type faceCache struct {
	font  *truetype.Font
	dpi   float64
	faces map[float64]font.Face
}

func newFaceCache(f *truetype.Font, dpi float64) *faceCache {
	return &faceCache{font: f, dpi: dpi, faces: make(map[float64]font.Face)}
}

func (c *faceCache) face(size float64) font.Face {
	size = math.Round(size*4) / 4
	if f, ok := c.faces[size]; ok {
		return f
	}
	f := truetype.NewFace(c.font, &truetype.Options{
		Size:    size,
		DPI:     c.dpi,
		Hinting: font.HintingNone,
	})
	c.faces[size] = f
	return f
}
