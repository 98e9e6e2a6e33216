package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
)

// maskThreshold is the gray level at and above which a pixel is background.
const maskThreshold = 250

// Mask marks the pixels a word cloud may draw on. Near-white and transparent
// pixels are excluded.
type Mask struct {
	Width, Height int
	allowed       []bool
}

// LoadMaskImage decodes a PNG or JPEG mask from disk.
func LoadMaskImage(path string) (image.Image, error) {
	img, err := gg.LoadImage(path)
	if err != nil {
		return nil, fmt.Errorf("load mask %s: %w", path, err)
	}
	return img, nil
}

// LoadMask derives a mask from an image. The mask has the image's size.
func LoadMask(img image.Image) *Mask {
	b := img.Bounds()
	m := &Mask{
		Width:   b.Dx(),
		Height:  b.Dy(),
		allowed: make([]bool, b.Dx()*b.Dy()),
	}
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			c := img.At(b.Min.X+x, b.Min.Y+y)
			if _, _, _, a := c.RGBA(); a < 0x8000 {
				continue
			}
			gray := color.GrayModel.Convert(c).(color.Gray)
			m.allowed[y*m.Width+x] = gray.Y < maskThreshold
		}
	}
	return m
}

// Allowed reports whether (x, y) is drawable. Out-of-range pixels are not.
func (m *Mask) Allowed(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.allowed[y*m.Width+x]
}

// Area is the number of drawable pixels.
func (m *Mask) Area() int {
	n := 0
	for _, ok := range m.allowed {
		if ok {
			n++
		}
	}
	return n
}

// edge reports whether a drawable pixel touches a non-drawable neighbour.
func (m *Mask) edge(x, y int) bool {
	if !m.Allowed(x, y) {
		return false
	}
	return !m.Allowed(x-1, y) || !m.Allowed(x+1, y) || !m.Allowed(x, y-1) || !m.Allowed(x, y+1)
}
