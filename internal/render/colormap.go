package render

import (
	"image/color"
	"math"
)

// Colormap maps a value in [0, 1] to a color.
type Colormap func(t float64) color.RGBA

type anchor struct {
	x, y float64
}

// Segment data of the "bone" colormap, a gray scale with a blue tint.
var (
	boneRed   = []anchor{{0, 0}, {0.746032, 0.652778}, {1, 1}}
	boneGreen = []anchor{{0, 0}, {0.365079, 0.319444}, {0.746032, 0.777778}, {1, 1}}
	boneBlue  = []anchor{{0, 0}, {0.365079, 0.444444}, {1, 1}}
)

// Bone is the gray-blue colormap used for word cloud text.
func Bone(t float64) color.RGBA {
	t = math.Max(0, math.Min(1, t))
	return color.RGBA{
		R: channel(boneRed, t),
		G: channel(boneGreen, t),
		B: channel(boneBlue, t),
		A: 0xff,
	}
}

func channel(segments []anchor, t float64) uint8 {
	for i := 1; i < len(segments); i++ {
		lo, hi := segments[i-1], segments[i]
		if t <= hi.x {
			f := (t - lo.x) / (hi.x - lo.x)
			return uint8(math.Round((lo.y + f*(hi.y-lo.y)) * 255))
		}
	}
	return uint8(math.Round(segments[len(segments)-1].y * 255))
}
