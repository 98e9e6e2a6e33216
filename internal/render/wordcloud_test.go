package render

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/couchcryptid/pipeline-incident-report/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testMask is a 240×160 white image with a black drawable block inset by 20 px.
func testMask() *Mask {
	img := image.NewRGBA(image.Rect(0, 0, 240, 160))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(20, 20, 220, 140), image.NewUniform(color.Black), image.Point{}, draw.Src)
	return LoadMask(img)
}

var testWords = []domain.WordFrequency{
	{Word: "TX", Count: 10},
	{Word: "PA", Count: 5},
	{Word: "OK", Count: 3},
	{Word: "LA", Count: 1},
}

func TestNewMask(t *testing.T) {
	m := testMask()

	assert.Equal(t, 240, m.Width)
	assert.Equal(t, 160, m.Height)
	assert.True(t, m.Allowed(20, 20))
	assert.False(t, m.Allowed(19, 20))
	assert.False(t, m.Allowed(-1, 0))
	assert.Equal(t, 200*120, m.Area())
}

func TestNewMask_TransparentIsExcluded(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{0, 0, 0, 0})
	img.Set(1, 0, color.NRGBA{10, 10, 10, 255})

	m := LoadMask(img)
	assert.False(t, m.Allowed(0, 0))
	assert.True(t, m.Allowed(1, 0))
}

func TestRenderWordCloud(t *testing.T) {
	mask := testMask()

	cloud, err := RenderWordCloud(testWords, mask, DefaultWordCloudOptions())
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 240, 160), cloud.Image.Bounds())
	require.NotEmpty(t, cloud.Placements)
	assert.Equal(t, "TX", cloud.Placements[0].Word)

	for i, p := range cloud.Placements {
		assert.True(t, mask.Allowed(p.X, p.Y), "%s top-left inside mask", p.Word)
		assert.True(t, mask.Allowed(p.X+p.W-1, p.Y+p.H-1), "%s bottom-right inside mask", p.Word)

		box := image.Rect(p.X, p.Y, p.X+p.W, p.Y+p.H)
		for _, q := range cloud.Placements[i+1:] {
			other := image.Rect(q.X, q.Y, q.X+q.W, q.Y+q.H)
			assert.True(t, box.Intersect(other).Empty(), "%s overlaps %s", p.Word, q.Word)
		}
		if i > 0 {
			assert.LessOrEqual(t, p.FontSize, cloud.Placements[i-1].FontSize)
		}
	}

	// Background outside the mask stays white; the mask edge is outlined.
	assert.Equal(t, color.RGBA{0xff, 0xff, 0xff, 0xff}, cloud.Image.At(5, 5))
	assert.Equal(t, color.RGBA{0, 0, 0, 0xff}, cloud.Image.At(20, 20))
}

func TestRenderWordCloud_Deterministic(t *testing.T) {
	opts := DefaultWordCloudOptions()
	opts.Seed = 7

	a, err := RenderWordCloud(testWords, testMask(), opts)
	require.NoError(t, err)
	b, err := RenderWordCloud(testWords, testMask(), opts)
	require.NoError(t, err)

	assert.Equal(t, a.Placements, b.Placements)
}

func TestRenderWordCloud_MaxWords(t *testing.T) {
	opts := DefaultWordCloudOptions()
	opts.MaxWords = 2

	cloud, err := RenderWordCloud(testWords, testMask(), opts)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(cloud.Placements), 2)
}

func TestRenderWordCloud_Errors(t *testing.T) {
	_, err := RenderWordCloud(nil, testMask(), DefaultWordCloudOptions())
	require.ErrorIs(t, err, ErrNoWords)

	_, err = RenderWordCloud(testWords, nil, DefaultWordCloudOptions())
	require.Error(t, err)
}
