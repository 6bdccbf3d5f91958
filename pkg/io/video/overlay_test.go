package video

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(r image.Rectangle, c color.Color) *image.RGBA {
	img := image.NewRGBA(r)
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func TestOverlay(t *testing.T) {
	red := color.RGBA{0xFF, 0x00, 0x00, 0xFF}
	white := color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	preview := solid(image.Rect(0, 0, 8, 6), red)

	t.Run("SameSize", func(t *testing.T) {
		out := Overlay(preview, solid(image.Rect(0, 0, 8, 6), white), DefaultOverlayOpacity)
		require.Equal(t, image.Rect(0, 0, 8, 6), out.Bounds())

		c := out.RGBAAt(3, 3)
		assert.Equal(t, uint8(0xFF), c.R)
		assert.Equal(t, uint8(0xFF), c.A)
		// 70% white over red
		assert.InDelta(t, 0.7*0xFF, float64(c.G), 2)
		assert.InDelta(t, 0.7*0xFF, float64(c.B), 2)
	})

	t.Run("Scaled", func(t *testing.T) {
		out := Overlay(preview, solid(image.Rect(0, 0, 4, 3), white), 1)
		require.Equal(t, image.Rect(0, 0, 8, 6), out.Bounds())
		for y := 0; y < 6; y++ {
			for x := 0; x < 8; x++ {
				assert.Equal(t, white, out.RGBAAt(x, y))
			}
		}
	})

	t.Run("Transparent", func(t *testing.T) {
		out := Overlay(preview, solid(image.Rect(0, 0, 8, 6), white), 0)
		assert.Equal(t, preview.Pix, out.Pix)
	})

	t.Run("PreviewUntouched", func(t *testing.T) {
		before := append([]uint8(nil), preview.Pix...)
		Overlay(preview, solid(image.Rect(0, 0, 8, 6), white), 0.5)
		assert.Equal(t, before, preview.Pix)
	})
}
