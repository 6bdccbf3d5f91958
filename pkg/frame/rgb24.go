package frame

import (
	"image"
	"image/color"
)

// RGB24 is an in-memory image with 3 bytes per pixel in R, G, B order and no
// alpha channel. It is the layout vision libraries produce from YUV frames.
type RGB24 struct {
	// Pix holds the image's pixels, in R, G, B order. The pixel at
	// (x, y) starts at Pix[(y-Rect.Min.Y)*Stride + (x-Rect.Min.X)*3].
	Pix    []uint8
	Stride int
	Rect   image.Rectangle
}

// NewRGB24 returns a new RGB24 image with the given bounds. When buf is large
// enough it backs the image, otherwise a new buffer is allocated.
func NewRGB24(r image.Rectangle, buf []uint8) *RGB24 {
	size := 3 * r.Dx() * r.Dy()
	if cap(buf) < size {
		buf = make([]uint8, size)
	}
	return &RGB24{
		Pix:    buf[:size],
		Stride: 3 * r.Dx(),
		Rect:   r,
	}
}

func (p *RGB24) ColorModel() color.Model {
	return color.RGBAModel
}

func (p *RGB24) Bounds() image.Rectangle {
	return p.Rect
}

func (p *RGB24) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*3
}

func (p *RGB24) At(x, y int) color.Color {
	return p.RGBAAt(x, y)
}

func (p *RGB24) RGBAAt(x, y int) color.RGBA {
	if !(image.Point{x, y}.In(p.Rect)) {
		return color.RGBA{}
	}
	i := p.PixOffset(x, y)
	s := p.Pix[i : i+3 : i+3] // Small capacity improves performance, see https://golang.org/issue/27857
	return color.RGBA{s[0], s[1], s[2], 0xff}
}

func (p *RGB24) SetRGB(x, y int, r, g, b uint8) {
	if !(image.Point{x, y}.In(p.Rect)) {
		return
	}
	i := p.PixOffset(x, y)
	s := p.Pix[i : i+3 : i+3]
	s[0], s[1], s[2] = r, g, b
}
