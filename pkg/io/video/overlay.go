package video

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// DefaultOverlayOpacity is the opacity the edge overlay is drawn with on top
// of the live preview, leaving the preview visible underneath.
const DefaultOverlayOpacity = 0.7

// Overlay draws overlay on top of a copy of preview with the given opacity in
// [0, 1]. The overlay is stretched to the preview's size when they differ.
// preview and overlay are left untouched.
func Overlay(preview, overlay image.Image, opacity float64) *image.RGBA {
	bounds := preview.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), preview, bounds.Min, draw.Src)

	if opacity <= 0 {
		return dst
	}
	if opacity > 1 {
		opacity = 1
	}

	src := overlay
	if overlay.Bounds().Size() != bounds.Size() {
		scaled := image.NewRGBA(dst.Bounds())
		draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), overlay, overlay.Bounds(), draw.Src, nil)
		src = scaled
	}

	mask := image.NewUniform(color.Alpha{A: uint8(opacity*0xFF + 0.5)})
	draw.DrawMask(dst, dst.Bounds(), src, src.Bounds().Min, mask, image.Point{}, draw.Over)
	return dst
}
