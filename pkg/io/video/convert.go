package video

import (
	"fmt"
	"image"
	"image/color"

	"github.com/pion/edgeoverlay/pkg/frame"
)

// ColorRange selects how YCbCr samples map onto RGB.
type ColorRange int

const (
	// VideoRange is BT.601 with luma in [16, 235], the range camera pipelines
	// deliver and vision libraries assume when converting NV21 to RGB.
	VideoRange ColorRange = iota
	// FullRange is the JFIF convention implemented by image/color.
	FullRange
)

func (r ColorRange) String() string {
	switch r {
	case VideoRange:
		return "video"
	case FullRange:
		return "full"
	}
	return fmt.Sprintf("ColorRange(%d)", int(r))
}

// BT.601 video range coefficients in 20 bit fixed point
const (
	bt601Shift = 20
	bt601Round = 1 << (bt601Shift - 1)
	bt601CY    = 1220542 // 255/219
	bt601CUB   = 2116026
	bt601CUG   = -409993
	bt601CVG   = -852492
	bt601CVR   = 1673527
)

func clampUint8(v int32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 0xFF {
		return 0xFF
	}
	return uint8(v)
}

// yCbCrToRGBVideo matches the integer arithmetic of OpenCV's YUV420sp to RGB
// conversion bit for bit.
func yCbCrToRGBVideo(y, cb, cr uint8) (uint8, uint8, uint8) {
	u := int32(cb) - 128
	v := int32(cr) - 128
	yy := int32(y) - 16
	if yy < 0 {
		yy = 0
	}
	yy *= bt601CY

	r := (yy + bt601Round + bt601CVR*v) >> bt601Shift
	g := (yy + bt601Round + bt601CVG*v + bt601CUG*u) >> bt601Shift
	b := (yy + bt601Round + bt601CUB*u) >> bt601Shift
	return clampUint8(r), clampUint8(g), clampUint8(b)
}

// YCbCrToRGB24 converts src into dst. dst.Pix is reallocated when it is too
// small to hold src.
func YCbCrToRGB24(dst *frame.RGB24, src *image.YCbCr, rng ColorRange) {
	if dst == nil {
		panic("dst can't be nil")
	}

	bounds := src.Rect
	dx, dy := bounds.Dx(), bounds.Dy()
	if len(dst.Pix) < 3*dx*dy {
		dst.Pix = make([]uint8, 3*dx*dy)
	}
	dst.Stride = 3 * dx
	dst.Rect = image.Rect(0, 0, dx, dy)

	convert := yCbCrToRGBVideo
	if rng == FullRange {
		convert = color.YCbCrToRGB
	}

	for yi := 0; yi < dy; yi++ {
		row := dst.Pix[yi*dst.Stride : (yi+1)*dst.Stride]
		y := bounds.Min.Y + yi
		for xi := 0; xi < dx; xi++ {
			x := bounds.Min.X + xi
			i := src.YOffset(x, y)
			c := src.COffset(x, y)
			r, g, b := convert(src.Y[i], src.Cb[c], src.Cr[c])
			row[3*xi+0] = r
			row[3*xi+1] = g
			row[3*xi+2] = b
		}
	}
}

// imageToI420 converts src to a 4:2:0 *image.YCbCr and stores it to dst,
// reusing dst's memory when possible.
// Note: conversion can be lossy
func imageToI420(dst *image.YCbCr, src image.Image) {
	if dst == nil {
		panic("dst can't be nil")
	}

	if yuvImg, ok := src.(*image.YCbCr); ok && yuvImg.SubsampleRatio == image.YCbCrSubsampleRatio420 {
		*dst = *yuvImg
		return
	}

	bounds := src.Bounds()
	dx, dy := bounds.Dx(), bounds.Dy()
	cw, ch := (dx+1)/2, (dy+1)/2
	ySize, cSize := dx*dy, cw*ch

	if cap(dst.Y) < ySize+2*cSize {
		dst.Y = make([]uint8, ySize+2*cSize)
	}
	buf := dst.Y[:ySize+2*cSize]
	dst.Y = buf[:ySize]
	dst.Cb = buf[ySize : ySize+cSize : ySize+cSize]
	dst.Cr = buf[ySize+cSize : ySize+2*cSize : ySize+2*cSize]
	dst.SubsampleRatio = image.YCbCrSubsampleRatio420
	dst.YStride = dx
	dst.CStride = cw
	dst.Rect = image.Rect(0, 0, dx, dy)

	sample := func(x, y int) (uint8, uint8, uint8) {
		r, g, b, _ := src.At(x, y).RGBA()
		return color.RGBToYCbCr(uint8(r>>8), uint8(g>>8), uint8(b>>8))
	}
	if yuvImg, ok := src.(*image.YCbCr); ok {
		sample = func(x, y int) (uint8, uint8, uint8) {
			c := yuvImg.YCbCrAt(x, y)
			return c.Y, c.Cb, c.Cr
		}
	}

	for cy := 0; cy < ch; cy++ {
		for cx := 0; cx < cw; cx++ {
			var cbSum, crSum, n int
			for yi := 2 * cy; yi < 2*cy+2 && yi < dy; yi++ {
				for xi := 2 * cx; xi < 2*cx+2 && xi < dx; xi++ {
					yy, cb, cr := sample(bounds.Min.X+xi, bounds.Min.Y+yi)
					dst.Y[yi*dx+xi] = yy
					cbSum += int(cb)
					crSum += int(cr)
					n++
				}
			}
			dst.Cb[cy*cw+cx] = uint8((cbSum + n/2) / n)
			dst.Cr[cy*cw+cx] = uint8((crSum + n/2) / n)
		}
	}
}

// ToI420 converts r to a new reader that will output images in I420 format
func ToI420(r Reader) Reader {
	var yuvImg image.YCbCr
	return ReaderFunc(func() (image.Image, func(), error) {
		img, release, err := r.Read()
		if err != nil {
			return nil, func() {}, err
		}

		imageToI420(&yuvImg, img)
		return &yuvImg, release, nil
	})
}
