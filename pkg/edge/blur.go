package edge

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/convolution"
	"golang.org/x/image/draw"
)

// gaussianSigma derives the standard deviation from the kernel size when
// none is given, using the same rule as OpenCV's getGaussianKernel.
func gaussianSigma(size int) float64 {
	return 0.3*(float64(size-1)*0.5-1) + 0.8
}

// gaussianKernel returns a normalized 1-d horizontal Gaussian kernel.
func gaussianKernel(size int, sigma float64) convolution.Matrix {
	if sigma <= 0 {
		sigma = gaussianSigma(size)
	}

	k := convolution.NewKernel(size, 1)
	radius := size / 2
	for i := 0; i < size; i++ {
		x := float64(i - radius)
		k.Matrix[i] = math.Exp(-x * x / (2 * sigma * sigma))
	}
	return k.Normalized()
}

// reflect101 maps p onto [0, n) by mirroring around the first and last
// index without repeating them, like OpenCV's BORDER_REFLECT_101.
func reflect101(p, n int) int {
	if n == 1 {
		return 0
	}
	for p < 0 || p >= n {
		if p < 0 {
			p = -p
		} else {
			p = 2*(n-1) - p
		}
	}
	return p
}

// padReflect101 copies img into a new image grown by r pixels on each side,
// filling the border as gfedcb|abcdefgh|gfedcba.
func padReflect101(img image.Image, r int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	src := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(src, src.Bounds(), img, b.Min, draw.Src)

	dst := image.NewRGBA(image.Rect(0, 0, w+2*r, h+2*r))
	for y := 0; y < h+2*r; y++ {
		srow := src.Pix[reflect101(y-r, h)*src.Stride:]
		drow := dst.Pix[y*dst.Stride:]
		for x := 0; x < w+2*r; x++ {
			sx := 4 * reflect101(x-r, w)
			copy(drow[4*x:4*x+4], srow[sx:sx+4])
		}
	}
	return dst
}

// gaussianBlur smooths img with a size x size Gaussian kernel as two
// separable passes. Pixels outside of img mirror the inside the way OpenCV's
// default border does, so bild never gets to extend the edges itself.
func gaussianBlur(img image.Image, size int, sigma float64) *image.RGBA {
	k := gaussianKernel(size, sigma)
	opts := convolution.Options{Bias: 0, Wrap: false, KeepAlpha: true}

	r := size / 2
	padded := padReflect101(img, r)
	horizontal := convolution.Convolve(padded, k, &opts)
	blurred := convolution.Convolve(horizontal, k.Transposed(), &opts)

	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), blurred, image.Pt(r, r), draw.Src)
	return dst
}
