//go:build !opencv
// +build !opencv

package edge

import (
	"fmt"
	"image"

	"github.com/pion/edgeoverlay/pkg/frame"
	"github.com/pion/edgeoverlay/pkg/io/video"
)

const backendName = "go"

func validateBackend(Params) error {
	return nil
}

var nv21Decoder, _ = frame.NewDecoder(frame.FormatNV21)

func (p *Processor) process(raw *frame.Raw, rotation int) (*image.RGBA, error) {
	var s scratch
	defer s.release()

	w, h := raw.Width, raw.Height
	packed, err := frame.PackNV21(s.acquire(raw.PackedSize()), raw)
	if err != nil {
		return nil, err
	}

	img, release, err := nv21Decoder.Decode(packed, w, h)
	if err != nil {
		return nil, err
	}
	defer release()

	yuv, ok := img.(*image.YCbCr)
	if !ok {
		return nil, fmt.Errorf("unexpected NV21 decoder output %T", img)
	}

	rgb := frame.NewRGB24(image.Rect(0, 0, w, h), s.acquire(3*w*h))
	video.YCbCrToRGB24(rgb, yuv, p.params.ColorRange)

	rotated, err := Rotate(rgb, rotation)
	if err != nil {
		return nil, err
	}

	blurred := gaussianBlur(rotated, p.params.BlurKernel, p.params.Sigma)

	b := blurred.Bounds()
	edges := cannyEdges(blurred, p.params.LowThreshold, p.params.HighThreshold, s.acquire(b.Dx()*b.Dy()))
	return widen(edges), nil
}
