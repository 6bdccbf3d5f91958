//go:build opencv
// +build opencv

package edge

import (
	"errors"
	"fmt"
	"image"

	"github.com/pion/edgeoverlay/pkg/frame"
	"github.com/pion/edgeoverlay/pkg/io/video"
	"gocv.io/x/gocv"
)

const backendName = "opencv"

func validateBackend(params Params) error {
	if params.ColorRange != video.VideoRange {
		return fmt.Errorf("%w: the opencv backend only converts video range NV21", ErrInvalidColorRange)
	}
	return nil
}

func rotateFlag(degrees int) gocv.RotateFlag {
	switch degrees {
	case 180:
		return gocv.Rotate180Clockwise
	case 270:
		return gocv.Rotate90CounterClockwise
	}
	return gocv.Rotate90Clockwise
}

// process runs the pipeline on OpenCV Mats. Every Mat is closed on return,
// whichever step fails.
func (p *Processor) process(raw *frame.Raw, rotation int) (*image.RGBA, error) {
	var s scratch
	defer s.release()

	w, h := raw.Width, raw.Height
	packed, err := frame.PackNV21(s.acquire(raw.PackedSize()), raw)
	if err != nil {
		return nil, err
	}

	yuv, err := gocv.NewMatFromBytes(h+h/2, w, gocv.MatTypeCV8UC1, packed)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap NV21 frame: %w", err)
	}
	defer yuv.Close()

	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(yuv, &rgb, gocv.ColorYUVToRGBNV21)

	src := rgb
	if rotation != 0 {
		rotated := gocv.NewMat()
		defer rotated.Close()
		gocv.Rotate(rgb, &rotated, rotateFlag(rotation))
		src = rotated
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	k := p.params.BlurKernel
	gocv.GaussianBlur(src, &blurred, image.Pt(k, k), p.params.Sigma, p.params.Sigma, gocv.BorderDefault)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blurred, &edges, float32(p.params.LowThreshold), float32(p.params.HighThreshold))

	if edges.Empty() {
		return nil, errors.New("edge detection produced no output")
	}

	// ToBytes copies out of the Mat, so the gray image survives Close
	cols, rows := edges.Cols(), edges.Rows()
	gray := &image.Gray{Pix: edges.ToBytes(), Stride: cols, Rect: image.Rect(0, 0, cols, rows)}
	return widen(gray), nil
}
