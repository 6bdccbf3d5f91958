package edge

import (
	"fmt"
	"image"

	"github.com/pion/edgeoverlay/pkg/frame"
	"github.com/pion/edgeoverlay/pkg/io/video"
)

// Transform returns a video transform that replaces every frame with its
// edge map. Frames are converted to I420 first when needed, and the upstream
// frame is released as soon as it has been processed.
func Transform(p *Processor, rotation int) video.TransformFunc {
	detect := func(r video.Reader) video.Reader {
		return video.ReaderFunc(func() (image.Image, func(), error) {
			img, release, err := r.Read()
			if err != nil {
				return nil, func() {}, err
			}
			defer release()

			yuv, ok := img.(*image.YCbCr)
			if !ok {
				return nil, func() {}, fmt.Errorf("expected an I420 image, got %T", img)
			}

			raw, err := frame.FromYCbCr(yuv, rotation)
			if err != nil {
				return nil, func() {}, err
			}

			edges, err := p.Process(raw)
			if err != nil {
				return nil, func() {}, err
			}
			return edges, func() {}, nil
		})
	}

	return video.Merge(video.ToI420, detect)
}
