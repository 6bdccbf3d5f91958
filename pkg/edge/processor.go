// Package edge turns raw YUV 4:2:0 camera frames into edge maps meant to be
// drawn translucently on top of the live preview.
package edge

import (
	"image"

	"github.com/pion/edgeoverlay/internal/logging"
	"github.com/pion/edgeoverlay/pkg/frame"
	"golang.org/x/image/draw"
)

// Processor converts one frame at a time:
//
//	NV21 packing -> RGB -> rotation -> Gaussian blur -> Canny -> RGBA
//
// A Processor holds no per-frame state, so Process may be called from several
// goroutines at once.
type Processor struct {
	params Params
}

// NewProcessor creates a Processor from DefaultParams modified by opts.
func NewProcessor(opts ...Option) (*Processor, error) {
	params := DefaultParams()
	for _, o := range opts {
		o(&params)
	}
	if err := params.validate(); err != nil {
		return nil, err
	}
	if err := validateBackend(params); err != nil {
		return nil, err
	}

	logger := logging.NewLogger("edgeoverlay/edge")
	logger.Debugf("%s backend: kernel %d, sigma %g, thresholds %g/%g, %s range",
		backendName, params.BlurKernel, params.Sigma, params.LowThreshold, params.HighThreshold, params.ColorRange)
	return &Processor{params: params}, nil
}

// Params returns the parameters p was created with.
func (p *Processor) Params() Params {
	return p.params
}

// Process converts raw into an edge map. Edge pixels are opaque white and
// the others opaque black. The output is sized after the rotated frame and is
// owned by the caller.
//
// A frame whose planes don't match its dimensions fails with
// frame.ErrInvalidFrame, a rotation hint outside of {0, 90, 180, 270} with
// frame.ErrUnsupportedRotation unless WithRotationFallback is set. No output
// is produced on failure. raw is never modified, and releasing it stays the
// caller's job.
func (p *Processor) Process(raw *frame.Raw) (*image.RGBA, error) {
	if err := raw.Validate(); err != nil {
		return nil, err
	}

	rotation, err := p.params.rotation(raw.Rotation)
	if err != nil {
		return nil, err
	}

	return p.process(raw, rotation)
}

// widen expands a single channel edge map to opaque RGBA.
func widen(edges *image.Gray) *image.RGBA {
	b := edges.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), edges, b.Min, draw.Src)
	return dst
}
