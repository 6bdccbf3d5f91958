package edge

import (
	"errors"
	"fmt"

	"github.com/pion/edgeoverlay/pkg/io/video"
)

var (
	ErrInvalidKernel     = errors.New("blur kernel size must be odd and positive, sigma must not be negative")
	ErrInvalidThresholds = errors.New("edge thresholds must satisfy 0 <= low <= high")
	ErrInvalidColorRange = errors.New("unknown color range")
)

// Params controls the processing stages. The defaults reproduce the overlay
// of the camera samples: 15x15 Gaussian blur, Canny thresholds 100 and 200.
type Params struct {
	// BlurKernel is the width and height of the Gaussian kernel.
	BlurKernel int
	// Sigma is the Gaussian standard deviation. Zero derives it from
	// BlurKernel.
	Sigma float64
	// LowThreshold and HighThreshold are the hysteresis thresholds applied to
	// the L1 gradient magnitude.
	LowThreshold  float64
	HighThreshold float64
	// ColorRange used to convert the NV21 frame to RGB.
	ColorRange video.ColorRange
	// RotationFallback rotates frames with an unknown rotation hint clockwise
	// by 90 degrees instead of rejecting them.
	RotationFallback bool
}

// DefaultParams returns the parameters used when no Option is given.
func DefaultParams() Params {
	return Params{
		BlurKernel:    15,
		LowThreshold:  100,
		HighThreshold: 200,
		ColorRange:    video.VideoRange,
	}
}

// Option is a functional option of Processor.
type Option func(*Params)

// WithBlurKernel sets the Gaussian kernel size. It must be odd.
func WithBlurKernel(size int) Option {
	return func(p *Params) {
		p.BlurKernel = size
	}
}

// WithSigma sets the Gaussian standard deviation.
func WithSigma(sigma float64) Option {
	return func(p *Params) {
		p.Sigma = sigma
	}
}

// WithThresholds sets the hysteresis thresholds of the edge detector.
func WithThresholds(low, high float64) Option {
	return func(p *Params) {
		p.LowThreshold = low
		p.HighThreshold = high
	}
}

// WithColorRange selects the YCbCr to RGB convention.
func WithColorRange(r video.ColorRange) Option {
	return func(p *Params) {
		p.ColorRange = r
	}
}

// WithRotationFallback makes the processor rotate frames carrying a rotation
// hint outside of {0, 90, 180, 270} clockwise by 90 degrees, like the camera
// samples did, instead of failing them with frame.ErrUnsupportedRotation.
func WithRotationFallback() Option {
	return func(p *Params) {
		p.RotationFallback = true
	}
}

func (p Params) validate() error {
	if p.BlurKernel <= 0 || p.BlurKernel%2 == 0 || p.Sigma < 0 {
		return fmt.Errorf("%w: kernel %d, sigma %g", ErrInvalidKernel, p.BlurKernel, p.Sigma)
	}
	if p.LowThreshold < 0 || p.HighThreshold < p.LowThreshold {
		return fmt.Errorf("%w: low %g, high %g", ErrInvalidThresholds, p.LowThreshold, p.HighThreshold)
	}
	switch p.ColorRange {
	case video.VideoRange, video.FullRange:
	default:
		return fmt.Errorf("%w: %s", ErrInvalidColorRange, p.ColorRange)
	}
	return nil
}
