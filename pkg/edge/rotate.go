package edge

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/pion/edgeoverlay/pkg/frame"
)

// Rotate turns img clockwise by degrees, which must be 0, 90, 180 or 270.
// Rotating by 0 returns img itself, other rotations return a new image.
func Rotate(img image.Image, degrees int) (image.Image, error) {
	// imaging rotates counter-clockwise
	switch degrees {
	case 0:
		return img, nil
	case 90:
		return imaging.Rotate270(img), nil
	case 180:
		return imaging.Rotate180(img), nil
	case 270:
		return imaging.Rotate90(img), nil
	}
	return nil, &frame.UnsupportedRotationError{Degrees: degrees}
}

// rotation maps a frame's rotation hint to the rotation actually applied.
func (p Params) rotation(degrees int) (int, error) {
	if frame.ValidRotation(degrees) {
		return degrees, nil
	}
	if p.RotationFallback {
		return 90, nil
	}
	return 0, &frame.UnsupportedRotationError{Degrees: degrees}
}
