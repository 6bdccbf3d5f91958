package frame

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFrame matches every *InvalidFrameError through errors.Is.
	ErrInvalidFrame = errors.New("invalid frame")
	// ErrUnsupportedRotation matches every *UnsupportedRotationError through errors.Is.
	ErrUnsupportedRotation = errors.New("unsupported rotation")
)

// InvalidFrameError tells the caller that a frame's dimensions or plane sizes
// are inconsistent with each other. The frame should be skipped.
type InvalidFrameError struct {
	// Plane is "Y", "U", "V" or "packed". Empty when Reason describes the problem.
	Plane    string
	Required int
	Actual   int
	Reason   string
}

func (e *InvalidFrameError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid frame: %s", e.Reason)
	}
	return fmt.Sprintf("invalid frame: %s plane has %d valid bytes, %d required", e.Plane, e.Actual, e.Required)
}

func (e *InvalidFrameError) Is(target error) bool {
	return target == ErrInvalidFrame
}

// UnsupportedRotationError is returned for rotation hints outside {0, 90, 180, 270}.
type UnsupportedRotationError struct {
	Degrees int
}

func (e *UnsupportedRotationError) Error() string {
	return fmt.Sprintf("unsupported rotation: %d degrees", e.Degrees)
}

func (e *UnsupportedRotationError) Is(target error) bool {
	return target == ErrUnsupportedRotation
}
