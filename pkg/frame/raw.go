package frame

import (
	"fmt"
	"image"
	"math"
	"math/bits"
)

// MaxDimension is the largest width or height a frame may declare.
const MaxDimension = 1 << 16

// Plane is one component of a planar or semi-planar YUV image, laid out the
// way camera pipelines hand it over: rows may be padded, and samples of one
// plane may be interleaved with another (PixelStride 2).
type Plane struct {
	Data []byte
	// RowStride is the distance in bytes between the starts of two rows.
	// Zero means rows are tightly packed.
	RowStride int
	// PixelStride is the distance in bytes between two samples of a row.
	// Zero is treated as 1.
	PixelStride int
}

func (p Plane) pixelStride() int {
	if p.PixelStride <= 0 {
		return 1
	}
	return p.PixelStride
}

func (p Plane) rowStride(cols int) int {
	if p.RowStride <= 0 {
		return cols * p.pixelStride()
	}
	return p.RowStride
}

// mulAdd returns a*b+c. ok is false when the result doesn't fit in an int.
func mulAdd(a, b, c uint64) (v uint64, ok bool) {
	hi, lo := bits.Mul64(a, b)
	sum, carry := bits.Add64(lo, c, 0)
	return sum, hi == 0 && carry == 0 && sum <= math.MaxInt
}

// requiredBytes is the number of valid bytes needed to address cols x rows
// samples. The last row doesn't need to carry its padding. ok is false when
// the count overflows an int.
func (p Plane) requiredBytes(cols, rows int) (n int, ok bool) {
	ps := uint64(p.pixelStride())
	rowLen, ok := mulAdd(uint64(cols-1), ps, 1)
	if !ok {
		return 0, false
	}

	rs := uint64(p.RowStride)
	if p.RowStride <= 0 {
		if rs, ok = mulAdd(uint64(cols), ps, 0); !ok {
			return 0, false
		}
	}

	total, ok := mulAdd(uint64(rows-1), rs, rowLen)
	return int(total), ok
}

func (p Plane) validate(name string, cols, rows int) error {
	rowLen, ok := mulAdd(uint64(cols-1), uint64(p.pixelStride()), 1)
	if !ok {
		return &InvalidFrameError{
			Reason: fmt.Sprintf("%s plane pixel stride %d overflows a row of %d samples", name, p.PixelStride, cols),
		}
	}
	if p.RowStride > 0 && uint64(p.RowStride) < rowLen {
		return &InvalidFrameError{
			Reason: fmt.Sprintf("%s plane row stride %d is shorter than a row of %d samples", name, p.RowStride, cols),
		}
	}

	required, ok := p.requiredBytes(cols, rows)
	if !ok {
		return &InvalidFrameError{
			Reason: fmt.Sprintf("%s plane strides overflow for %dx%d samples", name, cols, rows),
		}
	}
	if len(p.Data) < required {
		return &InvalidFrameError{Plane: name, Required: required, Actual: len(p.Data)}
	}
	return nil
}

// Raw is a single YUV 4:2:0 camera frame as delivered by a capture pipeline:
// a full resolution luma plane and two chroma planes at half resolution in
// both dimensions. Raw is never modified by the consumers in this module.
type Raw struct {
	Width, Height int
	Y, U, V       Plane
	// Rotation is the clockwise rotation, in degrees, needed to display the
	// frame upright.
	Rotation int
}

// ValidRotation reports whether degrees is one of the rotations a camera
// pipeline reports.
func ValidRotation(degrees int) bool {
	switch degrees {
	case 0, 90, 180, 270:
		return true
	}
	return false
}

// Bounds returns the frame's rectangle before rotation.
func (r *Raw) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.Width, r.Height)
}

// PackedSize is the size of the frame once packed into a single NV21 buffer.
func (r *Raw) PackedSize() int {
	return int(frameSizeNV21(r.Width, r.Height))
}

func validateDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return &InvalidFrameError{Reason: fmt.Sprintf("non-positive dimensions %dx%d", width, height)}
	}
	if width > MaxDimension || height > MaxDimension {
		return &InvalidFrameError{Reason: fmt.Sprintf("dimensions %dx%d exceed %d", width, height, MaxDimension)}
	}
	return nil
}

// Validate checks that the declared dimensions are usable for 4:2:0 data,
// at most MaxDimension on each side, and that every plane holds enough valid
// bytes for them.
func (r *Raw) Validate() error {
	if r == nil {
		return &InvalidFrameError{Reason: "nil frame"}
	}
	if err := validateDimensions(r.Width, r.Height); err != nil {
		return err
	}
	if r.Width%2 != 0 || r.Height%2 != 0 {
		return &InvalidFrameError{Reason: fmt.Sprintf("dimensions %dx%d are not even", r.Width, r.Height)}
	}

	if err := r.Y.validate("Y", r.Width, r.Height); err != nil {
		return err
	}

	cw, ch := r.Width/2, r.Height/2
	if err := r.U.validate("U", cw, ch); err != nil {
		return err
	}
	return r.V.validate("V", cw, ch)
}

// FromNV21 wraps a packed NV21 buffer, luma followed by interleaved V/U
// samples, without copying it.
func FromNV21(buf []byte, width, height, rotation int) (*Raw, error) {
	return fromSemiPlanar(buf, width, height, rotation, true)
}

// FromNV12 wraps a packed NV12 buffer, luma followed by interleaved U/V
// samples, without copying it.
func FromNV12(buf []byte, width, height, rotation int) (*Raw, error) {
	return fromSemiPlanar(buf, width, height, rotation, false)
}

func fromSemiPlanar(buf []byte, width, height, rotation int, vFirst bool) (*Raw, error) {
	if err := validateDimensions(width, height); err != nil {
		return nil, err
	}

	size := int(frameSizeNV21(width, height))
	if len(buf) < size {
		return nil, &InvalidFrameError{Plane: "packed", Required: size, Actual: len(buf)}
	}

	yi := width * height
	first := Plane{Data: buf[yi:size], RowStride: width, PixelStride: 2}
	second := Plane{Data: buf[yi+1 : size], RowStride: width, PixelStride: 2}
	raw := &Raw{
		Width:    width,
		Height:   height,
		Y:        Plane{Data: buf[:yi], RowStride: width, PixelStride: 1},
		Rotation: rotation,
	}
	if vFirst {
		raw.V, raw.U = first, second
	} else {
		raw.U, raw.V = first, second
	}
	return raw, raw.Validate()
}

// FromI420 wraps a packed I420 buffer, luma followed by the full U plane and
// then the full V plane, without copying it.
func FromI420(buf []byte, width, height, rotation int) (*Raw, error) {
	if err := validateDimensions(width, height); err != nil {
		return nil, err
	}

	yi := width * height
	cbi := yi + width*height/4
	cri := cbi + width*height/4
	if len(buf) < cri {
		return nil, &InvalidFrameError{Plane: "packed", Required: cri, Actual: len(buf)}
	}

	raw := &Raw{
		Width:    width,
		Height:   height,
		Y:        Plane{Data: buf[:yi], RowStride: width},
		U:        Plane{Data: buf[yi:cbi], RowStride: width / 2},
		V:        Plane{Data: buf[cbi:cri], RowStride: width / 2},
		Rotation: rotation,
	}
	return raw, raw.Validate()
}

// FromYCbCr wraps the planes of a 4:2:0 image without copying them.
func FromYCbCr(img *image.YCbCr, rotation int) (*Raw, error) {
	if img.SubsampleRatio != image.YCbCrSubsampleRatio420 {
		return nil, &InvalidFrameError{Reason: fmt.Sprintf("unsupported subsample ratio %s", img.SubsampleRatio)}
	}

	r := img.Rect
	if r.Empty() {
		return nil, &InvalidFrameError{Reason: "empty image"}
	}

	yi := img.YOffset(r.Min.X, r.Min.Y)
	ci := img.COffset(r.Min.X, r.Min.Y)
	if yi > len(img.Y) || ci > len(img.Cb) || ci > len(img.Cr) {
		return nil, &InvalidFrameError{Reason: "image rectangle outside of its planes"}
	}

	raw := &Raw{
		Width:    r.Dx(),
		Height:   r.Dy(),
		Y:        Plane{Data: img.Y[yi:], RowStride: img.YStride},
		U:        Plane{Data: img.Cb[ci:], RowStride: img.CStride},
		V:        Plane{Data: img.Cr[ci:], RowStride: img.CStride},
		Rotation: rotation,
	}
	return raw, raw.Validate()
}
