package frame

import (
	"image"
)

func decodeI420(frame []byte, width, height int) (image.Image, func(), error) {
	yi := width * height
	cbi := yi + width*height/4
	cri := cbi + width*height/4

	if cri > len(frame) {
		return nil, func() {}, &InvalidFrameError{Plane: "packed", Required: cri, Actual: len(frame)}
	}

	return &image.YCbCr{
		Y:              frame[:yi],
		YStride:        width,
		Cb:             frame[yi:cbi],
		Cr:             frame[cbi:cri],
		CStride:        width / 2,
		SubsampleRatio: image.YCbCrSubsampleRatio420,
		Rect:           image.Rect(0, 0, width, height),
	}, func() {}, nil
}

func decodeNV21(frame []byte, width, height int) (image.Image, func(), error) {
	return decodeSemiPlanar(frame, width, height, true)
}

func decodeNV12(frame []byte, width, height int) (image.Image, func(), error) {
	return decodeSemiPlanar(frame, width, height, false)
}

func decodeSemiPlanar(frame []byte, width, height int, vFirst bool) (image.Image, func(), error) {
	yi := width * height
	ci := yi + width*height/2

	if ci > len(frame) {
		return nil, func() {}, &InvalidFrameError{Plane: "packed", Required: ci, Actual: len(frame)}
	}

	cLen := (ci - yi) / 2
	chroma := make([]byte, 2*cLen)
	cb, cr := chroma[:cLen:cLen], chroma[cLen:]

	// NV21 stores V then U, NV12 stores U then V
	first, second := cr, cb
	if !vFirst {
		first, second = cb, cr
	}

	j := 0
	for i := yi; i < ci; i += 2 {
		first[j] = frame[i]
		second[j] = frame[i+1]
		j++
	}

	return &image.YCbCr{
		Y:              frame[:yi],
		YStride:        width,
		Cb:             cb,
		Cr:             cr,
		CStride:        width / 2,
		SubsampleRatio: image.YCbCrSubsampleRatio420,
		Rect:           image.Rect(0, 0, width, height),
	}, func() {}, nil
}
