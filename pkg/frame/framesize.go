package frame

import "fmt"

// Return a function to get the number of bytes a frame will occupy in the given format
var FrameSizeMap = map[Format]frameSizeFunc{
	FormatI420: frameSizeI420,
	FormatNV21: frameSizeNV21,
	FormatNV12: frameSizeNV21, // NV12 and NV21 have the same frame size
}

type frameSizeFunc func(width, height int) uint

// Size returns the number of bytes a packed width x height frame occupies in f.
func Size(f Format, width, height int) (uint, error) {
	fn, ok := FrameSizeMap[f]
	if !ok {
		return 0, fmt.Errorf("%s is not supported", f)
	}
	return fn(width, height), nil
}

func frameSizeI420(width, height int) uint {
	yi := width * height
	cbi := yi + width*height/4
	cri := cbi + width*height/4
	return uint(cri)
}

func frameSizeNV21(width, height int) uint {
	yi := width * height
	ci := yi + width*height/2
	return uint(ci)
}
