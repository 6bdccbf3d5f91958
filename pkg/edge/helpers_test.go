package edge

import (
	"testing"

	"github.com/pion/edgeoverlay/pkg/frame"
)

// newFrame builds an I420 backed frame whose luma is given by lumaAt and
// whose chroma planes are constant.
func newFrame(t testing.TB, width, height, rotation int, lumaAt func(x, y int) uint8, u, v uint8) *frame.Raw {
	t.Helper()

	buf := make([]byte, width*height*3/2)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			buf[y*width+x] = lumaAt(x, y)
		}
	}
	cLen := width * height / 4
	for i := 0; i < cLen; i++ {
		buf[width*height+i] = u
		buf[width*height+cLen+i] = v
	}

	raw, err := frame.FromI420(buf, width, height, rotation)
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func flatLuma(v uint8) func(x, y int) uint8 {
	return func(int, int) uint8 { return v }
}

// verticalStep is dark left of column at and bright from it on.
func verticalStep(at int) func(x, y int) uint8 {
	return func(x, _ int) uint8 {
		if x < at {
			return 30
		}
		return 220
	}
}
