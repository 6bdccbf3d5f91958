package edge

import (
	"image"
	"math"
)

const (
	// Edge and NoEdge are the only values found in an edge map.
	Edge   uint8 = 0xFF
	NoEdge uint8 = 0x00
)

// tan(22.5°) in Q15, used to bin gradient directions without floating point
const tg22 = 13573

const (
	candidateNone uint8 = iota
	candidateWeak
	candidateStrong
)

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// channelPlanes copies the R, G and B channels of src into int32 planes
// with a one pixel border that repeats the edge pixels.
func channelPlanes(src *image.RGBA) (planes [3][]int32, stride int) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	stride = w + 2
	for c := range planes {
		planes[c] = make([]int32, stride*(h+2))
	}

	clamp := func(v, hi int) int {
		if v < 0 {
			return 0
		}
		if v > hi {
			return hi
		}
		return v
	}

	for py := 0; py < h+2; py++ {
		sy := clamp(py-1, h-1)
		row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+sy):]
		for px := 0; px < w+2; px++ {
			sx := clamp(px-1, w-1)
			i := py*stride + px
			planes[0][i] = int32(row[4*sx+0])
			planes[1][i] = int32(row[4*sx+1])
			planes[2][i] = int32(row[4*sx+2])
		}
	}
	return planes, stride
}

// cannyEdges runs a Canny edge detector over the RGB channels of src. For
// every pixel, the 3x3 Sobel gradient of the channel with the largest L1
// magnitude is kept, thinned by non-maximum suppression, and classified
// against the low and high thresholds. Weak pixels survive only when they
// are 8-connected to a strong one.
//
// pix backs the returned edge map when it holds at least one byte per pixel.
func cannyEdges(src *image.RGBA, lowThreshold, highThreshold float64, pix []uint8) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	n := w * h

	if len(pix) < n {
		pix = make([]uint8, n)
	}
	edges := &image.Gray{Pix: pix[:n], Stride: w, Rect: image.Rect(0, 0, w, h)}
	if n == 0 {
		return edges
	}

	planes, ps := channelPlanes(src)
	dx := make([]int32, n)
	dy := make([]int32, n)
	mag := make([]int32, n)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			// center of the 3x3 neighborhood in the padded planes
			p := (y+1)*ps + x + 1
			best := int32(-1)
			for c := range planes {
				v := planes[c]
				gx := v[p-ps+1] + 2*v[p+1] + v[p+ps+1] - v[p-ps-1] - 2*v[p-1] - v[p+ps-1]
				gy := v[p+ps-1] + 2*v[p+ps] + v[p+ps+1] - v[p-ps-1] - 2*v[p-ps] - v[p-ps+1]
				if m := abs32(gx) + abs32(gy); m > best {
					best, dx[i], dy[i] = m, gx, gy
				}
			}
			mag[i] = best
		}
	}

	magAt := func(x, y int) int32 {
		if x < 0 || y < 0 || x >= w || y >= h {
			return 0
		}
		return mag[y*w+x]
	}

	low := int32(math.Floor(lowThreshold))
	high := int32(math.Floor(highThreshold))
	state := make([]uint8, n)
	var stack []int

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			m := mag[i]
			if m <= low {
				continue
			}

			ax, ay := int64(abs32(dx[i])), int64(abs32(dy[i]))
			tg22x := ax * tg22
			yy := ay << 15

			var isMax bool
			switch {
			case yy < tg22x:
				// horizontal gradient, compare left and right
				isMax = m > magAt(x-1, y) && m >= magAt(x+1, y)
			case yy > tg22x+(ax<<16):
				// vertical gradient, compare above and below
				isMax = m > magAt(x, y-1) && m >= magAt(x, y+1)
			default:
				s := 1
				if (dx[i] < 0) != (dy[i] < 0) {
					s = -1
				}
				isMax = m > magAt(x-s, y-1) && m > magAt(x+s, y+1)
			}
			if !isMax {
				continue
			}

			if m > high {
				state[i] = candidateStrong
				stack = append(stack, i)
			} else {
				state[i] = candidateWeak
			}
		}
	}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		for ny := y - 1; ny <= y+1; ny++ {
			if ny < 0 || ny >= h {
				continue
			}
			for nx := x - 1; nx <= x+1; nx++ {
				if nx < 0 || nx >= w {
					continue
				}
				j := ny*w + nx
				if state[j] == candidateWeak {
					state[j] = candidateStrong
					stack = append(stack, j)
				}
			}
		}
	}

	for i, s := range state {
		if s == candidateStrong {
			edges.Pix[i] = Edge
		} else {
			edges.Pix[i] = NoEdge
		}
	}
	return edges
}
