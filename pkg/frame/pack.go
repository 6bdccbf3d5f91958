package frame

// PackNV21 packs raw into a single NV21 buffer: the luma plane verbatim,
// followed by the chroma samples interleaved V first, then U. Converters
// configured for NV21 read the chroma pairs in that order, so swapping them
// swaps the red and blue difference channels.
//
// dst is reused when its capacity is large enough, otherwise a new buffer is
// allocated. The returned slice is exactly raw.PackedSize() bytes long.
func PackNV21(dst []byte, raw *Raw) ([]byte, error) {
	return pack(dst, raw, true)
}

// PackNV12 is PackNV21 with U samples first.
func PackNV12(dst []byte, raw *Raw) ([]byte, error) {
	return pack(dst, raw, false)
}

func pack(dst []byte, raw *Raw, vFirst bool) ([]byte, error) {
	if err := raw.Validate(); err != nil {
		return nil, err
	}

	w, h := raw.Width, raw.Height
	size := raw.PackedSize()
	if cap(dst) < size {
		dst = make([]byte, size)
	}
	dst = dst[:size]

	packPlane(dst[:w*h], raw.Y, w, h)

	first, second := raw.V, raw.U
	if !vFirst {
		first, second = raw.U, raw.V
	}

	cw, ch := w/2, h/2
	fs, fp := first.rowStride(cw), first.pixelStride()
	ss, sp := second.rowStride(cw), second.pixelStride()
	i := w * h
	for row := 0; row < ch; row++ {
		f := first.Data[row*fs:]
		s := second.Data[row*ss:]
		for col := 0; col < cw; col++ {
			dst[i] = f[col*fp]
			dst[i+1] = s[col*sp]
			i += 2
		}
	}

	return dst, nil
}

// packPlane copies a cols x rows plane into dst, dropping row padding and
// pixel gaps.
func packPlane(dst []byte, p Plane, cols, rows int) {
	rs, ps := p.rowStride(cols), p.pixelStride()
	if ps == 1 && rs == cols {
		copy(dst, p.Data[:cols*rows])
		return
	}

	i := 0
	for row := 0; row < rows; row++ {
		src := p.Data[row*rs:]
		if ps == 1 {
			copy(dst[i:i+cols], src[:cols])
			i += cols
			continue
		}
		for col := 0; col < cols; col++ {
			dst[i] = src[col*ps]
			i++
		}
	}
}
