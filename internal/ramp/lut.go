package ramp

// LUT maps an 8-bit luminance to a ramp index.
type LUT [256]uint8

// NewLUT precomputes index = floor(l*length/256) for every luminance l,
// using 255-l when invert is set. Indices are clamped to length-1.
// The table must be rebuilt whenever length or invert changes.
func NewLUT(length int, invert bool) *LUT {
	t := new(LUT)
	if length <= 0 {
		return t
	}
	if length > 256 {
		length = 256
	}
	for l := 0; l < 256; l++ {
		v := l
		if invert {
			v = 255 - l
		}
		idx := v * length / 256
		if idx > length-1 {
			idx = length - 1
		}
		t[l] = uint8(idx)
	}
	return t
}

// Index returns the ramp index for luminance lum.
func (t *LUT) Index(lum uint8) int { return int(t[lum]) }
