package mix

import "encoding/binary"

// mixS16 writes the clamped average of the S16LE samples in a and b
// into dst. All three slices must be at least n bytes; n must be even.
func mixS16(dst, a, b []byte, n int) {
	for i := 0; i+1 < n; i += 2 {
		av := int16(binary.LittleEndian.Uint16(a[i:]))
		bv := int16(binary.LittleEndian.Uint16(b[i:]))
		s := (int32(av) + int32(bv)) >> 1
		if s > 32767 {
			s = 32767
		} else if s < -32768 {
			s = -32768
		}
		binary.LittleEndian.PutUint16(dst[i:], uint16(int16(s)))
	}
}

// mixS16Silence averages a against silence, halving each sample.
func mixS16Silence(dst, a []byte, n int) {
	for i := 0; i+1 < n; i += 2 {
		av := int16(binary.LittleEndian.Uint16(a[i:]))
		binary.LittleEndian.PutUint16(dst[i:], uint16(av>>1))
	}
}
