package acoustic

import "github.com/proegssilb/tiesr-dialer-sub000/internal/fixedpoint"

// MeanVectorCodec converts between the stored form of a mean vector and
// the plain static+delta int16 vector the compensation code works on.
type MeanVectorCodec interface {
	// Name identifies the codec in saved models and configuration.
	Name() string
	// Stride is the number of stored words per vector.
	Stride(nMFCC int) int
	// Unpack decodes packed (Stride words) into v (2*nMFCC values).
	Unpack(packed []int16, v []int16)
	// Pack encodes v into packed.
	Pack(v []int16, packed []int16)
}

// ShortCodec stores every dimension as a full int16.
type ShortCodec struct{}

func (ShortCodec) Name() string { return "short" }
func (ShortCodec) Stride(nMFCC int) int { return 2 * nMFCC }
func (ShortCodec) Unpack(packed, v []int16) { copy(v, packed[:len(v)]) }
func (ShortCodec) Pack(v []int16, packed []int16) { copy(packed, v) }

// ByteCodec stores each static coefficient in the high byte and the
// matching delta coefficient in the low byte of one word. Scale holds the
// left shift applied to each of the 2*nMFCC dimensions before truncation
// to 8 bits; a nil Scale means no shift.
type ByteCodec struct {
	Scale []int16
}

func (ByteCodec) Name() string { return "byte" }
func (ByteCodec) Stride(nMFCC int) int { return nMFCC }

func (c ByteCodec) scale(d int) int {
	if c.Scale == nil {
		return 0
	}
	return int(c.Scale[d])
}

// Pack rounds each value to its most significant byte after scaling.
func (c ByteCodec) Pack(v []int16, packed []int16) {
	n := len(v) / 2
	for d := 0; d < n; d++ {
		hi := QuantizeByte(v[d], c.scale(d)) >> 8
		lo := QuantizeByte(v[d+n], c.scale(d+n)) >> 8
		packed[d] = int16(uint16(hi)<<8 | uint16(lo)&0xff)
	}
}

// Unpack expands both bytes of each word back to int16 and undoes the
// scaling.
func (c ByteCodec) Unpack(packed []int16, v []int16) {
	n := len(v) / 2
	for d := 0; d < n; d++ {
		w := uint16(packed[d])
		v[d] = int16(w&0xff00) >> uint(c.scale(d))
		v[d+n] = int16(w<<8) >> uint(c.scale(d+n))
	}
}

// QuantizeByte shifts v left by shift, saturates, rounds to the nearest
// multiple of 256 and returns the result with the 8 significant bits in
// the high byte. The sign is applied after rounding the magnitude.
func QuantizeByte(v int16, shift int) int16 {
	a := int32(v)
	neg := a < 0
	if neg {
		a = -a
	}
	a <<= uint(shift)
	if a > fixedpoint.MaxInt16 {
		a = fixedpoint.MaxInt16
	}
	if a < 0x7f00 {
		a += 1 << 7
	}
	a &= 0xff00
	if neg {
		a = -a
	}
	return int16(a)
}

// FitByteScale returns, per dimension of the static+delta vectors in vecs,
// the largest shift that keeps every value within the int16 range.
func FitByteScale(vecs [][]int16, dim int) []int16 {
	peak := make([]int32, dim)
	for _, v := range vecs {
		for d := 0; d < dim; d++ {
			a := int32(v[d])
			if a < 0 {
				a = -a
			}
			if a > peak[d] {
				peak[d] = a
			}
		}
	}
	scale := make([]int16, dim)
	for d, p := range peak {
		s := 0
		for p > 0 && p<<uint(s+1) <= fixedpoint.MaxInt16 && s < 15 {
			s++
		}
		if p == 0 {
			s = 0
		}
		scale[d] = int16(s)
	}
	return scale
}

// CodecByName returns the codec called name.
func CodecByName(name string, scale []int16) (MeanVectorCodec, bool) {
	switch name {
	case "", "short":
		return ShortCodec{}, true
	case "byte":
		return ByteCodec{Scale: scale}, true
	}
	return nil, false
}
