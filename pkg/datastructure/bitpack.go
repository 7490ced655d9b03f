package datastructure

// PackedSize. number of bytes needed to store n values of width bits, padded to a whole byte.
func PackedSize(n int, width uint8) int {
	return (n*int(width) + 7) / 8
}

// PackBits. pack values LSB-first, width bits each. values must be < 2^width.
func PackBits(values []uint32, width uint8) []byte {
	out := make([]byte, PackedSize(len(values), width))
	if width == 0 {
		return out
	}

	var (
		acc  uint64
		nacc uint
		pos  int
	)
	for _, v := range values {
		// nacc < 8 here, so acc never holds more than 40 bits
		acc |= uint64(v) << nacc
		nacc += uint(width)
		for nacc >= 8 {
			out[pos] = byte(acc)
			pos++
			acc >>= 8
			nacc -= 8
		}
	}
	if nacc > 0 {
		out[pos] = byte(acc)
	}
	return out
}

// UnpackBits. inverse of PackBits. data must hold at least PackedSize(n, width) bytes.
func UnpackBits(data []byte, n int, width uint8) []uint32 {
	out := make([]uint32, n)
	if width == 0 {
		return out
	}

	var (
		acc  uint64
		nacc uint
		pos  int
	)
	mask := uint64(1)<<width - 1
	for i := range out {
		for nacc < uint(width) {
			acc |= uint64(data[pos]) << nacc
			pos++
			nacc += 8
		}
		out[i] = uint32(acc & mask)
		acc >>= width
		nacc -= uint(width)
	}
	return out
}
