package codec

import "encoding/binary"

// Integer streams are stored as an LZ4-framed buffer holding:
//
//	common value      sizeof(Int) bytes, little-endian
//	code table        2 bits per element, LSB-first within each byte
//	packed deltas     per element, width selected by its code
//
// Every element is a delta against a running accumulator that starts at
// zero, so the first element's delta is its absolute value. Code 0 selects
// the common value with no packed bytes; codes 1..3 select the small,
// medium, and full widths of the variant (8/16/32 bits for the 32-bit
// coder, 16/32/64 bits for the 64-bit coder).

// WorkingSpaceSize32 returns the decode buffer size for a 32-bit stream of
// count elements; the encoded form can never exceed it.
func WorkingSpaceSize32(count int) int {
	return 4 + codeTableSize(count) + 4*count
}

// WorkingSpaceSize64 returns the decode buffer size for a 64-bit stream.
func WorkingSpaceSize64(count int) int {
	return 8 + codeTableSize(count) + 8*count
}

func codeTableSize(count int) int {
	return (2*count + 7) / 8
}

// DecodeInts32 decodes a compressed stream of count 32-bit integers.
func DecodeInts32(compressed []byte, count int) ([]int32, error) {
	if count == 0 {
		return nil, nil
	}
	enc, err := DecompressLZ4Capacity(compressed, int64(WorkingSpaceSize32(count)))
	if err != nil {
		return nil, err
	}
	codeBytes := codeTableSize(count)
	if len(enc) < 4+codeBytes {
		return nil, corrupt("integer stream header truncated")
	}
	common := int32(binary.LittleEndian.Uint32(enc))
	codes := enc[4 : 4+codeBytes]
	vints := enc[4+codeBytes:]

	out := make([]int32, count)
	var prev int32
	for i := 0; i < count; i++ {
		var delta int32
		switch (codes[i>>2] >> uint((i&3)*2)) & 3 {
		case 0:
			delta = common
		case 1:
			if len(vints) < 1 {
				return nil, corrupt("integer stream deltas truncated")
			}
			delta = int32(int8(vints[0]))
			vints = vints[1:]
		case 2:
			if len(vints) < 2 {
				return nil, corrupt("integer stream deltas truncated")
			}
			delta = int32(int16(binary.LittleEndian.Uint16(vints)))
			vints = vints[2:]
		case 3:
			if len(vints) < 4 {
				return nil, corrupt("integer stream deltas truncated")
			}
			delta = int32(binary.LittleEndian.Uint32(vints))
			vints = vints[4:]
		}
		prev += delta
		out[i] = prev
	}
	return out, nil
}

// DecodeInts64 decodes a compressed stream of count 64-bit integers.
func DecodeInts64(compressed []byte, count int) ([]int64, error) {
	if count == 0 {
		return nil, nil
	}
	enc, err := DecompressLZ4Capacity(compressed, int64(WorkingSpaceSize64(count)))
	if err != nil {
		return nil, err
	}
	codeBytes := codeTableSize(count)
	if len(enc) < 8+codeBytes {
		return nil, corrupt("integer stream header truncated")
	}
	common := int64(binary.LittleEndian.Uint64(enc))
	codes := enc[8 : 8+codeBytes]
	vints := enc[8+codeBytes:]

	out := make([]int64, count)
	var prev int64
	for i := 0; i < count; i++ {
		var delta int64
		switch (codes[i>>2] >> uint((i&3)*2)) & 3 {
		case 0:
			delta = common
		case 1:
			if len(vints) < 2 {
				return nil, corrupt("integer stream deltas truncated")
			}
			delta = int64(int16(binary.LittleEndian.Uint16(vints)))
			vints = vints[2:]
		case 2:
			if len(vints) < 4 {
				return nil, corrupt("integer stream deltas truncated")
			}
			delta = int64(int32(binary.LittleEndian.Uint32(vints)))
			vints = vints[4:]
		case 3:
			if len(vints) < 8 {
				return nil, corrupt("integer stream deltas truncated")
			}
			delta = int64(binary.LittleEndian.Uint64(vints))
			vints = vints[8:]
		}
		prev += delta
		out[i] = prev
	}
	return out, nil
}

// DecodeUints32 decodes a 32-bit stream into unsigned values. The coder is
// sign-agnostic; unsigned streams are stored bit-identically.
func DecodeUints32(compressed []byte, count int) ([]uint32, error) {
	ints, err := DecodeInts32(compressed, count)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, len(ints))
	for i, v := range ints {
		out[i] = uint32(v)
	}
	return out, nil
}

// DecodeUints64 decodes a 64-bit stream into unsigned values.
func DecodeUints64(compressed []byte, count int) ([]uint64, error) {
	ints, err := DecodeInts64(compressed, count)
	if err != nil {
		return nil, err
	}
	out := make([]uint64, len(ints))
	for i, v := range ints {
		out[i] = uint64(v)
	}
	return out, nil
}

// EncodeInts32 produces the compressed form of values.
func EncodeInts32(values []int32) ([]byte, error) {
	deltas := make([]int32, len(values))
	var prev int32
	for i, v := range values {
		deltas[i] = v - prev
		prev = v
	}
	common := mostCommon32(deltas)

	enc := make([]byte, 4+codeTableSize(len(values)), WorkingSpaceSize32(len(values)))
	binary.LittleEndian.PutUint32(enc, uint32(common))
	codes := enc[4 : 4+codeTableSize(len(values))]
	for i, d := range deltas {
		var code byte
		switch {
		case d == common:
			code = 0
		case d >= -128 && d <= 127:
			code = 1
			enc = append(enc, byte(int8(d)))
		case d >= -32768 && d <= 32767:
			code = 2
			var b [2]byte
			binary.LittleEndian.PutUint16(b[:], uint16(int16(d)))
			enc = append(enc, b[:]...)
		default:
			code = 3
			var b [4]byte
			binary.LittleEndian.PutUint32(b[:], uint32(d))
			enc = append(enc, b[:]...)
		}
		codes[i>>2] |= code << uint((i&3)*2)
	}
	return CompressLZ4(enc)
}

// EncodeInts64 produces the compressed form of values.
func EncodeInts64(values []int64) ([]byte, error) {
	deltas := make([]int64, len(values))
	var prev int64
	for i, v := range values {
		deltas[i] = v - prev
		prev = v
	}
	common := mostCommon64(deltas)

	enc := make([]byte, 8+codeTableSize(len(values)), WorkingSpaceSize64(len(values)))
	binary.LittleEndian.PutUint64(enc, uint64(common))
	codes := enc[8 : 8+codeTableSize(len(values))]
	for i, d := range deltas {
		var code byte
		switch {
		case d == common:
			code = 0
		case d >= -32768 && d <= 32767:
			code = 1
			var b [2]byte
			binary.LittleEndian.PutUint16(b[:], uint16(int16(d)))
			enc = append(enc, b[:]...)
		case d >= -2147483648 && d <= 2147483647:
			code = 2
			var b [4]byte
			binary.LittleEndian.PutUint32(b[:], uint32(int32(d)))
			enc = append(enc, b[:]...)
		default:
			code = 3
			var b [8]byte
			binary.LittleEndian.PutUint64(b[:], uint64(d))
			enc = append(enc, b[:]...)
		}
		codes[i>>2] |= code << uint((i&3)*2)
	}
	return CompressLZ4(enc)
}

// EncodeUints32 encodes unsigned values bit-identically to EncodeInts32.
func EncodeUints32(values []uint32) ([]byte, error) {
	ints := make([]int32, len(values))
	for i, v := range values {
		ints[i] = int32(v)
	}
	return EncodeInts32(ints)
}

func mostCommon32(deltas []int32) int32 {
	counts := make(map[int32]int, len(deltas))
	var best int32
	bestN := -1
	for _, d := range deltas {
		counts[d]++
		if counts[d] > bestN {
			best, bestN = d, counts[d]
		}
	}
	return best
}

func mostCommon64(deltas []int64) int64 {
	counts := make(map[int64]int, len(deltas))
	var best int64
	bestN := -1
	for _, d := range deltas {
		counts[d]++
		if counts[d] > bestN {
			best, bestN = d, counts[d]
		}
	}
	return best
}
