package reader

import (
	"encoding/binary"
	"math"

	"github.com/joshuapare/cratekit/internal/codec"
	"github.com/joshuapare/cratekit/internal/format"
	"github.com/joshuapare/cratekit/pkg/types"
	"github.com/joshuapare/cratekit/pkg/value"
)

// readArrayCount reads an array element count; pre-0.7.0 crates store it
// as u32, later versions as u64.
func (r *Reader) readArrayCount(section string) (uint64, error) {
	if r.version.Use64BitArrayCounts() {
		n, err := r.sr.ReadU64()
		if err != nil {
			return 0, types.CorruptError(section, r.sr.Tell(), "failed to read array count")
		}
		return n, nil
	}
	n, err := r.sr.ReadU32()
	if err != nil {
		return 0, types.CorruptError(section, r.sr.Tell(), "failed to read array count")
	}
	return uint64(n), nil
}

// readEmbeddedInts32 reads the `u64 size; bytes` compressed integer stream
// that appears inside array payloads, decoding count 32-bit values.
func readEmbeddedInts32(r *Reader, section string, count uint64) ([]int32, error) {
	size, err := r.sr.ReadU64()
	if err != nil {
		return nil, types.CorruptError(section, r.sr.Tell(), "failed to read compressed size")
	}
	buf, err := r.sr.Bytes(int64(size))
	if err != nil {
		return nil, types.CorruptError(section, r.sr.Tell(), "compressed ints truncated")
	}
	out, err := codec.DecodeInts32(buf, int(count))
	if err != nil {
		return nil, sectionErr(section, r.sr.Tell(), err)
	}
	return out, nil
}

func readEmbeddedInts64(r *Reader, section string, count uint64) ([]int64, error) {
	size, err := r.sr.ReadU64()
	if err != nil {
		return nil, types.CorruptError(section, r.sr.Tell(), "failed to read compressed size")
	}
	buf, err := r.sr.Bytes(int64(size))
	if err != nil {
		return nil, types.CorruptError(section, r.sr.Tell(), "compressed ints truncated")
	}
	out, err := codec.DecodeInts64(buf, int(count))
	if err != nil {
		return nil, sectionErr(section, r.sr.Tell(), err)
	}
	return out, nil
}

// rawNumericArray reads count elements of elemSize bytes and decodes each
// with fn.
func rawNumericArray[T any](r *Reader, section string, count uint64, elemSize int64, fn func([]byte) T) ([]T, error) {
	raw, err := r.sr.Bytes(int64(count) * elemSize)
	if err != nil {
		return nil, types.CorruptError(section, r.sr.Tell(), "array data truncated")
	}
	out := make([]T, count)
	for i := range out {
		out[i] = fn(raw[int64(i)*elemSize:])
	}
	return out, nil
}

func leI32(b []byte) int32   { return int32(binary.LittleEndian.Uint32(b)) }
func leI64b(b []byte) int64  { return int64(binary.LittleEndian.Uint64(b)) }
func leU32b(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }
func leU64b(b []byte) uint64 { return binary.LittleEndian.Uint64(b) }
func leF32(b []byte) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(b)) }
func leF64(b []byte) float64 { return math.Float64frombits(binary.LittleEndian.Uint64(b)) }
func leHalf(b []byte) value.Half {
	return value.Half(binary.LittleEndian.Uint16(b))
}

// readIntArray32 reads an int array payload: count, then raw values or an
// integer-compressed stream once the count reaches the compression
// threshold.
func readIntArray32[T int32 | uint32](r *Reader, section string, compressed bool) ([]T, error) {
	count, err := r.readArrayCount(section)
	if err != nil {
		return nil, err
	}
	if err := r.checkCount(section, count, 4); err != nil {
		return nil, err
	}
	if !compressed || count < format.MinCompressedArraySize {
		return rawNumericArray(r, section, count, 4, func(b []byte) T { return T(leU32b(b)) })
	}
	ints, err := readEmbeddedInts32(r, section, count)
	if err != nil {
		return nil, err
	}
	out := make([]T, count)
	for i, v := range ints {
		out[i] = T(v)
	}
	return out, nil
}

func readIntArray64[T int64 | uint64](r *Reader, section string, compressed bool) ([]T, error) {
	count, err := r.readArrayCount(section)
	if err != nil {
		return nil, err
	}
	if err := r.checkCount(section, count, 8); err != nil {
		return nil, err
	}
	if !compressed || count < format.MinCompressedArraySize {
		return rawNumericArray(r, section, count, 8, func(b []byte) T { return T(leU64b(b)) })
	}
	ints, err := readEmbeddedInts64(r, section, count)
	if err != nil {
		return nil, err
	}
	out := make([]T, count)
	for i, v := range ints {
		out[i] = T(v)
	}
	return out, nil
}

// Floating arrays support two compressed encodings selected by a code
// byte: 'i' (values are integers, stored via the integer coder) and 't'
// (lookup table plus integer-compressed indices).
const (
	floatCodeInts = 'i'
	floatCodeLUT  = 't'
)

func readFloatingArray[T any](
	r *Reader, section string, compressed bool, elemSize int64,
	fromBytes func([]byte) T, fromInt func(int32) T,
) ([]T, error) {
	count, err := r.readArrayCount(section)
	if err != nil {
		return nil, err
	}
	if err := r.checkCount(section, count, elemSize); err != nil {
		return nil, err
	}
	if !compressed || count < format.MinCompressedArraySize {
		return rawNumericArray(r, section, count, elemSize, fromBytes)
	}

	code, err := r.sr.ReadU8()
	if err != nil {
		return nil, types.CorruptError(section, r.sr.Tell(), "failed to read float array code")
	}
	switch code {
	case floatCodeInts:
		ints, err := readEmbeddedInts32(r, section, count)
		if err != nil {
			return nil, err
		}
		out := make([]T, count)
		for i, v := range ints {
			out[i] = fromInt(v)
		}
		return out, nil

	case floatCodeLUT:
		lutSize, err := r.sr.ReadU32()
		if err != nil {
			return nil, types.CorruptError(section, r.sr.Tell(), "failed to read lut size")
		}
		if err := r.charge(section, int64(lutSize)*elemSize); err != nil {
			return nil, err
		}
		lut, err := rawNumericArray(r, section, uint64(lutSize), elemSize, fromBytes)
		if err != nil {
			return nil, err
		}
		indices, err := readEmbeddedInts32(r, section, count)
		if err != nil {
			return nil, err
		}
		out := make([]T, count)
		for i, idx := range indices {
			if idx < 0 || int(idx) >= len(lut) {
				return nil, types.CorruptError(section, r.sr.Tell(), "lut index out of range")
			}
			out[i] = lut[idx]
		}
		return out, nil

	default:
		return nil, types.CorruptError(section, r.sr.Tell(), "invalid float array code byte")
	}
}

func (r *Reader) readHalfArray(section string, compressed bool) ([]value.Half, error) {
	return readFloatingArray(r, section, compressed, 2, leHalf,
		func(v int32) value.Half { return value.HalfFromFloat32(float32(v)) })
}

func (r *Reader) readFloatArray(section string, compressed bool) ([]float32, error) {
	return readFloatingArray(r, section, compressed, 4, leF32,
		func(v int32) float32 { return float32(v) })
}

func (r *Reader) readDoubleArray(section string, compressed bool) ([]float64, error) {
	return readFloatingArray(r, section, compressed, 8, leF64,
		func(v int32) float64 { return float64(v) })
}

// Fixed-size composite readers for the raw (never compressed) POD array
// and scalar forms.

func readVec2[A ~[2]E, E any](fn func([]byte) E, elem int64) func([]byte) A {
	return func(b []byte) A {
		return A{fn(b), fn(b[elem:])}
	}
}

func readVec3[A ~[3]E, E any](fn func([]byte) E, elem int64) func([]byte) A {
	return func(b []byte) A {
		return A{fn(b), fn(b[elem:]), fn(b[2*elem:])}
	}
}

func readVec4[A ~[4]E, E any](fn func([]byte) E, elem int64) func([]byte) A {
	return func(b []byte) A {
		return A{fn(b), fn(b[elem:]), fn(b[2*elem:]), fn(b[3*elem:])}
	}
}

func readMat2(b []byte) value.Matrix2d {
	var m value.Matrix2d
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			m[i][j] = leF64(b[(i*2+j)*8:])
		}
	}
	return m
}

func readMat3(b []byte) value.Matrix3d {
	var m value.Matrix3d
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] = leF64(b[(i*3+j)*8:])
		}
	}
	return m
}

func readMat4(b []byte) value.Matrix4d {
	var m value.Matrix4d
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			m[i][j] = leF64(b[(i*4+j)*8:])
		}
	}
	return m
}
