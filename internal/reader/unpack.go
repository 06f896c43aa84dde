package reader

import (
	"fmt"
	"math"

	"github.com/joshuapare/cratekit/internal/format"
	"github.com/joshuapare/cratekit/pkg/types"
	"github.com/joshuapare/cratekit/pkg/value"
)

// ValueReps originate in the FIELDS section; failures during unpacking are
// reported against it.
const unpackSection = format.SectionFields

func (r *Reader) unsupported(rep format.ValueRep) error {
	return &types.Error{
		Kind: types.ErrKindUnsupportedType, Section: unpackSection, Offset: r.sr.Tell(),
		Msg: fmt.Sprintf("unsupported value encoding: %s", rep),
		Err: types.ErrUnsupportedType,
	}
}

// unpackValueRep materializes a ValueRep into an owned Value. Non-inlined
// reps seek to their payload; callers that must continue reading at a
// fixed position save and restore it around this call.
func (r *Reader) unpackValueRep(rep format.ValueRep) (value.Value, error) {
	if !rep.Type().Known() {
		return value.Value{}, &types.Error{
			Kind: types.ErrKindUnsupportedType, Section: unpackSection, Offset: r.sr.Tell(),
			Msg: fmt.Sprintf("unknown value type code %d", uint8(rep.Type())),
			Err: types.ErrUnsupportedType,
		}
	}
	if rep.IsInlined() {
		return r.unpackInlined(rep)
	}
	if err := r.sr.SeekSet(int64(rep.Payload())); err != nil {
		return value.Value{}, types.CorruptError(unpackSection, int64(rep.Payload()),
			"value payload offset out of range")
	}
	return r.unpackOffset(rep)
}

// unpackInlined decodes a value carried in the low 32 payload bits.
func (r *Reader) unpackInlined(rep format.ValueRep) (value.Value, error) {
	if rep.IsCompressed() {
		return value.Value{}, types.CorruptError(unpackSection, r.sr.Tell(),
			"inlined value must not be compressed")
	}
	if rep.IsArray() {
		return value.Value{}, types.CorruptError(unpackSection, r.sr.Tell(),
			"inlined value must not be an array")
	}

	d := rep.InlineBits()
	switch rep.Type() {
	case format.DataTypeBool:
		return value.New(d&1 != 0), nil

	case format.DataTypeAssetPath:
		tok, err := r.token(d)
		if err != nil {
			return value.Value{}, err
		}
		return value.New(value.AssetPath{Path: string(tok)}), nil

	case format.DataTypeToken:
		tok, err := r.token(d)
		if err != nil {
			return value.Value{}, err
		}
		return value.New(tok), nil

	case format.DataTypeString:
		s, err := r.stringAt(d)
		if err != nil {
			return value.Value{}, err
		}
		return value.New(s), nil

	case format.DataTypeSpecifier:
		s, ok := types.SpecifierFromOrdinal(d)
		if !ok {
			return value.Value{}, &types.Error{
				Kind: types.ErrKindInvalidSpecifier, Section: unpackSection, Offset: r.sr.Tell(),
				Msg: fmt.Sprintf("invalid specifier ordinal %d", d), Err: types.ErrInvalidSpecifier,
			}
		}
		return value.New(s), nil

	case format.DataTypePermission:
		p, ok := types.PermissionFromOrdinal(d)
		if !ok {
			return value.Value{}, types.CorruptError(unpackSection, r.sr.Tell(),
				fmt.Sprintf("invalid permission ordinal %d", d))
		}
		return value.New(p), nil

	case format.DataTypeVariability:
		v, ok := types.VariabilityFromOrdinal(d)
		if !ok {
			return value.Value{}, types.CorruptError(unpackSection, r.sr.Tell(),
				fmt.Sprintf("invalid variability ordinal %d", d))
		}
		return value.New(v), nil

	case format.DataTypeUChar:
		return value.New(uint8(d)), nil
	case format.DataTypeInt:
		return value.New(int32(d)), nil
	case format.DataTypeUInt:
		return value.New(d), nil
	case format.DataTypeInt64:
		// Stored narrowed to int32; widen with sign.
		return value.New(int64(int32(d))), nil
	case format.DataTypeUInt64:
		return value.New(uint64(d)), nil
	case format.DataTypeHalf:
		return value.New(value.Half(uint16(d))), nil
	case format.DataTypeFloat:
		return value.New(math.Float32frombits(d)), nil
	case format.DataTypeDouble:
		// Stored narrowed to float32; widen.
		return value.New(float64(math.Float32frombits(d))), nil
	case format.DataTypeTimeCode:
		return value.New(value.TimeCode(math.Float32frombits(d))), nil

	case format.DataTypeMatrix2d:
		b := inlineBytes(d)
		var m value.Matrix2d
		m[0][0] = float64(int8(b[0]))
		m[1][1] = float64(int8(b[1]))
		return value.New(m), nil
	case format.DataTypeMatrix3d:
		b := inlineBytes(d)
		var m value.Matrix3d
		m[0][0] = float64(int8(b[0]))
		m[1][1] = float64(int8(b[1]))
		m[2][2] = float64(int8(b[2]))
		return value.New(m), nil
	case format.DataTypeMatrix4d:
		b := inlineBytes(d)
		var m value.Matrix4d
		m[0][0] = float64(int8(b[0]))
		m[1][1] = float64(int8(b[1]))
		m[2][2] = float64(int8(b[2]))
		m[3][3] = float64(int8(b[3]))
		return value.New(m), nil

	// Vectors inline as one int8 per component, widened to the type's
	// precision.
	case format.DataTypeVec2d:
		b := inlineBytes(d)
		return value.New(value.Double2{float64(int8(b[0])), float64(int8(b[1]))}), nil
	case format.DataTypeVec2f:
		b := inlineBytes(d)
		return value.New(value.Float2{float32(int8(b[0])), float32(int8(b[1]))}), nil
	case format.DataTypeVec2h:
		b := inlineBytes(d)
		return value.New(value.Half2{halfFromInt8(b[0]), halfFromInt8(b[1])}), nil
	case format.DataTypeVec2i:
		b := inlineBytes(d)
		return value.New(value.Int2{int32(int8(b[0])), int32(int8(b[1]))}), nil

	case format.DataTypeVec3d:
		b := inlineBytes(d)
		return value.New(value.Double3{float64(int8(b[0])), float64(int8(b[1])), float64(int8(b[2]))}), nil
	case format.DataTypeVec3f:
		b := inlineBytes(d)
		return value.New(value.Float3{float32(int8(b[0])), float32(int8(b[1])), float32(int8(b[2]))}), nil
	case format.DataTypeVec3h:
		b := inlineBytes(d)
		return value.New(value.Half3{halfFromInt8(b[0]), halfFromInt8(b[1]), halfFromInt8(b[2])}), nil
	case format.DataTypeVec3i:
		b := inlineBytes(d)
		return value.New(value.Int3{int32(int8(b[0])), int32(int8(b[1])), int32(int8(b[2]))}), nil

	case format.DataTypeVec4d:
		b := inlineBytes(d)
		return value.New(value.Double4{float64(int8(b[0])), float64(int8(b[1])), float64(int8(b[2])), float64(int8(b[3]))}), nil
	case format.DataTypeVec4f:
		b := inlineBytes(d)
		return value.New(value.Float4{float32(int8(b[0])), float32(int8(b[1])), float32(int8(b[2])), float32(int8(b[3]))}), nil
	case format.DataTypeVec4h:
		b := inlineBytes(d)
		return value.New(value.Half4{halfFromInt8(b[0]), halfFromInt8(b[1]), halfFromInt8(b[2]), halfFromInt8(b[3])}), nil
	case format.DataTypeVec4i:
		b := inlineBytes(d)
		return value.New(value.Int4{int32(int8(b[0])), int32(int8(b[1])), int32(int8(b[2])), int32(int8(b[3]))}), nil

	case format.DataTypeDictionary:
		// Only the empty dictionary inlines.
		return value.New(value.NewDictionary()), nil

	case format.DataTypeValueBlock:
		return value.New(value.Block{}), nil

	case format.DataTypeQuatd, format.DataTypeQuatf, format.DataTypeQuath:
		return value.Value{}, types.CorruptError(unpackSection, r.sr.Tell(),
			"quaternion types must not appear inlined")

	default:
		return value.Value{}, types.CorruptError(unpackSection, r.sr.Tell(),
			fmt.Sprintf("type %s must not appear inlined", rep.Type()))
	}
}

func inlineBytes(d uint32) [4]byte {
	return [4]byte{byte(d), byte(d >> 8), byte(d >> 16), byte(d >> 24)}
}

func halfFromInt8(b byte) value.Half {
	return value.HalfFromFloat32(float32(int8(b)))
}

// unpackOffset decodes a value whose payload is a byte offset; the stream
// is already positioned there.
func (r *Reader) unpackOffset(rep format.ValueRep) (value.Value, error) {
	t := rep.Type()
	if rep.IsArray() && !t.SupportsArray() {
		return value.Value{}, types.CorruptError(unpackSection, r.sr.Tell(),
			fmt.Sprintf("type %s does not support arrays", t))
	}

	switch t {
	case format.DataTypeBool:
		if !rep.IsArray() || rep.IsCompressed() {
			return value.Value{}, r.unsupported(rep)
		}
		count, err := r.readArrayCount(unpackSection)
		if err != nil {
			return value.Value{}, err
		}
		if err := r.checkCount(unpackSection, count, 1); err != nil {
			return value.Value{}, err
		}
		raw, err := r.sr.Bytes(int64(count))
		if err != nil {
			return value.Value{}, types.CorruptError(unpackSection, r.sr.Tell(), "bool array truncated")
		}
		out := make([]bool, count)
		for i, b := range raw {
			out[i] = b != 0
		}
		return value.New(out), nil

	case format.DataTypeUChar:
		if !rep.IsArray() || rep.IsCompressed() {
			return value.Value{}, r.unsupported(rep)
		}
		count, err := r.readArrayCount(unpackSection)
		if err != nil {
			return value.Value{}, err
		}
		if err := r.checkCount(unpackSection, count, 1); err != nil {
			return value.Value{}, err
		}
		raw, err := r.sr.Bytes(int64(count))
		if err != nil {
			return value.Value{}, types.CorruptError(unpackSection, r.sr.Tell(), "uchar array truncated")
		}
		out := make([]uint8, count)
		copy(out, raw)
		return value.New(out), nil

	case format.DataTypeInt:
		if !rep.IsArray() {
			return value.Value{}, r.unsupported(rep)
		}
		v, err := readIntArray32[int32](r, unpackSection, rep.IsCompressed())
		if err != nil {
			return value.Value{}, err
		}
		return value.New(v), nil

	case format.DataTypeUInt:
		if !rep.IsArray() {
			return value.Value{}, r.unsupported(rep)
		}
		v, err := readIntArray32[uint32](r, unpackSection, rep.IsCompressed())
		if err != nil {
			return value.Value{}, err
		}
		return value.New(v), nil

	case format.DataTypeInt64:
		if rep.IsArray() {
			v, err := readIntArray64[int64](r, unpackSection, rep.IsCompressed())
			if err != nil {
				return value.Value{}, err
			}
			return value.New(v), nil
		}
		v, err := r.sr.ReadI64()
		if err != nil {
			return value.Value{}, types.CorruptError(unpackSection, r.sr.Tell(), "int64 truncated")
		}
		return value.New(v), nil

	case format.DataTypeUInt64:
		if rep.IsArray() {
			v, err := readIntArray64[uint64](r, unpackSection, rep.IsCompressed())
			if err != nil {
				return value.Value{}, err
			}
			return value.New(v), nil
		}
		v, err := r.sr.ReadU64()
		if err != nil {
			return value.Value{}, types.CorruptError(unpackSection, r.sr.Tell(), "uint64 truncated")
		}
		return value.New(v), nil

	case format.DataTypeHalf:
		if !rep.IsArray() {
			return value.Value{}, r.unsupported(rep)
		}
		v, err := r.readHalfArray(unpackSection, rep.IsCompressed())
		if err != nil {
			return value.Value{}, err
		}
		return value.New(v), nil

	case format.DataTypeFloat:
		if !rep.IsArray() {
			return value.Value{}, r.unsupported(rep)
		}
		v, err := r.readFloatArray(unpackSection, rep.IsCompressed())
		if err != nil {
			return value.Value{}, err
		}
		return value.New(v), nil

	case format.DataTypeDouble:
		if rep.IsArray() {
			v, err := r.readDoubleArray(unpackSection, rep.IsCompressed())
			if err != nil {
				return value.Value{}, err
			}
			return value.New(v), nil
		}
		if rep.IsCompressed() {
			return value.Value{}, r.unsupported(rep)
		}
		v, err := r.sr.ReadF64()
		if err != nil {
			return value.Value{}, types.CorruptError(unpackSection, r.sr.Tell(), "double truncated")
		}
		return value.New(v), nil

	case format.DataTypeTimeCode:
		if rep.IsArray() {
			v, err := r.readDoubleArray(unpackSection, rep.IsCompressed())
			if err != nil {
				return value.Value{}, err
			}
			out := make([]value.TimeCode, len(v))
			for i, f := range v {
				out[i] = value.TimeCode(f)
			}
			return value.New(out), nil
		}
		v, err := r.sr.ReadF64()
		if err != nil {
			return value.Value{}, types.CorruptError(unpackSection, r.sr.Tell(), "timecode truncated")
		}
		return value.New(value.TimeCode(v)), nil

	case format.DataTypeToken:
		if !rep.IsArray() || rep.IsCompressed() {
			return value.Value{}, r.unsupported(rep)
		}
		toks, err := r.readTokenIndexArray(0)
		if err != nil {
			return value.Value{}, err
		}
		return value.New(toks), nil

	case format.DataTypeString:
		if !rep.IsArray() || rep.IsCompressed() {
			return value.Value{}, r.unsupported(rep)
		}
		strs, err := r.readStringIndexArray()
		if err != nil {
			return value.Value{}, err
		}
		return value.New(strs), nil

	case format.DataTypeAssetPath:
		if !rep.IsArray() || rep.IsCompressed() {
			return value.Value{}, r.unsupported(rep)
		}
		toks, err := r.readTokenIndexArray(int64(r.cfg.MaxAssetPathElements))
		if err != nil {
			return value.Value{}, err
		}
		out := make([]value.AssetPath, len(toks))
		for i, tok := range toks {
			out[i] = value.AssetPath{Path: string(tok)}
		}
		return value.New(out), nil

	case format.DataTypeMatrix2d:
		return unpackPOD[value.Matrix2d](r, rep, 32, readMat2)
	case format.DataTypeMatrix3d:
		return unpackPOD[value.Matrix3d](r, rep, 72, readMat3)
	case format.DataTypeMatrix4d:
		return unpackPOD[value.Matrix4d](r, rep, 128, readMat4)

	case format.DataTypeQuatd:
		return unpackPOD[value.Quatd](r, rep, 32, readVec4[value.Quatd](leF64, 8))
	case format.DataTypeQuatf:
		return unpackPOD[value.Quatf](r, rep, 16, readVec4[value.Quatf](leF32, 4))
	case format.DataTypeQuath:
		return unpackPOD[value.Quath](r, rep, 8, readVec4[value.Quath](leHalf, 2))

	case format.DataTypeVec2d:
		return unpackPOD[value.Double2](r, rep, 16, readVec2[value.Double2](leF64, 8))
	case format.DataTypeVec2f:
		return unpackPOD[value.Float2](r, rep, 8, readVec2[value.Float2](leF32, 4))
	case format.DataTypeVec2h:
		return unpackPOD[value.Half2](r, rep, 4, readVec2[value.Half2](leHalf, 2))
	case format.DataTypeVec2i:
		return unpackPOD[value.Int2](r, rep, 8, readVec2[value.Int2](leI32, 4))

	case format.DataTypeVec3d:
		return unpackPOD[value.Double3](r, rep, 24, readVec3[value.Double3](leF64, 8))
	case format.DataTypeVec3f:
		return unpackPOD[value.Float3](r, rep, 12, readVec3[value.Float3](leF32, 4))
	case format.DataTypeVec3h:
		return unpackPOD[value.Half3](r, rep, 6, readVec3[value.Half3](leHalf, 2))
	case format.DataTypeVec3i:
		return unpackPOD[value.Int3](r, rep, 12, readVec3[value.Int3](leI32, 4))

	case format.DataTypeVec4d:
		return unpackPOD[value.Double4](r, rep, 32, readVec4[value.Double4](leF64, 8))
	case format.DataTypeVec4f:
		return unpackPOD[value.Float4](r, rep, 16, readVec4[value.Float4](leF32, 4))
	case format.DataTypeVec4h:
		return unpackPOD[value.Half4](r, rep, 8, readVec4[value.Half4](leHalf, 2))
	case format.DataTypeVec4i:
		return unpackPOD[value.Int4](r, rep, 16, readVec4[value.Int4](leI32, 4))

	case format.DataTypeDictionary:
		if rep.IsArray() || rep.IsCompressed() {
			return value.Value{}, r.unsupported(rep)
		}
		d, err := r.readDictionary()
		if err != nil {
			return value.Value{}, err
		}
		return value.New(d), nil

	case format.DataTypeTimeSamples:
		if rep.IsArray() || rep.IsCompressed() {
			return value.Value{}, r.unsupported(rep)
		}
		ts, err := r.readTimeSamples()
		if err != nil {
			return value.Value{}, err
		}
		return value.New(ts), nil

	case format.DataTypeTokenListOp:
		op, err := readListOp(r, r.readTokenItems)
		if err != nil {
			return value.Value{}, err
		}
		return value.New(op), nil

	case format.DataTypeStringListOp:
		op, err := readListOp(r, r.readStringItems)
		if err != nil {
			return value.Value{}, err
		}
		return value.New(op), nil

	case format.DataTypePathListOp:
		op, err := readListOp(r, r.readPathItems)
		if err != nil {
			return value.Value{}, err
		}
		return value.New(op), nil

	case format.DataTypeIntListOp:
		op, err := readListOp(r, readRawItems[int32](r, 4, leI32))
		if err != nil {
			return value.Value{}, err
		}
		return value.New(op), nil

	case format.DataTypeInt64ListOp:
		op, err := readListOp(r, readRawItems[int64](r, 8, leI64b))
		if err != nil {
			return value.Value{}, err
		}
		return value.New(op), nil

	case format.DataTypeUIntListOp:
		op, err := readListOp(r, readRawItems[uint32](r, 4, leU32b))
		if err != nil {
			return value.Value{}, err
		}
		return value.New(op), nil

	case format.DataTypeUInt64ListOp:
		op, err := readListOp(r, readRawItems[uint64](r, 8, leU64b))
		if err != nil {
			return value.Value{}, err
		}
		return value.New(op), nil

	case format.DataTypePathVector:
		paths, err := r.readPathItems()
		if err != nil {
			return value.Value{}, err
		}
		return value.NewTyped(value.TypePathVector, paths), nil

	case format.DataTypeTokenVector:
		toks, err := r.readTokenItems()
		if err != nil {
			return value.Value{}, err
		}
		return value.NewTyped(value.TypeTokenVector, toks), nil

	case format.DataTypeStringVector:
		strs, err := r.readStringItems()
		if err != nil {
			return value.Value{}, err
		}
		return value.NewTyped(value.TypeStringVector, strs), nil

	case format.DataTypeDoubleVector:
		v, err := r.readDoubleArray(unpackSection, rep.IsCompressed())
		if err != nil {
			return value.Value{}, err
		}
		return value.NewTyped(value.TypeDoubleVector, v), nil

	case format.DataTypeVariantSelectionMap:
		m, err := r.readVariantSelectionMap()
		if err != nil {
			return value.Value{}, err
		}
		return value.New(m), nil

	default:
		return value.Value{}, r.unsupported(rep)
	}
}

// unpackPOD handles the raw scalar and array forms shared by vectors,
// matrices, and quaternions. These payloads are never compressed.
func unpackPOD[T any](r *Reader, rep format.ValueRep, elemSize int64, fn func([]byte) T) (value.Value, error) {
	if rep.IsCompressed() {
		return value.Value{}, types.CorruptError(unpackSection, r.sr.Tell(),
			fmt.Sprintf("type %s is never stored compressed", rep.Type()))
	}
	if rep.IsArray() {
		count, err := r.readArrayCount(unpackSection)
		if err != nil {
			return value.Value{}, err
		}
		if err := r.checkCount(unpackSection, count, elemSize); err != nil {
			return value.Value{}, err
		}
		v, err := rawNumericArray(r, unpackSection, count, elemSize, fn)
		if err != nil {
			return value.Value{}, err
		}
		return value.New(v), nil
	}
	raw, err := r.sr.Bytes(elemSize)
	if err != nil {
		return value.Value{}, types.CorruptError(unpackSection, r.sr.Tell(), "value data truncated")
	}
	return value.New(fn(raw)), nil
}

// readTokenIndexArray reads `u64 count; u32[count]` token references.
// maxElements of 0 means unlimited beyond the global array ceiling.
func (r *Reader) readTokenIndexArray(maxElements int64) ([]value.Token, error) {
	count, err := r.sr.ReadU64()
	if err != nil {
		return nil, types.CorruptError(unpackSection, r.sr.Tell(), "failed to read count")
	}
	if maxElements > 0 && int64(count) > maxElements {
		return nil, types.LimitError(unpackSection, r.sr.Tell(),
			fmt.Sprintf("element count %d exceeds limit %d", count, maxElements))
	}
	if err := r.checkCount(unpackSection, count, 4); err != nil {
		return nil, err
	}
	out := make([]value.Token, count)
	for i := range out {
		idx, err := r.sr.ReadU32()
		if err != nil {
			return nil, types.CorruptError(unpackSection, r.sr.Tell(), "token index array truncated")
		}
		tok, err := r.token(idx)
		if err != nil {
			return nil, err
		}
		out[i] = tok
	}
	return out, nil
}

func (r *Reader) readTokenItems() ([]value.Token, error) {
	return r.readTokenIndexArray(0)
}

func (r *Reader) readStringItems() ([]string, error) {
	count, err := r.sr.ReadU64()
	if err != nil {
		return nil, types.CorruptError(unpackSection, r.sr.Tell(), "failed to read count")
	}
	if err := r.checkCount(unpackSection, count, 4); err != nil {
		return nil, err
	}
	out := make([]string, count)
	for i := range out {
		idx, err := r.sr.ReadU32()
		if err != nil {
			return nil, types.CorruptError(unpackSection, r.sr.Tell(), "string index array truncated")
		}
		s, err := r.stringAt(idx)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func (r *Reader) readPathItems() ([]types.Path, error) {
	count, err := r.sr.ReadU64()
	if err != nil {
		return nil, types.CorruptError(unpackSection, r.sr.Tell(), "failed to read count")
	}
	if err := r.checkCount(unpackSection, count, 4); err != nil {
		return nil, err
	}
	out := make([]types.Path, count)
	for i := range out {
		idx, err := r.sr.ReadU32()
		if err != nil {
			return nil, types.CorruptError(unpackSection, r.sr.Tell(), "path index array truncated")
		}
		p, err := r.path(idx)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func readRawItems[T any](r *Reader, elemSize int64, fn func([]byte) T) func() ([]T, error) {
	return func() ([]T, error) {
		count, err := r.sr.ReadU64()
		if err != nil {
			return nil, types.CorruptError(unpackSection, r.sr.Tell(), "failed to read count")
		}
		if err := r.checkCount(unpackSection, count, elemSize); err != nil {
			return nil, err
		}
		return rawNumericArray(r, unpackSection, count, elemSize, fn)
	}
}

// List-op header bits.
const (
	listOpExplicitBit     = 1 << 0
	listOpHasExplicitBit  = 1 << 1
	listOpHasAddedBit     = 1 << 2
	listOpHasDeletedBit   = 1 << 3
	listOpHasOrderedBit   = 1 << 4
	listOpHasPrependedBit = 1 << 5
	listOpHasAppendedBit  = 1 << 6
)

// readListOp reads `u8 headerBits` then one item stream per set flag.
// Streams are always read in the fixed order explicit, added, prepended,
// appended, deleted, ordered.
func readListOp[T any](r *Reader, readItems func() ([]T, error)) (value.ListOp[T], error) {
	var op value.ListOp[T]
	bits, err := r.sr.ReadU8()
	if err != nil {
		return op, types.CorruptError(unpackSection, r.sr.Tell(), "failed to read list-op header")
	}
	op.Explicit = bits&listOpExplicitBit != 0

	if bits&listOpHasExplicitBit != 0 {
		if op.ExplicitItems, err = readItems(); err != nil {
			return op, err
		}
	}
	if bits&listOpHasAddedBit != 0 {
		if op.AddedItems, err = readItems(); err != nil {
			return op, err
		}
	}
	if bits&listOpHasPrependedBit != 0 {
		if op.PrependedItems, err = readItems(); err != nil {
			return op, err
		}
	}
	if bits&listOpHasAppendedBit != 0 {
		if op.AppendedItems, err = readItems(); err != nil {
			return op, err
		}
	}
	if bits&listOpHasDeletedBit != 0 {
		if op.DeletedItems, err = readItems(); err != nil {
			return op, err
		}
	}
	if bits&listOpHasOrderedBit != 0 {
		if op.OrderedItems, err = readItems(); err != nil {
			return op, err
		}
	}
	return op, nil
}

// readDictionary decodes `u64 count` entries of {string key, i64
// relOffset, ValueRep}. Each entry's value is unpacked recursively with
// the read position saved and restored.
func (r *Reader) readDictionary() (value.Dictionary, error) {
	dict := value.NewDictionary()
	count, err := r.sr.ReadU64()
	if err != nil {
		return dict, types.CorruptError(unpackSection, r.sr.Tell(), "failed to read dictionary size")
	}
	if count > uint64(r.cfg.MaxDictElements) {
		return dict, types.LimitError(unpackSection, r.sr.Tell(),
			fmt.Sprintf("dictionary holds %d elements, limit %d", count, r.cfg.MaxDictElements))
	}

	for i := uint64(0); i < count; i++ {
		keyIdx, err := r.sr.ReadU32()
		if err != nil {
			return dict, types.CorruptError(unpackSection, r.sr.Tell(), "failed to read dictionary key")
		}
		key, err := r.stringAt(keyIdx)
		if err != nil {
			return dict, err
		}

		offset, err := r.sr.ReadI64()
		if err != nil {
			return dict, types.CorruptError(unpackSection, r.sr.Tell(), "failed to read dictionary offset")
		}
		// The offset is relative to its own start; -8 compensates for
		// having consumed it.
		if err := r.sr.SeekFromCurrent(offset - 8); err != nil {
			return dict, types.CorruptError(unpackSection, r.sr.Tell(),
				fmt.Sprintf("invalid dictionary value offset %d", offset))
		}

		repBits, err := r.sr.ReadU64()
		if err != nil {
			return dict, types.CorruptError(unpackSection, r.sr.Tell(), "failed to read dictionary value rep")
		}
		next := r.sr.Tell()
		v, err := r.unpackValueRep(format.ValueRep(repBits))
		if err != nil {
			return dict, err
		}
		dict.Set(key, v)
		if err := r.sr.SeekSet(next); err != nil {
			return dict, types.CorruptError(unpackSection, next, "failed to restore dictionary position")
		}
	}
	return dict, nil
}

// readTimeSamples decodes the recursive-offset TimeSamples layout: an
// offset to the times rep, then an offset to the value rep table.
func (r *Reader) readTimeSamples() (value.TimeSamples, error) {
	var ts value.TimeSamples

	offset, err := r.sr.ReadI64()
	if err != nil {
		return ts, types.CorruptError(unpackSection, r.sr.Tell(), "failed to read times offset")
	}
	if err := r.sr.SeekFromCurrent(offset - 8); err != nil {
		return ts, types.CorruptError(unpackSection, r.sr.Tell(),
			fmt.Sprintf("invalid times offset %d", offset))
	}

	timesBits, err := r.sr.ReadU64()
	if err != nil {
		return ts, types.CorruptError(unpackSection, r.sr.Tell(), "failed to read times rep")
	}
	valuesHeaderPos := r.sr.Tell()

	timesValue, err := r.unpackValueRep(format.ValueRep(timesBits))
	if err != nil {
		return ts, err
	}
	times, ok := value.As[[]float64](timesValue)
	if !ok {
		return ts, types.CorruptError(unpackSection, r.sr.Tell(),
			fmt.Sprintf("time samples times must be double[], got %s", timesValue.TypeName()))
	}
	ts.Times = times

	if err := r.sr.SeekSet(valuesHeaderPos); err != nil {
		return ts, types.CorruptError(unpackSection, valuesHeaderPos, "failed to seek to values header")
	}
	offset, err = r.sr.ReadI64()
	if err != nil {
		return ts, types.CorruptError(unpackSection, r.sr.Tell(), "failed to read values offset")
	}
	if err := r.sr.SeekFromCurrent(offset - 8); err != nil {
		return ts, types.CorruptError(unpackSection, r.sr.Tell(),
			fmt.Sprintf("invalid values offset %d", offset))
	}

	numValues, err := r.sr.ReadU64()
	if err != nil {
		return ts, types.CorruptError(unpackSection, r.sr.Tell(), "failed to read value count")
	}
	if numValues != uint64(len(ts.Times)) {
		return ts, types.CorruptError(unpackSection, r.sr.Tell(),
			fmt.Sprintf("time samples count mismatch: %d times, %d values", len(ts.Times), numValues))
	}

	ts.Values = make([]value.Value, 0, numValues)
	for i := uint64(0); i < numValues; i++ {
		repBits, err := r.sr.ReadU64()
		if err != nil {
			return ts, types.CorruptError(unpackSection, r.sr.Tell(), "failed to read sample rep")
		}
		next := r.sr.Tell()
		v, err := r.unpackValueRep(format.ValueRep(repBits))
		if err != nil {
			return ts, err
		}
		ts.Values = append(ts.Values, v)
		if err := r.sr.SeekSet(next); err != nil {
			return ts, types.CorruptError(unpackSection, next, "failed to restore sample position")
		}
	}

	// Skip past the rep table; clamp at the buffer end since a trailing
	// table has nothing after it.
	if skip := int64(numValues) * 8; r.sr.Tell()+skip <= r.sr.Size() {
		_ = r.sr.SeekFromCurrent(skip)
	} else {
		_ = r.sr.SeekSet(r.sr.Size())
	}

	if err := ts.Validate(); err != nil {
		return ts, err
	}
	return ts, nil
}

// readVariantSelectionMap decodes `u64 count` pairs of string indices.
func (r *Reader) readVariantSelectionMap() (value.VariantSelectionMap, error) {
	count, err := r.sr.ReadU64()
	if err != nil {
		return nil, types.CorruptError(unpackSection, r.sr.Tell(), "failed to read selection count")
	}
	if count > uint64(r.cfg.MaxDictElements) {
		return nil, types.LimitError(unpackSection, r.sr.Tell(),
			fmt.Sprintf("variant selection map holds %d entries, limit %d", count, r.cfg.MaxDictElements))
	}
	m := make(value.VariantSelectionMap, count)
	for i := uint64(0); i < count; i++ {
		keyIdx, err := r.sr.ReadU32()
		if err != nil {
			return nil, types.CorruptError(unpackSection, r.sr.Tell(), "selection map truncated")
		}
		valIdx, err := r.sr.ReadU32()
		if err != nil {
			return nil, types.CorruptError(unpackSection, r.sr.Tell(), "selection map truncated")
		}
		key, err := r.stringAt(keyIdx)
		if err != nil {
			return nil, err
		}
		val, err := r.stringAt(valIdx)
		if err != nil {
			return nil, err
		}
		m[key] = val
	}
	return m, nil
}
