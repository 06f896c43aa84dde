package reader

import (
	"fmt"

	"github.com/joshuapare/cratekit/internal/codec"
	"github.com/joshuapare/cratekit/internal/format"
	"github.com/joshuapare/cratekit/pkg/types"
	"github.com/joshuapare/cratekit/pkg/value"
)

func (r *Reader) seekSection(name string) (format.Section, error) {
	sec, ok := r.toc.Find(name)
	if !ok {
		return format.Section{}, types.CorruptError(name, 0, "section missing")
	}
	if err := r.sr.SeekSet(sec.Start); err != nil {
		return format.Section{}, types.CorruptError(name, sec.Start, "failed to seek to section")
	}
	return sec, nil
}

// readCompressedStream reads one `u64 size; byte[size]` compressed integer
// stream and decodes it to count 32-bit values.
func (r *Reader) readCompressedStream(section string, count uint64) ([]uint32, error) {
	size, err := r.sr.ReadU64()
	if err != nil {
		return nil, types.CorruptError(section, r.sr.Tell(), "failed to read compressed stream size")
	}
	buf, err := r.sr.Bytes(int64(size))
	if err != nil {
		return nil, types.CorruptError(section, r.sr.Tell(), "compressed stream truncated")
	}
	out, err := codec.DecodeUints32(buf, int(count))
	if err != nil {
		return nil, sectionErr(section, r.sr.Tell(), err)
	}
	return out, nil
}

// sectionErr stamps a decode error with section/offset context if it does
// not already carry one.
func sectionErr(section string, offset int64, err error) error {
	if te, ok := err.(*types.Error); ok {
		if te.Section == "" {
			return &types.Error{Kind: te.Kind, Section: section, Offset: offset, Msg: te.Msg, Err: te.Err}
		}
		return te
	}
	return &types.Error{Kind: types.ErrKindCorrupt, Section: section, Offset: offset,
		Msg: err.Error(), Err: types.ErrCorrupt}
}

// readTokens decodes `u64 count; u64 uncompressedSize; u64 compressedSize;
// lz4(bytes)` into the interned token table.
func (r *Reader) readTokens() error {
	const section = format.SectionTokens
	if _, err := r.seekSection(section); err != nil {
		return err
	}
	count, err := r.sr.ReadU64()
	if err != nil {
		return types.CorruptError(section, r.sr.Tell(), "failed to read token count")
	}
	uncompressedSize, err := r.sr.ReadU64()
	if err != nil {
		return types.CorruptError(section, r.sr.Tell(), "failed to read uncompressed size")
	}
	compressedSize, err := r.sr.ReadU64()
	if err != nil {
		return types.CorruptError(section, r.sr.Tell(), "failed to read compressed size")
	}
	if err := r.charge(section, int64(uncompressedSize)); err != nil {
		return err
	}
	compressed, err := r.sr.Bytes(int64(compressedSize))
	if err != nil {
		return types.CorruptError(section, r.sr.Tell(), "compressed token data truncated")
	}
	chars, err := codec.DecompressLZ4(compressed, int64(uncompressedSize))
	if err != nil {
		return sectionErr(section, r.sr.Tell(), err)
	}

	// Split count NUL-terminated strings.
	r.tokens = make([]value.Token, 0, count)
	rest := chars
	for i := uint64(0); i < count; i++ {
		end := 0
		for end < len(rest) && rest[end] != 0 {
			end++
		}
		if end >= len(rest) && count-i > 1 {
			return types.CorruptError(section, r.sr.Tell(),
				fmt.Sprintf("token table holds fewer than %d strings", count))
		}
		r.tokens = append(r.tokens, value.Token(rest[:end]))
		if end < len(rest) {
			rest = rest[end+1:]
		} else {
			rest = nil
		}
	}
	return nil
}

// readStrings decodes the string table: a vector of token indices.
func (r *Reader) readStrings() error {
	const section = format.SectionStrings
	if _, err := r.seekSection(section); err != nil {
		return err
	}
	indices, err := r.readIndexVector(section)
	if err != nil {
		return err
	}
	for _, idx := range indices {
		if idx != format.InvalidIndex && int(idx) >= len(r.tokens) {
			return types.CorruptError(section, r.sr.Tell(),
				fmt.Sprintf("string entry references token %d of %d", idx, len(r.tokens)))
		}
	}
	r.stringIndices = indices
	return nil
}

// readIndexVector reads `u64 count; u32[count]`.
func (r *Reader) readIndexVector(section string) ([]uint32, error) {
	count, err := r.sr.ReadU64()
	if err != nil {
		return nil, types.CorruptError(section, r.sr.Tell(), "failed to read index count")
	}
	if err := r.checkCount(section, count, 4); err != nil {
		return nil, err
	}
	out := make([]uint32, count)
	for i := range out {
		v, err := r.sr.ReadU32()
		if err != nil {
			return nil, types.CorruptError(section, r.sr.Tell(), "index vector truncated")
		}
		out[i] = v
	}
	return out, nil
}

// readFields decodes the field table: an integer-compressed token index
// stream followed by an LZ4 block of ValueRep bit patterns.
func (r *Reader) readFields() error {
	const section = format.SectionFields
	if _, err := r.seekSection(section); err != nil {
		return err
	}
	numFields, err := r.sr.ReadU64()
	if err != nil {
		return types.CorruptError(section, r.sr.Tell(), "failed to read field count")
	}
	if err := r.checkCount(section, numFields, 12); err != nil {
		return err
	}

	tokenIndexes, err := r.readCompressedStream(section, numFields)
	if err != nil {
		return err
	}

	repsSize, err := r.sr.ReadU64()
	if err != nil {
		return types.CorruptError(section, r.sr.Tell(), "failed to read reps size")
	}
	repsCompressed, err := r.sr.Bytes(int64(repsSize))
	if err != nil {
		return types.CorruptError(section, r.sr.Tell(), "reps data truncated")
	}
	repsRaw, err := codec.DecompressLZ4(repsCompressed, int64(numFields)*8)
	if err != nil {
		return sectionErr(section, r.sr.Tell(), err)
	}

	r.fields = make([]Field, numFields)
	for i := uint64(0); i < numFields; i++ {
		bits := leU64(repsRaw[i*8:])
		tokIdx := tokenIndexes[i]
		if int(tokIdx) >= len(r.tokens) {
			return types.CorruptError(section, r.sr.Tell(),
				fmt.Sprintf("field %d references token %d of %d", i, tokIdx, len(r.tokens)))
		}
		r.fields[i] = Field{TokenIndex: tokIdx, Rep: format.ValueRep(bits)}
	}
	return nil
}

func leU64(b []byte) uint64 {
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}

// readFieldSets decodes the fieldset index array, partitioned by the
// sentinel index.
func (r *Reader) readFieldSets() error {
	const section = format.SectionFieldSets
	if _, err := r.seekSection(section); err != nil {
		return err
	}
	numFieldSets, err := r.sr.ReadU64()
	if err != nil {
		return types.CorruptError(section, r.sr.Tell(), "failed to read fieldset count")
	}
	if err := r.checkCount(section, numFieldSets, 4); err != nil {
		return err
	}
	indices, err := r.readCompressedStream(section, numFieldSets)
	if err != nil {
		return err
	}
	r.fieldsetIndices = indices
	return nil
}

// readSpecs decodes the three parallel spec streams.
func (r *Reader) readSpecs() error {
	const section = format.SectionSpecs
	if _, err := r.seekSection(section); err != nil {
		return err
	}
	numSpecs, err := r.sr.ReadU64()
	if err != nil {
		return types.CorruptError(section, r.sr.Tell(), "failed to read spec count")
	}
	if err := r.checkCount(section, numSpecs, 12); err != nil {
		return err
	}

	pathIndexes, err := r.readCompressedStream(section, numSpecs)
	if err != nil {
		return err
	}
	fieldSetIndexes, err := r.readCompressedStream(section, numSpecs)
	if err != nil {
		return err
	}
	specTypes, err := r.readCompressedStream(section, numSpecs)
	if err != nil {
		return err
	}

	r.specs = make([]Spec, numSpecs)
	for i := range r.specs {
		r.specs[i] = Spec{
			PathIndex:     pathIndexes[i],
			FieldSetIndex: fieldSetIndexes[i],
			Type:          types.SpecType(specTypes[i]),
		}
	}
	return nil
}

// buildLiveFieldSets unpacks every field of every fieldset partition into
// (name, value) pairs.
func (r *Reader) buildLiveFieldSets() error {
	r.liveFieldSets = make(map[uint32][]FieldValue)

	start := 0
	for start <= len(r.fieldsetIndices) {
		end := start
		for end < len(r.fieldsetIndices) && r.fieldsetIndices[end] != format.InvalidIndex {
			end++
		}
		if start == end && end >= len(r.fieldsetIndices) {
			break
		}

		pairs := make([]FieldValue, 0, end-start)
		for _, fieldIndex := range r.fieldsetIndices[start:end] {
			if int(fieldIndex) >= len(r.fields) {
				return types.CorruptError(format.SectionFieldSets, r.sr.Tell(),
					fmt.Sprintf("fieldset references field %d of %d", fieldIndex, len(r.fields)))
			}
			field := r.fields[fieldIndex]
			name, err := r.token(field.TokenIndex)
			if err != nil {
				return err
			}
			v, err := r.unpackValueRep(field.Rep)
			if err != nil {
				return err
			}
			pairs = append(pairs, FieldValue{Name: string(name), Value: v})
		}
		r.liveFieldSets[uint32(start)] = pairs
		start = end + 1
	}
	return nil
}
