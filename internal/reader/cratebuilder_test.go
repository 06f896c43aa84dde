package reader

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/joshuapare/cratekit/internal/codec"
	"github.com/joshuapare/cratekit/internal/format"
)

// crateBuilder assembles well-formed crate byte buffers for tests. The
// data area (value payloads) starts right after the bootstrap block;
// sections and the TOC follow it.
type crateBuilder struct {
	t       *testing.T
	version format.Version

	tokens   []string
	tokenIdx map[string]uint32
	strings  []uint32 // token indices

	fields          []Field
	fieldsetIndices []uint32

	specPathIdx  []uint32
	specFieldSet []uint32
	specTypes    []uint32

	pathIndexes         []int32
	elementTokenIndexes []int32
	jumps               []int32

	data []byte // value payload area
}

const dataBase = int64(format.BootstrapSize)

func newCrateBuilder(t *testing.T) *crateBuilder {
	return &crateBuilder{
		t:        t,
		version:  format.Version{Major: 0, Minor: 8, Patch: 0},
		tokenIdx: map[string]uint32{},
	}
}

// tok interns a token and returns its index.
func (cb *crateBuilder) tok(s string) uint32 {
	if idx, ok := cb.tokenIdx[s]; ok {
		return idx
	}
	idx := uint32(len(cb.tokens))
	cb.tokens = append(cb.tokens, s)
	cb.tokenIdx[s] = idx
	return idx
}

// str interns a string (a token reference in the string table).
func (cb *crateBuilder) str(s string) uint32 {
	tokIdx := cb.tok(s)
	for i, t := range cb.strings {
		if t == tokIdx {
			return uint32(i)
		}
	}
	cb.strings = append(cb.strings, tokIdx)
	return uint32(len(cb.strings) - 1)
}

// blob appends payload bytes to the data area, returning their absolute
// file offset.
func (cb *crateBuilder) blob(b []byte) uint64 {
	off := dataBase + int64(len(cb.data))
	cb.data = append(cb.data, b...)
	return uint64(off)
}

// field registers (name, rep) and returns the field index.
func (cb *crateBuilder) field(name string, rep format.ValueRep) uint32 {
	cb.fields = append(cb.fields, Field{TokenIndex: cb.tok(name), Rep: rep})
	return uint32(len(cb.fields) - 1)
}

// fieldset appends a sentinel-terminated run and returns its start index.
func (cb *crateBuilder) fieldset(fieldIndices ...uint32) uint32 {
	start := uint32(len(cb.fieldsetIndices))
	cb.fieldsetIndices = append(cb.fieldsetIndices, fieldIndices...)
	cb.fieldsetIndices = append(cb.fieldsetIndices, format.InvalidIndex)
	return start
}

func (cb *crateBuilder) spec(pathIdx, fieldsetIdx uint32, st uint32) {
	cb.specPathIdx = append(cb.specPathIdx, pathIdx)
	cb.specFieldSet = append(cb.specFieldSet, fieldsetIdx)
	cb.specTypes = append(cb.specTypes, st)
}

// pathEntry appends one position of the three parallel PATHS streams.
// elemToken < 0 flags a property path (its absolute value indexes the
// token table).
func (cb *crateBuilder) pathEntry(pathIndex uint32, elemToken int32, jump int32) {
	cb.pathIndexes = append(cb.pathIndexes, int32(pathIndex))
	cb.elementTokenIndexes = append(cb.elementTokenIndexes, elemToken)
	cb.jumps = append(cb.jumps, jump)
}

// Inline rep helpers.

func inlineRep(t format.DataType, payload uint32) format.ValueRep {
	return format.MakeValueRep(t, true, false, false, uint64(payload))
}

func offsetRep(t format.DataType, array, compressed bool, offset uint64) format.ValueRep {
	return format.MakeValueRep(t, false, array, compressed, offset)
}

// Little-endian scratch writers.

func u32le(v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return b[:]
}

func u64le(v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return b[:]
}

func i64le(v int64) []byte { return u64le(uint64(v)) }

func f32le(v float32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
	return b[:]
}

func f64le(v float64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	return b[:]
}

// tokenArrayBlob writes `u64 count; u32 tokenIndex...`.
func (cb *crateBuilder) tokenArrayBlob(tokens ...string) uint64 {
	out := u64le(uint64(len(tokens)))
	for _, s := range tokens {
		out = append(out, u32le(cb.tok(s))...)
	}
	return cb.blob(out)
}

// float3Blob writes one raw float3.
func (cb *crateBuilder) float3Blob(x, y, z float32) uint64 {
	out := append(f32le(x), f32le(y)...)
	out = append(out, f32le(z)...)
	return cb.blob(out)
}

// compressedIntArrayBlob writes `u64 count; u64 compSize; bytes`.
func (cb *crateBuilder) compressedIntArrayBlob(values []int32) uint64 {
	enc, err := codec.EncodeInts32(values)
	if err != nil {
		cb.t.Fatalf("encode ints: %v", err)
	}
	out := u64le(uint64(len(values)))
	out = append(out, u64le(uint64(len(enc)))...)
	out = append(out, enc...)
	return cb.blob(out)
}

// doubleArrayBlob writes a raw double array (`u64 count; f64...`).
func (cb *crateBuilder) doubleArrayBlob(values []float64) uint64 {
	out := u64le(uint64(len(values)))
	for _, v := range values {
		out = append(out, f64le(v)...)
	}
	return cb.blob(out)
}

// timeSamplesBlob writes the recursive-offset TimeSamples layout with the
// times rep and value reps stored inline in the block.
func (cb *crateBuilder) timeSamplesBlob(timesRep format.ValueRep, valueReps []format.ValueRep) uint64 {
	out := i64le(8) // times rep follows immediately
	out = append(out, u64le(uint64(timesRep))...)
	out = append(out, i64le(8)...) // values follow immediately
	out = append(out, u64le(uint64(len(valueReps)))...)
	for _, rep := range valueReps {
		out = append(out, u64le(uint64(rep))...)
	}
	return cb.blob(out)
}

// pathListOpBlob writes a list-op with the given header bits and one
// path-index stream per populated bucket (in on-disk bucket order).
func (cb *crateBuilder) pathListOpBlob(bits uint8, buckets ...[]uint32) uint64 {
	out := []byte{bits}
	for _, bucket := range buckets {
		out = append(out, u64le(uint64(len(bucket)))...)
		for _, idx := range bucket {
			out = append(out, u32le(idx)...)
		}
	}
	return cb.blob(out)
}

// build assembles the final crate file.
func (cb *crateBuilder) build() []byte {
	buf := make([]byte, format.BootstrapSize)
	copy(buf, format.Magic)
	buf[8], buf[9], buf[10] = cb.version.Major, cb.version.Minor, cb.version.Patch

	buf = append(buf, cb.data...)

	// Keep the TOC comfortably past the minimum legal offset.
	for len(buf) < 2*format.MinTOCOffset {
		buf = append(buf, 0)
	}

	var sections []format.Section
	addSection := func(name string, body []byte) {
		sections = append(sections, format.Section{
			Name: name, Start: int64(len(buf)), Size: int64(len(body)),
		})
		buf = append(buf, body...)
	}

	// TOKENS
	{
		var chars []byte
		for _, tok := range cb.tokens {
			chars = append(chars, tok...)
			chars = append(chars, 0)
		}
		compressed, err := codec.CompressLZ4(chars)
		if err != nil {
			cb.t.Fatalf("compress tokens: %v", err)
		}
		body := u64le(uint64(len(cb.tokens)))
		body = append(body, u64le(uint64(len(chars)))...)
		body = append(body, u64le(uint64(len(compressed)))...)
		body = append(body, compressed...)
		addSection(format.SectionTokens, body)
	}

	// STRINGS
	{
		body := u64le(uint64(len(cb.strings)))
		for _, idx := range cb.strings {
			body = append(body, u32le(idx)...)
		}
		addSection(format.SectionStrings, body)
	}

	// FIELDS
	{
		tokenIndexes := make([]uint32, len(cb.fields))
		repsRaw := make([]byte, 0, 8*len(cb.fields))
		for i, f := range cb.fields {
			tokenIndexes[i] = f.TokenIndex
			repsRaw = append(repsRaw, u64le(uint64(f.Rep))...)
		}
		body := u64le(uint64(len(cb.fields)))
		body = append(body, cb.compressedUints(tokenIndexes)...)
		repsCompressed, err := codec.CompressLZ4(repsRaw)
		if err != nil {
			cb.t.Fatalf("compress reps: %v", err)
		}
		body = append(body, u64le(uint64(len(repsCompressed)))...)
		body = append(body, repsCompressed...)
		addSection(format.SectionFields, body)
	}

	// FIELDSETS
	{
		body := u64le(uint64(len(cb.fieldsetIndices)))
		body = append(body, cb.compressedUints(cb.fieldsetIndices)...)
		addSection(format.SectionFieldSets, body)
	}

	// SPECS
	{
		body := u64le(uint64(len(cb.specPathIdx)))
		body = append(body, cb.compressedUints(cb.specPathIdx)...)
		body = append(body, cb.compressedUints(cb.specFieldSet)...)
		body = append(body, cb.compressedUints(cb.specTypes)...)
		addSection(format.SectionSpecs, body)
	}

	// PATHS
	{
		body := u64le(uint64(len(cb.pathIndexes)))
		body = append(body, u64le(uint64(len(cb.pathIndexes)))...)
		body = append(body, cb.compressedInts(cb.pathIndexes)...)
		body = append(body, cb.compressedInts(cb.elementTokenIndexes)...)
		body = append(body, cb.compressedInts(cb.jumps)...)
		addSection(format.SectionPaths, body)
	}

	tocOffset := int64(len(buf))
	buf = append(buf, u64le(uint64(len(sections)))...)
	for _, sec := range sections {
		var name [format.SectionNameMaxLength + 1]byte
		copy(name[:], sec.Name)
		buf = append(buf, name[:]...)
		buf = append(buf, i64le(sec.Start)...)
		buf = append(buf, i64le(sec.Size)...)
	}

	binary.LittleEndian.PutUint64(buf[16:], uint64(tocOffset))
	return buf
}

func (cb *crateBuilder) compressedUints(values []uint32) []byte {
	enc, err := codec.EncodeUints32(values)
	if err != nil {
		cb.t.Fatalf("encode uints: %v", err)
	}
	out := u64le(uint64(len(enc)))
	return append(out, enc...)
}

func (cb *crateBuilder) compressedInts(values []int32) []byte {
	enc, err := codec.EncodeInts32(values)
	if err != nil {
		cb.t.Fatalf("encode ints: %v", err)
	}
	out := u64le(uint64(len(enc)))
	return append(out, enc...)
}
