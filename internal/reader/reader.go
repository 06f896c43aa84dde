// Package reader decodes the binary crate container: it reads the indexed
// tables (tokens, strings, fields, fieldsets, specs, paths), materializes
// every field's ValueRep into a type-erased value, and assembles the
// generic prim tree consumed by the public usd package.
package reader

import (
	"fmt"

	"github.com/joshuapare/cratekit/internal/format"
	"github.com/joshuapare/cratekit/internal/stream"
	"github.com/joshuapare/cratekit/pkg/types"
	"github.com/joshuapare/cratekit/pkg/value"
)

// Field pairs a name token with the encoded location of its value.
type Field struct {
	TokenIndex uint32
	Rep        format.ValueRep
}

// Spec relates a path to its fieldset and record kind.
type Spec struct {
	PathIndex     uint32
	FieldSetIndex uint32
	Type          types.SpecType
}

// FieldValue is one decoded (name, value) pair of a live fieldset.
type FieldValue struct {
	Name  string
	Value value.Value
}

// Reader owns all indexed tables for the lifetime of a decode. It is not
// safe for concurrent use; the produced Stage contains only owned data and
// carries no references back into the byte buffer.
type Reader struct {
	sr  *stream.Reader
	cfg types.Config

	version format.Version
	toc     format.TOC

	tokens          []value.Token
	stringIndices   []uint32
	fields          []Field
	fieldsetIndices []uint32
	specs           []Spec
	paths           []types.Path
	elemPaths       []types.Path
	nodes           []Node

	liveFieldSets map[uint32][]FieldValue
	rootNode      uint32 // path index of the absolute root

	budget int64 // remaining allocation budget in bytes
	warns  []string
}

// Open validates the bootstrap block and table of contents. Section
// decoding happens in Decode.
func Open(data []byte, cfg types.Config) (*Reader, error) {
	sr := stream.New(data)
	bs, err := format.ReadBootstrap(sr)
	if err != nil {
		return nil, err
	}
	toc, err := format.ReadTOC(sr, bs.TOCOffset)
	if err != nil {
		return nil, err
	}
	r := &Reader{
		sr:      sr,
		cfg:     cfg,
		version: bs.Version,
		toc:     toc,
		budget:  cfg.MaxMemoryBudgetMB << 20,
	}
	unknown, err := toc.ValidateRequired()
	for _, name := range unknown {
		r.warnf("skipping unknown TOC section %q", name)
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Version returns the crate format version.
func (r *Reader) Version() format.Version { return r.version }

// Decode reads every section and builds the live fieldsets. It must be
// called once before BuildStage.
func (r *Reader) Decode() error {
	if err := r.readTokens(); err != nil {
		return err
	}
	if err := r.readStrings(); err != nil {
		return err
	}
	if err := r.readFields(); err != nil {
		return err
	}
	if err := r.readFieldSets(); err != nil {
		return err
	}
	if err := r.readPaths(); err != nil {
		return err
	}
	if err := r.readSpecs(); err != nil {
		return err
	}
	return r.buildLiveFieldSets()
}

// Warnings returns the accumulated non-fatal condition log.
func (r *Reader) Warnings() []string { return r.warns }

func (r *Reader) warnf(fmtStr string, args ...any) {
	msg := fmt.Sprintf(fmtStr, args...)
	r.warns = append(r.warns, msg)
	if r.cfg.Logger != nil {
		r.cfg.Logger.WithField("component", "crate").Warn(msg)
	}
}

// charge debits the allocation budget, failing with LimitExceeded once a
// hostile file would make the decoder allocate past the configured cap.
func (r *Reader) charge(section string, n int64) error {
	if n < 0 {
		return types.CorruptError(section, r.sr.Tell(), "negative allocation size")
	}
	r.budget -= n
	if r.budget < 0 {
		return types.LimitError(section, r.sr.Tell(),
			fmt.Sprintf("memory budget exhausted (%d MiB)", r.cfg.MaxMemoryBudgetMB))
	}
	return nil
}

// checkCount validates an element count against both the per-array ceiling
// and the remaining memory budget.
func (r *Reader) checkCount(section string, count uint64, elemSize int64) error {
	if count > uint64(r.cfg.MaxArrayElements) {
		return types.LimitError(section, r.sr.Tell(),
			fmt.Sprintf("element count %d exceeds limit %d", count, r.cfg.MaxArrayElements))
	}
	return r.charge(section, int64(count)*elemSize)
}

// Table accessors used by the stage builder and tools.

// Tokens returns the interned token table.
func (r *Reader) Tokens() []value.Token { return r.tokens }

// Fields returns the decoded field table.
func (r *Reader) Fields() []Field { return r.fields }

// Specs returns the decoded spec table.
func (r *Reader) Specs() []Spec { return r.specs }

// Paths returns the reconstructed full paths, indexed by path index.
func (r *Reader) Paths() []types.Path { return r.paths }

// Nodes returns the reconstructed hierarchy nodes, indexed by path index.
func (r *Reader) Nodes() []Node { return r.nodes }

// LiveFieldSets returns the decoded fieldsets keyed by fieldset index.
func (r *Reader) LiveFieldSets() map[uint32][]FieldValue { return r.liveFieldSets }

func (r *Reader) token(index uint32) (value.Token, error) {
	if index == format.InvalidIndex || int(index) >= len(r.tokens) {
		return "", types.CorruptError("", r.sr.Tell(),
			fmt.Sprintf("token index %d out of range (%d tokens)", index, len(r.tokens)))
	}
	return r.tokens[index], nil
}

func (r *Reader) stringAt(index uint32) (string, error) {
	if int(index) >= len(r.stringIndices) {
		return "", types.CorruptError("", r.sr.Tell(),
			fmt.Sprintf("string index %d out of range (%d strings)", index, len(r.stringIndices)))
	}
	tok, err := r.token(r.stringIndices[index])
	return string(tok), err
}

func (r *Reader) path(index uint32) (types.Path, error) {
	if index == format.InvalidIndex || int(index) >= len(r.paths) {
		return types.Path{}, types.CorruptError("", r.sr.Tell(),
			fmt.Sprintf("path index %d out of range (%d paths)", index, len(r.paths)))
	}
	return r.paths[index], nil
}

func (r *Reader) elemPath(index uint32) (types.Path, error) {
	if index == format.InvalidIndex || int(index) >= len(r.elemPaths) {
		return types.Path{}, types.CorruptError("", r.sr.Tell(),
			fmt.Sprintf("path index %d out of range (%d paths)", index, len(r.elemPaths)))
	}
	return r.elemPaths[index], nil
}
