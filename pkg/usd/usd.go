// Package usd is the public entry point for reading binary crate (.usdc)
// layers: open a byte buffer or file, decode it into a Stage, and query
// prims, properties, and time-sampled attribute values.
package usd

import (
	"strings"

	"github.com/joshuapare/cratekit/internal/mmfile"
	"github.com/joshuapare/cratekit/internal/reader"
	"github.com/joshuapare/cratekit/pkg/scene"
	"github.com/joshuapare/cratekit/pkg/types"
)

// Re-exported scene types, so most consumers only import this package.
type (
	Prim       = scene.Prim
	Property   = scene.Property
	PrimMeta   = scene.PrimMeta
	StageMetas = scene.StageMetas
	Config     = types.Config
)

// DefaultConfig returns the standard decoder configuration.
func DefaultConfig() Config { return types.DefaultConfig() }

// Stage wraps the decoded scene with the configuration used to decode it.
type Stage struct {
	*scene.Stage
	cfg types.Config
}

// RootPrims returns the top-level prims in on-disk order.
func (s *Stage) RootPrims() []*Prim { return s.Stage.RootPrims }

// Metas returns the stage metadata.
func (s *Stage) Metas() StageMetas { return s.Stage.Metas }

// Decoder drives one crate decode. It is single-use: Open, then
// ReadStage.
type Decoder struct {
	r       *reader.Reader
	cfg     types.Config
	unmap   func() error
	lastErr string
}

// OpenBytes validates the bootstrap and TOC of an in-memory crate file.
func OpenBytes(data []byte, cfg Config) (*Decoder, error) {
	r, err := reader.Open(data, cfg)
	if err != nil {
		return nil, err
	}
	return &Decoder{r: r, cfg: cfg}, nil
}

// Open maps the file at path and validates its bootstrap and TOC.
func Open(path string, cfg Config) (*Decoder, error) {
	data, unmap, err := mmfile.Map(path)
	if err != nil {
		return nil, err
	}
	d, err := OpenBytes(data, cfg)
	if err != nil {
		if unmap != nil {
			_ = unmap()
		}
		return nil, err
	}
	d.unmap = unmap
	return d, nil
}

// ReadStage decodes every section and assembles the composed stage. The
// returned stage owns all its data; Close may be called afterwards.
func (d *Decoder) ReadStage() (*Stage, error) {
	if err := d.r.Decode(); err != nil {
		d.lastErr = err.Error()
		return nil, err
	}
	st, err := d.r.BuildStage()
	if err != nil {
		d.lastErr = err.Error()
		return nil, err
	}
	return &Stage{Stage: st, cfg: d.cfg}, nil
}

// Warnings returns the accumulated non-fatal condition log, one entry per
// line.
func (d *Decoder) Warnings() string {
	return strings.Join(d.r.Warnings(), "\n")
}

// Error returns the message of the last failed call, or "".
func (d *Decoder) Error() string { return d.lastErr }

// Close releases the file mapping, if any.
func (d *Decoder) Close() error {
	if d.unmap != nil {
		unmap := d.unmap
		d.unmap = nil
		return unmap()
	}
	return nil
}

// ReadStageFromFile is the one-call convenience: open, decode, close.
func ReadStageFromFile(path string, cfg Config) (*Stage, string, error) {
	d, err := Open(path, cfg)
	if err != nil {
		return nil, "", err
	}
	defer d.Close()
	st, err := d.ReadStage()
	if err != nil {
		return nil, d.Warnings(), err
	}
	return st, d.Warnings(), nil
}
