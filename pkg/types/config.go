package types

import (
	"math"
	"runtime"

	"github.com/sirupsen/logrus"
)

// Default resource ceilings. These bound what a malformed or hostile crate
// file can make the decoder allocate; all are overridable per Config.
const (
	// DefaultMaxMemoryBudgetMB caps the decoder's total payload allocation
	// estimate. Clamped to DefaultMaxMemoryBudget32MB on 32-bit builds.
	DefaultMaxMemoryBudgetMB   = 4096
	DefaultMaxMemoryBudget32MB = 2048

	// DefaultMaxDictElements caps entries in one Dictionary value.
	DefaultMaxDictElements = 256

	// DefaultMaxAssetPathElements caps entries in one AssetPath array.
	DefaultMaxAssetPathElements = 512

	// DefaultMaxFieldValuePairs caps fields attached to a single spec.
	DefaultMaxFieldValuePairs = 4096

	// DefaultMaxElementSize caps the `elementSize` attribute metadata.
	DefaultMaxElementSize = 1 << 20

	// DefaultMaxPrimNestLevel caps prim hierarchy depth.
	DefaultMaxPrimNestLevel = 1024

	// DefaultMaxArrayElements caps the element count of any single array
	// value. The cap does not depend on the element size; the bytes an
	// array needs are charged against the memory budget instead.
	DefaultMaxArrayElements = 1 << 28

	// DefaultMaxConnectionHops caps attribute connection chain length.
	DefaultMaxConnectionHops = 16

	// MaxThreads caps the worker pool regardless of NumThreads.
	MaxThreads = 1024
)

// Config controls decoder behavior and resource ceilings.
type Config struct {
	// NumThreads bounds the worker pool used for parallel section
	// decompression. -1 selects hardware concurrency (capped at
	// MaxThreads). 0 and 1 both force single-threaded decoding.
	NumThreads int

	// MaxMemoryBudgetMB caps the decoder's estimated payload allocations.
	MaxMemoryBudgetMB int64

	// MaxDictElements caps entries in one Dictionary value.
	MaxDictElements int

	// MaxAssetPathElements caps entries in one AssetPath array.
	MaxAssetPathElements int

	// MaxFieldValuePairsPerSpec caps fields attached to a single spec.
	MaxFieldValuePairsPerSpec int

	// MaxElementSize caps the `elementSize` attribute metadata value.
	MaxElementSize int

	// MaxPrimNestLevel caps prim hierarchy depth.
	MaxPrimNestLevel int

	// MaxArrayElements caps the element count of a single array value.
	MaxArrayElements int64

	// MaxConnectionHops caps attribute connection chain resolution.
	MaxConnectionHops int

	// Logger mirrors accumulated decoder warnings to a structured logger.
	// Nil disables mirroring; warnings are always retrievable from the
	// decoder's warning log either way.
	Logger logrus.FieldLogger
}

// DefaultConfig returns the standard ceilings.
func DefaultConfig() Config {
	budget := int64(DefaultMaxMemoryBudgetMB)
	if math.MaxInt == math.MaxInt32 {
		budget = DefaultMaxMemoryBudget32MB
	}
	return Config{
		NumThreads:                -1,
		MaxMemoryBudgetMB:         budget,
		MaxDictElements:           DefaultMaxDictElements,
		MaxAssetPathElements:      DefaultMaxAssetPathElements,
		MaxFieldValuePairsPerSpec: DefaultMaxFieldValuePairs,
		MaxElementSize:            DefaultMaxElementSize,
		MaxPrimNestLevel:          DefaultMaxPrimNestLevel,
		MaxArrayElements:          DefaultMaxArrayElements,
		MaxConnectionHops:         DefaultMaxConnectionHops,
	}
}

// Threads resolves NumThreads against hardware concurrency and MaxThreads.
func (c Config) Threads() int {
	n := c.NumThreads
	if n < 0 {
		n = runtime.GOMAXPROCS(0)
	}
	if n < 1 {
		n = 1
	}
	if n > MaxThreads {
		n = MaxThreads
	}
	return n
}
