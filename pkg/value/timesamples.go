package value

import (
	"github.com/joshuapare/cratekit/pkg/types"
)

// InterpolationMode selects how TimeSamples evaluates between keys.
type InterpolationMode int

const (
	// InterpolationHeld returns the value at the greatest sample time <= t.
	InterpolationHeld InterpolationMode = iota
	// InterpolationLinear lerps between bracketing samples where the type
	// supports mixing; non-mixable types degrade to Held.
	InterpolationLinear
)

// TimeSamples is a per-attribute time-varying value store. Times and
// Values are parallel; Values entries may be the Block sentinel. At most
// one concrete value type appears among the non-Block entries.
type TimeSamples struct {
	Times  []float64
	Values []Value
}

// Len returns the number of samples.
func (ts TimeSamples) Len() int { return len(ts.Times) }

// Validate enforces the store invariants: equal lengths, non-decreasing
// times, and a single concrete type across non-Block values.
func (ts TimeSamples) Validate() error {
	if len(ts.Times) != len(ts.Values) {
		return &types.Error{Kind: types.ErrKindCorrupt,
			Msg: "time samples times/values length mismatch", Err: types.ErrCorrupt}
	}
	for i := 1; i < len(ts.Times); i++ {
		if ts.Times[i] < ts.Times[i-1] {
			return &types.Error{Kind: types.ErrKindCorrupt,
				Msg: "time samples times not sorted", Err: types.ErrCorrupt}
		}
	}
	seen := TypeInvalid
	for _, v := range ts.Values {
		if v.IsBlock() {
			continue
		}
		if seen == TypeInvalid {
			seen = v.TypeID()
			continue
		}
		if v.TypeID() != seen {
			return &types.Error{Kind: types.ErrKindTypeMismatch,
				Msg: "time samples mix value types", Err: types.ErrTypeMismatch}
		}
	}
	return nil
}

// ValueTypeID returns the concrete type shared by the non-Block samples,
// or TypeInvalid if every sample is blocked (or the store is empty).
func (ts TimeSamples) ValueTypeID() TypeID {
	for _, v := range ts.Values {
		if !v.IsBlock() {
			return v.TypeID()
		}
	}
	return TypeInvalid
}

// lowerIndex returns the greatest index whose time is <= t, or -1 when t
// precedes the first sample.
func (ts TimeSamples) lowerIndex(t float64) int {
	lo, hi := 0, len(ts.Times)
	for lo < hi {
		mid := (lo + hi) / 2
		if ts.Times[mid] <= t {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo - 1
}

// Get evaluates the store at time t. Out-of-range times clamp to the
// endpoint samples. An empty store returns the Block sentinel.
func (ts TimeSamples) Get(t float64, mode InterpolationMode) Value {
	if len(ts.Times) == 0 {
		return New(Block{})
	}
	lo := ts.lowerIndex(t)
	if lo < 0 {
		return ts.Values[0]
	}
	if lo >= len(ts.Times)-1 || mode == InterpolationHeld {
		return ts.Values[lo]
	}

	hi := lo + 1
	a, b := ts.Values[lo], ts.Values[hi]
	if a.IsBlock() || b.IsBlock() {
		return a
	}
	span := ts.Times[hi] - ts.Times[lo]
	if span <= 0 {
		return a
	}
	alpha := (t - ts.Times[lo]) / span
	if mixed, ok := Lerp(a, b, alpha); ok {
		return mixed
	}
	// Non-mixable type: held semantics.
	return a
}
