package codec

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/cratekit/pkg/types"
)

func roundTrip32(t *testing.T, values []int32) {
	t.Helper()
	compressed, err := EncodeInts32(values)
	require.NoError(t, err)
	decoded, err := DecodeInts32(compressed, len(values))
	require.NoError(t, err)
	if len(values) == 0 {
		assert.Empty(t, decoded)
		return
	}
	assert.Equal(t, values, decoded)
}

func TestIntCodec32RoundTrip(t *testing.T) {
	roundTrip32(t, []int32{0})
	roundTrip32(t, []int32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	roundTrip32(t, []int32{42, 42, 42, 42})
	roundTrip32(t, []int32{-5, 1000, -70000, math.MaxInt32, math.MinInt32, 0})
	roundTrip32(t, nil)

	// Constant runs compress to codes only; the common case for
	// faceVertexCounts-style data.
	vals := make([]int32, 19)
	for i := range vals {
		vals[i] = 3
	}
	roundTrip32(t, vals)
}

func TestIntCodec32MonotonicIndices(t *testing.T) {
	// Path index streams are near-monotonic; the delta coder should keep
	// them well under the raw width.
	vals := make([]int32, 1000)
	for i := range vals {
		vals[i] = int32(i)
	}
	compressed, err := EncodeInts32(vals)
	require.NoError(t, err)
	assert.Less(t, len(compressed), 4*len(vals))
	decoded, err := DecodeInts32(compressed, len(vals))
	require.NoError(t, err)
	assert.Equal(t, vals, decoded)
}

func TestIntCodec64RoundTrip(t *testing.T) {
	for _, values := range [][]int64{
		{0},
		{1, 2, 3},
		{math.MaxInt64, math.MinInt64, 0, 1 << 40},
		{-40000, 70000, 0},
	} {
		compressed, err := EncodeInts64(values)
		require.NoError(t, err)
		decoded, err := DecodeInts64(compressed, len(values))
		require.NoError(t, err)
		assert.Equal(t, values, decoded)
	}
}

func TestDecodeUnsigned(t *testing.T) {
	vals := []uint32{0, 1, ^uint32(0), 7}
	compressed, err := EncodeUints32(vals)
	require.NoError(t, err)
	decoded, err := DecodeUints32(compressed, len(vals))
	require.NoError(t, err)
	assert.Equal(t, vals, decoded)
}

func TestDecodeTruncatedStream(t *testing.T) {
	compressed, err := EncodeInts32([]int32{100000, 200000, 300000})
	require.NoError(t, err)

	// Claiming more elements than encoded must fail with Corrupt, not
	// read out of bounds.
	_, err = DecodeInts32(compressed, 64)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrCorrupt))
}

func TestDecodeGarbage(t *testing.T) {
	_, err := DecodeInts32([]byte{0x00, 0xFF, 0xFF, 0xFF}, 8)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrCorrupt))
}

func TestWorkingSpaceSize(t *testing.T) {
	assert.Equal(t, 4, WorkingSpaceSize32(0))
	assert.Equal(t, 4+1+4, WorkingSpaceSize32(1))
	assert.Equal(t, 4+4+64, WorkingSpaceSize32(16))
	assert.Equal(t, 8+1+16, WorkingSpaceSize64(2))
}
