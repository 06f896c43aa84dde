package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormat(t *testing.T) {
	err := CorruptError("PATHS", 128, "jump table truncated")
	assert.Equal(t, "[Crate] PATHS:128: jump table truncated: corrupt crate structure", err.Error())

	plain := &Error{Kind: ErrKindNotFound, Msg: "prim not found"}
	assert.Equal(t, "prim not found", plain.Error())
}

func TestErrorIsMatchesKind(t *testing.T) {
	err := CorruptError("TOKENS", 40, "token table overrun")
	require.True(t, errors.Is(err, ErrCorrupt))
	require.False(t, errors.Is(err, ErrNotFound))

	lim := LimitError("FIELDS", 0, "too many fields")
	require.True(t, errors.Is(lim, ErrLimitExceeded))
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("short read")
	err := &Error{Kind: ErrKindEndOfStream, Msg: "reading TOC", Err: cause}
	require.Equal(t, cause, errors.Unwrap(err))
	assert.Equal(t, "reading TOC: short read", err.Error())
}
