package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/cratekit/pkg/types"
)

func TestListOpExplicitDecode(t *testing.T) {
	op := ListOp[Token]{
		Explicit:      true,
		ExplicitItems: []Token{"MaterialBindingAPI"},
		// Populated non-explicit buckets are ignored under Explicit.
		AddedItems: []Token{"ignored"},
	}
	pairs := op.Decode()
	require.Len(t, pairs, 1)
	assert.Equal(t, types.ListEditResetToExplicit, pairs[0].Qual)
	assert.Equal(t, []Token{"MaterialBindingAPI"}, pairs[0].Items)
}

func TestListOpBucketOrder(t *testing.T) {
	op := ListOp[types.Path]{
		PrependedItems: []types.Path{types.ParsePath("/Base")},
		AppendedItems:  []types.Path{types.ParsePath("/Mixin")},
	}
	pairs := op.Decode()
	require.Len(t, pairs, 2)
	assert.Equal(t, types.ListEditPrepend, pairs[0].Qual)
	assert.Equal(t, types.ListEditAppend, pairs[1].Qual)
}

func TestListOpEmpty(t *testing.T) {
	var op ListOp[string]
	assert.True(t, op.IsEmpty())
	assert.Empty(t, op.Decode())

	op.Explicit = true
	assert.False(t, op.IsEmpty())
	pairs := op.Decode()
	require.Len(t, pairs, 1)
	assert.Empty(t, pairs[0].Items)
}

func TestListOpValue(t *testing.T) {
	op := ListOp[types.Path]{
		Explicit:      true,
		ExplicitItems: []types.Path{types.ParsePath("/B.foo")},
	}
	v := New(op)
	assert.Equal(t, TypePathListOp, v.TypeID())

	got, ok := As[ListOp[types.Path]](v)
	require.True(t, ok)
	assert.Equal(t, op, got)
}
