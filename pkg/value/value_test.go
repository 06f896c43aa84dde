package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/cratekit/pkg/types"
)

func TestScalarRoundTrip(t *testing.T) {
	cases := []struct {
		payload any
		id      TypeID
		name    string
	}{
		{true, TypeBool, "bool"},
		{uint8(7), TypeUChar, "uchar"},
		{int32(-42), TypeInt, "int"},
		{uint32(42), TypeUInt, "uint"},
		{int64(-1 << 40), TypeInt64, "int64"},
		{uint64(1 << 40), TypeUInt64, "uint64"},
		{float32(1.5), TypeFloat, "float"},
		{float64(2.5), TypeDouble, "double"},
		{HalfFromFloat32(0.5), TypeHalf, "half"},
		{"hello", TypeString, "string"},
		{Token("xformOp:translate"), TypeToken, "token"},
		{AssetPath{Path: "textures/wood.png"}, TypeAssetPath, "asset"},
		{Float3{1, 2, 3}, TypeFloat3, "float3"},
		{Double4{1, 2, 3, 4}, TypeDouble4, "double4"},
		{Int2{-1, 1}, TypeInt2, "int2"},
		{Quatf{0, 0, 0, 1}, TypeQuatf, "quatf"},
		{Matrix4d{{1}, {0, 1}, {0, 0, 1}, {0, 0, 0, 1}}, TypeMatrix4d, "matrix4d"},
		{types.SpecifierDef, TypeSpecifier, "Specifier"},
		{Block{}, TypeValueBlock, "None"},
	}
	for _, tc := range cases {
		v := New(tc.payload)
		assert.Equal(t, tc.id, v.TypeID(), tc.name)
		assert.Equal(t, tc.name, v.TypeName())
		assert.Equal(t, tc.payload, v.Interface())
	}
}

func TestAsTypedGet(t *testing.T) {
	v := New(Float3{1, 2, 3})

	got, ok := As[Float3](v)
	require.True(t, ok)
	assert.Equal(t, Float3{1, 2, 3}, got)

	_, ok = As[Double3](v)
	assert.False(t, ok, "float3 must not read as double3")

	_, ok = As[float32](v)
	assert.False(t, ok)
}

func TestArrayRoundTrip(t *testing.T) {
	xs := []int32{3, 3, 3, 5}
	v := New(xs)
	assert.Equal(t, TypeInt.Array(), v.TypeID())
	assert.True(t, v.TypeID().IsArray())
	assert.Equal(t, "int[]", v.TypeName())

	got, ok := As[[]int32](v)
	require.True(t, ok)
	assert.Equal(t, xs, got)

	// Scalar get against an array id fails.
	_, ok = As[int32](v)
	assert.False(t, ok)
}

func TestRoleTypePunning(t *testing.T) {
	p := New(Point3f{1, 2, 3})
	assert.Equal(t, TypePoint3f, p.TypeID())
	assert.Equal(t, TypeFloat3, p.UnderlyingTypeID())
	assert.Equal(t, "point3f", p.TypeName())

	// Reinterpreting a role value as its POD yields identical components.
	f, ok := As[Float3](p)
	require.True(t, ok)
	assert.Equal(t, Float3{1, 2, 3}, f)

	// The reverse direction works too: a float3 answers a point3f get.
	q, ok := As[Point3f](New(Float3{4, 5, 6}))
	require.True(t, ok)
	assert.Equal(t, Point3f{4, 5, 6}, q)

	// Layout-incompatible role gets fail.
	_, ok = As[Color4f](p)
	assert.False(t, ok)
}

func TestRoleArrayPunning(t *testing.T) {
	normals := []Normal3f{{0, 1, 0}, {1, 0, 0}}
	v := New(normals)
	assert.Equal(t, TypeNormal3f.Array(), v.TypeID())
	assert.Equal(t, TypeFloat3.Array(), v.UnderlyingTypeID())

	f, ok := As[[]Float3](v)
	require.True(t, ok)
	assert.Equal(t, []Float3{{0, 1, 0}, {1, 0, 0}}, f)
}

func TestRetype(t *testing.T) {
	v := New(Float3{0.5, 0.5, 0.5})
	c, err := Retype(v, TypeColor3f)
	require.NoError(t, err)
	assert.Equal(t, TypeColor3f, c.TypeID())
	assert.Equal(t, Color3f{0.5, 0.5, 0.5}, c.Interface())

	_, err = Retype(v, TypeDouble3)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrTypeMismatch)
}

func TestVectorContainerAliases(t *testing.T) {
	// A TokenVector payload answers token[] gets.
	v := NewTyped(TypeTokenVector, []Token{"a", "b"})
	assert.Equal(t, TypeToken.Array(), v.UnderlyingTypeID())

	toks, ok := As[[]Token](v)
	require.True(t, ok)
	assert.Equal(t, []Token{"a", "b"}, toks)
}

func TestBlockSentinel(t *testing.T) {
	b := New(Block{})
	assert.True(t, b.IsBlock())
	assert.Equal(t, "None", b.TypeName())
	assert.False(t, New(int32(0)).IsBlock())
}

func TestTypeIDFromName(t *testing.T) {
	id, ok := TypeIDFromName("float3")
	require.True(t, ok)
	assert.Equal(t, TypeFloat3, id)

	id, ok = TypeIDFromName("point3f[]")
	require.True(t, ok)
	assert.Equal(t, TypePoint3f.Array(), id)

	_, ok = TypeIDFromName("no-such-type")
	assert.False(t, ok)
}
