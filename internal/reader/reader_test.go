package reader

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/cratekit/internal/format"
	"github.com/joshuapare/cratekit/pkg/scene"
	"github.com/joshuapare/cratekit/pkg/types"
	"github.com/joshuapare/cratekit/pkg/value"
)

func decode(t *testing.T, data []byte) (*Reader, *scene.Stage) {
	t.Helper()
	r, err := Open(data, types.DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, r.Decode())
	st, err := r.BuildStage()
	require.NoError(t, err)
	return r, st
}

// minimalCrate builds the smallest conformant file: six sections, one
// empty token, a lone root path, everything else empty.
func minimalCrate(t *testing.T) *crateBuilder {
	cb := newCrateBuilder(t)
	cb.tok("")
	cb.pathEntry(0, 0, -2)
	return cb
}

func TestMinimalFile(t *testing.T) {
	cb := minimalCrate(t)
	_, st := decode(t, cb.build())

	assert.Empty(t, st.RootPrims)
	assert.Equal(t, scene.DefaultStageMetas(), st.Metas)
	assert.Equal(t, types.AxisY, st.Metas.UpAxis)
}

// xformCrate builds one prim at /Cube of type Xform with
// `token[] xformOpOrder` and `float3 xformOp:translate = (1, 2, 3)`.
func xformCrate(t *testing.T) *crateBuilder {
	cb := newCrateBuilder(t)
	cb.tok("")

	// Fieldsets.
	rootFS := cb.fieldset(
		cb.field("upAxis", inlineRep(format.DataTypeToken, cb.tok("Y"))),
	)
	primFS := cb.fieldset(
		cb.field("typeName", inlineRep(format.DataTypeToken, cb.tok("Xform"))),
		cb.field("specifier", inlineRep(format.DataTypeSpecifier, 0)),
	)
	orderFS := cb.fieldset(
		cb.field("typeName", inlineRep(format.DataTypeToken, cb.tok("token[]"))),
		cb.field("default", offsetRep(format.DataTypeToken, true, false,
			cb.tokenArrayBlob("xformOp:translate"))),
	)
	translateFS := cb.fieldset(
		cb.field("typeName", inlineRep(format.DataTypeToken, cb.tok("float3"))),
		cb.field("default", offsetRep(format.DataTypeVec3f, false, false,
			cb.float3Blob(1, 2, 3))),
	)

	// Paths: / -> /Cube -> {.xformOpOrder, .xformOp:translate}
	cb.pathEntry(0, 0, -1)
	cb.pathEntry(1, int32(cb.tok("Cube")), -1)
	cb.pathEntry(2, -int32(cb.tok("xformOpOrder")), 0)
	cb.pathEntry(3, -int32(cb.tok("xformOp:translate")), -2)

	cb.spec(0, rootFS, uint32(types.SpecTypePseudoRoot))
	cb.spec(1, primFS, uint32(types.SpecTypePrim))
	cb.spec(2, orderFS, uint32(types.SpecTypeAttribute))
	cb.spec(3, translateFS, uint32(types.SpecTypeAttribute))
	return cb
}

func TestSingleXformPrim(t *testing.T) {
	cb := xformCrate(t)
	r, st := decode(t, cb.build())

	require.Len(t, st.RootPrims, 1)
	prim := st.RootPrims[0]
	assert.Equal(t, "Cube", prim.Name)
	assert.Equal(t, "Xform", prim.TypeName)
	assert.Equal(t, types.SpecifierDef, prim.Specifier)
	assert.Equal(t, "/Cube", prim.Path.String())

	// Property order follows the on-disk depth-first order.
	assert.Equal(t, []string{"xformOpOrder", "xformOp:translate"}, prim.PropertyOrder)

	order, ok := prim.Property("xformOpOrder")
	require.True(t, ok)
	toks, ok := value.As[[]value.Token](order.Default)
	require.True(t, ok)
	assert.Equal(t, []value.Token{"xformOp:translate"}, toks)

	translate, ok := prim.Property("xformOp:translate")
	require.True(t, ok)
	assert.Equal(t, "float3", translate.TypeName)
	v, ok := value.As[value.Float3](translate.Default)
	require.True(t, ok)
	assert.Equal(t, value.Float3{1, 2, 3}, v)

	// Path table invariants: prim parts are '/'-rooted.
	for _, p := range r.Paths() {
		assert.True(t, p.PrimPart() == "/" || p.PrimPart()[0] == '/')
	}
}

func TestCompressedIntArray(t *testing.T) {
	counts := make([]int32, 19)
	for i := range counts {
		counts[i] = 3
	}

	cb := newCrateBuilder(t)
	cb.tok("")
	primFS := cb.fieldset(
		cb.field("typeName", inlineRep(format.DataTypeToken, cb.tok("Mesh"))),
		cb.field("specifier", inlineRep(format.DataTypeSpecifier, 0)),
	)
	attrFS := cb.fieldset(
		cb.field("typeName", inlineRep(format.DataTypeToken, cb.tok("int[]"))),
		cb.field("default", offsetRep(format.DataTypeInt, true, true,
			cb.compressedIntArrayBlob(counts))),
	)

	cb.pathEntry(0, 0, -1)
	cb.pathEntry(1, int32(cb.tok("Mesh")), -1)
	cb.pathEntry(2, -int32(cb.tok("faceVertexCounts")), -2)

	cb.spec(0, cb.fieldset(), uint32(types.SpecTypePseudoRoot))
	cb.spec(1, primFS, uint32(types.SpecTypePrim))
	cb.spec(2, attrFS, uint32(types.SpecTypeAttribute))

	_, st := decode(t, cb.build())
	require.Len(t, st.RootPrims, 1)

	prop, ok := st.RootPrims[0].Property("faceVertexCounts")
	require.True(t, ok)
	got, ok := value.As[[]int32](prop.Default)
	require.True(t, ok)
	assert.Equal(t, counts, got)
}

func TestTimeSamplesWithBlock(t *testing.T) {
	cb := newCrateBuilder(t)
	cb.tok("")

	timesRep := offsetRep(format.DataTypeDouble, true, false,
		cb.doubleArrayBlob([]float64{0, 1, 2}))
	tsBlob := cb.timeSamplesBlob(timesRep, []format.ValueRep{
		format.MakeValueRep(format.DataTypeDouble, true, false, false, uint64(f32bits(1.0))),
		format.MakeValueRep(format.DataTypeValueBlock, true, false, false, 0),
		format.MakeValueRep(format.DataTypeDouble, true, false, false, uint64(f32bits(3.0))),
	})

	primFS := cb.fieldset(
		cb.field("typeName", inlineRep(format.DataTypeToken, cb.tok("Sphere"))),
		cb.field("specifier", inlineRep(format.DataTypeSpecifier, 0)),
	)
	attrFS := cb.fieldset(
		cb.field("typeName", inlineRep(format.DataTypeToken, cb.tok("double"))),
		cb.field("timeSamples", offsetRep(format.DataTypeTimeSamples, false, false, tsBlob)),
	)

	cb.pathEntry(0, 0, -1)
	cb.pathEntry(1, int32(cb.tok("Ball")), -1)
	cb.pathEntry(2, -int32(cb.tok("radius")), -2)

	cb.spec(0, cb.fieldset(), uint32(types.SpecTypePseudoRoot))
	cb.spec(1, primFS, uint32(types.SpecTypePrim))
	cb.spec(2, attrFS, uint32(types.SpecTypeAttribute))

	_, st := decode(t, cb.build())
	prop, ok := st.RootPrims[0].Property("radius")
	require.True(t, ok)
	require.NotNil(t, prop.TimeSamples)

	ts := *prop.TimeSamples
	assert.Equal(t, []float64{0, 1, 2}, ts.Times)
	require.Len(t, ts.Values, 3)

	v0, _ := value.As[float64](ts.Values[0])
	assert.Equal(t, 1.0, v0)
	assert.True(t, ts.Values[1].IsBlock())
	v2, _ := value.As[float64](ts.Values[2])
	assert.Equal(t, 3.0, v2)

	// Held interpolation across the blocked key.
	assert.True(t, ts.Get(1.5, value.InterpolationHeld).IsBlock())
	got, _ := value.As[float64](ts.Get(0.5, value.InterpolationHeld))
	assert.Equal(t, 1.0, got)
}

func TestInheritsListOp(t *testing.T) {
	cb := newCrateBuilder(t)
	cb.tok("")

	baseFS := cb.fieldset(
		cb.field("specifier", inlineRep(format.DataTypeSpecifier, 0)),
	)
	// Only the prepended bucket populated; path index 1 is /Base.
	inheritsFS := cb.fieldset(
		cb.field("specifier", inlineRep(format.DataTypeSpecifier, 0)),
		cb.field("inherits", offsetRep(format.DataTypePathListOp, false, false,
			cb.pathListOpBlob(1<<5, []uint32{1}))),
	)

	cb.pathEntry(0, 0, -1)
	cb.pathEntry(1, int32(cb.tok("Base")), 0)  // leaf, sibling follows
	cb.pathEntry(2, int32(cb.tok("Mixin")), 0) // leaf, sibling follows
	cb.pathEntry(3, int32(cb.tok("Model")), -2)

	cb.spec(0, cb.fieldset(), uint32(types.SpecTypePseudoRoot))
	cb.spec(1, baseFS, uint32(types.SpecTypePrim))
	cb.spec(2, baseFS, uint32(types.SpecTypePrim))
	cb.spec(3, inheritsFS, uint32(types.SpecTypePrim))

	_, st := decode(t, cb.build())
	require.Len(t, st.RootPrims, 3)
	model := st.RootPrims[2]
	require.NotNil(t, model.Meta.Inherits)
	assert.Equal(t, types.ListEditPrepend, model.Meta.Inherits.Qual)
	require.Len(t, model.Meta.Inherits.Paths, 1)
	assert.Equal(t, "/Base", model.Meta.Inherits.Paths[0].String())
}

func TestInheritsListOpMixedBucketsWarns(t *testing.T) {
	cb := newCrateBuilder(t)
	cb.tok("")

	baseFS := cb.fieldset(
		cb.field("specifier", inlineRep(format.DataTypeSpecifier, 0)),
	)
	// Both prepended (bit 5) and appended (bit 6) populated; streams are
	// written in bucket order prepended-then-appended.
	inheritsFS := cb.fieldset(
		cb.field("specifier", inlineRep(format.DataTypeSpecifier, 0)),
		cb.field("inherits", offsetRep(format.DataTypePathListOp, false, false,
			cb.pathListOpBlob(1<<5|1<<6, []uint32{1}, []uint32{2}))),
	)

	cb.pathEntry(0, 0, -1)
	cb.pathEntry(1, int32(cb.tok("Base")), 0)
	cb.pathEntry(2, int32(cb.tok("Mixin")), 0)
	cb.pathEntry(3, int32(cb.tok("Model")), -2)

	cb.spec(0, cb.fieldset(), uint32(types.SpecTypePseudoRoot))
	cb.spec(1, baseFS, uint32(types.SpecTypePrim))
	cb.spec(2, baseFS, uint32(types.SpecTypePrim))
	cb.spec(3, inheritsFS, uint32(types.SpecTypePrim))

	r, st := decode(t, cb.build())
	model := st.RootPrims[2]
	require.NotNil(t, model.Meta.Inherits)

	// The first populated bucket in fixed order wins, with a warning.
	assert.Equal(t, types.ListEditPrepend, model.Meta.Inherits.Qual)
	assert.Equal(t, "/Base", model.Meta.Inherits.Paths[0].String())
	assert.NotEmpty(t, r.Warnings())
}

func TestStageMetas(t *testing.T) {
	cb := newCrateBuilder(t)
	cb.tok("")

	rootFS := cb.fieldset(
		cb.field("upAxis", inlineRep(format.DataTypeToken, cb.tok("Z"))),
		cb.field("metersPerUnit", inlineRep(format.DataTypeDouble, f32bits(0.01))),
		cb.field("timeCodesPerSecond", inlineRep(format.DataTypeDouble, f32bits(30))),
		cb.field("defaultPrim", inlineRep(format.DataTypeToken, cb.tok("World"))),
		cb.field("documentation", inlineRep(format.DataTypeString, cb.str("exported scene"))),
	)
	worldFS := cb.fieldset(
		cb.field("typeName", inlineRep(format.DataTypeToken, cb.tok("Xform"))),
		cb.field("specifier", inlineRep(format.DataTypeSpecifier, 0)),
	)

	cb.pathEntry(0, 0, -1)
	cb.pathEntry(1, int32(cb.tok("World")), -2)

	cb.spec(0, rootFS, uint32(types.SpecTypePseudoRoot))
	cb.spec(1, worldFS, uint32(types.SpecTypePrim))

	_, st := decode(t, cb.build())
	assert.Equal(t, types.AxisZ, st.Metas.UpAxis)
	assert.InDelta(t, 0.01, st.Metas.MetersPerUnit, 1e-8)
	assert.Equal(t, 30.0, st.Metas.TimeCodesPerSecond)
	assert.Equal(t, value.Token("World"), st.Metas.DefaultPrim)
	assert.Equal(t, "exported scene", st.Metas.Doc)
}

func TestInvalidUpAxis(t *testing.T) {
	cb := newCrateBuilder(t)
	cb.tok("")
	rootFS := cb.fieldset(
		cb.field("upAxis", inlineRep(format.DataTypeToken, cb.tok("W"))),
	)
	cb.pathEntry(0, 0, -2)
	cb.spec(0, rootFS, uint32(types.SpecTypePseudoRoot))

	r, err := Open(cb.build(), types.DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, r.Decode())
	_, err = r.BuildStage()
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrInvalidUpAxis)
}

func TestInvalidApiSchema(t *testing.T) {
	cb := newCrateBuilder(t)
	cb.tok("")

	// explicit list-op with an out-of-set schema token.
	blobOff := cb.blob(append(append([]byte{0x01 | 0x02},
		u64le(1)...), u32le(cb.tok("MadeUpAPI"))...))
	primFS := cb.fieldset(
		cb.field("specifier", inlineRep(format.DataTypeSpecifier, 0)),
		cb.field("apiSchemas", offsetRep(format.DataTypeTokenListOp, false, false, blobOff)),
	)

	cb.pathEntry(0, 0, -1)
	cb.pathEntry(1, int32(cb.tok("Thing")), -2)
	cb.spec(0, cb.fieldset(), uint32(types.SpecTypePseudoRoot))
	cb.spec(1, primFS, uint32(types.SpecTypePrim))

	r, err := Open(cb.build(), types.DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, r.Decode())
	_, err = r.BuildStage()
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrInvalidApiSchema)
}

func TestQuaternionInlineIsCorrupt(t *testing.T) {
	cb := minimalCrate(t)
	cb.fieldset(cb.field("default", inlineRep(format.DataTypeQuatf, 0)))

	r, err := Open(cb.build(), types.DefaultConfig())
	require.NoError(t, err)
	err = r.Decode()
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrCorrupt))
}

func TestArrayCountLimit(t *testing.T) {
	cb := newCrateBuilder(t)
	cb.tok("")

	// Declared count far beyond the configured ceiling.
	blobOff := cb.blob(u64le(1 << 40))
	cb.fieldset(cb.field("default", offsetRep(format.DataTypeInt, true, false, blobOff)))
	cb.pathEntry(0, 0, -2)

	cfg := types.DefaultConfig()
	cfg.MaxArrayElements = 1024
	r, err := Open(cb.build(), cfg)
	require.NoError(t, err)
	err = r.Decode()
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrLimitExceeded)
}

func TestConnectionProperty(t *testing.T) {
	cb := newCrateBuilder(t)
	cb.tok("")

	primFS := cb.fieldset(
		cb.field("typeName", inlineRep(format.DataTypeToken, cb.tok("Material"))),
		cb.field("specifier", inlineRep(format.DataTypeSpecifier, 0)),
	)
	// Connection list-op: explicit with one target; path index 4 is
	// /B.foo below.
	connFS := cb.fieldset(
		cb.field("typeName", inlineRep(format.DataTypeToken, cb.tok("color3f"))),
		cb.field("connectionPaths", offsetRep(format.DataTypePathListOp, false, false,
			cb.pathListOpBlob(0x01|0x02, []uint32{4}))),
	)
	targetFS := cb.fieldset(
		cb.field("typeName", inlineRep(format.DataTypeToken, cb.tok("color3f"))),
		cb.field("default", offsetRep(format.DataTypeVec3f, false, false,
			cb.float3Blob(0.5, 0.5, 0.5))),
	)

	cb.pathEntry(0, 0, -1)                               // /
	cb.pathEntry(1, int32(cb.tok("A")), 2)               // /A, sibling at +2
	cb.pathEntry(2, -int32(cb.tok("foo")), -2)           // /A.foo
	cb.pathEntry(3, int32(cb.tok("B")), -1)              // /B
	cb.pathEntry(4, -int32(cb.tok("foo")), -2)           // /B.foo

	cb.spec(0, cb.fieldset(), uint32(types.SpecTypePseudoRoot))
	cb.spec(1, primFS, uint32(types.SpecTypePrim))
	cb.spec(2, connFS, uint32(types.SpecTypeAttribute))
	cb.spec(3, primFS, uint32(types.SpecTypePrim))
	cb.spec(4, targetFS, uint32(types.SpecTypeAttribute))

	_, st := decode(t, cb.build())
	require.Len(t, st.RootPrims, 2)

	a := st.RootPrims[0]
	prop, ok := a.Property("foo")
	require.True(t, ok)
	assert.Equal(t, scene.PropertyConnection, prop.Kind)
	require.Len(t, prop.Targets, 1)
	assert.Equal(t, "/B.foo", prop.Targets[0].String())

	// The role type survives through the connection target's default.
	b := st.RootPrims[1]
	target, ok := b.Property("foo")
	require.True(t, ok)
	got, ok := value.As[value.Color3f](target.Default)
	require.True(t, ok)
	assert.Equal(t, value.Color3f{0.5, 0.5, 0.5}, got)
	assert.Equal(t, value.TypeColor3f, target.Default.TypeID())
}

func TestVariantReconstruction(t *testing.T) {
	cb := newCrateBuilder(t)
	cb.tok("")

	robotFS := cb.fieldset(
		cb.field("typeName", inlineRep(format.DataTypeToken, cb.tok("Xform"))),
		cb.field("specifier", inlineRep(format.DataTypeSpecifier, 0)),
	)
	vsetFS := cb.fieldset(
		cb.field("variantChildren", offsetRep(format.DataTypeTokenVector, false, false,
			cb.tokenArrayBlob("Capsule"))),
	)
	variantFS := cb.fieldset(
		cb.field("specifier", inlineRep(format.DataTypeSpecifier, 0)),
	)
	attrFS := cb.fieldset(
		cb.field("typeName", inlineRep(format.DataTypeToken, cb.tok("double"))),
		cb.field("default", inlineRep(format.DataTypeDouble, f32bits(2.5))),
	)

	// / -> /Robot -> {shapeVariant=} -> {shapeVariant=Capsule} -> .size
	cb.pathEntry(0, 0, -1)
	cb.pathEntry(1, int32(cb.tok("Robot")), -1)
	cb.pathEntry(2, int32(cb.tok("{shapeVariant=}")), -1)
	cb.pathEntry(3, int32(cb.tok("{shapeVariant=Capsule}")), -1)
	cb.pathEntry(4, -int32(cb.tok("size")), -2)

	cb.spec(0, cb.fieldset(), uint32(types.SpecTypePseudoRoot))
	cb.spec(1, robotFS, uint32(types.SpecTypePrim))
	cb.spec(2, vsetFS, uint32(types.SpecTypeVariantSet))
	cb.spec(3, variantFS, uint32(types.SpecTypeVariant))
	cb.spec(4, attrFS, uint32(types.SpecTypeAttribute))

	_, st := decode(t, cb.build())
	require.Len(t, st.RootPrims, 1)
	robot := st.RootPrims[0]

	assert.Equal(t, []value.Token{"Capsule"}, robot.Meta.VariantChildren)
	require.Contains(t, robot.Variants, "shapeVariant")
	capsule := robot.Variants["shapeVariant"]["Capsule"]
	require.NotNil(t, capsule)
	assert.Equal(t, "Capsule", capsule.Name)

	prop, ok := capsule.Property("size")
	require.True(t, ok)
	got, _ := value.As[float64](prop.Default)
	assert.Equal(t, 2.5, got)
}

func TestDecodeTwiceIsDeterministic(t *testing.T) {
	data := xformCrate(t).build()

	_, st1 := decode(t, data)
	_, st2 := decode(t, data)

	require.Len(t, st2.RootPrims, len(st1.RootPrims))
	p1, p2 := st1.RootPrims[0], st2.RootPrims[0]
	assert.Equal(t, p1.PropertyOrder, p2.PropertyOrder)
	v1, _ := value.As[value.Float3](p1.Properties["xformOp:translate"].Default)
	v2, _ := value.As[value.Float3](p2.Properties["xformOp:translate"].Default)
	assert.Equal(t, v1, v2)
}

func TestSingleThreadedMatchesParallel(t *testing.T) {
	data := xformCrate(t).build()

	cfgSerial := types.DefaultConfig()
	cfgSerial.NumThreads = 1
	r1, err := Open(data, cfgSerial)
	require.NoError(t, err)
	require.NoError(t, r1.Decode())

	cfgParallel := types.DefaultConfig()
	cfgParallel.NumThreads = 8
	r2, err := Open(data, cfgParallel)
	require.NoError(t, err)
	require.NoError(t, r2.Decode())

	assert.Equal(t, r1.Paths(), r2.Paths())
	assert.Equal(t, len(r1.Nodes()), len(r2.Nodes()))
}

// f32bits packs a float32 value the way inline Double/Float payloads are
// stored.
func f32bits(f float32) uint32 {
	return math.Float32bits(f)
}
