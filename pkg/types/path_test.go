package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathAppend(t *testing.T) {
	root := RootPath()
	require.True(t, root.IsRoot())
	assert.Equal(t, "/", root.String())

	cube := root.AppendElement("Cube")
	assert.Equal(t, "/Cube", cube.String())
	assert.Equal(t, "Cube", cube.ElementName())
	assert.False(t, cube.IsPropertyPath())

	inner := cube.AppendElement("Mesh")
	assert.Equal(t, "/Cube/Mesh", inner.PrimPart())

	prop := inner.AppendProperty("points")
	assert.Equal(t, "/Cube/Mesh.points", prop.String())
	assert.True(t, prop.IsPropertyPath())
	assert.Equal(t, "points", prop.ElementName())
}

func TestPathVariantElement(t *testing.T) {
	p := RootPath().AppendElement("Robot").AppendElement("{shapeVariant=Capsule}")
	assert.Equal(t, "/Robot{shapeVariant=Capsule}", p.PrimPart())

	set, variant, ok := VariantSelection("{shapeVariant=Capsule}")
	require.True(t, ok)
	assert.Equal(t, "shapeVariant", set)
	assert.Equal(t, "Capsule", variant)

	_, _, ok = VariantSelection("notAVariant")
	assert.False(t, ok)
}

func TestParsePath(t *testing.T) {
	p := ParsePath("/A/B.attr")
	assert.Equal(t, "/A/B", p.PrimPart())
	assert.Equal(t, "attr", p.PropPart())

	q := ParsePath("/A/B")
	assert.Equal(t, "/A/B", q.PrimPart())
	assert.Empty(t, q.PropPart())
}

func TestValidatePrimName(t *testing.T) {
	assert.True(t, ValidatePrimName("Cube"))
	assert.True(t, ValidatePrimName("_hidden2"))
	assert.False(t, ValidatePrimName(""))
	assert.False(t, ValidatePrimName("2cube"))
	assert.False(t, ValidatePrimName("bad-name"))
}
