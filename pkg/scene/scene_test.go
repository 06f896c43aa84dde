package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/cratekit/pkg/types"
	"github.com/joshuapare/cratekit/pkg/value"
)

func TestPrimPropertyOrder(t *testing.T) {
	p := NewPrim("Cube")
	p.AddProperty(Property{Name: "b", Kind: PropertyAttribute})
	p.AddProperty(Property{Name: "a", Kind: PropertyAttribute})
	p.AddProperty(Property{Name: "b", Kind: PropertyAttribute, Custom: true}) // replace

	assert.Equal(t, []string{"b", "a"}, p.PropertyOrder)
	prop, ok := p.Property("b")
	require.True(t, ok)
	assert.True(t, prop.Custom)
}

func TestVariantSetOrder(t *testing.T) {
	p := NewPrim("Robot")
	p.AddVariant("shape", "capsule", NewPrim("capsule"))
	p.AddVariant("lod", "high", NewPrim("high"))
	p.AddVariant("shape", "sphere", NewPrim("sphere"))

	assert.Equal(t, []string{"shape", "lod"}, p.VariantSetOrder)
	assert.Len(t, p.Variants["shape"], 2)
}

func TestSplitPathElements(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, splitPathElements("A/B"))
	assert.Equal(t, []string{"A", "{v=x}", "B"}, splitPathElements("A{v=x}/B"))
	assert.Equal(t, []string{"Robot", "{shape=capsule}"}, splitPathElements("Robot{shape=capsule}"))
}

func TestPropertyHasValue(t *testing.T) {
	var p Property
	assert.False(t, p.HasValue())

	p.Default = value.New(int32(1))
	assert.True(t, p.HasValue())

	q := Property{TimeSamples: &value.TimeSamples{}}
	assert.True(t, q.HasValue())
}

func TestStageMetasDefaults(t *testing.T) {
	m := DefaultStageMetas()
	assert.Equal(t, types.AxisY, m.UpAxis)
	assert.Equal(t, 1.0, m.MetersPerUnit)
	assert.Equal(t, 24.0, m.TimeCodesPerSecond)
}
