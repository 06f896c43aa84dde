package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDictionaryInsertionOrder(t *testing.T) {
	d := NewDictionary()
	d.Set("zebra", New(int32(1)))
	d.Set("apple", New(int32(2)))
	d.Set("mango", New(int32(3)))

	assert.Equal(t, []string{"zebra", "apple", "mango"}, d.Keys())

	// Replacement keeps position.
	d.Set("apple", New(int32(9)))
	assert.Equal(t, []string{"zebra", "apple", "mango"}, d.Keys())
	v, ok := d.Get("apple")
	require.True(t, ok)
	got, _ := As[int32](v)
	assert.Equal(t, int32(9), got)
}

func TestDictionaryNested(t *testing.T) {
	inner := NewDictionary()
	inner.Set("units", New("meters"))

	outer := NewDictionary()
	outer.Set("info", New(inner))

	v, ok := outer.Get("info")
	require.True(t, ok)
	assert.Equal(t, TypeDictionary, v.TypeID())

	got, ok := As[Dictionary](v)
	require.True(t, ok)
	u, ok := got.Get("units")
	require.True(t, ok)
	s, _ := As[string](u)
	assert.Equal(t, "meters", s)
}

func TestDictionaryRange(t *testing.T) {
	d := NewDictionary()
	d.Set("a", New(int32(1)))
	d.Set("b", New(int32(2)))

	var seen []string
	d.Range(func(k string, _ Value) bool {
		seen = append(seen, k)
		return true
	})
	assert.Equal(t, []string{"a", "b"}, seen)

	// Early exit.
	seen = nil
	d.Range(func(k string, _ Value) bool {
		seen = append(seen, k)
		return false
	})
	assert.Equal(t, []string{"a"}, seen)
}
