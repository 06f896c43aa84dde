package value

// Dictionary is a string-keyed mapping that preserves insertion order.
// Crate dictionaries (customData, assetInfo, customLayerData) are decoded
// into it in file order.
type Dictionary struct {
	keys []string
	m    map[string]Value
}

// NewDictionary returns an empty dictionary.
func NewDictionary() Dictionary {
	return Dictionary{m: map[string]Value{}}
}

// Len returns the number of entries.
func (d Dictionary) Len() int { return len(d.keys) }

// Keys returns the keys in insertion order. The slice is shared; callers
// must not mutate it.
func (d Dictionary) Keys() []string { return d.keys }

// Get looks up a key.
func (d Dictionary) Get(key string) (Value, bool) {
	v, ok := d.m[key]
	return v, ok
}

// Set inserts or replaces an entry. A replaced key keeps its original
// position.
func (d *Dictionary) Set(key string, v Value) {
	if d.m == nil {
		d.m = map[string]Value{}
	}
	if _, exists := d.m[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.m[key] = v
}

// Range calls fn for every entry in insertion order until fn returns
// false.
func (d Dictionary) Range(fn func(key string, v Value) bool) {
	for _, k := range d.keys {
		if !fn(k, d.m[k]) {
			return
		}
	}
}
