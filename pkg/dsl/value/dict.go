package value

import "strings"

// Dict is an ordered string-keyed mapping. Keys keep their insertion
// position; setting an existing key replaces the value in place.
type Dict struct {
	keys  []string
	items map[string]Value
}

// NewDict creates an empty Dict.
func NewDict() *Dict {
	return &Dict{items: make(map[string]Value)}
}

func (d *Dict) Kind() Kind { return KindDict }

func (d *Dict) String() string {
	parts := make([]string, 0, len(d.keys))
	for _, k := range d.keys {
		parts = append(parts, k+": "+d.items[k].String())
	}
	return "{" + strings.Join(parts, "; ") + "}"
}

// Set binds key to v, keeping the key's original position when it already
// exists.
func (d *Dict) Set(key string, v Value) {
	if _, ok := d.items[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.items[key] = v
}

// Get returns the value bound to key.
func (d *Dict) Get(key string) (Value, bool) {
	v, ok := d.items[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Len returns the number of entries.
func (d *Dict) Len() int { return len(d.keys) }

// Copy returns a shallow copy of the dict.
func (d *Dict) Copy() *Dict {
	out := NewDict()
	for _, k := range d.keys {
		out.Set(k, d.items[k])
	}
	return out
}
