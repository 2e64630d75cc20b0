package lang

import (
	"iter"
	"slices"
)

// Object is an insertion-ordered mapping from string keys to values.
//
// An Object is immutable once it has been handed to template code; updates
// through [Object.With] and [Object.Without] return a modified copy. The
// zero value and nil are both valid empty objects.
type Object struct {
	values map[string]Value
	keys   []string
}

// NewObject returns an empty object with room for n entries.
func NewObject(n int) *Object {
	return &Object{
		values: make(map[string]Value, n),
		keys:   make([]string, 0, n),
	}
}

// ObjectOf builds an object from alternating key/value pairs in order.
// Later duplicates overwrite earlier values without moving them.
func ObjectOf(pairs ...any) *Object {
	o := NewObject(len(pairs) / 2)

	for i := 0; i+1 < len(pairs); i += 2 {
		k, _ := pairs[i].(string)

		v, ok := pairs[i+1].(Value)
		if !ok {
			var err error
			if v, err = ValueOf(pairs[i+1]); err != nil {
				v = Undefined{}
			}
		}

		o.put(k, v)
	}

	return o
}

// put inserts or replaces key in place. Only valid while o is being built.
func (o *Object) put(key string, v Value) {
	if o.values == nil {
		o.values = make(map[string]Value)
	}

	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}

	o.values[key] = v
}

// Len returns the number of entries.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}

	return len(o.keys)
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return nil, false
	}

	v, ok := o.values[key]

	return v, ok
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)

	return ok
}

// Keys returns a copy of the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}

	return slices.Clone(o.keys)
}

// All iterates entries in insertion order.
func (o *Object) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if o == nil {
			return
		}

		for _, k := range o.keys {
			if !yield(k, o.values[k]) {
				return
			}
		}
	}
}

// With returns a copy of o with key set to v. An existing key keeps its
// position.
func (o *Object) With(key string, v Value) *Object {
	c := o.clone(1)
	c.put(key, v)

	return c
}

// Without returns a copy of o with key removed.
func (o *Object) Without(key string) *Object {
	if !o.Has(key) {
		return o
	}

	c := NewObject(o.Len())

	for k, v := range o.All() {
		if k != key {
			c.put(k, v)
		}
	}

	return c
}

// Merge returns a copy of o with every entry of other applied in order.
func (o *Object) Merge(other *Object) *Object {
	c := o.clone(other.Len())

	for k, v := range other.All() {
		c.put(k, v)
	}

	return c
}

func (o *Object) clone(extra int) *Object {
	c := NewObject(o.Len() + extra)

	for k, v := range o.All() {
		c.put(k, v)
	}

	return c
}
