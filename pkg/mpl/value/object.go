package value

import "sort"

type entry struct {
	key Value
	val Value
}

// Object is a map keyed by Value. Keys are unique and iteration always follows
// ascending key order, never insertion order.
type Object struct {
	entries []entry
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{}
}

func (o *Object) search(key Value) (int, bool) {
	i := sort.Search(len(o.entries), func(i int) bool {
		return Compare(o.entries[i].key, key) >= 0
	})
	return i, i < len(o.entries) && Compare(o.entries[i].key, key) == 0
}

// Set stores val under key, replacing any previous value.
func (o *Object) Set(key, val Value) {
	i, found := o.search(key)
	if found {
		o.entries[i].val = val
		return
	}
	o.entries = append(o.entries, entry{})
	copy(o.entries[i+1:], o.entries[i:])
	o.entries[i] = entry{key: key, val: val}
}

// Get returns the value stored under key.
func (o *Object) Get(key Value) (Value, bool) {
	if o == nil {
		return Value{}, false
	}
	i, found := o.search(key)
	if !found {
		return Value{}, false
	}
	return o.entries[i].val, true
}

// Len returns the number of entries.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.entries)
}

// Keys returns the keys in iteration order.
func (o *Object) Keys() []Value {
	if o == nil {
		return nil
	}
	keys := make([]Value, len(o.entries))
	for i, e := range o.entries {
		keys[i] = e.key
	}
	return keys
}

// Range calls fn for every entry in key order until fn returns false.
func (o *Object) Range(fn func(key, val Value) bool) {
	if o == nil {
		return
	}
	for _, e := range o.entries {
		if !fn(e.key, e.val) {
			return
		}
	}
}
