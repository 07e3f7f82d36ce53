package value

import "strconv"

// ValueType represents the type of a value in an MPL policy.
// MPL has a strong type system with no automatic coercion.
type ValueType string

const (
	ValueTypeNull    ValueType = "null"
	ValueTypeBoolean ValueType = "boolean"
	ValueTypeNumber  ValueType = "number"
	ValueTypeString  ValueType = "string"
	ValueTypeArray   ValueType = "array"
	ValueTypeObject  ValueType = "object"
)

// rank orders the types for cross-type comparison.
func (t ValueType) rank() int {
	switch t {
	case ValueTypeBoolean:
		return 1
	case ValueTypeNumber:
		return 2
	case ValueTypeString:
		return 3
	case ValueTypeArray:
		return 4
	case ValueTypeObject:
		return 5
	default:
		return 0
	}
}

// Value is the dynamic data model shared by every builtin. The zero Value is
// null. Values are treated as immutable once handed to a caller; the slices and
// objects returned by the accessors must not be modified.
type Value struct {
	typ ValueType
	b   bool
	n   float64
	s   string
	arr []Value
	obj *Object
}

// Null returns the null value.
func Null() Value {
	return Value{typ: ValueTypeNull}
}

// Bool returns a boolean value.
func Bool(b bool) Value {
	return Value{typ: ValueTypeBoolean, b: b}
}

// Number returns a numeric value.
func Number(n float64) Value {
	return Value{typ: ValueTypeNumber, n: n}
}

// String returns a string value.
func String(s string) Value {
	return Value{typ: ValueTypeString, s: s}
}

// NewArray returns an array holding a copy of items.
func NewArray(items ...Value) Value {
	arr := make([]Value, len(items))
	copy(arr, items)
	return Value{typ: ValueTypeArray, arr: arr}
}

// FromObject wraps an object. A nil object becomes an empty one.
func FromObject(obj *Object) Value {
	if obj == nil {
		obj = NewObject()
	}
	return Value{typ: ValueTypeObject, obj: obj}
}

// Type returns the type of the value.
func (v Value) Type() ValueType {
	if v.typ == "" {
		return ValueTypeNull
	}
	return v.typ
}

// IsNull returns true if the value is null.
func (v Value) IsNull() bool {
	return v.Type() == ValueTypeNull
}

// AsBool returns the boolean payload.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.typ == ValueTypeBoolean
}

// AsNumber returns the numeric payload.
func (v Value) AsNumber() (float64, bool) {
	return v.n, v.typ == ValueTypeNumber
}

// AsString returns the string payload.
func (v Value) AsString() (string, bool) {
	return v.s, v.typ == ValueTypeString
}

// AsArray returns the array elements.
func (v Value) AsArray() ([]Value, bool) {
	return v.arr, v.typ == ValueTypeArray
}

// AsObject returns the object payload.
func (v Value) AsObject() (*Object, bool) {
	return v.obj, v.typ == ValueTypeObject
}

// String renders the value as compact JSON. Values that cannot be encoded
// (non-finite numbers) fall back to Go formatting.
func (v Value) String() string {
	b, err := ToJSON(v)
	if err != nil {
		if v.typ == ValueTypeNumber {
			return strconv.FormatFloat(v.n, 'g', -1, 64)
		}
		return "<invalid>"
	}
	return string(b)
}
