package value

import "strings"

// Compare defines the total order used for object keys:
// null < boolean < number < string < array < object. Values of the same type
// compare naturally; arrays and objects compare element by element.
// It returns -1, 0 or +1.
func Compare(a, b Value) int {
	ra, rb := a.Type().rank(), b.Type().rank()
	if ra != rb {
		return cmpInt(ra, rb)
	}

	switch a.Type() {
	case ValueTypeBoolean:
		switch {
		case a.b == b.b:
			return 0
		case !a.b:
			return -1
		default:
			return 1
		}

	case ValueTypeNumber:
		switch {
		case a.n < b.n:
			return -1
		case a.n > b.n:
			return 1
		default:
			return 0
		}

	case ValueTypeString:
		return strings.Compare(a.s, b.s)

	case ValueTypeArray:
		for i := 0; i < len(a.arr) && i < len(b.arr); i++ {
			if c := Compare(a.arr[i], b.arr[i]); c != 0 {
				return c
			}
		}
		return cmpInt(len(a.arr), len(b.arr))

	case ValueTypeObject:
		ae, be := a.obj.entriesOrNil(), b.obj.entriesOrNil()
		for i := 0; i < len(ae) && i < len(be); i++ {
			if c := Compare(ae[i].key, be[i].key); c != 0 {
				return c
			}
			if c := Compare(ae[i].val, be[i].val); c != 0 {
				return c
			}
		}
		return cmpInt(len(ae), len(be))
	}

	return 0
}

// Equal reports whether two values are structurally equal.
func Equal(a, b Value) bool {
	return Compare(a, b) == 0
}

func (o *Object) entriesOrNil() []entry {
	if o == nil {
		return nil
	}
	return o.entries
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
