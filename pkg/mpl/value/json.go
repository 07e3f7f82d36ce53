package value

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

// jsonAPI keeps numbers as json.Number so integers survive decoding untouched.
var jsonAPI = jsoniter.Config{
	UseNumber:              true,
	EscapeHTML:             false,
	ValidateJsonRawMessage: true,
}.Froze()

// jsonNumber is the RFC 8259 number grammar. The decoder is laxer than this
// and lets through literals such as 01 and 1.
var jsonNumber = regexp.MustCompile(`^-?(?:0|[1-9][0-9]*)(?:\.[0-9]+)?(?:[eE][+-]?[0-9]+)?$`)

// FromJSON parses JSON text into a Value.
func FromJSON(data []byte) (Value, error) {
	var raw interface{}
	if err := jsonAPI.Unmarshal(data, &raw); err != nil {
		return Value{}, err
	}
	return FromNative(raw)
}

// ToJSON serializes v to compact JSON. Object keys are written in key order;
// keys that are not strings are written as their own JSON text.
func ToJSON(v Value) ([]byte, error) {
	stream := jsonAPI.BorrowStream(nil)
	defer jsonAPI.ReturnStream(stream)

	if err := writeJSON(stream, v); err != nil {
		return nil, err
	}
	if stream.Error != nil {
		return nil, stream.Error
	}

	buf := stream.Buffer()
	out := make([]byte, len(buf))
	copy(out, buf)
	return out, nil
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return ToJSON(v)
}

func writeJSON(stream *jsoniter.Stream, v Value) error {
	switch v.Type() {
	case ValueTypeNull:
		stream.WriteNil()

	case ValueTypeBoolean:
		stream.WriteBool(v.b)

	case ValueTypeNumber:
		text, err := FormatNumber(v.n)
		if err != nil {
			return err
		}
		stream.WriteRaw(text)

	case ValueTypeString:
		stream.WriteString(v.s)

	case ValueTypeArray:
		stream.WriteArrayStart()
		for i, item := range v.arr {
			if i > 0 {
				stream.WriteMore()
			}
			if err := writeJSON(stream, item); err != nil {
				return err
			}
		}
		stream.WriteArrayEnd()

	case ValueTypeObject:
		stream.WriteObjectStart()
		first := true
		var err error
		v.obj.Range(func(key, val Value) bool {
			if !first {
				stream.WriteMore()
			}
			first = false

			name, kerr := keyText(key)
			if kerr != nil {
				err = kerr
				return false
			}
			stream.WriteObjectField(name)
			err = writeJSON(stream, val)
			return err == nil
		})
		if err != nil {
			return err
		}
		stream.WriteObjectEnd()
	}

	return nil
}

// keyText returns the JSON object field name used for key.
func keyText(key Value) (string, error) {
	if s, ok := key.AsString(); ok {
		return s, nil
	}
	b, err := ToJSON(key)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// FormatNumber renders n the way encoding/json does: integers without a
// fraction, very small or very large magnitudes in exponent form.
func FormatNumber(n float64) (string, error) {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return "", fmt.Errorf("unsupported number: %s", strconv.FormatFloat(n, 'g', -1, 64))
	}

	abs := math.Abs(n)
	format := byte('f')
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	b := strconv.AppendFloat(nil, n, format, -1, 64)
	if format == 'e' {
		// clean up e-09 to e-9
		if l := len(b); l >= 4 && b[l-4] == 'e' && b[l-3] == '-' && b[l-2] == '0' {
			b[l-2] = b[l-1]
			b = b[:l-1]
		}
	}
	return string(b), nil
}

// FromNative converts decoded Go data (as produced by JSON and YAML decoders)
// into a Value.
func FromNative(x interface{}) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		if !jsonNumber.MatchString(string(t)) {
			return Value{}, fmt.Errorf("invalid number %q", string(t))
		}
		f, err := strconv.ParseFloat(string(t), 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q: %w", string(t), err)
		}
		return Number(f), nil
	case float64:
		return Number(t), nil
	case float32:
		return Number(float64(t)), nil
	case int:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case uint64:
		return Number(float64(t)), nil
	case []interface{}:
		items := make([]Value, len(t))
		for i, item := range t {
			v, err := FromNative(item)
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return Value{typ: ValueTypeArray, arr: items}, nil
	case map[string]interface{}:
		obj := NewObject()
		for k, item := range t {
			v, err := FromNative(item)
			if err != nil {
				return Value{}, err
			}
			obj.Set(String(k), v)
		}
		return FromObject(obj), nil
	default:
		return Value{}, fmt.Errorf("unsupported type %T", x)
	}
}
