package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"null", `null`, `null`},
		{"bool", `true`, `true`},
		{"integer", `42`, `42`},
		{"fraction", `1.5`, `1.5`},
		{"string", `"héllo"`, `"héllo"`},
		{"array", `[1, "a", null]`, `[1,"a",null]`},
		{"object sorted", `{"b": 1, "a": 2}`, `{"a":2,"b":1}`},
		{"nested", `{"x": {"z": [], "y": {}}}`, `{"x":{"y":{},"z":[]}}`},
		{"no html escaping", `"<a&b>"`, `"<a&b>"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := FromJSON([]byte(tt.input))
			require.NoError(t, err)

			out, err := ToJSON(v)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(out))
		})
	}
}

func TestFromJSON_Invalid(t *testing.T) {
	for _, input := range []string{``, `{`, `{"a":}`, `[1,]`, `1 2`, `nope`, `01`, `-01`, `00`, `1.`, `[1.e5]`, `{"a":007}`} {
		_, err := FromJSON([]byte(input))
		assert.Error(t, err, "input %q", input)
	}
}

func TestToJSON_NonStringKeys(t *testing.T) {
	obj := NewObject()
	obj.Set(Number(1), String("one"))
	obj.Set(Bool(true), String("yes"))

	out, err := ToJSON(FromObject(obj))
	require.NoError(t, err)
	assert.Equal(t, `{"true":"yes","1":"one"}`, string(out))
}

func TestToJSON_NonFinite(t *testing.T) {
	_, err := ToJSON(Number(math.NaN()))
	assert.Error(t, err)

	_, err = ToJSON(NewArray(Number(math.Inf(1))))
	assert.Error(t, err)
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{1, "1"},
		{-3, "-3"},
		{0.1, "0.1"},
		{1e20, "100000000000000000000"},
		{1e21, "1e+21"},
		{1e-7, "1e-7"},
		{123456789, "123456789"},
	}

	for _, tt := range tests {
		got, err := FormatNumber(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
