package builtins

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mplerrors "mercator-hq/mpl-builtins/pkg/mpl/errors"
	"mercator-hq/mpl-builtins/pkg/mpl/value"
)

func TestURLQuery_DecodeObject(t *testing.T) {
	out := mustCall(t, "urlquery.decode_object", str("b=3&a=1&a=2"))

	obj, ok := out.AsObject()
	require.True(t, ok)

	// key order, not order of appearance
	assert.Equal(t, []value.Value{str("a"), str("b")}, obj.Keys())

	a, _ := obj.Get(str("a"))
	assert.Equal(t, value.NewArray(str("1"), str("2")), a)
	b, _ := obj.Get(str("b"))
	assert.Equal(t, value.NewArray(str("3")), b)

	encoded, err := value.ToJSON(out)
	require.NoError(t, err)
	assert.Equal(t, `{"a":["1","2"],"b":["3"]}`, string(encoded))
}

func TestURLQuery_Escapes(t *testing.T) {
	out := mustCall(t, "urlquery.decode_object", str("name=John+Doe&city=New%20York&flag"))

	encoded, err := value.ToJSON(out)
	require.NoError(t, err)
	assert.Equal(t, `{"city":["New York"],"flag":[""],"name":["John Doe"]}`, string(encoded))
}

func TestURLQuery_Empty(t *testing.T) {
	out := mustCall(t, "urlquery.decode_object", str(""))
	obj, ok := out.AsObject()
	require.True(t, ok)
	assert.Equal(t, 0, obj.Len())
}

func TestURLQuery_Lenient(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"bad escape kept", "a=%zz&b=1", `{"a":["%zz"],"b":["1"]}`},
		{"truncated escape", "a=1%", `{"a":["1%"]}`},
		{"semicolon is not a separator", "a=1;b=2", `{"a":["1;b=2"]}`},
		{"good escapes around a bad one", "a=x+%41%zz%42", `{"a":["x A%zzB"]}`},
		{"empty pieces skipped", "a=1&&b=2&", `{"a":["1"],"b":["2"]}`},
		{"fragment dropped", "a=1#b=2", `{"a":["1"]}`},
		{"invalid utf-8 replaced", "a=%ff", `{"a":["\ufffd"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := mustCall(t, "urlquery.decode_object", str(tt.query))
			encoded, err := value.ToJSON(out)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(encoded))
		})
	}
}

func TestURLQuery_Invalid(t *testing.T) {
	// control characters make the synthesized URL unparsable
	_, err := call(t, "urlquery.decode_object", false, str("a=\x7f"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, mplerrors.ErrParse))

	var mplErr *mplerrors.Error
	require.True(t, errors.As(err, &mplErr))
	assert.Equal(t, "not a valid url query", mplErr.Message)
}
