package builtins

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mplerrors "mercator-hq/mpl-builtins/pkg/mpl/errors"
	"mercator-hq/mpl-builtins/pkg/mpl/value"
)

// sampleValues covers every value kind, including nesting and non-string keys.
func sampleValues(t *testing.T) []value.Value {
	t.Helper()

	inner := value.NewObject()
	inner.Set(str("list"), value.NewArray(value.Number(1), value.Number(-2.5), value.Null()))
	inner.Set(str("flag"), value.Bool(false))

	outer := value.NewObject()
	outer.Set(str("inner"), value.FromObject(inner))
	outer.Set(str("name"), str("mpl"))
	outer.Set(str("empty"), value.FromObject(nil))

	return []value.Value{
		value.Null(),
		value.Bool(true),
		value.Number(0),
		value.Number(123456789),
		value.Number(0.25),
		str(""),
		str("multi\nline"),
		str("true"),
		value.NewArray(),
		value.NewArray(str("a"), value.Number(1)),
		value.FromObject(outer),
	}
}

func TestJSON_RoundTrip(t *testing.T) {
	for _, v := range sampleValues(t) {
		text := mustCall(t, "json.marshal", v)
		back := mustCall(t, "json.unmarshal", text)
		assert.True(t, value.Equal(v, back), "round trip of %s gave %s", v, back)
	}
}

func TestJSON_Marshal(t *testing.T) {
	obj := value.NewObject()
	obj.Set(str("b"), value.Number(1))
	obj.Set(str("a"), value.NewArray(value.Bool(true)))

	assert.Equal(t, str(`{"a":[true],"b":1}`), mustCall(t, "json.marshal", value.FromObject(obj)))
}

func TestJSON_MarshalNonFinite(t *testing.T) {
	_, err := call(t, "json.marshal", false, value.Number(math.Inf(1)))
	assert.True(t, errors.Is(err, mplerrors.ErrSerialize))
}

func TestJSON_IsValid(t *testing.T) {
	assert.Equal(t, value.Bool(false), mustCall(t, "json.is_valid", str("{")))
	assert.Equal(t, value.Bool(true), mustCall(t, "json.is_valid", str("{}")))
	assert.Equal(t, value.Bool(true), mustCall(t, "json.is_valid", str(`[1, "two", null]`)))
	assert.Equal(t, value.Bool(false), mustCall(t, "json.is_valid", str("")))

	for _, input := range []string{"01", "-01", "00", "1.", "[0, 012]"} {
		assert.Equal(t, value.Bool(false), mustCall(t, "json.is_valid", str(input)), "input %q", input)
	}
	for _, input := range []string{"0", "-0", "0.5", "-1.25e-3", "1E+2"} {
		assert.Equal(t, value.Bool(true), mustCall(t, "json.is_valid", str(input)), "input %q", input)
	}
}

func TestJSON_UnmarshalLeadingZero(t *testing.T) {
	_, err := call(t, "json.unmarshal", false, str("01"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, mplerrors.ErrParse))
}

func TestJSON_UnmarshalInvalid(t *testing.T) {
	_, err := call(t, "json.unmarshal", false, str("{"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, mplerrors.ErrParse))

	var mplErr *mplerrors.Error
	require.True(t, errors.As(err, &mplErr))
	assert.Equal(t, "could not deserialize json.", mplErr.Message)
	assert.NotNil(t, mplErr.Cause)
	// anchored at the call
	assert.Equal(t, 1, mplErr.Span.Column)
}
