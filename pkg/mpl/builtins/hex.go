package builtins

import (
	"encoding/hex"

	"mercator-hq/mpl-builtins/pkg/mpl/ast"
	mplerrors "mercator-hq/mpl-builtins/pkg/mpl/errors"
	"mercator-hq/mpl-builtins/pkg/mpl/value"
)

func hexDecode(span ast.Span, params []ast.Expr, args []value.Value, _ bool) (value.Value, error) {
	const name = "hex.decode"
	if err := ensureArgsCount(span, name, args, 1); err != nil {
		return value.Value{}, err
	}

	encoded, err := ensureString(name, param(params, 0), args[0])
	if err != nil {
		return value.Value{}, err
	}

	// Accepts upper and lower case digits.
	decoded, err := hex.DecodeString(encoded)
	if err != nil {
		return value.Value{}, mplerrors.Wrap(mplerrors.ErrorTypeDecode, spanOf(param(params, 0)), err,
			"`"+name+"` expects valid hex input")
	}
	return value.String(lossyString(decoded)), nil
}

func hexEncode(span ast.Span, params []ast.Expr, args []value.Value, _ bool) (value.Value, error) {
	const name = "hex.encode"
	if err := ensureArgsCount(span, name, args, 1); err != nil {
		return value.Value{}, err
	}

	s, err := ensureString(name, param(params, 0), args[0])
	if err != nil {
		return value.Value{}, err
	}
	return value.String(hex.EncodeToString([]byte(s))), nil
}
