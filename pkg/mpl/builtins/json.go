package builtins

import (
	"mercator-hq/mpl-builtins/pkg/mpl/ast"
	mplerrors "mercator-hq/mpl-builtins/pkg/mpl/errors"
	"mercator-hq/mpl-builtins/pkg/mpl/value"
)

func jsonIsValid(span ast.Span, params []ast.Expr, args []value.Value, _ bool) (value.Value, error) {
	const name = "json.is_valid"
	if err := ensureArgsCount(span, name, args, 1); err != nil {
		return value.Value{}, err
	}

	text, err := ensureString(name, param(params, 0), args[0])
	if err != nil {
		return value.Value{}, err
	}

	_, err = value.FromJSON([]byte(text))
	return value.Bool(err == nil), nil
}

func jsonMarshal(span ast.Span, params []ast.Expr, args []value.Value, _ bool) (value.Value, error) {
	const name = "json.marshal"
	if err := ensureArgsCount(span, name, args, 1); err != nil {
		return value.Value{}, err
	}

	out, err := value.ToJSON(args[0])
	if err != nil {
		return value.Value{}, mplerrors.Wrap(mplerrors.ErrorTypeSerialize, span, err, "could not serialize to json")
	}
	return value.String(string(out)), nil
}

func jsonUnmarshal(span ast.Span, params []ast.Expr, args []value.Value, _ bool) (value.Value, error) {
	const name = "json.unmarshal"
	if err := ensureArgsCount(span, name, args, 1); err != nil {
		return value.Value{}, err
	}

	text, err := ensureString(name, param(params, 0), args[0])
	if err != nil {
		return value.Value{}, err
	}

	v, err := value.FromJSON([]byte(text))
	if err != nil {
		return value.Value{}, mplerrors.Wrap(mplerrors.ErrorTypeParse, span, err, "could not deserialize json.")
	}
	return v, nil
}
