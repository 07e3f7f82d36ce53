package builtins

import (
	"mercator-hq/mpl-builtins/pkg/mpl/ast"
	mplerrors "mercator-hq/mpl-builtins/pkg/mpl/errors"
	"mercator-hq/mpl-builtins/pkg/mpl/value"
)

func yamlIsValid(span ast.Span, params []ast.Expr, args []value.Value, _ bool) (value.Value, error) {
	const name = "yaml.is_valid"
	if err := ensureArgsCount(span, name, args, 1); err != nil {
		return value.Value{}, err
	}

	text, err := ensureString(name, param(params, 0), args[0])
	if err != nil {
		return value.Value{}, err
	}

	_, err = value.FromYAML([]byte(text))
	return value.Bool(err == nil), nil
}

func yamlMarshal(span ast.Span, params []ast.Expr, args []value.Value, _ bool) (value.Value, error) {
	const name = "yaml.marshal"
	if err := ensureArgsCount(span, name, args, 1); err != nil {
		return value.Value{}, err
	}

	out, err := value.ToYAML(args[0])
	if err != nil {
		return value.Value{}, mplerrors.Wrap(mplerrors.ErrorTypeSerialize, span, err, "could not serialize to yaml")
	}
	return value.String(string(out)), nil
}

func yamlUnmarshal(span ast.Span, params []ast.Expr, args []value.Value, _ bool) (value.Value, error) {
	const name = "yaml.unmarshal"
	if err := ensureArgsCount(span, name, args, 1); err != nil {
		return value.Value{}, err
	}

	text, err := ensureString(name, param(params, 0), args[0])
	if err != nil {
		return value.Value{}, err
	}

	v, err := value.FromYAML([]byte(text))
	if err != nil {
		return value.Value{}, mplerrors.Wrap(mplerrors.ErrorTypeParse, span, err, "could not deserialize yaml.")
	}
	return v, nil
}
