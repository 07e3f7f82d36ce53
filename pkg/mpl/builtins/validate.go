package builtins

import (
	"mercator-hq/mpl-builtins/pkg/mpl/ast"
	mplerrors "mercator-hq/mpl-builtins/pkg/mpl/errors"
	"mercator-hq/mpl-builtins/pkg/mpl/value"
)

// ensureArgsCount fails with an arity error at the call span unless exactly
// expected arguments were passed.
func ensureArgsCount(span ast.Span, name string, args []value.Value, expected int) error {
	if len(args) != expected {
		return mplerrors.NewArityError(span, name, expected, len(args))
	}
	return nil
}

// ensureString returns the text of arg, or a type error anchored at the
// argument's own span.
func ensureString(name string, param ast.Expr, arg value.Value) (string, error) {
	if s, ok := arg.AsString(); ok {
		return s, nil
	}
	err := mplerrors.NewTypeError(spanOf(param), name, "string", arg.String())
	return "", err.WithSuggestion(mplerrors.SuggestStringConversion(string(arg.Type())))
}

// param returns the i-th parameter expression, or nil when the caller did not
// supply one.
func param(params []ast.Expr, i int) ast.Expr {
	if i < len(params) {
		return params[i]
	}
	return nil
}

func spanOf(e ast.Expr) ast.Span {
	if e == nil {
		return ast.Span{}
	}
	return e.Span()
}
