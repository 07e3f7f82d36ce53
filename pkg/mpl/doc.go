// Package mpl holds the builtin function layer of the Mercator Policy
// Language (MPL): the format-conversion and validation functions policies
// call on request and response data.
//
// # Architecture
//
// The package is organized into subpackages:
//
// - ast: call sites and source spans used for error attribution
// - value: the dynamic value model builtins consume and produce
// - errors: rich error types with location, context and suggestions
// - builtins: the builtin catalog and family registry
//
// Dispatch, strict mode defaults, evidence recording and metrics live in
// pkg/policy/engine.
//
// # Basic Usage
//
//	import (
//	    "mercator-hq/mpl-builtins/pkg/mpl/ast"
//	    "mercator-hq/mpl-builtins/pkg/mpl/builtins"
//	    "mercator-hq/mpl-builtins/pkg/mpl/value"
//	)
//
//	reg := builtins.NewDefaultRegistry()
//	b, _ := reg.Lookup("base64.decode")
//
//	call := ast.SynthesizeCall("<args>", b.Name, []string{`"aGk="`})
//	out, err := b.Fn(call.Loc, call.Params, []value.Value{value.String("aGk=")}, false)
//	if err != nil {
//	    fmt.Println(err) // located, with source context
//	}
//	fmt.Println(out) // "hi"
//
// # Error Handling
//
// Builtins return *errors.Error. Each error has a type (arity, type, decode,
// parse, schema, serialize) that errors.Is matches against the sentinels in
// the errors package, and a span pointing at the offending argument.
package mpl
