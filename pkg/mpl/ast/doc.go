// Package ast defines the parts of a policy expression that builtins see: the
// call site and the spans of its arguments.
//
// Builtins never evaluate expressions. They receive already evaluated
// argument values alongside the argument expressions, and use the expressions
// only to attribute errors to the argument that caused them.
//
// # Spans
//
// A Span points into a Source by byte range and carries the 1-based line and
// column of its start:
//
//	src := ast.NewSource("policy.yaml", contents)
//	span := src.Span(start, end)
//	fmt.Println(span) // policy.yaml:3:17
//
// # Synthesized calls
//
// Callers that have argument text but no policy, such as the command line
// and the serve protocol, build a call site with SynthesizeCall. The source
// reads `name(arg1, arg2)` so diagnostics can underline the argument:
//
//	call := ast.SynthesizeCall("<args>", "base64.decode", []string{`"@@"`})
//	// call.Params[0].Span() is <args>:1:15
package ast
