package ast

import "strings"

// Expr is any expression node that knows where it came from.
// Builtins only use it to attribute errors to a specific argument.
type Expr interface {
	Span() Span
}

// Term is a leaf expression: the literal text of an argument and its span.
type Term struct {
	Text string
	Loc  Span
}

// Span returns the location of the term.
func (t *Term) Span() Span {
	return t.Loc
}

// Call is a builtin call site, e.g. `base64.decode(x)`.
type Call struct {
	Name   string // Builtin name as written
	Loc    Span   // Span of the whole call expression
	Params []Expr // Argument expressions in order
}

// Span returns the location of the whole call.
func (c *Call) Span() Span {
	return c.Loc
}

// SynthesizeCall builds a call site for callers that have argument text but no
// parsed policy, such as the CLI. The generated source reads
// `name(arg1, arg2, ...)` and every parameter span points at its argument.
func SynthesizeCall(file, name string, args []string) *Call {
	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteByte('(')

	offsets := make([][2]int, len(args))
	for i, arg := range args {
		if i > 0 {
			sb.WriteString(", ")
		}
		start := sb.Len()
		sb.WriteString(arg)
		offsets[i] = [2]int{start, sb.Len()}
	}
	sb.WriteByte(')')

	src := NewSource(file, sb.String())
	call := &Call{
		Name:   name,
		Loc:    src.Span(0, len(src.Contents)),
		Params: make([]Expr, len(args)),
	}
	for i, arg := range args {
		call.Params[i] = &Term{Text: arg, Loc: src.Span(offsets[i][0], offsets[i][1])}
	}
	return call
}
