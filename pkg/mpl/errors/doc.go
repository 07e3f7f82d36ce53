// Package errors provides the diagnostics returned by MPL builtins.
//
// Every failure carries the span of the expression it is attributed to:
// arity errors point at the whole call, type, decode and schema errors point
// at the offending argument. Rendering an error shows the source excerpt with
// the span underlined.
//
// # Error Types
//
// ErrorTypeArity: wrong number of arguments
//
// ErrorTypeType: argument of the wrong kind (e.g. a number where text is required)
//
// ErrorTypeDecode: malformed base64 or hex input
//
// ErrorTypeParse: malformed JSON, YAML or URL query text
//
// ErrorTypeSchema: JSON schema that does not compile
//
// ErrorTypeSerialize: a value that cannot be encoded
//
// # Error Format
//
//	[decode] `base64.decode` expects valid base64 input: illegal base64 data at input byte 0
//	  --> policy.mpl:1:15
//	  |
//	-> 1 | base64.decode("@@")
//	     |               ^^^^
//	  |
//
// # Matching
//
// Errors can be matched by category with the standard library:
//
//	if errors.Is(err, mplerrors.ErrArity) {
//	    // wrong argument count
//	}
package errors
