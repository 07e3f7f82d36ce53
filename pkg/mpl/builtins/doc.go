// Package builtins implements the MPL format-conversion and validation
// builtins: base64, base64url, hex, urlquery, json, json schema and yaml.
//
// Builtins are registered by family. A registry only holds the families it was
// built with, so a disabled builtin is indistinguishable from an unknown name:
//
//	reg := builtins.NewRegistry(builtins.FamilyBase64, builtins.FamilyYAML)
//	b, ok := reg.Lookup("base64.decode")
//	if ok {
//	    out, err := b.Fn(call.Span(), call.Params, args, strict)
//	}
//
// Every builtin checks its argument count against the call span and its
// argument types against each parameter's span before doing any work.
//
// # Strict mode
//
// Only json.verify_schema and json.match_schema look at the strict flag. A
// schema that does not compile raises an error in strict mode and is returned
// as [false, "<message>"] otherwise. Documents that do not match a valid
// schema are always returned as [false, ["<error>", ...]].
package builtins
