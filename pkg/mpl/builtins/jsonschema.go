package builtins

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"mercator-hq/mpl-builtins/pkg/mpl/ast"
	mplerrors "mercator-hq/mpl-builtins/pkg/mpl/errors"
	"mercator-hq/mpl-builtins/pkg/mpl/value"
)

// schemaURL names the in-memory resource a schema is compiled from.
const schemaURL = "mem:///schema.json"

// refuseLoad stands in for the compiler's URL loader. Only the schema handed
// to the builtin and its local fragments can be resolved; a $ref to a file or
// remote document fails compilation instead of touching disk or network.
func refuseLoad(url string) (io.ReadCloser, error) {
	return nil, fmt.Errorf("external reference %q is not allowed", url)
}

// compileJSONSchema compiles a draft 7 schema. A string argument is taken as
// the schema's JSON text; any other value is encoded to JSON first. Schemas
// are compiled per call and never cached.
func compileJSONSchema(param ast.Expr, arg value.Value) (*jsonschema.Schema, *mplerrors.Error) {
	text, ok := arg.AsString()
	if !ok {
		encoded, err := value.ToJSON(arg)
		if err != nil {
			return nil, mplerrors.Wrap(mplerrors.ErrorTypeSchema, spanOf(param), err, "not a valid json schema")
		}
		text = string(encoded)
	}

	if _, err := value.FromJSON([]byte(text)); err != nil {
		return nil, mplerrors.Wrap(mplerrors.ErrorTypeSchema, spanOf(param), err, "not a valid json schema")
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	compiler.LoadURL = refuseLoad

	if err := compiler.AddResource(schemaURL, strings.NewReader(text)); err != nil {
		return nil, mplerrors.Wrap(mplerrors.ErrorTypeSchema, spanOf(param), err, "not a valid json schema")
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, mplerrors.Wrap(mplerrors.ErrorTypeSchema, spanOf(param), err, "not a valid json schema")
	}
	return schema, nil
}

// schemaIssues flattens a validation error tree into one message per leaf,
// each prefixed with the instance location it failed at.
func schemaIssues(verr *jsonschema.ValidationError) []value.Value {
	if len(verr.Causes) == 0 {
		location := verr.InstanceLocation
		if location == "" {
			location = "(root)"
		}
		return []value.Value{value.String(location + ": " + verr.Message)}
	}
	var issues []value.Value
	for _, cause := range verr.Causes {
		issues = append(issues, schemaIssues(cause)...)
	}
	return issues
}

// schemaFailure applies the strict/non-strict split for a schema that did not
// compile: strict raises, non-strict returns [false, message].
func schemaFailure(param ast.Expr, compileErr *mplerrors.Error, strict bool) (value.Value, error) {
	if strict {
		return value.Value{}, mplerrors.Wrap(mplerrors.ErrorTypeSchema, spanOf(param), compileErr.Cause,
			"invalid schema: "+compileErr.Message)
	}
	return value.NewArray(value.Bool(false), value.String(compileErr.Summary())), nil
}

func jsonVerifySchema(span ast.Span, params []ast.Expr, args []value.Value, strict bool) (value.Value, error) {
	const name = "json.verify_schema"
	if err := ensureArgsCount(span, name, args, 1); err != nil {
		return value.Value{}, err
	}

	if _, cerr := compileJSONSchema(param(params, 0), args[0]); cerr != nil {
		return schemaFailure(param(params, 0), cerr, strict)
	}
	return value.NewArray(value.Bool(true), value.Null()), nil
}

func jsonMatchSchema(span ast.Span, params []ast.Expr, args []value.Value, strict bool) (value.Value, error) {
	const name = "json.match_schema"
	if err := ensureArgsCount(span, name, args, 2); err != nil {
		return value.Value{}, err
	}

	document, err := value.ToJSON(args[0])
	if err != nil {
		return value.Value{}, mplerrors.Wrap(mplerrors.ErrorTypeSerialize, spanOf(param(params, 0)), err,
			"could not serialize to json")
	}

	schema, cerr := compileJSONSchema(param(params, 1), args[1])
	if cerr != nil {
		return schemaFailure(param(params, 1), cerr, strict)
	}

	decoder := json.NewDecoder(bytes.NewReader(document))
	decoder.UseNumber()
	var instance interface{}
	if err := decoder.Decode(&instance); err != nil {
		return value.Value{}, mplerrors.Wrap(mplerrors.ErrorTypeSerialize, spanOf(param(params, 0)), err,
			"could not validate document")
	}

	err = schema.Validate(instance)
	if err == nil {
		return value.NewArray(value.Bool(true), value.Null()), nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return value.Value{}, mplerrors.Wrap(mplerrors.ErrorTypeSerialize, spanOf(param(params, 0)), err,
			"could not validate document")
	}

	// Mismatches are data, whatever the strictness.
	return value.NewArray(value.Bool(false), value.NewArray(schemaIssues(verr)...)), nil
}

// IsSoftFailure reports whether a result is a schema compile failure that was
// returned as data, i.e. [false, "<message>"]. Validation mismatches carry an
// array of messages instead and do not count.
func IsSoftFailure(v value.Value) bool {
	arr, ok := v.AsArray()
	if !ok || len(arr) != 2 {
		return false
	}
	b, ok := arr[0].AsBool()
	if !ok || b {
		return false
	}
	_, ok = arr[1].AsString()
	return ok
}
