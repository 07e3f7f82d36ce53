package server

import (
	jsoniter "github.com/json-iterator/go"

	"mercator-hq/mpl-builtins/pkg/mpl/value"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrorTypeRequest marks a request that never reached a builtin: malformed
// JSON, a missing builtin name or an argument that is not valid JSON.
const ErrorTypeRequest = "request"

// Request is one builtin call. On the serve stream each request is a single
// JSON line:
//
//	{"id": "r1", "builtin": "base64.decode", "args": ["aGk="]}
type Request struct {
	// ID correlates the response. A UUID is generated when empty.
	ID string `json:"id,omitempty"`

	// Builtin is the dotted builtin name.
	Builtin string `json:"builtin"`

	// Args are the evaluated arguments as JSON values.
	Args []jsoniter.RawMessage `json:"args"`

	// Strict overrides the configured strictness for this call.
	Strict *bool `json:"strict,omitempty"`

	// Trace carries W3C trace context (traceparent, tracestate).
	Trace map[string]string `json:"trace,omitempty"`
}

// Response is the result of one Request.
type Response struct {
	ID string `json:"id"`

	// Outcome is ok, error or soft_error.
	Outcome string `json:"outcome"`

	// Result is set when the builtin returned a value, including soft
	// failures.
	Result *value.Value `json:"result,omitempty"`

	Error *ErrorBody `json:"error,omitempty"`

	Trace map[string]string `json:"trace,omitempty"`
}

// ErrorBody describes a failed call.
type ErrorBody struct {
	// Type is the error kind: an MPL error type (arity, type, decode, parse,
	// schema, serialize), a dispatcher kind or "request".
	Type string `json:"type"`

	// Message is the one-line description.
	Message string `json:"message"`

	// Diagnostic is the rendered error with the source excerpt.
	Diagnostic string `json:"diagnostic,omitempty"`

	Suggestion string `json:"suggestion,omitempty"`
	Line       int    `json:"line,omitempty"`
	Column     int    `json:"column,omitempty"`
}

// DecodeRequest parses one request.
func DecodeRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}
