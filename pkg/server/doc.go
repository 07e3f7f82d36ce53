// Package server exposes the builtin dispatcher to other processes.
//
// Two transports share one Handler:
//
//   - ServeLines reads JSON-lines requests (typically stdin) and writes one
//     JSON-lines response per request in order.
//   - Server is an HTTP listener with POST /v1/call, the Prometheus endpoint
//     and the /health, /ready and /version probes.
//
// A request names the builtin and carries its arguments as JSON values:
//
//	{"id": "r1", "builtin": "json.match_schema", "args": [{"a": 1}, {"type": "object"}], "strict": true}
//
// and the response reports the outcome with either the result or an error:
//
//	{"id": "r1", "outcome": "ok", "result": [true, []]}
//	{"id": "r2", "outcome": "error", "error": {"type": "decode", "message": "...", "line": 1, "column": 15}}
//
// Diagnostics are rendered against a synthesized source that reads
// `builtin(arg1, arg2, ...)`, so the column points into the caller's own
// argument text.
package server
