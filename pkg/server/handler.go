package server

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"mercator-hq/mpl-builtins/pkg/config"
	"mercator-hq/mpl-builtins/pkg/evidence"
	"mercator-hq/mpl-builtins/pkg/mpl/ast"
	"mercator-hq/mpl-builtins/pkg/mpl/builtins"
	mplerrors "mercator-hq/mpl-builtins/pkg/mpl/errors"
	"mercator-hq/mpl-builtins/pkg/mpl/value"
	"mercator-hq/mpl-builtins/pkg/policy/engine"
	"mercator-hq/mpl-builtins/pkg/telemetry/logging"
	"mercator-hq/mpl-builtins/pkg/telemetry/tracing"
)

// requestSource names the synthesized source of serve requests in
// diagnostics.
const requestSource = "<request>"

// Caller is the builtin dispatcher as seen by the server. *engine.Dispatcher
// satisfies it.
type Caller interface {
	Call(ctx context.Context, name string, span ast.Span, params []ast.Expr, args []value.Value, strict bool) (value.Value, error)
	Lookup(name string) (builtins.Builtin, bool)
	Strict() bool
}

// Handler turns requests into dispatcher calls.
type Handler struct {
	caller Caller
	logger *logging.Logger
	tracer *tracing.Tracer
}

// NewHandler creates a handler. A nil logger discards and a nil tracer is
// replaced by the noop tracer.
func NewHandler(caller Caller, logger *logging.Logger, tracer *tracing.Tracer) *Handler {
	if logger == nil {
		logger = logging.Discard()
	}
	if tracer == nil {
		tracer, _ = tracing.New(&config.TracingConfig{})
	}
	return &Handler{
		caller: caller,
		logger: logger.WithComponent("server"),
		tracer: tracer,
	}
}

// Handle runs one request. It never returns nil; failures are reported in
// the response. A panic inside the builtin is recovered and reported as an
// internal error.
func (h *Handler) Handle(ctx context.Context, req *Request) (resp *Response) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	ctx = logging.WithRequestID(ctx, req.ID)
	if tp, ok := req.Trace[tracing.TraceParentKey]; ok && !tracing.ValidateTraceParent(tp) {
		h.logger.DebugContext(ctx, "ignoring malformed traceparent", "traceparent", tp)
	} else {
		ctx = tracing.ExtractFromMap(ctx, req.Trace)
	}

	ctx, span := h.tracer.Start(ctx, tracing.SpanNameServeRequest, trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()
	tracing.SetRequestAttributes(span, req.ID)

	resp = &Response{ID: req.ID}
	defer func() {
		if r := recover(); r != nil {
			h.logger.ErrorContext(ctx, "panic in builtin call",
				"builtin", req.Builtin,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			resp.Outcome = evidence.OutcomeError
			resp.Result = nil
			resp.Error = &ErrorBody{
				Type:    engine.KindInternal,
				Message: fmt.Sprintf("builtin %q panicked", req.Builtin),
			}
		}
		if h.tracer.Enabled() {
			resp.Trace = map[string]string{}
			tracing.InjectToMap(ctx, resp.Trace)
		}
	}()

	if req.Builtin == "" {
		return requestError(resp, "missing builtin name")
	}

	texts := make([]string, len(req.Args))
	args := make([]value.Value, len(req.Args))
	for i, raw := range req.Args {
		v, err := value.FromJSON(raw)
		if err != nil {
			return requestError(resp, fmt.Sprintf("argument %d is not valid JSON: %v", i+1, err))
		}
		texts[i] = string(raw)
		args[i] = v
	}

	strict := h.caller.Strict()
	if req.Strict != nil {
		strict = *req.Strict
	}

	call := ast.SynthesizeCall(requestSource, req.Builtin, texts)
	result, err := h.caller.Call(ctx, req.Builtin, call.Loc, call.Params, args, strict)

	b, _ := h.caller.Lookup(req.Builtin)
	outcome, _, _ := engine.Classify(b, result, err)
	resp.Outcome = outcome
	tracing.SetOutcome(span, outcome)

	if err != nil {
		resp.Error = errorBody(err)
		tracing.SetError(span, err)
		return resp
	}
	resp.Result = &result
	return resp
}

func requestError(resp *Response, message string) *Response {
	resp.Outcome = evidence.OutcomeError
	resp.Error = &ErrorBody{Type: ErrorTypeRequest, Message: message}
	return resp
}

func errorBody(err error) *ErrorBody {
	body := &ErrorBody{
		Type:    engine.ErrorKind(err),
		Message: err.Error(),
	}

	var mplErr *mplerrors.Error
	var unknown *engine.UnknownBuiltinError
	switch {
	case errors.As(err, &mplErr):
		body.Message = mplErr.Summary()
		body.Diagnostic = mplErr.Error()
		body.Suggestion = mplErr.Suggestion
		body.Line = mplErr.Span.Line
		body.Column = mplErr.Span.Column
	case errors.As(err, &unknown):
		body.Suggestion = unknown.Suggestion
		body.Line = unknown.Span.Line
		body.Column = unknown.Span.Column
	}
	return body
}
