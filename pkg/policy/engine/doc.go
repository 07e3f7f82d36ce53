// Package engine dispatches builtin calls for a policy evaluator.
//
// A Dispatcher holds the active builtins.Registry behind an atomic pointer.
// Evaluators hand it a name, the call span, the argument expressions and the
// evaluated arguments; it resolves the name, invokes the builtin and returns
// its result unchanged. Around each call it:
//
//   - starts a span named "mpl.builtin <name>"
//   - records call, error and argument size metrics
//   - logs failures (debug for policy errors, warn for internal ones)
//   - hands an evidence entry to the recorder, never waiting on it
//
// # Usage
//
//	cfg, err := engine.FromConfig(appCfg.Builtins)
//	if err != nil {
//	    return err
//	}
//	d, err := engine.NewDispatcher(cfg,
//	    engine.WithLogger(logger),
//	    engine.WithMetrics(collector),
//	    engine.WithTracer(tracer),
//	    engine.WithRecorder(rec),
//	)
//	if err != nil {
//	    return err
//	}
//
//	result, err := d.Call(ctx, "base64.decode", call.Span(), call.Params, args, d.Strict())
//
// # Reloading
//
// Reload builds a fresh registry from a BuiltinsConfig and swaps it in.
// Calls already running finish against the registry they started with. A
// config naming an unknown family is rejected and the old registry stays.
//
// Names of disabled families do not resolve; the caller gets an
// UnknownBuiltinError (errors.Is ErrUnknownBuiltin) with a "did you mean"
// suggestion drawn from the active registry.
package engine
