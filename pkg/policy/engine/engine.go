package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"mercator-hq/mpl-builtins/pkg/config"
	"mercator-hq/mpl-builtins/pkg/evidence"
	"mercator-hq/mpl-builtins/pkg/evidence/recorder"
	"mercator-hq/mpl-builtins/pkg/mpl/ast"
	"mercator-hq/mpl-builtins/pkg/mpl/builtins"
	mplerrors "mercator-hq/mpl-builtins/pkg/mpl/errors"
	"mercator-hq/mpl-builtins/pkg/mpl/value"
	"mercator-hq/mpl-builtins/pkg/telemetry/logging"
	"mercator-hq/mpl-builtins/pkg/telemetry/metrics"
	"mercator-hq/mpl-builtins/pkg/telemetry/tracing"
)

// CallRecorder receives one entry per finished call. *recorder.Recorder
// satisfies it.
type CallRecorder interface {
	Record(ctx context.Context, call *recorder.Call) error
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger. Defaults to a discarding logger.
func WithLogger(logger *logging.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithMetrics records call metrics on collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(d *Dispatcher) {
		d.metrics = collector
	}
}

// WithTracer starts a span per call on tracer.
func WithTracer(tracer *tracing.Tracer) Option {
	return func(d *Dispatcher) {
		if tracer != nil {
			d.tracer = tracer
		}
	}
}

// WithRecorder writes an evidence entry per call.
func WithRecorder(r CallRecorder) Option {
	return func(d *Dispatcher) {
		d.recorder = r
	}
}

// snapshot is the registry together with the settings it was built from.
// Reload replaces both at once.
type snapshot struct {
	registry *builtins.Registry
	config   *Config
	loaded   time.Time
}

// Dispatcher resolves builtin names against the active registry, invokes
// them and observes every call. It is safe for concurrent use; Reload swaps
// the registry atomically so each call sees one complete registry.
type Dispatcher struct {
	active atomic.Pointer[snapshot]

	logger   *logging.Logger
	metrics  *metrics.Collector
	tracer   *tracing.Tracer
	recorder CallRecorder
}

// NewDispatcher creates a dispatcher with a registry built from cfg.
func NewDispatcher(cfg *Config, opts ...Option) (*Dispatcher, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	d := &Dispatcher{
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.tracer == nil {
		// a disabled config always yields the noop tracer
		d.tracer, _ = tracing.New(&config.TracingConfig{})
	}
	d.logger = d.logger.WithComponent("engine")

	snap := newSnapshot(cfg)
	d.active.Store(snap)
	d.metrics.SetRegistry(snap.registry.Len(), familyNames(snap.registry.Families()), familyNames(builtins.AllFamilies()))

	d.logger.Info("builtin registry loaded",
		"builtins", snap.registry.Len(),
		"families", familyNames(snap.registry.Families()),
	)

	return d, nil
}

func newSnapshot(cfg *Config) *snapshot {
	return &snapshot{
		registry: builtins.NewRegistry(cfg.Families...),
		config:   cfg,
		loaded:   time.Now(),
	}
}

// Registry returns the active registry.
func (d *Dispatcher) Registry() *builtins.Registry {
	return d.active.Load().registry
}

// Strict returns the configured default strict flag.
func (d *Dispatcher) Strict() bool {
	return d.active.Load().config.Strict
}

// LoadedAt returns when the active registry was built.
func (d *Dispatcher) LoadedAt() time.Time {
	return d.active.Load().loaded
}

// Lookup resolves name against the active registry.
func (d *Dispatcher) Lookup(name string) (builtins.Builtin, bool) {
	return d.Registry().Lookup(name)
}

// Call invokes the builtin registered under name. span is the whole call
// expression, params the argument expressions and args their evaluated
// values. The result and error are exactly those of the builtin, except for
// unknown names and oversized arguments which the dispatcher rejects itself.
//
// The request ID for logs and evidence is taken from ctx (see
// logging.WithRequestID).
func (d *Dispatcher) Call(ctx context.Context, name string, span ast.Span, params []ast.Expr, args []value.Value, strict bool) (value.Value, error) {
	snap := d.active.Load()
	start := time.Now()

	b, found := snap.registry.Lookup(name)
	family := ""
	if found {
		family = string(b.Family)
	}

	ctx, traceSpan := d.tracer.StartBuiltin(ctx, name, family, len(args), strict)
	defer traceSpan.End()
	ctx = logging.WithBuiltin(ctx, name)
	if span.Source != nil {
		tracing.SetSourceAttributes(traceSpan, span.Source.File, span.Line, span.Column)
		ctx = logging.WithPolicy(ctx, span.Source.File)
	}
	if sc := traceSpan.SpanContext(); sc.IsValid() {
		ctx = logging.WithTraceID(ctx, sc.TraceID().String())
		ctx = logging.WithSpanID(ctx, sc.SpanID().String())
	}
	requestID := logging.GetRequestID(ctx)
	if requestID != "" {
		tracing.SetRequestAttributes(traceSpan, requestID)
	}

	// errors here only mean the arguments cannot be measured
	argsJSON, _ := value.ToJSON(value.NewArray(args...))
	d.metrics.RecordArgumentSize(name, len(argsJSON))

	var (
		result value.Value
		err    error
	)
	switch {
	case !found:
		err = &UnknownBuiltinError{
			Name:       name,
			Span:       span,
			Suggestion: mplerrors.SuggestName(name, snap.registry.Names()),
		}
	case snap.config.MaxArgumentBytes > 0 && len(argsJSON) > snap.config.MaxArgumentBytes:
		err = &ArgumentsTooLargeError{Name: name, Size: len(argsJSON), Limit: snap.config.MaxArgumentBytes}
	default:
		result, err = b.Fn(span, params, args, strict)
	}

	duration := time.Since(start)
	outcome, kind, message := Classify(b, result, err)

	d.metrics.RecordCall(name, family, outcome, duration)
	tracing.SetOutcome(traceSpan, outcome)
	if err != nil {
		d.metrics.RecordError(name, kind)
		tracing.SetErrorAttributes(traceSpan, err, kind)
	}

	d.log(ctx, outcome, kind, message, duration, argsJSON)

	if d.recorder != nil {
		call := &recorder.Call{
			RequestID:    requestID,
			Builtin:      name,
			Family:       family,
			Arity:        b.Arity,
			ArgCount:     len(args),
			Strict:       strict,
			Line:         span.Line,
			Column:       span.Column,
			ArgsJSON:     argsJSON,
			Start:        start,
			Duration:     duration,
			Outcome:      outcome,
			ErrorKind:    kind,
			ErrorMessage: message,
		}
		if span.Source != nil {
			call.Source = span.Source.File
		}
		if rerr := d.recorder.Record(ctx, call); rerr != nil && !errors.Is(rerr, evidence.ErrRecorderClosed) {
			d.logger.WithContext(ctx).Debug("evidence not recorded", "error", rerr)
		}
	}

	return result, err
}

// Classify derives the outcome, error kind and message of a finished call.
// b is the zero Builtin when the name did not resolve.
func Classify(b builtins.Builtin, result value.Value, err error) (outcome, kind, message string) {
	if err != nil {
		var mplErr *mplerrors.Error
		if errors.As(err, &mplErr) {
			message = mplErr.Summary()
		} else {
			message = err.Error()
		}
		return evidence.OutcomeError, ErrorKind(err), message
	}

	if b.Family == builtins.FamilyJSONSchema && builtins.IsSoftFailure(result) {
		arr, _ := result.AsArray()
		message, _ = arr[1].AsString()
		return evidence.OutcomeSoftError, string(mplerrors.ErrorTypeSchema), message
	}

	return evidence.OutcomeOK, "", ""
}

// log writes one line per call. Request ID, builtin, policy file and trace
// IDs come from ctx.
func (d *Dispatcher) log(ctx context.Context, outcome, kind, message string, duration time.Duration, argsJSON []byte) {
	if outcome == evidence.OutcomeError {
		// user errors in policies are routine; anything else is ours
		if kind == KindInternal {
			d.logger.WithContext(ctx).WarnContext(ctx, "builtin call failed",
				"kind", kind,
				"error", message,
				"duration_us", duration.Microseconds(),
			)
			return
		}
		if d.logger.Level() > slog.LevelDebug {
			return
		}
		d.logger.WithContext(ctx).DebugContext(ctx, "builtin call failed",
			"kind", kind,
			"error", message,
			"duration_us", duration.Microseconds(),
		)
		return
	}

	if d.logger.Level() > slog.LevelDebug {
		return
	}
	d.logger.WithContext(ctx).DebugContext(ctx, "builtin call",
		"outcome", outcome,
		"args", d.Preview(argsJSON),
		"duration_us", duration.Microseconds(),
	)
}

// Preview renders encoded arguments for a log line, redacted and bounded by
// Config.PreviewBytes.
func (d *Dispatcher) Preview(argsJSON []byte) string {
	return d.logger.Preview(string(argsJSON), d.active.Load().config.PreviewBytes)
}

// Reload rebuilds the registry from cfg and swaps it in. On error the
// active registry is kept.
func (d *Dispatcher) Reload(cfg config.BuiltinsConfig) error {
	next, err := FromConfig(cfg)
	if err != nil {
		err = &ReloadError{Cause: err}
		d.metrics.RecordReload(err, 0, nil, nil)
		d.logger.Error("builtin registry reload rejected", "error", err)
		return err
	}

	prev := d.active.Load()
	snap := newSnapshot(next)
	d.active.Store(snap)

	enabled := familyNames(snap.registry.Families())
	d.metrics.RecordReload(nil, snap.registry.Len(), enabled, familyNames(builtins.AllFamilies()))

	d.logger.Info("builtin registry reloaded",
		"builtins", snap.registry.Len(),
		"previous_builtins", prev.registry.Len(),
		"families", enabled,
		"strict", next.Strict,
	)

	return nil
}

// ReadyCheck reports the dispatcher ready while the active registry holds at
// least one builtin. It is a health.CheckFunc.
func (d *Dispatcher) ReadyCheck(ctx context.Context) error {
	if d.Registry().Len() == 0 {
		return errors.New("builtin registry is empty")
	}
	return nil
}
