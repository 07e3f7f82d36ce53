package main

import (
	"context"
	"errors"
	"fmt"

	"mercator-hq/mpl-builtins/pkg/config"
	"mercator-hq/mpl-builtins/pkg/evidence"
	"mercator-hq/mpl-builtins/pkg/evidence/recorder"
	"mercator-hq/mpl-builtins/pkg/evidence/storage"
	"mercator-hq/mpl-builtins/pkg/policy/engine"
	"mercator-hq/mpl-builtins/pkg/telemetry/logging"
	"mercator-hq/mpl-builtins/pkg/telemetry/metrics"
	"mercator-hq/mpl-builtins/pkg/telemetry/tracing"
)

// builtinRuntime is the dispatcher with the telemetry and audit log it
// reports to.
type builtinRuntime struct {
	dispatcher *engine.Dispatcher
	collector  *metrics.Collector
	tracer     *tracing.Tracer
	store      evidence.Storage
	recorder   *recorder.Recorder
	logger     *logging.Logger
}

// newBuiltinRuntime wires a dispatcher from cfg. The audit log is opened
// only when evidence recording is enabled.
func newBuiltinRuntime(cfg *config.Config, logger *logging.Logger) (*builtinRuntime, error) {
	rt := &builtinRuntime{logger: logger}

	if cfg.Telemetry.Metrics.Enabled {
		rt.collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	}

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, tracing.WithServiceVersion(Version))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	rt.tracer = tracer

	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithTracer(tracer),
		engine.WithMetrics(rt.collector),
	}

	if cfg.Evidence.Enabled {
		store, err := storage.New(cfg.Evidence)
		if err != nil {
			rt.Close(context.Background())
			return nil, fmt.Errorf("failed to open evidence storage: %w", err)
		}
		rt.store = store

		recOpts := []recorder.Option{recorder.WithLogger(logger.Slog())}
		if rt.collector != nil {
			recOpts = append(recOpts, recorder.WithObserver(rt.collector))
		}
		rt.recorder = recorder.NewRecorder(store, recorder.FromConfig(cfg.Evidence), recOpts...)
		opts = append(opts, engine.WithRecorder(rt.recorder))
	}

	engineCfg, err := engine.FromConfig(cfg.Builtins)
	if err != nil {
		rt.Close(context.Background())
		return nil, err
	}
	rt.dispatcher, err = engine.NewDispatcher(engineCfg, opts...)
	if err != nil {
		rt.Close(context.Background())
		return nil, err
	}

	return rt, nil
}

// Close flushes the recorder, then closes storage and the tracer.
func (rt *builtinRuntime) Close(ctx context.Context) error {
	var errs []error
	if rt.recorder != nil {
		errs = append(errs, rt.recorder.Close())
	}
	if rt.store != nil {
		errs = append(errs, rt.store.Close())
	}
	if rt.tracer != nil {
		errs = append(errs, rt.tracer.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
