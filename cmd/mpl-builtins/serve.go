package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/mpl-builtins/pkg/cli"
	"mercator-hq/mpl-builtins/pkg/config"
	"mercator-hq/mpl-builtins/pkg/evidence/retention"
	"mercator-hq/mpl-builtins/pkg/limits/ratelimit"
	"mercator-hq/mpl-builtins/pkg/policy/manager"
	securitytls "mercator-hq/mpl-builtins/pkg/security/tls"
	"mercator-hq/mpl-builtins/pkg/server"
	"mercator-hq/mpl-builtins/pkg/telemetry/health"
)

var serveFlags struct {
	listenAddress string
	noStdin       bool
	noWatch       bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve builtin calls over JSON lines and HTTP",
	Long: `Serve builtin calls to another process.

Requests are read from stdin as JSON lines and answered on stdout in order:

  {"id": "1", "builtin": "base64.decode", "args": ["aGk="]}
  {"id":"1","outcome":"ok","result":"hi"}

The HTTP listener (serve.metrics_address) exposes POST /v1/call, the
Prometheus metrics endpoint and /health, /ready and /version. It is served
over TLS when serve.tls.enabled is set, and calls on it are limited by
serve.rate_limit.

With a config file and serve.watch_config, edits to the file reload the
builtin registry without a restart. A file that fails to load is logged
and the running registry is kept.

Examples:
  # Serve stdin with the default listener
  mpl-builtins serve --config builtins.yaml

  # HTTP only
  mpl-builtins serve --no-stdin --listen 0.0.0.0:9090`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override serve.metrics_address")
	serveCmd.Flags().BoolVar(&serveFlags.noStdin, "no-stdin", false, "do not read requests from stdin; serve HTTP until interrupted")
	serveCmd.Flags().BoolVar(&serveFlags.noWatch, "no-watch", false, "do not reload on config file changes")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := appConfig
	logger := appLogger

	if serveFlags.listenAddress != "" {
		cfg.Serve.MetricsAddress = serveFlags.listenAddress
	}
	if serveFlags.noStdin && cfg.Serve.MetricsAddress == "" {
		return cli.NewConfigError("serve.metrics_address", "required with --no-stdin")
	}

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	rt, err := newBuiltinRuntime(cfg, logger)
	if err != nil {
		return cli.NewCommandError("serve", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(cfg))
		defer cancel()
		if err := rt.Close(closeCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	handler := server.NewHandler(rt.dispatcher, logger, rt.tracer)

	if cfgFile != "" && cfg.Serve.WatchConfig && !serveFlags.noWatch {
		mgr, err := manager.NewConfigManager(cfgFile, rt.dispatcher,
			manager.WithLogger(logger.Slog()),
			manager.WithDebounce(cfg.Serve.WatchDebounce),
		)
		if err != nil {
			return cli.NewCommandError("serve", err)
		}
		go func() {
			if err := mgr.Watch(ctx); err != nil {
				logger.Error("config watcher stopped", "error", err)
			}
		}()
	}

	if rt.store != nil && cfg.Evidence.Retention.PruneSchedule != "" {
		opts := []retention.Option{retention.WithLogger(logger.Slog())}
		if rt.collector != nil {
			opts = append(opts, retention.WithObserver(rt.collector))
		}
		pruner := retention.NewPruner(rt.store, retention.FromConfig(cfg.Evidence.Retention), opts...)
		if err := pruner.Start(ctx); err != nil {
			logger.Warn("failed to start retention scheduler", "error", err)
		} else {
			defer pruner.Stop()
			if next := pruner.NextPruning(); next != nil {
				logger.Debug("evidence retention scheduler started", "next_pruning", next)
			}
		}
	}

	var httpDone, stdinDone chan error

	if cfg.Serve.MetricsAddress != "" {
		srv, err := newHTTPServer(ctx, cfg, rt, handler)
		if err != nil {
			return cli.NewCommandError("serve", err)
		}
		httpDone = make(chan error, 1)
		go func() {
			httpDone <- srv.Start(ctx)
		}()
	}

	if !serveFlags.noStdin {
		stdinDone = make(chan error, 1)
		go func() {
			stdinDone <- handler.ServeLines(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		}()
	}

	logger.Info("serving builtins",
		"builtins", rt.dispatcher.Registry().Len(),
		"address", cfg.Serve.MetricsAddress,
		"stdin", !serveFlags.noStdin,
	)

	// A blocked stdin read is abandoned on shutdown; only the HTTP server is
	// waited for.
	var serveErr error
	select {
	case serveErr = <-stdinDone:
		// end of input ends the session
	case serveErr = <-httpDone:
		httpDone = nil
	case <-ctx.Done():
		logger.Info("shutting down")
	}
	stop()

	if httpDone != nil {
		if httpErr := <-httpDone; httpErr != nil && serveErr == nil {
			serveErr = httpErr
		}
	}
	if serveErr != nil {
		return cli.NewCommandError("serve", serveErr)
	}
	return nil
}

func newHTTPServer(ctx context.Context, cfg *config.Config, rt *builtinRuntime, handler *server.Handler) (*server.Server, error) {
	checker := health.New(5 * time.Second)
	checker.RegisterCheck("builtins", rt.dispatcher.ReadyCheck)
	if rt.store != nil {
		checker.RegisterCheck("evidence", rt.store.Ping)
	}

	opts := []server.Option{
		server.WithLogger(rt.logger),
		server.WithHealth(checker, health.VersionInfo{
			Version:   Version,
			Commit:    GitCommit,
			BuildTime: BuildDate,
		}),
	}
	if rt.collector != nil {
		opts = append(opts, server.WithMetrics(cfg.Telemetry.Metrics.Path, rt.collector.Handler()))
	}
	if limits := ratelimit.FromConfig(cfg.Serve.RateLimit); limits.Enabled() {
		opts = append(opts, server.WithRateLimit(ratelimit.NewLimiter(limits)))
	}

	if tlsCfg := cfg.Serve.TLS; tlsCfg.Enabled {
		reloader := securitytls.NewCertificateReloader(tlsCfg.CertFile, tlsCfg.KeyFile, tlsCfg.ReloadInterval, rt.logger.Slog())
		if err := reloader.Start(ctx); err != nil {
			return nil, fmt.Errorf("failed to load TLS certificate: %w", err)
		}
		serverTLS, err := securitytls.ServerConfig(tlsCfg, reloader)
		if err != nil {
			return nil, err
		}
		opts = append(opts, server.WithTLS(serverTLS))
	}

	return server.NewServer(&cfg.Serve, handler, opts...), nil
}

func shutdownTimeout(cfg *config.Config) time.Duration {
	if cfg.Serve.ShutdownTimeout > 0 {
		return cfg.Serve.ShutdownTimeout
	}
	return config.DefaultServeShutdownTimeout
}

