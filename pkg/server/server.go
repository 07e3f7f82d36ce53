package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"mercator-hq/mpl-builtins/pkg/config"
	"mercator-hq/mpl-builtins/pkg/limits/ratelimit"
	"mercator-hq/mpl-builtins/pkg/telemetry/health"
	"mercator-hq/mpl-builtins/pkg/telemetry/logging"
)

// callPath accepts a single Request as a POST body.
const callPath = "/v1/call"

// maxCallBody bounds the body of a call request.
const maxCallBody = MaxLineBytes

// Server is the HTTP side of `serve`: metrics, health probes and a call
// endpoint sharing the Handler of the line stream.
type Server struct {
	config  *config.ServeConfig
	handler *Handler
	logger  *logging.Logger

	metricsPath    string
	metricsHandler http.Handler
	checker        *health.Checker
	version        health.VersionInfo
	tlsConfig      *tls.Config
	limiter        *ratelimit.Limiter

	httpServer   *http.Server
	listener     net.Listener
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics mounts h at path.
func WithMetrics(path string, h http.Handler) Option {
	return func(s *Server) {
		if path == "" {
			path = config.DefaultPrometheusPath
		}
		s.metricsPath = path
		s.metricsHandler = h
	}
}

// WithHealth mounts /health, /ready and /version.
func WithHealth(checker *health.Checker, info health.VersionInfo) Option {
	return func(s *Server) {
		s.checker = checker
		s.version = info
	}
}

// WithTLS serves over TLS with cfg.
func WithTLS(cfg *tls.Config) Option {
	return func(s *Server) {
		s.tlsConfig = cfg
	}
}

// WithRateLimit applies limiter to the call endpoint.
func WithRateLimit(limiter *ratelimit.Limiter) Option {
	return func(s *Server) {
		s.limiter = limiter
	}
}

// WithLogger sets the logger. Defaults to a discarding logger.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a server listening on cfg.MetricsAddress.
func NewServer(cfg *config.ServeConfig, handler *Handler, opts ...Option) *Server {
	s := &Server{
		config:  cfg,
		handler: handler,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("http")
	return s
}

// Start listens and serves until ctx is cancelled, then shuts down
// gracefully within the configured shutdown timeout.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}

	ln, err := net.Listen("tcp", s.config.MetricsAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.config.MetricsAddress, err)
	}
	if s.tlsConfig != nil {
		ln = tls.NewListener(ln, s.tlsConfig)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	s.isRunning = true
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("http server started", "address", ln.Addr().String(), "tls", s.tlsConfig != nil)
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err, ok := <-errChan:
		if !ok {
			return nil
		}
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		timeout := s.config.ShutdownTimeout
		if timeout <= 0 {
			timeout = config.DefaultServeShutdownTimeout
		}
		shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("http server stopped")
	})

	return shutdownErr
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	if s.metricsHandler != nil {
		mux.Handle(s.metricsPath, s.metricsHandler)
	}
	if s.checker != nil {
		health.Register(mux, s.checker, s.version)
	}
	if s.handler != nil {
		mux.HandleFunc(callPath, s.serveCall)
	}

	var handler http.Handler = mux
	handler = LoggingMiddleware(s.logger)(handler)
	handler = RequestIDMiddleware(handler)
	handler = RecoveryMiddleware(s.logger)(handler)
	return handler
}

// serveCall handles POST /v1/call. The X-Request-ID header is used when
// the body carries no id. Builtin failures are reported in the body with
// status 200; only malformed requests get 400.
func (s *Server) serveCall(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.limiter != nil {
		if res := s.limiter.CheckCall(); !res.Allowed {
			s.rejectCall(w, r, res)
			return
		}
		if !s.limiter.AcquireConcurrent() {
			s.rejectCall(w, r, &ratelimit.CheckResult{Reason: "too many concurrent calls", RetryAfter: time.Second})
			return
		}
		defer s.limiter.ReleaseConcurrent()
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCallBody))
	if err != nil {
		http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
		return
	}
	if s.limiter != nil {
		if res := s.limiter.ChargeBytes(len(body)); !res.Allowed {
			s.rejectCall(w, r, res)
			return
		}
	}

	status := http.StatusOK
	var resp *Response
	req, err := DecodeRequest(body)
	if err != nil {
		resp = requestError(&Response{ID: logging.GetRequestID(r.Context())}, fmt.Sprintf("malformed request: %v", err))
		status = http.StatusBadRequest
	} else {
		if req.ID == "" {
			req.ID = logging.GetRequestID(r.Context())
		}
		resp = s.handler.Handle(r.Context(), req)
		if resp.Error != nil && resp.Error.Type == ErrorTypeRequest {
			status = http.StatusBadRequest
		}
	}

	data, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "result cannot be encoded as JSON", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}

// rejectCall answers a rate limited call with 429 and a request error body.
func (s *Server) rejectCall(w http.ResponseWriter, r *http.Request, res *ratelimit.CheckResult) {
	s.logger.WarnContext(r.Context(), "call rate limited", "reason", res.Reason)

	resp := requestError(&Response{ID: logging.GetRequestID(r.Context())}, res.Reason)
	data, _ := json.Marshal(resp)

	retry := int(res.RetryAfter.Round(time.Second) / time.Second)
	w.Header().Set("Retry-After", strconv.Itoa(max(retry, 1)))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write(append(data, '\n'))
}
