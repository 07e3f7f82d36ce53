package recorder

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"mercator-hq/mpl-builtins/pkg/config"
	"mercator-hq/mpl-builtins/pkg/evidence"
)

// ErrBufferFull is the cause of the RecorderError returned for a dropped record.
var ErrBufferFull = errors.New("evidence buffer full")

// Config contains configuration for the evidence recorder.
type Config struct {
	// Enabled enables evidence recording.
	Enabled bool

	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int

	// WriteTimeout is the timeout for writing evidence to storage.
	// Default: 5 seconds
	WriteTimeout time.Duration

	// HashArguments stores a SHA-256 of the JSON-encoded arguments.
	// Default: true
	HashArguments bool

	// MaxFieldLength is the maximum length for error messages before truncation.
	// Default: 500
	MaxFieldLength int
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:        true,
		AsyncBuffer:    config.DefaultEvidenceRecorderAsyncBuffer,
		WriteTimeout:   config.DefaultEvidenceRecorderWriteTimeout,
		HashArguments:  config.DefaultEvidenceRecorderHashArgs,
		MaxFieldLength: config.DefaultEvidenceRecorderMaxFieldLen,
	}
}

// FromConfig builds a recorder Config from the evidence section.
func FromConfig(cfg config.EvidenceConfig) *Config {
	return &Config{
		Enabled:        cfg.Enabled,
		AsyncBuffer:    cfg.Recorder.AsyncBuffer,
		WriteTimeout:   cfg.Recorder.WriteTimeout,
		HashArguments:  cfg.Recorder.HashArguments,
		MaxFieldLength: cfg.Recorder.MaxFieldLength,
	}
}

// Call describes one finished builtin invocation as seen by the dispatcher.
type Call struct {
	RequestID string
	Builtin   string
	Family    string
	Arity     int
	ArgCount  int
	Strict    bool
	Source    string
	Line      int
	Column    int

	// ArgsJSON is the JSON encoding of the evaluated arguments. It is only
	// hashed and measured, never stored.
	ArgsJSON []byte

	Start    time.Time
	Duration time.Duration

	Outcome      string
	ErrorKind    string
	ErrorMessage string
}

// Observer receives recorder outcomes, typically the metrics collector.
type Observer interface {
	RecordEvidenceWrite(err error)
	RecordEvidenceDropped()
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// WithObserver registers an observer for write and drop events.
func WithObserver(o Observer) Option {
	return func(r *Recorder) {
		r.observer = o
	}
}

// Recorder records evidence for builtin calls. Records are written by a
// single background worker so Record never blocks the caller.
type Recorder struct {
	storage    evidence.Storage
	config     *Config
	recordChan chan *evidence.EvidenceRecord
	wg         sync.WaitGroup
	done       chan struct{}
	logger     *slog.Logger
	observer   Observer

	// mu guards closed against concurrent Record/Close
	mu     sync.RWMutex
	closed bool
}

// NewRecorder creates a new evidence recorder with the provided storage backend and configuration.
func NewRecorder(storage evidence.Storage, cfg *Config, opts ...Option) *Recorder {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.AsyncBuffer <= 0 {
		cfg.AsyncBuffer = config.DefaultEvidenceRecorderAsyncBuffer
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = config.DefaultEvidenceRecorderWriteTimeout
	}

	r := &Recorder{
		storage:    storage,
		config:     cfg,
		recordChan: make(chan *evidence.EvidenceRecord, cfg.AsyncBuffer),
		done:       make(chan struct{}),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "evidence.recorder")

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("evidence recorder initialized",
		"async_buffer", cfg.AsyncBuffer,
		"write_timeout", cfg.WriteTimeout,
		"hash_arguments", cfg.HashArguments,
	)

	return r
}

// Record builds an evidence record for call and enqueues it. When the buffer
// is full the record is dropped and a RecorderError is returned; the call
// itself is never delayed.
func (r *Recorder) Record(ctx context.Context, call *Call) error {
	if !r.config.Enabled {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return evidence.ErrRecorderClosed
	}

	record := r.createEvidenceRecord(call)

	select {
	case r.recordChan <- record:
		return nil
	default:
		r.logger.Warn("evidence buffer full, dropping record",
			"record_id", record.ID,
			"builtin", record.Builtin,
			"channel_capacity", r.config.AsyncBuffer,
		)
		if r.observer != nil {
			r.observer.RecordEvidenceDropped()
		}
		return evidence.NewRecorderError(record.ID, ErrBufferFull)
	}
}

// Close drains the buffer, waits for pending writes and stops the worker.
// It is safe to call more than once.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.done)
	r.mu.Unlock()

	r.wg.Wait()

	r.logger.Info("evidence recorder shut down complete")
	return nil
}

// worker is the background goroutine that drains the evidence channel and
// writes records to storage.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.recordChan:
			r.writeRecord(record)

		case <-r.done:
			// Record cannot enqueue once done is closed, so draining ends
			for {
				select {
				case record := <-r.recordChan:
					r.writeRecord(record)
				default:
					return
				}
			}
		}
	}
}

// writeRecord writes a single evidence record to storage.
func (r *Recorder) writeRecord(record *evidence.EvidenceRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()
	record.RecordedTime = start

	err := r.storage.Store(ctx, record)
	if r.observer != nil {
		r.observer.RecordEvidenceWrite(err)
	}
	if err != nil {
		r.logger.Error("failed to store evidence record",
			"record_id", record.ID,
			"builtin", record.Builtin,
			"error", err,
		)
		return
	}

	duration := time.Since(start)
	r.logger.Debug("evidence recorded",
		"record_id", record.ID,
		"builtin", record.Builtin,
		"outcome", record.Outcome,
		"duration_ms", duration.Milliseconds(),
	)

	if duration > r.config.WriteTimeout/2 {
		r.logger.Warn("slow evidence write",
			"record_id", record.ID,
			"duration_ms", duration.Milliseconds(),
			"threshold_ms", (r.config.WriteTimeout / 2).Milliseconds(),
		)
	}
}

// createEvidenceRecord creates an evidence record from a finished call.
func (r *Recorder) createEvidenceRecord(call *Call) *evidence.EvidenceRecord {
	record := &evidence.EvidenceRecord{
		ID:        uuid.New().String(),
		RequestID: call.RequestID,

		CallTime: call.Start,
		Duration: call.Duration,

		Builtin:  call.Builtin,
		Family:   call.Family,
		Arity:    call.Arity,
		ArgCount: call.ArgCount,
		Strict:   call.Strict,
		Source:   call.Source,
		Line:     call.Line,
		Column:   call.Column,

		ArgsBytes: len(call.ArgsJSON),

		Outcome:      call.Outcome,
		ErrorKind:    call.ErrorKind,
		ErrorMessage: TruncateString(call.ErrorMessage, r.config.MaxFieldLength),
	}

	if record.CallTime.IsZero() {
		record.CallTime = time.Now()
	}

	if r.config.HashArguments {
		record.ArgsHash = HashContent(call.ArgsJSON)
	}

	return record
}
