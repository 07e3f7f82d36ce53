// Package logging provides structured logging with PII redaction.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - Structured logging with JSON, text, and console formats
//   - Redaction of secrets in logged fields and argument previews
//   - Context-aware logging with request IDs and the builtin being called
//
// # Usage
//
//	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging, os.Stderr))
//	if err != nil {
//	    return err
//	}
//
//	logger.WithComponent("dispatcher").Info("builtin registry loaded",
//	    "builtins", reg.Len(),
//	)
//
//	ctx = logging.WithRequestID(ctx, "req-123")
//	logger.InfoContext(ctx, "call failed", "arg", logger.Preview(arg, 64))
//
// # Redaction
//
// When RedactPII is enabled:
//
//   - Bearer tokens: Bearer abc.def → Bearer ***
//   - JWTs: eyJhbGciOi... → eyJ***
//   - API keys: sk-abc123xyz → sk-***
//   - Emails: user@example.com → ***@example.com
//   - Values of keys such as "token" or "password" keep only a 4 byte prefix
//
// Redaction runs both in the Logger methods and as a ReplaceAttr hook on the
// slog handler, so loggers obtained through Slog() are covered too.
package logging
