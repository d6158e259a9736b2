// Package logging provides a minimal logging facade for cb-prf-go.
//
// The Logger interface wraps the subset of log/slog used by the toolkit so
// applications can plug in their own implementation for testing, redaction,
// or integration with an existing logging system.
//
// # Default Implementations
//
//	// slog.Default()
//	logger := logging.New(nil)
//
//	// custom handler
//	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})
//	logger = logging.New(slog.New(handler))
//
//	// drop everything (the default for primitives)
//	logger = logging.Discard()
//
// # Redaction Support
//
//	logger.Debug(ctx, "engine constructed", logging.Redacted("key"))
//	// Logs: key="[redacted]"
//
// # Security Considerations
//
//   - Never log keys, key schedules, or blocks processed under a secret key
//   - Use logging.Redacted() to mark where a secret was intentionally left out
//   - Primitives never log on their per-block paths
package logging
