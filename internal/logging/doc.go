// Package logging provides concrete Logger implementations consumed by the
// txrunner CLI: txcore's own retry/classification
// machinery is logging-agnostic, so this package's Logger interface is
// defined where it's consumed (internal/cli) rather than in pkg/txcore.
//
// Available implementations:
//   - ConsoleLogger: Writes formatted messages to stderr with thread-safe output
//   - NullLogger: Discards all messages (useful for testing)
//
// All logger implementations are safe for concurrent use by multiple goroutines.
package logging
