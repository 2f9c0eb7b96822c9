// Package observability provides observability infrastructure for the
// notification service.
//
// Subpackages:
//   - logging: Structured logging utilities with slog
//   - tracing: OpenTelemetry tracing (HTTP middleware, dispatch and
//     provider gateway spans)
//
// Request-level Prometheus metrics live with the HTTP handlers; the
// delivery ledger gauge is refreshed by the worker's stats job.
//
// Example usage:
//
//	import "rental-notify/internal/observability/logging"
//
//	func main() {
//	    logger := logging.NewLogger()
//	    logger.Info("application started")
//	}
package observability
