// Package tracing provides OpenTelemetry tracing integration.
//
// The HTTP middleware extracts W3C Trace Context from incoming requests,
// opens a server span per request and echoes the trace ID back in the
// X-Trace-Id header. The dispatch orchestrator and the provider gateways
// open child spans around the fan-out and each outbound gateway call, so
// one trace covers a job from intake to provider response.
//
// Example usage:
//
//	import "rental-notify/internal/observability/tracing"
//
//	func deliver(ctx context.Context) {
//	    ctx, span := tracing.StartSpan(ctx, "delivery.send")
//	    defer span.End()
//	    // ... call the provider gateway ...
//	}
package tracing
