// Package resilience provides reliability and fault tolerance patterns for the application.
// It includes implementations of circuit breakers and retry logic to keep a
// misbehaving delivery gateway from stalling or cascading into the fan-out.
//
// The package supports:
//   - Circuit breakers for delivery gateway calls (push, email, SMS, chat bots)
//   - Retry logic with exponential backoff and jitter
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.ProviderConfig("sms"))
//	result, err := cb.Execute(func() (interface{}, error) {
//	    return callGateway()
//	})
//
//	retryConfig := retry.ProviderConfig()
//	err := retry.WithBackoff(ctx, retryConfig, func() error {
//	    return performOperation()
//	})
package resilience
