// Package provider implements thin clients for the external delivery
// gateways (push, email, SMS and the two chat-bot APIs). Each adapter
// normalizes its gateway's response into a Result; delivery failures are
// data for the ledger, never Go errors, so a rejected message can never
// abort the orchestrator's fan-out.
package provider

import (
	"context"

	"rental-notify/internal/domain/entity"
)

// Result statuses. The channel worker maps these onto ledger statuses.
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// Common error codes for failures that happen before the gateway answers.
const (
	ErrCodeEmptyRecipient = "empty_recipient"
	ErrCodeTransport      = "transport"
	ErrCodeCircuitOpen    = "circuit_open"
	ErrCodeBadResponse    = "bad_response"
)

// Message is the rendered notification content handed to a gateway.
type Message struct {
	Title     string
	Body      string
	ActionURL string
}

// Ref carries correlation identifiers for gateway-side tracing.
type Ref struct {
	JobID string
	UID   string
}

// Result is the normalized outcome of one gateway call.
type Result struct {
	Status            string
	ProviderMessageID string
	ErrorCode         string
	ErrorMessage      string
	// Raw keeps the provider's response payload for the ledger's audit column.
	Raw map[string]any
}

// OK reports whether the gateway accepted the message.
func (r Result) OK() bool { return r.Status == StatusSent }

// Adapter is one channel's gateway client.
//
// Implementations must respect context cancellation, rate-limit their own
// gateway, and never return transport or gateway failures as anything other
// than a failed Result.
type Adapter interface {
	// Channel returns the channel this adapter delivers for.
	Channel() entity.Channel

	// Send delivers msg to recipient. An empty recipient is passed in
	// deliberately by the worker; adapters fail it with
	// ErrCodeEmptyRecipient so the miss is visible in the ledger.
	Send(ctx context.Context, recipient string, msg Message, ref Ref) Result
}

func failed(code, message string) Result {
	return Result{Status: StatusFailed, ErrorCode: code, ErrorMessage: message}
}
