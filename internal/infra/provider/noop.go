package provider

import (
	"context"
	"sync"

	"rental-notify/internal/domain/entity"

	"github.com/google/uuid"
)

// NoopAdapter is a no-operation implementation of the Adapter interface.
// It backs channels whose gateway is not configured so the worker never has
// to nil-check an adapter, and doubles as a recording fake in tests.
// This follows the Null Object pattern.
type NoopAdapter struct {
	channel entity.Channel

	mu    sync.Mutex
	sends []NoopSend
}

// NoopSend is one recorded Send call.
type NoopSend struct {
	Recipient string
	Message   Message
	Ref       Ref
}

// NewNoopAdapter creates a NoopAdapter for the given channel.
func NewNoopAdapter(channel entity.Channel) *NoopAdapter {
	return &NoopAdapter{channel: channel}
}

func (n *NoopAdapter) Channel() entity.Channel { return n.channel }

// Send records the call and reports success with a synthetic message id.
func (n *NoopAdapter) Send(ctx context.Context, recipient string, msg Message, ref Ref) Result {
	if recipient == "" {
		return failed(ErrCodeEmptyRecipient, "no recipient on file")
	}

	n.mu.Lock()
	n.sends = append(n.sends, NoopSend{Recipient: recipient, Message: msg, Ref: ref})
	n.mu.Unlock()

	return Result{
		Status:            StatusSent,
		ProviderMessageID: "noop-" + uuid.New().String(),
	}
}

// Sends returns a copy of the recorded calls.
func (n *NoopAdapter) Sends() []NoopSend {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]NoopSend, len(n.sends))
	copy(out, n.sends)
	return out
}
