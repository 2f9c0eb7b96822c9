package provider

import (
	"context"
	"testing"

	"rental-notify/internal/domain/entity"
)

func TestRegistry_Get(t *testing.T) {
	telegram := NewNoopAdapter(entity.ChannelTelegram)
	registry := NewRegistry(telegram)

	if got := registry.Get(entity.ChannelTelegram); got != Adapter(telegram) {
		t.Errorf("expected the registered telegram adapter, got %T", got)
	}

	// Unregistered channels fall back to a noop adapter
	fallback := registry.Get(entity.ChannelSMS)
	if fallback.Channel() != entity.ChannelSMS {
		t.Errorf("expected sms fallback, got %q", fallback.Channel())
	}
	if result := fallback.Send(context.Background(), "+819000000000", Message{Body: "hi"}, Ref{}); !result.OK() {
		t.Errorf("noop fallback should report sent, got %q", result.Status)
	}
}

func TestNoopAdapter_RecordsSends(t *testing.T) {
	noop := NewNoopAdapter(entity.ChannelEmail)

	result := noop.Send(context.Background(), "tenant@example.com", Message{Title: "Rent due"}, Ref{JobID: "job-1", UID: "u1"})
	if !result.OK() {
		t.Fatalf("expected sent, got %q", result.Status)
	}
	if result.ProviderMessageID == "" {
		t.Error("expected a synthetic provider message id")
	}

	sends := noop.Sends()
	if len(sends) != 1 {
		t.Fatalf("expected 1 recorded send, got %d", len(sends))
	}
	if sends[0].Recipient != "tenant@example.com" || sends[0].Ref.JobID != "job-1" {
		t.Errorf("unexpected recorded send %+v", sends[0])
	}

	if r := noop.Send(context.Background(), "", Message{}, Ref{}); r.ErrorCode != ErrCodeEmptyRecipient {
		t.Errorf("expected %q, got %q", ErrCodeEmptyRecipient, r.ErrorCode)
	}
}
