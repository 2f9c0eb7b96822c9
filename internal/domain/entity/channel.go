// Package entity defines the core domain entities and validation logic for the
// notification pipeline: jobs, delivery ledger rows, user preferences, in-app
// items and account link codes.
package entity

// Channel identifies one of the six delivery mechanisms.
type Channel string

const (
	ChannelInApp    Channel = "inapp"
	ChannelPush     Channel = "push"
	ChannelEmail    Channel = "email"
	ChannelSMS      Channel = "sms"
	ChannelTelegram Channel = "telegram"
	ChannelLine     Channel = "line"
)

// AllChannels returns the full channel set in a stable order.
// The orchestrator uses this as the candidate set when a job does not
// restrict its channels.
func AllChannels() []Channel {
	return []Channel{
		ChannelInApp,
		ChannelPush,
		ChannelEmail,
		ChannelSMS,
		ChannelTelegram,
		ChannelLine,
	}
}

// IsValid reports whether c is one of the six known channels.
func (c Channel) IsValid() bool {
	switch c {
	case ChannelInApp, ChannelPush, ChannelEmail, ChannelSMS, ChannelTelegram, ChannelLine:
		return true
	}
	return false
}

// ReceiptCapable reports whether the channel's provider can report
// delivered/read status asynchronously via an inbound webhook.
// Only the two chat-bot gateways do; push/email/sms terminate at "sent".
func (c Channel) ReceiptCapable() bool {
	return c == ChannelTelegram || c == ChannelLine
}

// ParseChannel converts a wire string into a Channel.
// Returns a ValidationError for unknown values.
func ParseChannel(s string) (Channel, error) {
	ch := Channel(s)
	if !ch.IsValid() {
		return "", &ValidationError{Field: "channel", Message: "unknown channel: " + s}
	}
	return ch, nil
}
