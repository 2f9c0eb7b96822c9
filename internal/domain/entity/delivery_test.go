package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDeliveryID verifies the ledger key is a pure function of
// (jobID, channel, recipientKey) with the documented fallback chain.
func TestDeliveryID(t *testing.T) {
	tests := []struct {
		name      string
		jobID     string
		channel   Channel
		uid       string
		recipient string
		want      string
	}{
		{
			name:    "uid wins over recipient",
			jobID:   "job1",
			channel: ChannelSMS,
			uid:     "U1",
			recipient: "+15550001111",
			want:    "job1_sms_U1",
		},
		{
			name:      "recipient used when uid absent",
			jobID:     "job1",
			channel:   ChannelEmail,
			recipient: "user@example.com",
			want:      "job1_email_user@example.com",
		},
		{
			name:    "unknown when both absent",
			jobID:   "job1",
			channel: ChannelPush,
			want:    "job1_push_unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeliveryID(tt.jobID, tt.channel, tt.uid, tt.recipient)
			assert.Equal(t, tt.want, got)

			// Determinism: repeated derivation yields the same key
			assert.Equal(t, got, DeliveryID(tt.jobID, tt.channel, tt.uid, tt.recipient))
		})
	}
}

func TestIsTerminalStatus(t *testing.T) {
	assert.False(t, IsTerminalStatus(DeliveryStatusSent))
	assert.True(t, IsTerminalStatus(DeliveryStatusDelivered))
	assert.True(t, IsTerminalStatus(DeliveryStatusRead))
	assert.True(t, IsTerminalStatus(DeliveryStatusFailed))
	assert.True(t, IsTerminalStatus(DeliveryStatusSkipped))
}

func TestChannelReceiptCapable(t *testing.T) {
	assert.True(t, ChannelTelegram.ReceiptCapable())
	assert.True(t, ChannelLine.ReceiptCapable())
	assert.False(t, ChannelInApp.ReceiptCapable())
	assert.False(t, ChannelPush.ReceiptCapable())
	assert.False(t, ChannelEmail.ReceiptCapable())
	assert.False(t, ChannelSMS.ReceiptCapable())
}

func TestParseChannel(t *testing.T) {
	ch, err := ParseChannel("telegram")
	assert.NoError(t, err)
	assert.Equal(t, ChannelTelegram, ch)

	_, err = ParseChannel("carrier-pigeon")
	assert.ErrorIs(t, err, ErrValidation)
}
