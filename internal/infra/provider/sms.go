package provider

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"rental-notify/internal/domain/entity"
)

// SMSConfig contains configuration for the SMS gateway adapter.
type SMSConfig struct {
	Enabled bool

	// URL is the SMS gateway's send endpoint
	URL string

	// APIKey authenticates against the gateway
	APIKey string

	// FromNumber is the sender number stamped on outgoing messages
	FromNumber string

	// Timeout is the HTTP request timeout for SMS gateway calls
	Timeout time.Duration
}

// SMSAdapter delivers notifications through an HTTP SMS gateway.
// SMS carries no ActionURL rendering; the body alone is sent to keep
// messages inside a single segment where possible.
type SMSAdapter struct {
	config  SMSConfig
	gateway *gateway
}

func NewSMSAdapter(config SMSConfig) *SMSAdapter {
	return &SMSAdapter{
		config: config,
		gateway: newGateway(gatewayConfig{
			Channel:           entity.ChannelSMS,
			Timeout:           config.Timeout,
			RequestsPerSecond: 5.0,
			Burst:             10,
		}),
	}
}

func (s *SMSAdapter) Channel() entity.Channel { return entity.ChannelSMS }

type smsSendRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Body string `json:"body"`
}

// Send delivers msg to the phone number in recipient.
func (s *SMSAdapter) Send(ctx context.Context, recipient string, msg Message, ref Ref) Result {
	if recipient == "" {
		return failed(ErrCodeEmptyRecipient, "no phone number on file")
	}

	text := msg.Body
	if text == "" {
		text = msg.Title
	}

	payload := smsSendRequest{
		From: s.config.FromNumber,
		To:   recipient,
		Body: text,
	}
	header := http.Header{"Authorization": {"Bearer " + s.config.APIKey}}

	body, failure := s.gateway.postJSON(ctx, s.config.URL, header, payload)
	if failure != nil {
		slog.Warn("sms send failed",
			slog.String("job_id", ref.JobID),
			slog.String("uid", ref.UID),
			slog.String("error_code", failure.ErrorCode))
		return *failure
	}

	raw := rawBody(body)
	return Result{
		Status:            StatusSent,
		ProviderMessageID: extractMessageID(raw),
		Raw:               raw,
	}
}
