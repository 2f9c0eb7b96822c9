package provider

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"rental-notify/internal/domain/entity"
)

// EmailConfig contains configuration for the email gateway adapter.
type EmailConfig struct {
	Enabled bool

	// URL is the email gateway's send endpoint
	URL string

	// APIKey authenticates against the gateway
	APIKey string

	// FromAddress is the sender address stamped on outgoing mail
	FromAddress string

	// Timeout is the HTTP request timeout for email gateway calls
	Timeout time.Duration
}

// EmailAdapter delivers notifications through a transactional email HTTP
// gateway. Terminal at sent; bounce handling is the gateway's problem.
type EmailAdapter struct {
	config  EmailConfig
	gateway *gateway
}

func NewEmailAdapter(config EmailConfig) *EmailAdapter {
	return &EmailAdapter{
		config: config,
		gateway: newGateway(gatewayConfig{
			Channel:           entity.ChannelEmail,
			Timeout:           config.Timeout,
			RequestsPerSecond: 10.0,
			Burst:             20,
		}),
	}
}

func (e *EmailAdapter) Channel() entity.Channel { return entity.ChannelEmail }

type emailSendRequest struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Subject   string `json:"subject"`
	Text      string `json:"text"`
	ActionURL string `json:"action_url,omitempty"`
}

// Send delivers msg to the address in recipient.
func (e *EmailAdapter) Send(ctx context.Context, recipient string, msg Message, ref Ref) Result {
	if recipient == "" {
		return failed(ErrCodeEmptyRecipient, "no email address on file")
	}

	payload := emailSendRequest{
		From:      e.config.FromAddress,
		To:        recipient,
		Subject:   msg.Title,
		Text:      msg.Body,
		ActionURL: msg.ActionURL,
	}
	header := http.Header{"Authorization": {"Bearer " + e.config.APIKey}}

	body, failure := e.gateway.postJSON(ctx, e.config.URL, header, payload)
	if failure != nil {
		slog.Warn("email send failed",
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
