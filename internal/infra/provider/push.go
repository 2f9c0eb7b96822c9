package provider

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"rental-notify/internal/domain/entity"
)

// PushConfig contains configuration for the push gateway adapter.
type PushConfig struct {
	Enabled bool

	// URL is the push gateway's send endpoint
	URL string

	// APIKey authenticates against the gateway
	APIKey string

	// Timeout is the HTTP request timeout for push gateway calls
	Timeout time.Duration
}

// PushAdapter delivers notifications to mobile devices through an HTTP
// push gateway. Push has no delivery receipts; a gateway accept is
// terminal at sent.
type PushAdapter struct {
	config  PushConfig
	gateway *gateway
}

func NewPushAdapter(config PushConfig) *PushAdapter {
	return &PushAdapter{
		config: config,
		gateway: newGateway(gatewayConfig{
			Channel:           entity.ChannelPush,
			Timeout:           config.Timeout,
			RequestsPerSecond: 50.0,
			Burst:             100,
		}),
	}
}

func (p *PushAdapter) Channel() entity.Channel { return entity.ChannelPush }

type pushSendRequest struct {
	Token     string `json:"token"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	ActionURL string `json:"action_url,omitempty"`
	JobID     string `json:"job_id,omitempty"`
}

// Send delivers msg to the device identified by recipient (a push token).
func (p *PushAdapter) Send(ctx context.Context, recipient string, msg Message, ref Ref) Result {
	if recipient == "" {
		return failed(ErrCodeEmptyRecipient, "no push token on file")
	}

	payload := pushSendRequest{
		Token:     recipient,
		Title:     msg.Title,
		Body:      msg.Body,
		ActionURL: msg.ActionURL,
		JobID:     ref.JobID,
	}
	header := http.Header{"Authorization": {"Bearer " + p.config.APIKey}}

	body, failure := p.gateway.postJSON(ctx, p.config.URL, header, payload)
	if failure != nil {
		slog.Warn("push send failed",
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

// extractMessageID pulls a message identifier out of a generic gateway
// response, trying the common field names in order.
func extractMessageID(raw map[string]any) string {
	for _, key := range []string{"id", "message_id", "messageId"} {
		if v, ok := raw[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
