package provider

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"rental-notify/internal/domain/entity"
)

// LineConfig contains configuration for the LINE Messaging API adapter.
type LineConfig struct {
	// Enabled indicates whether LINE delivery is enabled
	Enabled bool

	// ChannelToken is the long-lived channel access token
	ChannelToken string

	// APIBaseURL overrides the LINE API host (tests); empty means the
	// public endpoint
	APIBaseURL string

	// Timeout is the HTTP request timeout for LINE API calls
	Timeout time.Duration
}

const defaultLineAPIBaseURL = "https://api.line.me"

// LineAdapter delivers notifications through the LINE Messaging API push
// endpoint. The sentMessages[0].id in the response is the correlation key
// the LINE webhook receiver patches receipts by.
type LineAdapter struct {
	config  LineConfig
	gateway *gateway
}

// NewLineAdapter creates a new LineAdapter.
//
// The rate limiter is set to 30 requests/second with burst of 30
// (LINE push API limit: 2000 requests per minute).
func NewLineAdapter(config LineConfig) *LineAdapter {
	if config.APIBaseURL == "" {
		config.APIBaseURL = defaultLineAPIBaseURL
	}

	return &LineAdapter{
		config: config,
		gateway: newGateway(gatewayConfig{
			Channel:           entity.ChannelLine,
			Timeout:           config.Timeout,
			RequestsPerSecond: 30.0,
			Burst:             30,
		}),
	}
}

func (l *LineAdapter) Channel() entity.Channel { return entity.ChannelLine }

type linePushRequest struct {
	To       string        `json:"to"`
	Messages []lineMessage `json:"messages"`
}

type lineMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type linePushResponse struct {
	SentMessages []struct {
		ID string `json:"id"`
	} `json:"sentMessages"`
}

// Send delivers msg to the LINE user identified by recipient.
func (l *LineAdapter) Send(ctx context.Context, recipient string, msg Message, ref Ref) Result {
	if recipient == "" {
		return failed(ErrCodeEmptyRecipient, "no line user id on file")
	}

	payload := linePushRequest{
		To:       recipient,
		Messages: []lineMessage{{Type: "text", Text: renderText(msg)}},
	}
	header := http.Header{"Authorization": {"Bearer " + l.config.ChannelToken}}

	body, failure := l.gateway.postJSON(ctx, l.config.APIBaseURL+"/v2/bot/message/push", header, payload)
	if failure != nil {
		slog.Warn("line send failed",
			slog.String("job_id", ref.JobID),
			slog.String("uid", ref.UID),
			slog.String("error_code", failure.ErrorCode))
		return *failure
	}

	var resp linePushResponse
	raw := decodeResponse(body, &resp)

	result := Result{Status: StatusSent, Raw: raw}
	if len(resp.SentMessages) > 0 {
		result.ProviderMessageID = resp.SentMessages[0].ID
	}
	return result
}
