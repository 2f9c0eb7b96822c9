package provider

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"rental-notify/internal/domain/entity"
)

// TelegramConfig contains configuration for the Telegram Bot API adapter.
type TelegramConfig struct {
	// Enabled indicates whether Telegram delivery is enabled
	Enabled bool

	// BotToken is the bot's API token issued by BotFather
	BotToken string

	// APIBaseURL overrides the Telegram API host (tests); empty means the
	// public endpoint
	APIBaseURL string

	// Timeout is the HTTP request timeout for Telegram API calls
	Timeout time.Duration
}

const defaultTelegramAPIBaseURL = "https://api.telegram.org"

// TelegramAdapter delivers notifications through the Telegram Bot API
// sendMessage method. The returned message_id is the correlation key the
// Telegram webhook receiver patches receipts by.
type TelegramAdapter struct {
	config  TelegramConfig
	gateway *gateway
}

// NewTelegramAdapter creates a new TelegramAdapter.
//
// The rate limiter is set to 25 requests/second with burst of 30
// (Telegram bot limit: ~30 messages per second across chats).
func NewTelegramAdapter(config TelegramConfig) *TelegramAdapter {
	if config.APIBaseURL == "" {
		config.APIBaseURL = defaultTelegramAPIBaseURL
	}

	return &TelegramAdapter{
		config: config,
		gateway: newGateway(gatewayConfig{
			Channel:           entity.ChannelTelegram,
			Timeout:           config.Timeout,
			RequestsPerSecond: 25.0,
			Burst:             30,
		}),
	}
}

func (t *TelegramAdapter) Channel() entity.Channel { return entity.ChannelTelegram }

type telegramSendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type telegramSendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Result      struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
}

// Send delivers msg to the chat identified by recipient (a chat_id).
func (t *TelegramAdapter) Send(ctx context.Context, recipient string, msg Message, ref Ref) Result {
	if recipient == "" {
		return failed(ErrCodeEmptyRecipient, "no telegram chat id on file")
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.config.APIBaseURL, t.config.BotToken)
	payload := telegramSendMessageRequest{
		ChatID: recipient,
		Text:   renderText(msg),
	}

	body, failure := t.gateway.postJSON(ctx, url, nil, payload)
	if failure != nil {
		slog.Warn("telegram send failed",
			slog.String("job_id", ref.JobID),
			slog.String("uid", ref.UID),
			slog.String("error_code", failure.ErrorCode))
		return *failure
	}

	var resp telegramSendMessageResponse
	raw := decodeResponse(body, &resp)

	// Telegram reports API-level failures with ok=false inside a 200
	if !resp.OK {
		return Result{
			Status:       StatusFailed,
			ErrorCode:    ErrCodeBadResponse,
			ErrorMessage: firstNonEmpty(resp.Description, "telegram responded ok=false"),
			Raw:          raw,
		}
	}

	return Result{
		Status:            StatusSent,
		ProviderMessageID: strconv.FormatInt(resp.Result.MessageID, 10),
		Raw:               raw,
	}
}

// renderText flattens a Message into the plain-text body chat gateways take.
func renderText(msg Message) string {
	var b strings.Builder
	if msg.Title != "" {
		b.WriteString(msg.Title)
	}
	if msg.Body != "" {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(msg.Body)
	}
	if msg.ActionURL != "" {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(msg.ActionURL)
	}
	return b.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
