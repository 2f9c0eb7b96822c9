package provider

import (
	"log/slog"
	"net/url"
	"time"

	"rental-notify/internal/domain/entity"
	"rental-notify/pkg/config"
)

// LoadAdaptersFromEnv builds the adapter set from environment configuration.
// Misconfigured channels are disabled with a warning rather than failing
// startup; unconfigured channels fall back to the registry's noop adapter.
//
// Environment variables per channel:
//   - TELEGRAM_ENABLED, TELEGRAM_BOT_TOKEN, TELEGRAM_API_URL
//   - LINE_ENABLED, LINE_CHANNEL_TOKEN, LINE_API_URL
//   - PUSH_ENABLED, PUSH_GATEWAY_URL, PUSH_API_KEY
//   - EMAIL_ENABLED, EMAIL_GATEWAY_URL, EMAIL_API_KEY, EMAIL_FROM
//   - SMS_ENABLED, SMS_GATEWAY_URL, SMS_API_KEY, SMS_FROM
//   - PROVIDER_TIMEOUT applies to all channels (default 10s)
func LoadAdaptersFromEnv(logger *slog.Logger) []Adapter {
	timeout := config.GetEnvDuration("PROVIDER_TIMEOUT", 10*time.Second)
	if err := config.ValidatePositiveDuration(timeout); err != nil {
		logger.Warn("invalid PROVIDER_TIMEOUT, using default", slog.Any("error", err))
		timeout = 10 * time.Second
	}

	var adapters []Adapter

	if cfg := loadTelegramConfig(logger, timeout); cfg.Enabled {
		adapters = append(adapters, NewTelegramAdapter(cfg))
		logger.Info("provider enabled", slog.String("channel", "telegram"))
	}
	if cfg := loadLineConfig(logger, timeout); cfg.Enabled {
		adapters = append(adapters, NewLineAdapter(cfg))
		logger.Info("provider enabled", slog.String("channel", "line"))
	}
	if cfg := loadPushConfig(logger, timeout); cfg.Enabled {
		adapters = append(adapters, NewPushAdapter(cfg))
		logger.Info("provider enabled", slog.String("channel", "push"))
	}
	if cfg := loadEmailConfig(logger, timeout); cfg.Enabled {
		adapters = append(adapters, NewEmailAdapter(cfg))
		logger.Info("provider enabled", slog.String("channel", "email"))
	}
	if cfg := loadSMSConfig(logger, timeout); cfg.Enabled {
		adapters = append(adapters, NewSMSAdapter(cfg))
		logger.Info("provider enabled", slog.String("channel", "sms"))
	}

	return adapters
}

func loadTelegramConfig(logger *slog.Logger, timeout time.Duration) TelegramConfig {
	if !config.GetEnvBool("TELEGRAM_ENABLED", false) {
		return TelegramConfig{}
	}
	token := config.GetEnvString("TELEGRAM_BOT_TOKEN", "")
	if token == "" {
		logger.Warn("TELEGRAM_BOT_TOKEN is empty, disabling channel",
			slog.String("channel", string(entity.ChannelTelegram)))
		return TelegramConfig{}
	}
	return TelegramConfig{
		Enabled:    true,
		BotToken:   token,
		APIBaseURL: config.GetEnvString("TELEGRAM_API_URL", ""),
		Timeout:    timeout,
	}
}

func loadLineConfig(logger *slog.Logger, timeout time.Duration) LineConfig {
	if !config.GetEnvBool("LINE_ENABLED", false) {
		return LineConfig{}
	}
	token := config.GetEnvString("LINE_CHANNEL_TOKEN", "")
	if token == "" {
		logger.Warn("LINE_CHANNEL_TOKEN is empty, disabling channel",
			slog.String("channel", string(entity.ChannelLine)))
		return LineConfig{}
	}
	return LineConfig{
		Enabled:      true,
		ChannelToken: token,
		APIBaseURL:   config.GetEnvString("LINE_API_URL", ""),
		Timeout:      timeout,
	}
}

func loadPushConfig(logger *slog.Logger, timeout time.Duration) PushConfig {
	if !config.GetEnvBool("PUSH_ENABLED", false) {
		return PushConfig{}
	}
	gatewayURL := config.GetEnvString("PUSH_GATEWAY_URL", "")
	if !validGatewayURL(gatewayURL) {
		logger.Warn("PUSH_GATEWAY_URL is missing or not https, disabling channel",
			slog.String("channel", string(entity.ChannelPush)))
		return PushConfig{}
	}
	return PushConfig{
		Enabled: true,
		URL:     gatewayURL,
		APIKey:  config.GetEnvString("PUSH_API_KEY", ""),
		Timeout: timeout,
	}
}

func loadEmailConfig(logger *slog.Logger, timeout time.Duration) EmailConfig {
	if !config.GetEnvBool("EMAIL_ENABLED", false) {
		return EmailConfig{}
	}
	gatewayURL := config.GetEnvString("EMAIL_GATEWAY_URL", "")
	if !validGatewayURL(gatewayURL) {
		logger.Warn("EMAIL_GATEWAY_URL is missing or not https, disabling channel",
			slog.String("channel", string(entity.ChannelEmail)))
		return EmailConfig{}
	}
	return EmailConfig{
		Enabled:     true,
		URL:         gatewayURL,
		APIKey:      config.GetEnvString("EMAIL_API_KEY", ""),
		FromAddress: config.GetEnvString("EMAIL_FROM", "noreply@example.com"),
		Timeout:     timeout,
	}
}

func loadSMSConfig(logger *slog.Logger, timeout time.Duration) SMSConfig {
	if !config.GetEnvBool("SMS_ENABLED", false) {
		return SMSConfig{}
	}
	gatewayURL := config.GetEnvString("SMS_GATEWAY_URL", "")
	if !validGatewayURL(gatewayURL) {
		logger.Warn("SMS_GATEWAY_URL is missing or not https, disabling channel",
			slog.String("channel", string(entity.ChannelSMS)))
		return SMSConfig{}
	}
	return SMSConfig{
		Enabled:    true,
		URL:        gatewayURL,
		APIKey:     config.GetEnvString("SMS_API_KEY", ""),
		FromNumber: config.GetEnvString("SMS_FROM", ""),
		Timeout:    timeout,
	}
}

// validGatewayURL requires an absolute https URL for outbound gateways.
func validGatewayURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme == "https" && u.Host != ""
}
