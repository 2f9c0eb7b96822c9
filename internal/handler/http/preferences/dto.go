package preferences

import (
	"rental-notify/internal/domain/entity"
)

type quietHoursDTO struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

type contactDTO struct {
	Email          string   `json:"email,omitempty"`
	Phone          string   `json:"phone,omitempty"`
	PushTokens     []string `json:"pushTokens,omitempty"`
	TelegramChatID string   `json:"telegramChatId,omitempty"`
	LineUserID     string   `json:"lineUserId,omitempty"`
}

type preferencesDTO struct {
	Language     string          `json:"language"`
	Timezone     string          `json:"timezone"`
	ChannelOptIn map[string]bool `json:"channelOptIn"`
	TopicOptIn   map[string]bool `json:"topicOptIn"`
	QuietHours   quietHoursDTO   `json:"quietHours"`
	Contact      contactDTO      `json:"contact"`
}

func toDTO(p *entity.Preferences) preferencesDTO {
	channels := make(map[string]bool, len(p.ChannelOptIn))
	for ch, v := range p.ChannelOptIn {
		channels[string(ch)] = v
	}
	topics := p.TopicOptIn
	if topics == nil {
		topics = map[string]bool{}
	}
	return preferencesDTO{
		Language:     p.Language,
		Timezone:     p.Timezone,
		ChannelOptIn: channels,
		TopicOptIn:   topics,
		QuietHours:   quietHoursDTO{Start: p.QuietHours.Start, End: p.QuietHours.End},
		Contact: contactDTO{
			Email:          p.Contact.Email,
			Phone:          p.Contact.Phone,
			PushTokens:     p.Contact.PushTokens,
			TelegramChatID: p.Contact.TelegramChatID,
			LineUserID:     p.Contact.LineUserID,
		},
	}
}
