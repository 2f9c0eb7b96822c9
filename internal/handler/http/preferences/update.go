package preferences

import (
	"encoding/json"
	"net/http"

	"rental-notify/internal/domain/entity"
	"rental-notify/internal/handler/http/auth"
	"rental-notify/internal/handler/http/respond"
	prefsUC "rental-notify/internal/usecase/prefs"
)

type UpdateHandler struct{ Svc prefsUC.Service }

func (h UpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req preferencesDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	channels := make(map[entity.Channel]bool, len(req.ChannelOptIn))
	for ch, v := range req.ChannelOptIn {
		channels[entity.Channel(ch)] = v
	}

	p, err := h.Svc.Update(r.Context(), auth.UID(r.Context()), prefsUC.UpdateInput{
		Language:     req.Language,
		Timezone:     req.Timezone,
		ChannelOptIn: channels,
		TopicOptIn:   req.TopicOptIn,
		QuietHours:   entity.QuietHours{Start: req.QuietHours.Start, End: req.QuietHours.End},
		Contact: entity.Contact{
			Email:          req.Contact.Email,
			Phone:          req.Contact.Phone,
			PushTokens:     req.Contact.PushTokens,
			TelegramChatID: req.Contact.TelegramChatID,
			LineUserID:     req.Contact.LineUserID,
		},
	})
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(p))
}
