package linkcodes

import (
	"encoding/json"
	"errors"
	"net/http"

	"rental-notify/internal/domain/entity"
	"rental-notify/internal/handler/http/respond"
	linkcodeUC "rental-notify/internal/usecase/linkcode"
)

// ConsumeHandler completes the account-linking flow: the chat-bot backend
// posts the code a user typed into the bot together with the chat identity
// it saw. Called with a service token, not an end-user JWT.
type ConsumeHandler struct{ Svc linkcodeUC.Service }

func (h ConsumeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code          string `json:"code"`
		Channel       string `json:"channel"`
		ChatBotUserID string `json:"chatBotUserId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Code == "" {
		respond.SafeError(w, http.StatusBadRequest, errors.New("code is required"))
		return
	}

	err := h.Svc.Consume(r.Context(), req.Code, entity.Channel(req.Channel), req.ChatBotUserID)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}
