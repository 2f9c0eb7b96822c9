package webhook

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"rental-notify/internal/handler/http/respond"
	deliveryUC "rental-notify/internal/usecase/delivery"
)

// TelegramHandler receives bot-gateway callbacks reporting what happened to
// a message after sendMessage returned. The correlation token is the numeric
// message_id the send call produced.
type TelegramHandler struct {
	Svc    deliveryUC.Service
	Logger *slog.Logger
}

type telegramCallback struct {
	UpdateID      int64 `json:"update_id"`
	MessageStatus *struct {
		MessageID int64  `json:"message_id"`
		Status    string `json:"status"`
	} `json:"message_status"`
}

func (h TelegramHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var cb telegramCallback
	if err := json.NewDecoder(r.Body).Decode(&cb); err != nil {
		h.Logger.Warn("telegram webhook: malformed body", slog.String("error", err.Error()))
		ack(w)
		return
	}
	if cb.MessageStatus == nil || cb.MessageStatus.MessageID == 0 {
		h.Logger.Warn("telegram webhook: no message status",
			slog.Int64("update_id", cb.UpdateID))
		ack(w)
		return
	}

	token := strconv.FormatInt(cb.MessageStatus.MessageID, 10)
	applyReceipt(r.Context(), h.Svc, h.Logger, "telegram", token, cb.MessageStatus.Status)
	ack(w)
}

// ack is the unconditional success response. Bot gateways retry non-2xx
// responses aggressively, and a correlation miss is not something the
// gateway can fix by retrying.
func ack(w http.ResponseWriter) {
	respond.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}
