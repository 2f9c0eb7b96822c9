package webhook

import (
	"encoding/json"
	"log/slog"
	"net/http"

	deliveryUC "rental-notify/internal/usecase/delivery"
)

// LineHandler receives messaging-gateway webhook batches. One request may
// carry several events; each correlates by the string message id returned
// from the push call.
type LineHandler struct {
	Svc    deliveryUC.Service
	Logger *slog.Logger
}

type lineCallback struct {
	Events []struct {
		Type    string `json:"type"`
		Message struct {
			ID string `json:"id"`
		} `json:"message"`
	} `json:"events"`
}

func (h LineHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var cb lineCallback
	if err := json.NewDecoder(r.Body).Decode(&cb); err != nil {
		h.Logger.Warn("line webhook: malformed body", slog.String("error", err.Error()))
		ack(w)
		return
	}

	for _, ev := range cb.Events {
		if ev.Message.ID == "" {
			h.Logger.Warn("line webhook: event without message id",
				slog.String("type", ev.Type))
			continue
		}
		applyReceipt(r.Context(), h.Svc, h.Logger, "line", ev.Message.ID, normalizeLineEvent(ev.Type))
	}
	ack(w)
}

// normalizeLineEvent maps the gateway's event vocabulary onto the ledger's.
func normalizeLineEvent(eventType string) string {
	if eventType == "delivery" {
		return "delivered"
	}
	return eventType
}
