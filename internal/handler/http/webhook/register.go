package webhook

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"rental-notify/internal/domain/entity"
	deliveryUC "rental-notify/internal/usecase/delivery"
)

// Register wires the inbound receipt routes. Both are public: the gateways
// cannot present our JWTs, and the handlers only ever patch rows they can
// correlate.
func Register(mux *http.ServeMux, svc deliveryUC.Service, logger *slog.Logger) {
	mux.Handle("POST   /webhooks/telegram", TelegramHandler{Svc: svc, Logger: logger})
	mux.Handle("POST   /webhooks/line", LineHandler{Svc: svc, Logger: logger})
}

// applyReceipt forwards one correlated event to the ledger. Misses and bad
// events are logged and swallowed; the provider still gets its 200.
func applyReceipt(ctx context.Context, svc deliveryUC.Service, logger *slog.Logger, gateway, providerMessageID, event string) {
	err := svc.ApplyReceipt(ctx, providerMessageID, event)
	switch {
	case err == nil:
	case errors.Is(err, entity.ErrNotFound):
		logger.Warn("webhook receipt: no matching delivery",
			slog.String("gateway", gateway),
			slog.String("provider_message_id", providerMessageID),
			slog.String("event", event))
	default:
		logger.Error("webhook receipt: apply failed",
			slog.String("gateway", gateway),
			slog.String("provider_message_id", providerMessageID),
			slog.String("event", event),
			slog.String("error", err.Error()))
	}
}
