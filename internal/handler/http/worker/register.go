package worker

import (
	"net/http"

	"rental-notify/internal/handler/http/auth"
	deliveryUC "rental-notify/internal/usecase/delivery"
)

// Register wires the direct per-channel delivery route. The dispatcher calls
// the delivery service in process; this surface exists for operational
// replays and integration probes.
func Register(mux *http.ServeMux, svc deliveryUC.Service) {
	mux.Handle("POST   /workers/{channel}", auth.Authz(DeliverHandler{svc}))
}
