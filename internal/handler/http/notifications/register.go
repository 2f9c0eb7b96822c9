package notifications

import (
	"net/http"

	"rental-notify/internal/handler/http/auth"
	inappUC "rental-notify/internal/usecase/inapp"
)

// Register wires the notification-center routes.
func Register(mux *http.ServeMux, svc inappUC.Service) {
	mux.Handle("GET    /notifications", auth.Authz(ListHandler{svc}))
	mux.Handle("POST   /notifications/{id}/read", auth.Authz(MarkReadHandler{svc}))
}
