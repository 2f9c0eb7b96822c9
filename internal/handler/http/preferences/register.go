package preferences

import (
	"net/http"

	"rental-notify/internal/handler/http/auth"
	prefsUC "rental-notify/internal/usecase/prefs"
)

// Register wires the self-service preferences routes.
func Register(mux *http.ServeMux, svc prefsUC.Service) {
	mux.Handle("GET    /preferences", auth.Authz(GetHandler{svc}))
	mux.Handle("PUT    /preferences", auth.Authz(UpdateHandler{svc}))
}
