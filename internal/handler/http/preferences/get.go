package preferences

import (
	"net/http"

	"rental-notify/internal/handler/http/auth"
	"rental-notify/internal/handler/http/respond"
	prefsUC "rental-notify/internal/usecase/prefs"
)

type GetHandler struct{ Svc prefsUC.Service }

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p, err := h.Svc.Get(r.Context(), auth.UID(r.Context()))
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(p))
}
