package notifications

import (
	"net/http"

	"rental-notify/internal/handler/http/auth"
	"rental-notify/internal/handler/http/respond"
	inappUC "rental-notify/internal/usecase/inapp"
)

type MarkReadHandler struct{ Svc inappUC.Service }

func (h MarkReadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.Svc.MarkRead(r.Context(), auth.UID(r.Context()), id); err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}
