package linkcodes

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"rental-notify/internal/handler/http/auth"
	"rental-notify/internal/handler/http/respond"
	linkcodeUC "rental-notify/internal/usecase/linkcode"
)

type GenerateHandler struct{ Svc linkcodeUC.Service }

func (h GenerateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TTLMinutes int `json:"ttlMinutes"`
		Length     int `json:"length"`
	}
	// An empty body means defaults; anything else must parse.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	code, err := h.Svc.Generate(r.Context(), auth.UID(r.Context()), req.TTLMinutes, req.Length)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, map[string]any{
		"code":        code.Code,
		"expiresAtMs": code.ExpiresAt.UnixMilli(),
		"ttlMinutes":  code.TTLMinutes,
	})
}
