package notifications

import (
	"net/http"
	"strconv"
	"time"

	"rental-notify/internal/domain/entity"
	"rental-notify/internal/handler/http/auth"
	"rental-notify/internal/handler/http/respond"
	inappUC "rental-notify/internal/usecase/inapp"
)

type ListHandler struct{ Svc inappUC.Service }

type itemResponse struct {
	ID        string `json:"id"`
	Topic     string `json:"topic,omitempty"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	ActionURL string `json:"actionUrl,omitempty"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"createdAt"`
	ReadAt    string `json:"readAt,omitempty"`
}

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respond.SafeError(w, http.StatusBadRequest, err)
			return
		}
		limit = n
	}

	items, err := h.Svc.List(r.Context(), auth.UID(r.Context()), limit)
	if err != nil {
		respond.DomainError(w, err)
		return
	}

	resp := make([]itemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toItemResponse(item))
	}
	respond.JSON(w, http.StatusOK, map[string]any{"items": resp})
}

func toItemResponse(item *entity.InAppItem) itemResponse {
	out := itemResponse{
		ID:        item.ID,
		Topic:     item.Topic,
		Title:     item.Title,
		Body:      item.Body,
		ActionURL: item.ActionURL,
		Read:      item.Read,
		CreatedAt: item.CreatedAt.Format(time.RFC3339),
	}
	if item.ReadAt != nil {
		out.ReadAt = item.ReadAt.Format(time.RFC3339)
	}
	return out
}
