package jobs

import (
	"encoding/json"
	"net/http"

	"rental-notify/internal/domain/entity"
	"rental-notify/internal/handler/http/auth"
	"rental-notify/internal/handler/http/respond"
	jobUC "rental-notify/internal/usecase/job"
)

type CreateHandler struct{ Svc jobUC.Service }

func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TemplateID string `json:"templateId"`
		Audience   struct {
			Type string `json:"type"`
			UID  string `json:"uid"`
		} `json:"audience"`
		Data             map[string]string `json:"data"`
		RequiredChannels []string          `json:"requiredChannels"`
		Topic            string            `json:"topic"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	channels := make([]entity.Channel, 0, len(req.RequiredChannels))
	for _, c := range req.RequiredChannels {
		channels = append(channels, entity.Channel(c))
	}

	job, err := h.Svc.Create(r.Context(), auth.UID(r.Context()), jobUC.CreateInput{
		TemplateID: req.TemplateID,
		Audience: entity.Audience{
			Type: req.Audience.Type,
			UID:  req.Audience.UID,
		},
		Data:             req.Data,
		RequiredChannels: channels,
		Topic:            req.Topic,
	})
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, map[string]string{"id": job.ID})
}
