package worker

import (
	"encoding/json"
	"net/http"

	"rental-notify/internal/domain/entity"
	"rental-notify/internal/handler/http/respond"
	deliveryUC "rental-notify/internal/usecase/delivery"
)

type DeliverHandler struct{ Svc deliveryUC.Service }

type deliverRequest struct {
	JobID   string `json:"jobId"`
	UID     string `json:"uid"`
	Topic   string `json:"topic"`
	Payload struct {
		Title     string `json:"title"`
		Body      string `json:"body"`
		ActionURL string `json:"actionUrl"`
	} `json:"payload"`
	Target *struct {
		To            string `json:"to"`
		ChatBotUserID string `json:"chatBotUserId"`
	} `json:"target"`
}

type deliverResponse struct {
	OK         bool           `json:"ok"`
	DeliveryID string         `json:"deliveryId"`
	Result     resultResponse `json:"result"`
}

type resultResponse struct {
	Status            string `json:"status"`
	ProviderMessageID string `json:"providerMessageId,omitempty"`
	ErrorCode         string `json:"errorCode,omitempty"`
	ErrorMessage      string `json:"errorMessage,omitempty"`
}

func (h DeliverHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ch := entity.Channel(r.PathValue("channel"))

	var req deliverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	in := deliveryUC.Input{
		JobID: req.JobID,
		UID:   req.UID,
		Topic: req.Topic,
		Payload: deliveryUC.Payload{
			Title:     req.Payload.Title,
			Body:      req.Payload.Body,
			ActionURL: req.Payload.ActionURL,
		},
	}
	if req.Target != nil {
		in.Target = &deliveryUC.Target{
			To:            req.Target.To,
			ChatBotUserID: req.Target.ChatBotUserID,
		}
	}

	out, err := h.Svc.Deliver(r.Context(), ch, in)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, deliverResponse{
		OK:         out.OK,
		DeliveryID: out.DeliveryID,
		Result: resultResponse{
			Status:            out.Result.Status,
			ProviderMessageID: out.Result.ProviderMessageID,
			ErrorCode:         out.Result.ErrorCode,
			ErrorMessage:      out.Result.ErrorMessage,
		},
	})
}
