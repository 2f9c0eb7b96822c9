package dispatch

import (
	"strings"

	"rental-notify/internal/domain/entity"
	"rental-notify/internal/usecase/delivery"
)

// Data keys clients use to carry rendered content on the job.
const (
	dataKeyTitle     = "title"
	dataKeyBody      = "body"
	dataKeyActionURL = "actionUrl"
)

// renderPayload derives the message content from the job's template id and
// data. Rendering is data-driven: clients put the localized title/body on
// job.Data, and absent values fall back to a humanized template id so a
// misconfigured job still produces a visible message instead of an empty
// one.
func renderPayload(job *entity.NotificationJob) delivery.Payload {
	title := job.Data[dataKeyTitle]
	if title == "" {
		title = humanizeTemplateID(job.TemplateID)
	}

	body := job.Data[dataKeyBody]
	if body == "" {
		body = title
	}

	return delivery.Payload{
		Title:     title,
		Body:      body,
		ActionURL: job.Data[dataKeyActionURL],
	}
}

// humanizeTemplateID turns "booking.confirmed" into "Booking confirmed".
func humanizeTemplateID(id string) string {
	s := strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(id)
	s = strings.TrimSpace(s)
	if s == "" {
		return id
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
