// Package delivery implements the shared channel-worker contract: resolve
// the recipient, call the channel's provider adapter, and record the
// outcome in the delivery ledger under its deterministic key.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"rental-notify/internal/domain/entity"
	"rental-notify/internal/infra/provider"
	"rental-notify/internal/repository"

	"github.com/google/uuid"
)

// providerCallTimeout bounds one gateway call so a slow provider cannot
// stall the dispatcher's fan-out loop.
const providerCallTimeout = 10 * time.Second

// Payload is the rendered notification content a worker delivers.
type Payload struct {
	Title     string
	Body      string
	ActionURL string
}

// Target is an explicit recipient override. When present it wins over the
// address derived from the user's preferences.
type Target struct {
	To            string // email address, phone number or push token
	ChatBotUserID string // telegram chat id / line user id
}

// Input is one channel-worker invocation.
type Input struct {
	JobID   string
	UID     string // optional except for inapp
	Topic   string
	Payload Payload
	Target  *Target
}

// Output is the worker's report to its caller. OK is false only for a
// provider-rejected delivery; infrastructure faults surface as errors.
type Output struct {
	OK         bool
	DeliveryID string
	Result     provider.Result
}

// Service delivers one job to one channel.
type Service interface {
	// Deliver validates in, performs the channel delivery and upserts the
	// ledger row. Provider failures come back as data inside Output;
	// a non-nil error means the ledger itself could not be written or the
	// input was invalid (entity.ErrValidation).
	Deliver(ctx context.Context, ch entity.Channel, in Input) (*Output, error)

	// ApplyReceipt patches the ledger row correlated by providerMessageID
	// from an inbound webhook event ("delivered", "read"/"seen",
	// "failed"). Unknown events fail validation; a missing correlation is
	// entity.ErrNotFound, which webhook receivers log and swallow.
	ApplyReceipt(ctx context.Context, providerMessageID, event string) error
}

type service struct {
	deliveries repository.DeliveryRepository
	inapp      repository.InAppRepository
	prefs      repository.PreferencesRepository
	providers  *provider.Registry
	now        func() time.Time
}

// NewService creates the worker service shared by all six channels.
func NewService(
	deliveries repository.DeliveryRepository,
	inapp repository.InAppRepository,
	prefs repository.PreferencesRepository,
	providers *provider.Registry,
) Service {
	return &service{
		deliveries: deliveries,
		inapp:      inapp,
		prefs:      prefs,
		providers:  providers,
		now:        time.Now,
	}
}

func (s *service) Deliver(ctx context.Context, ch entity.Channel, in Input) (*Output, error) {
	if err := validate(ch, in); err != nil {
		return nil, err
	}

	if ch == entity.ChannelInApp {
		return s.deliverInApp(ctx, in)
	}
	return s.deliverExternal(ctx, ch, in)
}

func validate(ch entity.Channel, in Input) error {
	if !ch.IsValid() {
		return &entity.ValidationError{Field: "channel", Message: "unknown channel: " + string(ch)}
	}
	if in.JobID == "" {
		return &entity.ValidationError{Field: "jobId", Message: "jobId is required"}
	}
	if in.Payload.Title == "" {
		return &entity.ValidationError{Field: "payload.title", Message: "payload title is required"}
	}
	if in.Payload.Body == "" {
		return &entity.ValidationError{Field: "payload.body", Message: "payload body is required"}
	}
	if ch == entity.ChannelInApp && in.UID == "" {
		return &entity.ValidationError{Field: "uid", Message: "uid is required for inapp delivery"}
	}
	return nil
}

// deliverInApp is the one synchronous, self-contained worker: there is no
// external provider, so a successful item write is delivery and the ledger
// row is marked delivered immediately.
func (s *service) deliverInApp(ctx context.Context, in Input) (*Output, error) {
	now := s.now()
	deliveryID := entity.DeliveryID(in.JobID, entity.ChannelInApp, in.UID, "")

	item := &entity.InAppItem{
		ID:        uuid.New().String(),
		UID:       in.UID,
		Topic:     in.Topic,
		Title:     in.Payload.Title,
		Body:      in.Payload.Body,
		ActionURL: in.Payload.ActionURL,
		CreatedAt: now,
	}

	row := &entity.Delivery{
		ID:        deliveryID,
		JobID:     in.JobID,
		UID:       in.UID,
		Channel:   entity.ChannelInApp,
		Attempts:  1,
		CreatedAt: now,
	}

	result := provider.Result{Status: provider.StatusSent, ProviderMessageID: item.ID}
	if err := s.inapp.Create(ctx, item); err != nil {
		slog.Error("inapp item write failed",
			slog.String("job_id", in.JobID),
			slog.String("uid", in.UID),
			slog.Any("error", err))
		result = provider.Result{
			Status:       provider.StatusFailed,
			ErrorCode:    "inapp_write",
			ErrorMessage: err.Error(),
		}
		row.Status = entity.DeliveryStatusFailed
		row.ErrorCode = result.ErrorCode
		row.ErrorMessage = result.ErrorMessage
	} else {
		row.Status = entity.DeliveryStatusDelivered
		row.ProviderMessageID = item.ID
		row.SentAt = &now
		row.DeliveredAt = &now
	}

	if err := s.deliveries.Upsert(ctx, row); err != nil {
		return nil, fmt.Errorf("upsert delivery %s: %w", deliveryID, err)
	}

	recordDelivery(entity.ChannelInApp, row.Status)
	return &Output{OK: result.OK(), DeliveryID: deliveryID, Result: result}, nil
}

func (s *service) deliverExternal(ctx context.Context, ch entity.Channel, in Input) (*Output, error) {
	recipient, err := s.resolveRecipient(ctx, ch, in)
	if err != nil {
		return nil, err
	}

	now := s.now()
	deliveryID := entity.DeliveryID(in.JobID, ch, in.UID, recipient)

	adapter := s.providers.Get(ch)
	callCtx, cancel := context.WithTimeout(ctx, providerCallTimeout)
	start := s.now()
	result := adapter.Send(callCtx, recipient, provider.Message{
		Title:     in.Payload.Title,
		Body:      in.Payload.Body,
		ActionURL: in.Payload.ActionURL,
	}, provider.Ref{JobID: in.JobID, UID: in.UID})
	cancel()
	observeProviderCall(ch, s.now().Sub(start))

	row := &entity.Delivery{
		ID:                deliveryID,
		JobID:             in.JobID,
		UID:               in.UID,
		Channel:           ch,
		ProviderMessageID: result.ProviderMessageID,
		ErrorCode:         result.ErrorCode,
		ErrorMessage:      result.ErrorMessage,
		Attempts:          1,
		CreatedAt:         now,
		Meta:              result.Raw,
	}
	if result.OK() {
		row.Status = entity.DeliveryStatusSent
		row.SentAt = &now
	} else {
		row.Status = entity.DeliveryStatusFailed
	}

	if err := s.deliveries.Upsert(ctx, row); err != nil {
		return nil, fmt.Errorf("upsert delivery %s: %w", deliveryID, err)
	}

	recordDelivery(ch, row.Status)
	return &Output{OK: result.OK(), DeliveryID: deliveryID, Result: result}, nil
}

func (s *service) ApplyReceipt(ctx context.Context, providerMessageID, event string) error {
	if providerMessageID == "" {
		return &entity.ValidationError{Field: "providerMessageId", Message: "correlation token is required"}
	}

	var patch repository.ReceiptPatch
	switch event {
	case "delivered":
		patch.Status = entity.DeliveryStatusDelivered
	case "read", "seen":
		patch.Status = entity.DeliveryStatusRead
	case "failed":
		patch.Status = entity.DeliveryStatusFailed
		patch.ErrorCode = "provider_reported"
		patch.ErrorMessage = "provider reported delivery failure"
	default:
		return &entity.ValidationError{Field: "event", Message: "unknown receipt event: " + event}
	}

	row, err := s.deliveries.GetByProviderMessageID(ctx, providerMessageID)
	if err != nil {
		return err
	}

	if err := s.deliveries.PatchReceipt(ctx, row.ID, patch); err != nil {
		return fmt.Errorf("patch receipt on %s: %w", row.ID, err)
	}

	recordReceipt(row.Channel, patch.Status)
	slog.Info("receipt applied",
		slog.String("delivery_id", row.ID),
		slog.String("channel", string(row.Channel)),
		slog.String("status", patch.Status))
	return nil
}

// resolveRecipient prefers the explicit target, then the user's stored
// contact for the channel. An empty result is passed through on purpose:
// the provider fails it and the miss lands in the ledger.
func (s *service) resolveRecipient(ctx context.Context, ch entity.Channel, in Input) (string, error) {
	if in.Target != nil {
		if (ch == entity.ChannelTelegram || ch == entity.ChannelLine) && in.Target.ChatBotUserID != "" {
			return in.Target.ChatBotUserID, nil
		}
		if in.Target.To != "" {
			return in.Target.To, nil
		}
	}

	if in.UID == "" {
		return "", nil
	}

	p, err := s.prefs.Get(ctx, in.UID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return entity.DefaultPreferences(in.UID).RecipientFor(ch), nil
		}
		return "", fmt.Errorf("load preferences for %s: %w", in.UID, err)
	}
	return p.RecipientFor(ch), nil
}
