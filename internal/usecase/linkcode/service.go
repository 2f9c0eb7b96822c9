// Package linkcode issues and consumes the one-time codes that bind an
// external chat-bot account (telegram/line) to a user.
package linkcode

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"rental-notify/internal/domain/entity"
	"rental-notify/internal/repository"
)

// maxGenerateAttempts bounds the redraw loop on code collisions. Six draws
// against a 32^4..32^12 space failing in a row means the store is
// saturated or broken, not unlucky.
const maxGenerateAttempts = 6

// Service manages link codes.
type Service interface {
	// Generate issues a code bound to uid. ttlMinutes and length are
	// clamped into their valid ranges, zero means default. Returns
	// entity.ErrInternal when no unique code could be drawn.
	Generate(ctx context.Context, uid string, ttlMinutes, length int) (*entity.LinkCode, error)

	// Consume marks code used exactly once and stores chatBotUserID into
	// the owner's contact for ch. Expired, unknown and already-used codes
	// fail with entity.ErrNotFound; only receipt-capable chat-bot
	// channels may consume.
	Consume(ctx context.Context, code string, ch entity.Channel, chatBotUserID string) error
}

type service struct {
	codes repository.LinkCodeRepository
	prefs repository.PreferencesRepository
	now   func() time.Time
}

// NewService creates the link-code service.
func NewService(codes repository.LinkCodeRepository, prefs repository.PreferencesRepository) Service {
	return &service{codes: codes, prefs: prefs, now: time.Now}
}

func (s *service) Generate(ctx context.Context, uid string, ttlMinutes, length int) (*entity.LinkCode, error) {
	if uid == "" {
		return nil, entity.ErrUnauthenticated
	}

	ttlMinutes = entity.ClampLinkCodeTTL(ttlMinutes)
	length = entity.ClampLinkCodeLength(length)

	for attempt := 1; attempt <= maxGenerateAttempts; attempt++ {
		candidate, err := drawCode(length)
		if err != nil {
			return nil, fmt.Errorf("draw link code: %w", err)
		}

		now := s.now()
		code := &entity.LinkCode{
			Code:       candidate,
			UID:        uid,
			CreatedAt:  now,
			ExpiresAt:  now.Add(time.Duration(ttlMinutes) * time.Minute),
			TTLMinutes: ttlMinutes,
		}

		// Atomic insert-if-absent: a concurrent caller drawing the same
		// code loses the insert and redraws instead of racing.
		inserted, err := s.codes.CreateIfAbsent(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("persist link code: %w", err)
		}
		if inserted {
			return code, nil
		}

		slog.Warn("link code collision, redrawing",
			slog.String("uid", uid),
			slog.Int("attempt", attempt),
			slog.Int("length", length))
	}

	return nil, fmt.Errorf("unable to generate a unique code after %d attempts: %w", maxGenerateAttempts, entity.ErrInternal)
}

func (s *service) Consume(ctx context.Context, code string, ch entity.Channel, chatBotUserID string) error {
	if !ch.ReceiptCapable() {
		return &entity.ValidationError{Field: "channel", Message: "channel cannot consume link codes: " + string(ch)}
	}
	if chatBotUserID == "" {
		return &entity.ValidationError{Field: "chatBotUserId", Message: "chatBotUserId is required"}
	}

	record, err := s.codes.Get(ctx, code)
	if err != nil {
		return fmt.Errorf("lookup link code: %w", err)
	}
	if record.Used || record.Expired(s.now()) {
		return entity.ErrNotFound
	}

	// Conditional update; a concurrent consumer loses here.
	if err := s.codes.Consume(ctx, code); err != nil {
		return fmt.Errorf("consume link code: %w", err)
	}

	prefs, err := s.prefs.Get(ctx, record.UID)
	if errors.Is(err, entity.ErrNotFound) {
		prefs = entity.DefaultPreferences(record.UID)
	} else if err != nil {
		return fmt.Errorf("load preferences for %s: %w", record.UID, err)
	}

	switch ch {
	case entity.ChannelTelegram:
		prefs.Contact.TelegramChatID = chatBotUserID
	case entity.ChannelLine:
		prefs.Contact.LineUserID = chatBotUserID
	}

	if err := s.prefs.Upsert(ctx, prefs); err != nil {
		return fmt.Errorf("store chat-bot identity for %s: %w", record.UID, err)
	}

	slog.Info("link code consumed",
		slog.String("uid", record.UID),
		slog.String("channel", string(ch)))
	return nil
}

// drawCode assembles a candidate from the fixed alphabet with crypto/rand.
func drawCode(length int) (string, error) {
	alphabetLen := big.NewInt(int64(len(entity.LinkCodeAlphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", err
		}
		out[i] = entity.LinkCodeAlphabet[n.Int64()]
	}
	return string(out), nil
}
