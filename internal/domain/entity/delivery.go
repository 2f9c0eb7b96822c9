package entity

import (
	"fmt"
	"time"
)

// Delivery status values, see the state machine below.
const (
	DeliveryStatusSent      = "sent"      // provider accepted, awaiting confirmation
	DeliveryStatusDelivered = "delivered" // confirmed delivered (terminal)
	DeliveryStatusRead      = "read"      // confirmed read/seen (terminal)
	DeliveryStatusFailed    = "failed"    // provider rejected or errored (terminal)
	DeliveryStatusSkipped   = "skipped"   // worker chose not to attempt (terminal)
)

// Delivery is the canonical ledger record of one delivery attempt per
// (job, channel, recipient). Its lifecycle:
//
//	sent -> delivered -> read        (receipt-capable channels, via webhook)
//	sent -> failed
//	failed / skipped at worker time
//
// Rows are written by channel workers and patched by webhook receivers;
// no other writer touches them, and they are never deleted.
type Delivery struct {
	ID                string
	JobID             string
	UID               string // empty when the job addressed a raw contact
	Channel           Channel
	Status            string
	ProviderMessageID string
	ErrorCode         string
	ErrorMessage      string
	Attempts          int
	CreatedAt         time.Time
	SentAt            *time.Time
	DeliveredAt       *time.Time
	ReadAt            *time.Time
	Meta              map[string]any // raw provider payload, kept for audit
}

// DeliveryID derives the ledger row key as a pure function of
// (jobID, channel, recipientKey). This determinism is the system's only
// concurrency-safety mechanism: concurrent or retried worker invocations
// for the same triple converge on one row via upsert instead of
// duplicating. Do not add entropy here.
func DeliveryID(jobID string, channel Channel, uid, recipient string) string {
	key := uid
	if key == "" {
		key = recipient
	}
	if key == "" {
		key = "unknown"
	}
	return fmt.Sprintf("%s_%s_%s", jobID, channel, key)
}

// IsTerminalStatus reports whether a ledger status accepts no further
// transitions. Webhook patches onto terminal failed/skipped rows are
// still applied idempotently; this predicate exists for metrics and tests.
func IsTerminalStatus(status string) bool {
	switch status {
	case DeliveryStatusDelivered, DeliveryStatusRead, DeliveryStatusFailed, DeliveryStatusSkipped:
		return true
	}
	return false
}
