package entity

import "time"

// InAppItem is one entry in a user's notification center.
// Items are created by the in-app channel worker and mutated (read flag)
// only by the owning user. Read items are retained, not pruned.
type InAppItem struct {
	ID        string
	UID       string
	Topic     string
	Title     string
	Body      string
	ActionURL string
	Read      bool
	CreatedAt time.Time
	ReadAt    *time.Time
}
