package entity

import (
	"fmt"
	"time"
)

// Contact holds the per-channel recipient addresses for one user.
// Empty values are allowed; a worker invoked for a channel with no address
// passes the empty recipient through to the provider so the failure is
// visible in the ledger rather than silently swallowed.
type Contact struct {
	Email          string
	Phone          string
	PushTokens     []string
	TelegramChatID string
	LineUserID     string
}

// QuietHours is a per-user local time window during which only in-app
// notifications are delivered. The window may wrap past midnight
// (e.g. 22:00-07:00). Empty start or end disables the window.
type QuietHours struct {
	Start string // "HH:MM"
	End   string // "HH:MM"
}

// Preferences is the per-user notification preferences record.
// It is created lazily with defaults on first read and mutated only by the
// owning user. Opt-in maps default to true for absent keys.
type Preferences struct {
	UID          string
	Language     string
	Timezone     string // IANA name; quiet hours are evaluated in this zone
	ChannelOptIn map[Channel]bool
	TopicOptIn   map[string]bool
	QuietHours   QuietHours
	Contact      Contact
	UpdatedAt    time.Time
}

// DefaultPreferences returns the record created on first read:
// everything opted in, no quiet hours, no contact addresses.
func DefaultPreferences(uid string) *Preferences {
	return &Preferences{
		UID:          uid,
		Language:     "en",
		Timezone:     "UTC",
		ChannelOptIn: map[Channel]bool{},
		TopicOptIn:   map[string]bool{},
	}
}

// ChannelEnabled reports whether the user accepts the channel.
// Absent keys default to opted-in.
func (p *Preferences) ChannelEnabled(ch Channel) bool {
	v, ok := p.ChannelOptIn[ch]
	return !ok || v
}

// TopicEnabled reports whether the user accepts the topic.
// Absent keys and the empty topic default to opted-in.
func (p *Preferences) TopicEnabled(topic string) bool {
	if topic == "" {
		return true
	}
	v, ok := p.TopicOptIn[topic]
	return !ok || v
}

// RecipientFor resolves the contact address for a channel.
// In-app delivery addresses the uid itself.
func (p *Preferences) RecipientFor(ch Channel) string {
	switch ch {
	case ChannelInApp:
		return p.UID
	case ChannelPush:
		if len(p.Contact.PushTokens) > 0 {
			return p.Contact.PushTokens[0]
		}
		return ""
	case ChannelEmail:
		return p.Contact.Email
	case ChannelSMS:
		return p.Contact.Phone
	case ChannelTelegram:
		return p.Contact.TelegramChatID
	case ChannelLine:
		return p.Contact.LineUserID
	}
	return ""
}

// Location resolves the user's timezone, falling back to UTC for absent or
// unknown names so a bad preference can never break dispatch.
func (p *Preferences) Location() *time.Location {
	if p.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// InQuietHours reports whether now falls within [start, end) of the user's
// quiet window, evaluated in the user's timezone with wrap-around past
// midnight. A missing or malformed window never suppresses.
func (p *Preferences) InQuietHours(now time.Time) bool {
	start, okS := parseHHMM(p.QuietHours.Start)
	end, okE := parseHHMM(p.QuietHours.End)
	if !okS || !okE || start == end {
		return false
	}

	local := now.In(p.Location())
	minutes := local.Hour()*60 + local.Minute()

	if start < end {
		return minutes >= start && minutes < end
	}
	// 日付をまたぐ窓 (例: 22:00-07:00)
	return minutes >= start || minutes < end
}

// parseHHMM converts "HH:MM" into minutes since midnight.
func parseHHMM(s string) (int, bool) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// ValidateQuietHours checks an incoming quiet-hours window. Both fields must
// be empty (window disabled) or both valid "HH:MM" strings.
func ValidateQuietHours(q QuietHours) error {
	if q.Start == "" && q.End == "" {
		return nil
	}
	if _, ok := parseHHMM(q.Start); !ok {
		return &ValidationError{Field: "quietHours.start", Message: "must be HH:MM"}
	}
	if _, ok := parseHHMM(q.End); !ok {
		return &ValidationError{Field: "quietHours.end", Message: "must be HH:MM"}
	}
	return nil
}

// ValidateTimezone checks that a timezone preference names a loadable
// IANA location. Empty means UTC and is accepted.
func ValidateTimezone(name string) error {
	if name == "" {
		return nil
	}
	if _, err := time.LoadLocation(name); err != nil {
		return &ValidationError{Field: "timezone", Message: "unknown timezone: " + name}
	}
	return nil
}
