package entity

import "time"

// LinkCodeAlphabet is the fixed 32-character draw set for link codes.
// Visually ambiguous characters (0/O, 1/I) are excluded so codes survive
// being read aloud or typed from a phone screen.
const LinkCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Link-code bounds. Out-of-range requests are clamped, not rejected.
const (
	LinkCodeMinLength  = 4
	LinkCodeMaxLength  = 12
	LinkCodeMinTTLMin  = 1
	LinkCodeMaxTTLMin  = 30
	LinkCodeDefaultLen = 6
	LinkCodeDefaultTTL = 10
)

// LinkCode is a short-lived, single-use token binding an external chat-bot
// identity to a user account. Codes are never deleted; expiry is enforced by
// timestamp comparison and consumption by the used flag.
type LinkCode struct {
	Code       string
	UID        string
	Used       bool
	CreatedAt  time.Time
	ExpiresAt  time.Time
	TTLMinutes int
}

// Expired reports whether the code's lifetime has elapsed at now.
func (c *LinkCode) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// ClampLinkCodeTTL normalizes a requested TTL into [1,30] minutes,
// defaulting to 10 for the zero value.
func ClampLinkCodeTTL(minutes int) int {
	if minutes == 0 {
		return LinkCodeDefaultTTL
	}
	if minutes < LinkCodeMinTTLMin {
		return LinkCodeMinTTLMin
	}
	if minutes > LinkCodeMaxTTLMin {
		return LinkCodeMaxTTLMin
	}
	return minutes
}

// ClampLinkCodeLength normalizes a requested code length into [4,12],
// defaulting to 6 for the zero value.
func ClampLinkCodeLength(length int) int {
	if length == 0 {
		return LinkCodeDefaultLen
	}
	if length < LinkCodeMinLength {
		return LinkCodeMinLength
	}
	if length > LinkCodeMaxLength {
		return LinkCodeMaxLength
	}
	return length
}
