package pathutil

import (
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{
			name:     "notification read with uuid",
			path:     "/notifications/9f3a1c2e-55d4-4b1f-8f60-1f2e3d4c5b6a/read",
			expected: "/notifications/:id/read",
		},
		{
			name:     "notification read with trailing slash",
			path:     "/notifications/n1/read/",
			expected: "/notifications/:id/read",
		},
		{
			name:     "worker channel",
			path:     "/workers/email",
			expected: "/workers/:channel",
		},
		{
			name:     "worker channel with query params",
			path:     "/workers/telegram?dry_run=1",
			expected: "/workers/:channel",
		},
		{
			name:     "notifications list unchanged",
			path:     "/notifications",
			expected: "/notifications",
		},
		{
			name:     "preferences unchanged",
			path:     "/preferences",
			expected: "/preferences",
		},
		{
			name:     "webhooks unchanged",
			path:     "/webhooks/telegram",
			expected: "/webhooks/telegram",
		},
		{
			name:     "healthz unchanged",
			path:     "/healthz",
			expected: "/healthz",
		},
		{
			name:     "root unchanged",
			path:     "/",
			expected: "/",
		},
		{
			name:     "unknown path with id passes through",
			path:     "/unknown/path/123",
			expected: "/unknown/path/123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePath(tt.path); got != tt.expected {
				t.Errorf("NormalizePath(%q) = %q, want %q", tt.path, got, tt.expected)
			}
		})
	}
}
