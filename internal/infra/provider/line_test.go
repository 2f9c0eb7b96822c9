package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLineAdapter_Send(t *testing.T) {
	t.Run("should return sent with sentMessages id", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v2/bot/message/push" {
				t.Errorf("unexpected path %q", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer channel-token" {
				t.Errorf("unexpected authorization header %q", got)
			}

			var req linePushRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode request: %v", err)
			}
			if req.To != "U-line-user" {
				t.Errorf("expected to=U-line-user, got %q", req.To)
			}
			if len(req.Messages) != 1 || req.Messages[0].Type != "text" {
				t.Errorf("expected one text message, got %+v", req.Messages)
			}

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"sentMessages":[{"id":"471a2b","quoteToken":"q"}]}`))
		}))
		defer server.Close()

		adapter := NewLineAdapter(LineConfig{
			Enabled:      true,
			ChannelToken: "channel-token",
			APIBaseURL:   server.URL,
			Timeout:      5 * time.Second,
		})

		result := adapter.Send(context.Background(), "U-line-user", Message{Title: "Rent due", Body: "Due Friday"}, Ref{JobID: "job-1"})

		if !result.OK() {
			t.Fatalf("expected sent, got status=%q code=%q", result.Status, result.ErrorCode)
		}
		if result.ProviderMessageID != "471a2b" {
			t.Errorf("unexpected provider message id %q", result.ProviderMessageID)
		}
	})

	t.Run("should stay sent when sentMessages is empty", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"sentMessages":[]}`))
		}))
		defer server.Close()

		adapter := NewLineAdapter(LineConfig{ChannelToken: "t", APIBaseURL: server.URL, Timeout: 5 * time.Second})

		result := adapter.Send(context.Background(), "U-line-user", Message{Body: "hi"}, Ref{})

		if !result.OK() {
			t.Fatalf("expected sent, got %q", result.Status)
		}
		if result.ProviderMessageID != "" {
			t.Errorf("expected empty provider message id, got %q", result.ProviderMessageID)
		}
	})

	t.Run("should fail empty recipient", func(t *testing.T) {
		adapter := NewLineAdapter(LineConfig{ChannelToken: "t", Timeout: 5 * time.Second})

		result := adapter.Send(context.Background(), "", Message{Body: "hi"}, Ref{})

		if result.ErrorCode != ErrCodeEmptyRecipient {
			t.Errorf("expected error code %q, got %q", ErrCodeEmptyRecipient, result.ErrorCode)
		}
	})
}
