package notifications_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rental-notify/internal/domain/entity"
	"rental-notify/internal/handler/http/auth"
	"rental-notify/internal/handler/http/notifications"
	inappUC "rental-notify/internal/usecase/inapp"
)

type stubInAppSvc struct {
	items   []*entity.InAppItem
	listErr error
	markErr error

	gotUID    string
	gotLimit  int
	gotItemID string
}

func (s *stubInAppSvc) List(_ context.Context, uid string, limit int) ([]*entity.InAppItem, error) {
	s.gotUID = uid
	s.gotLimit = limit
	return s.items, s.listErr
}

func (s *stubInAppSvc) MarkRead(_ context.Context, uid, itemID string) error {
	s.gotUID = uid
	s.gotItemID = itemID
	return s.markErr
}

var _ inappUC.Service = (*stubInAppSvc)(nil)

func TestListHandler_Success(t *testing.T) {
	readAt := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	svc := &stubInAppSvc{items: []*entity.InAppItem{
		{
			ID:        "n2",
			UID:       "u1",
			Title:     "Booking confirmed",
			Body:      "See you Friday",
			CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:        "n1",
			UID:       "u1",
			Title:     "Welcome",
			Body:      "Hello",
			Read:      true,
			CreatedAt: time.Date(2026, 2, 28, 10, 0, 0, 0, time.UTC),
			ReadAt:    &readAt,
		},
	}}
	handler := notifications.ListHandler{Svc: svc}

	req := httptest.NewRequest(http.MethodGet, "/notifications?limit=20", nil)
	req = req.WithContext(auth.WithUID(req.Context(), "u1"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if svc.gotUID != "u1" || svc.gotLimit != 20 {
		t.Errorf("list args = (%q, %d), want (u1, 20)", svc.gotUID, svc.gotLimit)
	}

	var resp struct {
		Items []struct {
			ID     string `json:"id"`
			Read   bool   `json:"read"`
			ReadAt string `json:"readAt"`
		} `json:"items"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(resp.Items))
	}
	if resp.Items[0].ID != "n2" || resp.Items[0].ReadAt != "" {
		t.Errorf("items[0] = %+v", resp.Items[0])
	}
	if !resp.Items[1].Read || resp.Items[1].ReadAt == "" {
		t.Errorf("items[1] = %+v, want read with readAt", resp.Items[1])
	}
}

func TestListHandler_BadLimit(t *testing.T) {
	handler := notifications.ListHandler{Svc: &stubInAppSvc{}}

	req := httptest.NewRequest(http.MethodGet, "/notifications?limit=abc", nil)
	req = req.WithContext(auth.WithUID(req.Context(), "u1"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestMarkReadHandler_Success(t *testing.T) {
	svc := &stubInAppSvc{}
	handler := notifications.MarkReadHandler{Svc: svc}

	req := httptest.NewRequest(http.MethodPost, "/notifications/n1/read", nil)
	req = req.WithContext(auth.WithUID(req.Context(), "u1"))
	req.SetPathValue("id", "n1")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if svc.gotUID != "u1" || svc.gotItemID != "n1" {
		t.Errorf("markread args = (%q, %q), want (u1, n1)", svc.gotUID, svc.gotItemID)
	}
}

func TestMarkReadHandler_OtherUsersItem(t *testing.T) {
	svc := &stubInAppSvc{markErr: entity.ErrNotFound}
	handler := notifications.MarkReadHandler{Svc: svc}

	req := httptest.NewRequest(http.MethodPost, "/notifications/n1/read", nil)
	req = req.WithContext(auth.WithUID(req.Context(), "u2"))
	req.SetPathValue("id", "n1")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusNotFound)
	}
}
