package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"markestedt/winlock/config"
	"markestedt/winlock/storage"
)

func newTestServer(t *testing.T, db *storage.DB) *Server {
	t.Helper()
	cfg := &config.Config{}
	cfg.Hotkey.Combo = "ctrl+shift+l"
	cfg.Lock.DisableNative = true
	cfg.Lock.GraceMs = 500
	return NewServer(db, cfg, 0)
}

func TestHandleStatus(t *testing.T) {
	db, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	defer db.Close()

	db.SaveLockEvent(&storage.LockEvent{Source: "hotkey", LatencyMs: 10, Success: true})
	db.SaveLockEvent(&storage.LockEvent{Source: "tray", LatencyMs: 20, Success: false, ErrorMessage: "denied"})

	srv := newTestServer(t, db)
	rec := httptest.NewRecorder()
	srv.handleStatus(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d, want 200", rec.Code)
	}

	var got struct {
		Hotkey        string `json:"hotkey"`
		DisableNative bool   `json:"disableNative"`
		TotalLocks    int    `json:"totalLocks"`
		FailureCount  int    `json:"failureCount"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.Hotkey != "ctrl+shift+l" || !got.DisableNative {
		t.Errorf("status = %+v", got)
	}
	if got.TotalLocks != 2 || got.FailureCount != 1 {
		t.Errorf("journal counts = %+v, want 2 total, 1 failed", got)
	}
}

func TestHandleStatusRejectsNonGet(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	srv.handleStatus(rec, httptest.NewRequest(http.MethodPost, "/api/status", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status code = %d, want 405", rec.Code)
	}
}

func TestHandleHistory(t *testing.T) {
	db, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	defer db.Close()

	for i := 0; i < 3; i++ {
		db.SaveLockEvent(&storage.LockEvent{Source: "hotkey", LatencyMs: int64(i), Success: true})
	}

	srv := newTestServer(t, db)
	rec := httptest.NewRecorder()
	srv.handleHistory(rec, httptest.NewRequest(http.MethodGet, "/api/history?limit=2", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d, want 200", rec.Code)
	}

	var got struct {
		Events []lockEventResponse `json:"events"`
		Total  int                 `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(got.Events) != 2 {
		t.Errorf("got %d events, want 2", len(got.Events))
	}
	if got.Total != 3 {
		t.Errorf("total = %d, want 3", got.Total)
	}
}

func TestHandleHistoryWithoutJournal(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	srv.handleHistory(rec, httptest.NewRequest(http.MethodGet, "/api/history", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d, want 200", rec.Code)
	}

	var got struct {
		Events []lockEventResponse `json:"events"`
		Total  int                 `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(got.Events) != 0 || got.Total != 0 {
		t.Errorf("journal-less history = %+v, want empty", got)
	}
}
