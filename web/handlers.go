package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"markestedt/winlock/storage"
)

type lockEventResponse struct {
	ID        int64  `json:"id"`
	Timestamp string `json:"timestamp"`
	Source    string `json:"source"`
	LatencyMs int64  `json:"latencyMs"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

func lockEventJSON(e storage.LockEvent) lockEventResponse {
	return lockEventResponse{
		ID:        e.ID,
		Timestamp: e.Timestamp.UTC().Format(time.RFC3339),
		Source:    e.Source,
		LatencyMs: e.LatencyMs,
		Success:   e.Success,
		Error:     e.ErrorMessage,
	}
}

// handleStatus returns the agent configuration and journal aggregates
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := struct {
		Hotkey        string  `json:"hotkey"`
		VirtualCode   uint32  `json:"virtualCode,omitempty"`
		DisableNative bool    `json:"disableNative"`
		RestoreOnExit bool    `json:"restoreOnExit"`
		GraceMs       int     `json:"graceMs"`
		UptimeSeconds int64   `json:"uptimeSeconds"`
		TotalLocks    int     `json:"totalLocks"`
		SuccessCount  int     `json:"successCount"`
		FailureCount  int     `json:"failureCount"`
		AvgLatencyMs  float64 `json:"avgLatencyMs"`
	}{
		Hotkey:        s.config.Hotkey.Combo,
		VirtualCode:   s.config.Hotkey.VirtualCode,
		DisableNative: s.config.Lock.DisableNative,
		RestoreOnExit: s.config.Lock.RestoreOnExit,
		GraceMs:       s.config.Lock.GraceMs,
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
	}

	if s.db != nil {
		stats, err := s.db.GetStats()
		if err != nil {
			slog.Error("Failed to query journal stats", "error", err)
		} else {
			status.TotalLocks = stats.Total
			status.SuccessCount = stats.SuccessCount
			status.FailureCount = stats.FailureCount
			status.AvgLatencyMs = stats.AvgLatencyMs
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

// handleHistory returns a page of the lock-event journal
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 50
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	response := struct {
		Events []lockEventResponse `json:"events"`
		Total  int                 `json:"total"`
	}{
		Events: []lockEventResponse{},
	}

	if s.db != nil {
		events, err := s.db.GetLockEvents(limit, offset)
		if err != nil {
			slog.Error("Failed to query lock events", "error", err)
			http.Error(w, "Failed to query history", http.StatusInternalServerError)
			return
		}
		for _, e := range events {
			response.Events = append(response.Events, lockEventJSON(e))
		}

		total, err := s.db.GetLockEventCount()
		if err != nil {
			slog.Error("Failed to count lock events", "error", err)
		} else {
			response.Total = total
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
