package realtime

import (
	"encoding/json"
	"net/http"
	"time"

	"timekeeper/internal/core/clock"
	"timekeeper/internal/storage"
)

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.statePayload(s.options.Session.Snapshot()))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.options.Export == nil {
		http.Error(w, `{"error":"stats unavailable"}`, http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.options.Export().Stats)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if s.options.Export == nil {
		http.Error(w, `{"error":"export unavailable"}`, http.StatusServiceUnavailable)
		return
	}
	encoded, err := storage.EncodeExport(s.options.Export())
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+storage.ExportFileName(s.options.Now())+`"`)
	w.Write(encoded)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"clients": s.ClientCount(),
	})
}

// sessionActions maps POST /session/{action} to keeper operations.
var sessionActions = map[string]func(Session){
	"start":  Session.Start,
	"pause":  Session.Pause,
	"toggle": Session.Toggle,
	"reset":  Session.Reset,
	"skip":   Session.Skip,
	"lap":    Session.Lap,
}

func (s *Server) handleSessionAction(w http.ResponseWriter, r *http.Request) {
	action, ok := sessionActions[r.PathValue("action")]
	if !ok {
		http.Error(w, `{"error":"unknown action"}`, http.StatusNotFound)
		return
	}
	action(s.options.Session)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.statePayload(s.options.Session.Snapshot()))
}

func formatLap(lap time.Duration) string {
	return clock.FormatMilliseconds(lap).String()
}
