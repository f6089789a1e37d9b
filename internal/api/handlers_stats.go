package api

import (
	"net/http"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"queue_depth":       s.orchestrator.QueueDepth(),
		"jobs":              s.orchestrator.JobCount(),
		"injection_enabled": s.orchestrator.InjectionEnabled(),
		"phases":            s.orchestrator.Stats().Snapshot(),
	})
}
