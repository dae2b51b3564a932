package api

import (
	"net/http"
)

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	if s.llmStats == nil {
		jsonError(w, "llm stats unavailable", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"model":       s.orchestrator.Model(),
		"queue_depth": s.orchestrator.QueueDepth(),
		"stats":       s.llmStats.Snapshot(),
	})
}
