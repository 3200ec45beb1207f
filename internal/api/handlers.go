package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

// queryRequest is the body of POST /api/query.
type queryRequest struct {
	Query          string `json:"query"`
	ConversationID string `json:"conversation_id,omitempty"`
}

const maxQueryBytes = 64 * 1024

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxQueryBytes)

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		jsonError(w, "query is required", http.StatusBadRequest)
		return
	}

	result, err := s.svc.Answer(r.Context(), req.Query, req.ConversationID)
	if err != nil {
		s.log.Error("query failed", "error", err)
		jsonError(w, "failed to answer query", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "llm stats unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"stats": s.stats.Snapshot(),
	})
}

func (s *Server) handleDocumentCount(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		jsonError(w, "vector store unavailable", http.StatusServiceUnavailable)
		return
	}

	count, err := s.store.Count(r.Context())
	if err != nil {
		jsonError(w, "failed to count chunks: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"chunks": count})
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
