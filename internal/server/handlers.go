package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/pepperumo/peppegpt/internal/models"
	"github.com/pepperumo/peppegpt/internal/retrieval"
)

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("chat request",
		zap.String("session_id", req.SessionID),
		zap.Int("history_len", len(req.History)),
	)
	resp, err := s.chat.Chat(r.Context(), &req)
	if err != nil {
		// The orchestrator only surfaces validation failures; everything
		// else degrades internally.
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("search request", zap.String("query", req.Query), zap.Int("max_results", req.MaxResults))
	resp, err := s.chat.Search(r.Context(), &req)
	if err != nil {
		if errors.Is(err, retrieval.ErrNotInitialized) {
			s.respondError(w, http.StatusServiceUnavailable, "search index not available")
			return
		}
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	chunks := s.engine.Chunks()
	sections := make([]string, 0, len(chunks))
	for _, c := range chunks {
		sections = append(sections, c.Section)
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"total_chunks": len(chunks),
		"sections":     sections,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"initialized":  s.chat.Initialized(),
		"total_chunks": s.engine.Size(),
		"subject":      s.config.Subject.Name,
	}
	if s.sessions != nil {
		stats, err := s.sessions.Stats(r.Context())
		if err != nil {
			s.logger.Warn("status: session stats failed", zap.Error(err))
		} else {
			resp["sessions"] = stats.Sessions
			resp["turns"] = stats.Turns
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// handleConfig exposes the non-sensitive parts of the configuration. API keys
// never appear here.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"subject":            s.config.Subject.Name,
		"embedding_backend":  s.config.Embedding.Backend,
		"generation_backend": s.config.Generation.Backend,
		"max_results":        s.config.Search.MaxResults,
		"min_confidence":     s.config.Search.MinConfidence,
		"rate_limit_enabled": s.config.RateLimit.Enabled,
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"service": "peppegpt",
		"docs":    "/api/v1/chat, /api/v1/search, /api/v1/content, /health, /status, /config",
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
