package api

import (
	"errors"
	"net/http"

	"github.com/dgallion1/docsift/internal/rank"
)

// maxRankBody bounds the ranking input document.
const maxRankBody = 1 << 20

func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	if s.ranker == nil {
		jsonError(w, "ranking is not configured", http.StatusServiceUnavailable)
		return
	}

	req, err := rank.ParseRequest(http.MaxBytesReader(w, r.Body, maxRankBody))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := s.ranker.Run(r.Context(), req, s.cfg.PDFDir)
	var inErr *rank.InputError
	switch {
	case errors.As(err, &inErr):
		s.log.Warn("rank rejected", "persona", req.Persona.Role, "error", err)
		jsonError(w, inErr.Error(), http.StatusUnprocessableEntity)
		return
	case err != nil:
		s.log.Error("rank failed", "persona", req.Persona.Role, "error", err)
		jsonError(w, "rank failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := result.WriteJSON(w); err != nil {
		s.log.Error("write rank result", "error", err)
	}
}
