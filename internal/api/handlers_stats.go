package api

import (
	"net/http"
)

func (s *Server) handleModelStats(w http.ResponseWriter, r *http.Request) {
	if len(s.models) == 0 {
		jsonError(w, "model stats unavailable", http.StatusServiceUnavailable)
		return
	}

	out := make(map[string]any, len(s.models))
	for _, m := range s.models {
		if m.Latency == nil {
			continue
		}
		out[m.Name] = map[string]any{
			"model": m.Model,
			"stats": m.Latency.Snapshot(),
		}
	}
	writeJSON(w, http.StatusOK, out)
}
