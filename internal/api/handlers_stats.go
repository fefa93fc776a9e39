package api

import (
	"net/http"
)

func (s *Server) handleRemoteStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "remote stats unavailable", http.StatusServiceUnavailable)
		return
	}

	queueDepth := 0
	if s.queue != nil {
		queueDepth = s.queue.Depth()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"model":        s.cfg.AnthropicModel,
		"stats":        s.stats.Snapshot(),
		"by_operation": s.stats.SnapshotByOp(),
		"queue_depth":  queueDepth,
	})
}
