package handlers

import (
	"net/http"
)

// Health handles GET /health: store and queue liveness plus the pending
// queue length.
func (h *TaskHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.dispatcher.Healthy(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	queueLen, err := h.dispatcher.QueueLen(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "healthy",
		"queue_length": queueLen,
	})
}
