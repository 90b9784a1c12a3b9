package handler

import (
	"net/http"

	"github.com/hectoduel/hectoduel/internal/api/middleware"
	"github.com/hectoduel/hectoduel/internal/sse"
)

// EventsHandler serves the per-player SSE event stream
type EventsHandler struct {
	hubManager *sse.HubManager
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(hubManager *sse.HubManager) *EventsHandler {
	return &EventsHandler{
		hubManager: hubManager,
	}
}

// Stream handles GET /api/v1/events. The connection stays open until
// the client goes away; presence edges flow to the duel layer through
// the hub manager.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	sse.ServeSSE(w, r, h.hubManager, player.ID)
}
