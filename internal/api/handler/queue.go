package handler

import (
	"encoding/json"
	"net/http"

	"github.com/hectoduel/hectoduel/internal/api/apierr"
	"github.com/hectoduel/hectoduel/internal/api/middleware"
	"github.com/hectoduel/hectoduel/internal/api/request"
	"github.com/hectoduel/hectoduel/internal/api/response"
	"github.com/hectoduel/hectoduel/internal/dependencies/clock"
	"github.com/hectoduel/hectoduel/internal/model"
	"github.com/hectoduel/hectoduel/internal/services/matchmaking"
)

// QueueHandler handles matchmaking queue endpoints
type QueueHandler struct {
	coordinator *matchmaking.Coordinator
	clock       clock.Clock
}

// NewQueueHandler creates a new queue handler
func NewQueueHandler(coordinator *matchmaking.Coordinator, clk clock.Clock) *QueueHandler {
	return &QueueHandler{
		coordinator: coordinator,
		clock:       clk,
	}
}

// Join handles POST /api/v1/queue/join. The caller's rating is
// snapshotted into the queue entry at this moment.
func (h *QueueHandler) Join(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.JoinQueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	entry := model.QueueEntry{
		PlayerID:    player.ID,
		DisplayName: player.DisplayName,
		Rating:      player.Rating,
		Ranked:      req.Ranked,
		EnqueuedAt:  h.clock.Now(),
	}
	if err := h.coordinator.Enqueue(entry); err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusAccepted, response.QueueStatus{
		Status: "queued",
		Ranked: req.Ranked,
	})
}

// Leave handles POST /api/v1/queue/leave. A no-op when the caller is
// not queued, so duplicate leave requests are harmless.
func (h *QueueHandler) Leave(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	h.coordinator.Dequeue(player.ID)
	response.NoContent(w)
}
