package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/hectoduel/hectoduel/internal/api/apierr"
	"github.com/hectoduel/hectoduel/internal/api/request"
	"github.com/hectoduel/hectoduel/internal/api/response"
	"github.com/hectoduel/hectoduel/internal/dependencies/clock"
	"github.com/hectoduel/hectoduel/internal/model"
	"github.com/hectoduel/hectoduel/internal/storage"
)

// PlayerHandler handles player profile endpoints
type PlayerHandler struct {
	storage storage.Storage
	clock   clock.Clock
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(store storage.Storage, clk clock.Clock) *PlayerHandler {
	return &PlayerHandler{
		storage: store,
		clock:   clk,
	}
}

// Create handles POST /api/v1/players
func (h *PlayerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreatePlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}
	if req.DisplayName == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("display_name is required"))
		return
	}

	now := h.clock.Now()
	player := &model.Player{
		ID:          model.PlayerID(uuid.NewString()),
		DisplayName: req.DisplayName,
		Rating:      model.DefaultRating,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.storage.SavePlayer(r.Context(), player); err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.PlayerFromModel(player))
}

// Get handles GET /api/v1/players/{id}
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.PlayerID(mux.Vars(r)["id"])

	player, err := h.storage.GetPlayer(r.Context(), id)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// ListDuels handles GET /api/v1/players/{id}/duels
func (h *PlayerHandler) ListDuels(w http.ResponseWriter, r *http.Request) {
	id := model.PlayerID(mux.Vars(r)["id"])

	summaries, err := h.storage.ListDuelSummariesForPlayer(r.Context(), id)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	out := make([]response.DuelSummary, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, response.DuelSummaryFromModel(s))
	}
	response.JSON(w, http.StatusOK, out)
}
