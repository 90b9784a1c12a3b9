package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/hectoduel/hectoduel/internal/api/apierr"
	"github.com/hectoduel/hectoduel/internal/api/middleware"
	"github.com/hectoduel/hectoduel/internal/api/request"
	"github.com/hectoduel/hectoduel/internal/api/response"
	"github.com/hectoduel/hectoduel/internal/model"
	"github.com/hectoduel/hectoduel/internal/services/duel"
)

// DuelHandler handles live duel endpoints
type DuelHandler struct {
	manager *duel.Manager
}

// NewDuelHandler creates a new duel handler
func NewDuelHandler(manager *duel.Manager) *DuelHandler {
	return &DuelHandler{
		manager: manager,
	}
}

// Submit handles POST /api/v1/duels/{session_id}/submit
func (h *DuelHandler) Submit(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	sessionID := model.SessionID(mux.Vars(r)["session_id"])

	var req request.SubmitSolutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		apierr.WriteError(w, model.ErrInvalidSubmission)
		return
	}

	result, err := h.manager.SubmitSolution(sessionID, player.ID, req.Text)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SubmitVerdict{
		Correct:     result.Correct,
		Reason:      string(result.Reason),
		SolveTimeMS: result.SolveTime.Milliseconds(),
	})
}

// Progress handles POST /api/v1/duels/{session_id}/progress
func (h *DuelHandler) Progress(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	sessionID := model.SessionID(mux.Vars(r)["session_id"])

	var req request.ReportProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	if err := h.manager.ReportProgress(sessionID, player.ID, req.Progress); err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Get handles GET /api/v1/duels/{session_id}
func (h *DuelHandler) Get(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	sessionID := model.SessionID(mux.Vars(r)["session_id"])

	session, err := h.manager.GetSession(sessionID, player.ID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.DuelSessionFromModel(&session, player.ID))
}
