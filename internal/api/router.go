package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/hectoduel/hectoduel/internal/api/handler"
	apimiddleware "github.com/hectoduel/hectoduel/internal/api/middleware"
	"github.com/hectoduel/hectoduel/internal/dependencies/clock"
	"github.com/hectoduel/hectoduel/internal/services/duel"
	"github.com/hectoduel/hectoduel/internal/services/matchmaking"
	"github.com/hectoduel/hectoduel/internal/sse"
	"github.com/hectoduel/hectoduel/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	Storage     storage.Storage
	Clock       clock.Clock
	Coordinator *matchmaking.Coordinator
	DuelManager *duel.Manager
	HubManager  *sse.HubManager
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	playerHandler := handler.NewPlayerHandler(cfg.Storage, cfg.Clock)
	queueHandler := handler.NewQueueHandler(cfg.Coordinator, cfg.Clock)
	duelHandler := handler.NewDuelHandler(cfg.DuelManager)
	eventsHandler := handler.NewEventsHandler(cfg.HubManager)

	identityMiddleware := apimiddleware.Identity(cfg.Storage)
	loggingMiddleware := apimiddleware.Logging(cfg.Logger)
	recoveryMiddleware := apimiddleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Player creation and profile reads carry no identity requirement
	api.HandleFunc("/players", playerHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/players/{id}", playerHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/players/{id}/duels", playerHandler.ListDuels).Methods(http.MethodGet)

	// Queue routes require identity
	queue := api.PathPrefix("/queue").Subrouter()
	queue.Use(identityMiddleware)
	queue.HandleFunc("/join", queueHandler.Join).Methods(http.MethodPost)
	queue.HandleFunc("/leave", queueHandler.Leave).Methods(http.MethodPost)

	// Duel routes require identity
	duels := api.PathPrefix("/duels").Subrouter()
	duels.Use(identityMiddleware)
	duels.HandleFunc("/{session_id}", duelHandler.Get).Methods(http.MethodGet)
	duels.HandleFunc("/{session_id}/submit", duelHandler.Submit).Methods(http.MethodPost)
	duels.HandleFunc("/{session_id}/progress", duelHandler.Progress).Methods(http.MethodPost)

	// Event stream requires identity
	events := api.PathPrefix("/events").Subrouter()
	events.Use(identityMiddleware)
	events.HandleFunc("", eventsHandler.Stream).Methods(http.MethodGet)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
