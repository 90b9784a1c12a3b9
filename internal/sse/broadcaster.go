package sse

import (
	"encoding/json"
	"log/slog"

	"github.com/hectoduel/hectoduel/internal/model"
)

// Broadcaster delivers typed events to players over their SSE hubs.
// Events for players with no open connection are dropped; duel state is
// authoritative server-side and a reconnecting client resyncs via the
// session snapshot endpoint.
type Broadcaster struct {
	hubManager *HubManager
	logger     *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// SendToPlayer marshals the payload and delivers it as a named event to
// all of the player's connections. Never blocks.
func (b *Broadcaster) SendToPlayer(id model.PlayerID, event model.EventType, payload any) {
	hub := b.hubManager.GetHub(id)
	if hub == nil {
		b.logger.Debug("event dropped - player offline",
			slog.String("player_id", string(id)),
			slog.String("event", string(event)))
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		b.logger.Error("event payload marshal failed",
			slog.String("player_id", string(id)),
			slog.String("event", string(event)),
			slog.Any("error", err))
		return
	}

	hub.SendEvent(event, string(data))
}

// SendError delivers a structured error event to a player
func (b *Broadcaster) SendError(id model.PlayerID, code, message string) {
	b.SendToPlayer(id, model.EventError, model.ErrorPayload{Code: code, Message: message})
}
