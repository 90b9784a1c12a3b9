package sse

import (
	"log/slog"
	"sync"

	"github.com/hectoduel/hectoduel/internal/model"
)

// PresenceListener is notified when a player's first connection opens or
// last connection closes. The duel manager uses these signals to arm and
// disarm disconnect grace periods.
type PresenceListener interface {
	PlayerConnected(playerID model.PlayerID)
	PlayerDisconnected(playerID model.PlayerID)
}

// HubManager owns one hub per connected player and tracks connection
// counts so presence transitions fire exactly once per edge.
type HubManager struct {
	hubs     map[model.PlayerID]*Hub
	counts   map[model.PlayerID]int
	mu       sync.Mutex
	listener PresenceListener
	logger   *slog.Logger
}

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:   make(map[model.PlayerID]*Hub),
		counts: make(map[model.PlayerID]int),
		logger: logger.With(slog.String("component", "sse")),
	}
}

// SetPresenceListener wires the downstream consumer of presence edges.
// Must be called before any connection is served.
func (m *HubManager) SetPresenceListener(listener PresenceListener) {
	m.listener = listener
}

// Connect registers a new connection for a player, creating the player's
// hub on first use. Returns the client to read events from.
func (m *HubManager) Connect(playerID model.PlayerID) *Client {
	m.mu.Lock()
	hub, ok := m.hubs[playerID]
	if !ok {
		hub = NewHub(playerID, m.logger)
		m.hubs[playerID] = hub
		go hub.Run()
	}
	m.counts[playerID]++
	first := m.counts[playerID] == 1
	m.mu.Unlock()

	client := NewClient(hub, playerID)
	hub.Register(client)

	if first && m.listener != nil {
		m.listener.PlayerConnected(playerID)
	}
	return client
}

// Disconnect unregisters a connection. The player's hub is torn down
// when their last connection closes.
func (m *HubManager) Disconnect(client *Client) {
	client.hub.Unregister(client)

	m.mu.Lock()
	playerID := client.playerID
	m.counts[playerID]--
	last := m.counts[playerID] <= 0
	if last {
		delete(m.counts, playerID)
		if hub, ok := m.hubs[playerID]; ok {
			hub.Close()
			delete(m.hubs, playerID)
		}
	}
	m.mu.Unlock()

	if last && m.listener != nil {
		m.listener.PlayerDisconnected(playerID)
	}
}

// GetHub returns the player's hub, or nil if they have no connections
func (m *HubManager) GetHub(playerID model.PlayerID) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hubs[playerID]
}

// ConnectionCount returns the player's open connection count
func (m *HubManager) ConnectionCount(playerID model.PlayerID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[playerID]
}
