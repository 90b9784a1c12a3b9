package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hectoduel/hectoduel/internal/model"
	"github.com/hectoduel/hectoduel/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	players   map[model.PlayerID]*model.Player
	summaries map[model.SessionID]*model.DuelSummary
	byPlayer  map[model.PlayerID][]model.SessionID

	// applied records which session results have been committed, making
	// CommitDuelResult idempotent per session
	applied map[model.SessionID]bool
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:   make(map[model.PlayerID]*model.Player),
		summaries: make(map[model.SessionID]*model.DuelSummary),
		byPlayer:  make(map[model.PlayerID][]model.SessionID),
		applied:   make(map[model.SessionID]bool),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[player.ID] = player
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	copied := *player
	return &copied, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players, id)
	return nil
}

// Duel result operations

func (s *Storage) CommitDuelResult(ctx context.Context, summary *model.DuelSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.applied[summary.SessionID] {
		// Retried commit; already applied, nothing to do
		return nil
	}

	for _, part := range summary.Participants {
		player, ok := s.players[part.PlayerID]
		if !ok {
			continue // Player deleted since the duel started
		}
		player.Rating += part.RatingDelta
		if summary.WinnerID != nil && *summary.WinnerID == part.PlayerID {
			player.WinStreak++
		} else {
			player.WinStreak = 0
		}
		player.UpdatedAt = time.Now()
	}

	s.summaries[summary.SessionID] = summary
	for _, part := range summary.Participants {
		s.byPlayer[part.PlayerID] = append(s.byPlayer[part.PlayerID], summary.SessionID)
	}
	s.applied[summary.SessionID] = true
	return nil
}

func (s *Storage) GetDuelSummary(ctx context.Context, id model.SessionID) (*model.DuelSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summary, ok := s.summaries[id]
	if !ok {
		return nil, model.ErrSummaryNotFound
	}
	return summary, nil
}

func (s *Storage) ListDuelSummariesForPlayer(ctx context.Context, id model.PlayerID) ([]*model.DuelSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byPlayer[id]
	summaries := make([]*model.DuelSummary, 0, len(ids))
	for _, sid := range ids {
		if summary, ok := s.summaries[sid]; ok {
			summaries = append(summaries, summary)
		}
	}
	return summaries, nil
}
